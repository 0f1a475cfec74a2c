package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Simple name",
			input: "Ceramic Mug",
			want:  "ceramic-mug",
		},
		{
			name:  "Accented characters",
			input: "Cafetera Italiana Clásica",
			want:  "cafetera-italiana-clasica",
		},
		{
			name:  "Enye",
			input: "Niño Pequeño",
			want:  "nino-pequeno",
		},
		{
			name:  "Punctuation collapses to single hyphen",
			input: "Mug, 350ml (white)",
			want:  "mug-350ml-white",
		},
		{
			name:  "Leading and trailing separators trimmed",
			input: "  ¡Oferta!  ",
			want:  "oferta",
		},
		{
			name:  "Digits preserved",
			input: "Set de 6 Copas",
			want:  "set-de-6-copas",
		},
		{
			name:  "Already a slug",
			input: "ceramic-mug",
			want:  "ceramic-mug",
		},
		{
			name:  "Empty string",
			input: "",
			want:  "",
		},
		{
			name:  "Only symbols",
			input: "!!!",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
