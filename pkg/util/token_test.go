package util

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(fmt.Sprintf(`^ORD-%d-[0-9A-F]{6}$`, time.Now().Year()))

	for i := 0; i < 100; i++ {
		number := NewOrderNumber()
		assert.Regexp(t, pattern, number)
	}
}

func TestNewSessionToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		token := NewSessionToken()
		assert.NotEmpty(t, token)
		assert.False(t, seen[token], "duplicate session token: %s", token)
		seen[token] = true
	}
}
