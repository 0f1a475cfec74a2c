package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const orderNumberPrefix = "ORD"

// NewSessionToken generates an opaque token identifying an anonymous
// visitor's cart across requests.
func NewSessionToken() string {
	return uuid.NewString()
}

// NewOrderNumber generates an order number of the form ORD-<year>-<suffix>.
// Uniqueness is not guaranteed; callers retry on conflict.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%d-%s", orderNumberPrefix, time.Now().Year(), suffix)
}
