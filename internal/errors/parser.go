package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a message safe to show users.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and driver errors into user facing codes.
// Sensitive detail stays out of the message, the log captures the raw error.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An unexpected error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(errStrLower, context)
	}

	// Foreign key violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The referenced record does not exist or is still in use",
		}
	}

	// Not null violation (23502)
	if strings.Contains(errStrLower, "null value") &&
		strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A downstream service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "An unexpected error occurred",
	}
}

// IsDuplicateKey reports whether err is a unique constraint violation.
// PostgreSQL reports 23505 as "duplicate key", SQLite as
// "UNIQUE constraint failed".
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

func parseDuplicateKeyError(errLower string, context string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(errLower, "order_number"):
		return ErrorInfo{Code: ResourceConflict, Message: "Order number collision, please retry"}
	case strings.Contains(errLower, "sku"):
		return ErrorInfo{Code: ProductSKUExists, Message: "A product with this SKU already exists"}
	case strings.Contains(errLower, "slug"):
		if context == "category" {
			return ErrorInfo{Code: CategorySlugExists, Message: "A category with this slug already exists"}
		}
		return ErrorInfo{Code: ProductSlugExists, Message: "A product with this slug already exists"}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "product":
		return "Product not found"
	case "category":
		return "Category not found"
	case "cart":
		return "Cart not found"
	case "order":
		return "Order not found"
	case "customer":
		return "Customer not found"
	default:
		return "The requested resource was not found"
	}
}
