package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/errors"
	"github.com/roy-rc/sfstore/pkg/redis"
	"github.com/roy-rc/sfstore/pkg/util"
)

// Context keys for customer information
const (
	CustomerIDKey    = "customer_id"
	CustomerEmailKey = "customer_email"
	CustomerRoleKey  = "customer_role"
)

type AuthMiddleware struct {
	jwtSecret      string
	checkBlacklist bool
}

func NewAuthMiddleware(jwtSecret string, checkBlacklist bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:      jwtSecret,
		checkBlacklist: checkBlacklist,
	}
}

// Authenticate validates the JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractToken(c)
		if !ok {
			log.Warn("Missing or malformed authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if m.checkBlacklist {
			revoked, err := redis.IsTokenBlacklisted(c.Request.Context(), token)
			if err != nil {
				log.Warn("Token blacklist check failed", map[string]interface{}{
					"error": err.Error(),
				})
			} else if revoked {
				log.Warn("Rejected revoked token", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "This session has been signed out")
				c.Abort()
				return
			}
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Your session has expired, please sign in again")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			}
			c.Abort()
			return
		}

		c.Set(CustomerIDKey, claims.CustomerID)
		c.Set(CustomerEmailKey, claims.Email)
		c.Set(CustomerRoleKey, model.CustomerRole(claims.Role))

		log.Debug("Customer authenticated successfully", map[string]interface{}{
			"customer_id": claims.CustomerID,
			"role":        claims.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates the JWT token if present.
// Missing or invalid tokens continue the request as a guest.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Debug("Token validation failed, continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		c.Set(CustomerIDKey, claims.CustomerID)
		c.Set(CustomerEmailKey, claims.Email)
		c.Set(CustomerRoleKey, model.CustomerRole(claims.Role))
		c.Next()
	}
}

// RequireRole checks that the authenticated customer has one of the roles
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		value, exists := c.Get(CustomerRoleKey)
		if !exists {
			errors.Forbidden(c, "")
			c.Abort()
			return
		}

		role := value.(model.CustomerRole)
		customerID, _ := GetCustomerID(c)

		for _, r := range roles {
			if role == model.CustomerRole(r) {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"customer_id":    customerID,
			"customer_role":  role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
		c.Abort()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// WebSocket clients cannot set headers, allow a query token
		token := c.Query("token")
		return token, token != ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// GetCustomerID extracts the customer ID from context
func GetCustomerID(c *gin.Context) (uint, bool) {
	customerID, exists := c.Get(CustomerIDKey)
	if !exists {
		return 0, false
	}
	return customerID.(uint), true
}

// GetCustomerEmail extracts the customer email from context
func GetCustomerEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(CustomerEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetCustomerRole extracts the customer role from context
func GetCustomerRole(c *gin.Context) (model.CustomerRole, bool) {
	role, exists := c.Get(CustomerRoleKey)
	if !exists {
		return "", false
	}
	return role.(model.CustomerRole), true
}
