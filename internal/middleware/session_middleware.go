package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roy-rc/sfstore/config"
	"github.com/roy-rc/sfstore/pkg/util"
)

// SessionTokenKey is the context key for the anonymous cart token.
const SessionTokenKey = "cart_session_token"

// CartSession reads the anonymous cart cookie, minting a token on first
// visit. The token identifies the guest's cart until they sign in.
func CartSession(cfg *config.CartConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.SessionCookie)
		if err != nil || token == "" {
			token = util.NewSessionToken()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				cfg.SessionCookie,
				token,
				int(cfg.SessionMaxAge.Seconds()),
				"/",
				"",
				false,
				true,
			)
		}

		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

// GetSessionToken extracts the cart session token from context
func GetSessionToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(SessionTokenKey)
	if !exists {
		return "", false
	}
	return token.(string), true
}

// ClearSessionCookie drops the guest cart cookie, used after the session
// cart has been merged into a customer cart.
func ClearSessionCookie(c *gin.Context, cfg *config.CartConfig) {
	c.SetCookie(cfg.SessionCookie, "", -1, "/", "", false, true)
}
