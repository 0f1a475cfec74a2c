package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roy-rc/sfstore/config"
	"github.com/roy-rc/sfstore/internal/app/service"
	apperrors "github.com/roy-rc/sfstore/internal/errors"
	"github.com/roy-rc/sfstore/internal/middleware"
	"github.com/roy-rc/sfstore/pkg/redis"
)

type AuthController struct {
	authService service.AuthService
	cartService service.CartService
	cfg         *config.Config
}

func NewAuthController(authService service.AuthService, cartService service.CartService, cfg *config.Config) *AuthController {
	return &AuthController{
		authService: authService,
		cartService: cartService,
		cfg:         cfg,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid registration data")
		return
	}

	customer, tokens, err := ctrl.authService.Register(req)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "This email is already registered")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	ctrl.adoptSessionCart(c, customer.ID)

	c.JSON(http.StatusCreated, gin.H{
		"customer": customer,
		"tokens":   tokens,
	})
}

// Login handles POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	customer, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	ctrl.adoptSessionCart(c, customer.ID)

	c.JSON(http.StatusOK, gin.H{
		"customer": customer,
		"tokens":   tokens,
	})
}

// Logout handles POST /api/auth/logout
// The access token is blacklisted until it would have expired anyway.
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.cfg.Redis.Enabled {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			err := redis.BlacklistToken(c.Request.Context(), parts[1], ctrl.cfg.JWT.AccessTokenExpiry)
			if err != nil {
				log.Warn("Failed to blacklist token on logout", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed out successfully",
	})
}

// Me handles GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	customer, err := ctrl.authService.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Customer not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// UpdateProfile handles PUT /api/auth/me
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid profile data")
		return
	}

	customer, err := ctrl.authService.UpdateProfile(customerID, req)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Customer not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// adoptSessionCart folds the guest cart into the customer's cart after a
// successful register or login, then drops the guest cookie.
func (ctrl *AuthController) adoptSessionCart(c *gin.Context, customerID uint) {
	log := middleware.GetLoggerFromContext(c)

	token, err := c.Cookie(ctrl.cfg.Cart.SessionCookie)
	if err != nil || token == "" {
		return
	}

	if err := ctrl.cartService.MergeSessionCart(customerID, token); err != nil {
		// Merge failures must not block the login itself.
		log.Error("Failed to merge session cart on login", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return
	}
	middleware.ClearSessionCookie(c, &ctrl.cfg.Cart)
}
