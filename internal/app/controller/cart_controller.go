package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/service"
	apperrors "github.com/roy-rc/sfstore/internal/errors"
	"github.com/roy-rc/sfstore/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type addItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// identity resolves the cart owner for this request: the authenticated
// customer when present, the anonymous session otherwise.
func (ctrl *CartController) identity(c *gin.Context) (service.Identity, bool) {
	if customerID, ok := middleware.GetCustomerID(c); ok {
		return service.CustomerIdentity(customerID), true
	}
	if token, ok := middleware.GetSessionToken(c); ok {
		return service.SessionIdentity(token), true
	}
	return service.Identity{}, false
}

// GetCart handles GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	identity, ok := ctrl.identity(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartNotFound, "No cart session")
		return
	}

	cart, err := ctrl.cartService.CurrentCart(identity)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load cart", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	respondWithCart(c, http.StatusOK, "", cart)
}

// AddItem handles POST /api/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	identity, ok := ctrl.identity(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartNotFound, "No cart session")
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A product is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := ctrl.cartService.AddProduct(identity, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrProductUnavailable):
			apperrors.BadRequest(c, apperrors.ProductUnavailable, "This product is not available")
		case errors.Is(err, service.ErrInsufficientStock):
			apperrors.BadRequest(c, apperrors.CartInsufficientStock, "Not enough stock for the requested quantity")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity must be positive")
		default:
			log.Error("Failed to add product to cart", err, map[string]interface{}{
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	respondWithCart(c, http.StatusOK, "Product added to cart", cart)
}

// UpdateItem handles PUT /api/cart/items/:productID
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	identity, ok := ctrl.identity(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartNotFound, "No cart session")
		return
	}

	productID, err := parseIDParam(c, "productID")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A quantity is required")
		return
	}

	cart, err := ctrl.cartService.UpdateQuantity(identity, productID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Product is not in the cart")
		case errors.Is(err, service.ErrInsufficientStock):
			apperrors.BadRequest(c, apperrors.CartInsufficientStock, "Not enough stock for the requested quantity")
		default:
			middleware.GetLoggerFromContext(c).Error("Failed to update cart item", err, map[string]interface{}{
				"product_id": productID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	respondWithCart(c, http.StatusOK, "Cart updated", cart)
}

// RemoveItem handles DELETE /api/cart/items/:productID
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	identity, ok := ctrl.identity(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartNotFound, "No cart session")
		return
	}

	productID, err := parseIDParam(c, "productID")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	cart, err := ctrl.cartService.RemoveProduct(identity, productID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to remove product from cart", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "")
		return
	}

	respondWithCart(c, http.StatusOK, "Product removed from cart", cart)
}

// Clear handles DELETE /api/cart
func (ctrl *CartController) Clear(c *gin.Context) {
	identity, ok := ctrl.identity(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartNotFound, "No cart session")
		return
	}

	if err := ctrl.cartService.ClearCart(identity); err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to clear cart", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Cart cleared",
		"cart_count": 0,
		"cart_total": "0",
	})
}

// Summary handles GET /api/cart/summary
func (ctrl *CartController) Summary(c *gin.Context) {
	identity, ok := ctrl.identity(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartNotFound, "No cart session")
		return
	}

	summary, err := ctrl.cartService.Summary(identity)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load cart summary", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_count": summary.ItemCount,
		"cart_total": summary.Total,
	})
}

func respondWithCart(c *gin.Context, status int, message string, cart *model.Cart) {
	body := gin.H{
		"success":    true,
		"cart":       cart,
		"cart_count": cart.ItemCount(),
		"cart_total": cart.Total(),
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
