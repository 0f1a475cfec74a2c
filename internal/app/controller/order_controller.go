package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/service"
	apperrors "github.com/roy-rc/sfstore/internal/errors"
	"github.com/roy-rc/sfstore/internal/middleware"
	"github.com/xuri/excelize/v2"
)

type OrderController struct {
	orderService service.OrderService
	cartService  service.CartService
}

func NewOrderController(orderService service.OrderService, cartService service.CartService) *OrderController {
	return &OrderController{
		orderService: orderService,
		cartService:  cartService,
	}
}

// Checkout handles POST /api/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	// The body is optional, the customer's stored address is the default.
	var req service.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout data")
			return
		}
	}

	order, err := ctrl.orderService.Checkout(customerID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart is empty")
		case errors.Is(err, service.ErrMissingAddress):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "A shipping address is required")
		case errors.Is(err, service.ErrProductUnavailable):
			apperrors.BadRequest(c, apperrors.ProductUnavailable, "A product in your cart is no longer available")
		case errors.Is(err, service.ErrInsufficientStock):
			apperrors.Conflict(c, apperrors.OrderStockConflict, "Not enough stock to complete your order")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"customer_id": customerID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":        order,
		"order_number": order.OrderNumber,
	})
}

// ListMine handles GET /api/orders
func (ctrl *OrderController) ListMine(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetCustomerOrders(customerID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list customer orders", err, map[string]interface{}{
			"customer_id": customerID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetByNumber handles GET /api/orders/:number
func (ctrl *OrderController) GetByNumber(c *gin.Context) {
	customerID, ok := middleware.GetCustomerID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	order, err := ctrl.orderService.GetOrderByNumber(customerID, c.Param("number"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// AdminList handles GET /api/admin/orders with an optional status filter.
func (ctrl *OrderController) AdminList(c *gin.Context) {
	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(raw)
		status = &s
	}

	orders, err := ctrl.orderService.ListOrders(status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to list orders", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// AdminGet handles GET /api/admin/orders/:id
func (ctrl *OrderController) AdminGet(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(0, id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// UpdateStatus handles PUT /api/admin/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A status is required")
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		default:
			middleware.GetLoggerFromContext(c).Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Stats handles GET /api/admin/orders/stats
func (ctrl *OrderController) Stats(c *gin.Context) {
	stats, err := ctrl.orderService.OrderStats()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to compute order stats", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	recent, err := ctrl.orderService.RecentOrders(10)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load recent orders", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":         stats,
		"recent_orders": recent,
	})
}

// Carts handles GET /api/admin/carts, every open cart holding items.
func (ctrl *OrderController) Carts(c *gin.Context) {
	carts, err := ctrl.cartService.CartsWithItems()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load open carts", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"carts": carts,
		"count": len(carts),
	})
}

// Export handles GET /api/admin/orders/export, streaming an XLSX workbook.
func (ctrl *OrderController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(raw)
		status = &s
	}

	orders, err := ctrl.orderService.ListOrders(status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return
		}
		log.Error("Failed to load orders for export", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order Number", "Date", "Customer", "Email", "Status", "Items", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		values := []interface{}{
			order.OrderNumber,
			order.CreatedAt.Format("2006-01-02 15:04"),
			order.CustomerName,
			order.CustomerEmail,
			string(order.Status),
			order.ItemCount(),
			order.Total.StringFixed(2),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write order export", err, nil)
	}
}
