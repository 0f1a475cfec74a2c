package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/repository"
	apperrors "github.com/roy-rc/sfstore/internal/errors"
	"github.com/roy-rc/sfstore/pkg/logger"
	"github.com/roy-rc/sfstore/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrMissingAddress     = errors.New("shipping address is required")
)

// orderNumberAttempts bounds retries when a generated order number collides.
const orderNumberAttempts = 5

// OrderEventPublisher receives order lifecycle events. Implementations must
// not block.
type OrderEventPublisher interface {
	PublishOrderCreated(order *model.Order)
	PublishOrderStatusChanged(order *model.Order)
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Phone           string `json:"phone"`
}

type OrderService interface {
	Checkout(customerID uint, req CheckoutRequest) (*model.Order, error)
	GetCustomerOrders(customerID uint) ([]model.Order, error)
	GetOrderByID(customerID, orderID uint) (*model.Order, error)
	GetOrderByNumber(customerID uint, orderNumber string) (*model.Order, error)
	ListOrders(status *model.OrderStatus) ([]model.Order, error)
	RecentOrders(limit int) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	OrderStats() (*model.OrderStats, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	customerRepo repository.CustomerRepository
	db           *gorm.DB
	publisher    OrderEventPublisher

	newOrderNumber func() string
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	customerRepo repository.CustomerRepository,
	db *gorm.DB,
	publisher OrderEventPublisher,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		customerRepo:   customerRepo,
		db:             db,
		publisher:      publisher,
		newOrderNumber: util.NewOrderNumber,
	}
}

// Checkout converts the customer's cart into an order. Stock is checked and
// decremented under row locks so two concurrent checkouts can never oversell,
// and the whole conversion commits or rolls back as one unit.
func (s *orderService) Checkout(customerID uint, req CheckoutRequest) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"customer_id": customerID,
	})

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	shippingAddress := strings.TrimSpace(req.ShippingAddress)
	if shippingAddress == "" {
		shippingAddress = customer.Address
	}
	if shippingAddress == "" {
		logger.Warn("Checkout failed: no shipping address", map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, ErrMissingAddress
	}
	phone := req.Phone
	if phone == "" {
		phone = customer.Phone
	}

	cart, err := s.cartRepo.FindActiveByCustomer(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if cart.IsEmpty() {
		logger.Warn("Checkout failed: cart is empty", map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, ErrEmptyCart
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"customer_id": customerID,
			})
		}
	}()

	total := decimal.Zero
	orderItems := make([]model.OrderItem, 0, len(cart.Items))

	for _, cartItem := range cart.Items {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product vanished during checkout", map[string]interface{}{
					"customer_id": customerID,
					"product_id":  cartItem.ProductID,
				})
				return nil, ErrProductUnavailable
			}
			logger.Error("Failed to lock product during checkout", err, map[string]interface{}{
				"customer_id": customerID,
				"product_id":  cartItem.ProductID,
			})
			return nil, err
		}

		if !product.IsActive {
			tx.Rollback()
			logger.Warn("Checkout failed: product no longer available", map[string]interface{}{
				"customer_id": customerID,
				"product_id":  product.ID,
			})
			return nil, ErrProductUnavailable
		}
		if product.Stock < cartItem.Quantity {
			tx.Rollback()
			logger.Warn("Checkout failed: insufficient stock", map[string]interface{}{
				"customer_id": customerID,
				"product_id":  product.ID,
				"requested":   cartItem.Quantity,
				"available":   product.Stock,
			})
			return nil, ErrInsufficientStock
		}

		// Conditional decrement: the WHERE guard makes overselling impossible
		// even if the lock semantics differ across databases.
		result := tx.Model(&model.Product{}).
			Where("id = ? AND stock >= ?", product.ID, cartItem.Quantity).
			Update("stock", gorm.Expr("stock - ?", cartItem.Quantity))
		if result.Error != nil {
			tx.Rollback()
			logger.Error("Failed to decrement stock during checkout", result.Error, map[string]interface{}{
				"customer_id": customerID,
				"product_id":  product.ID,
			})
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return nil, ErrInsufficientStock
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID: product.ID,
			Quantity:  cartItem.Quantity,
			Price:     product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(cartItem.Quantity))))
	}

	order := &model.Order{
		CustomerID:      customerID,
		Total:           total,
		Status:          model.OrderStatusPending,
		CustomerName:    customer.FullName(),
		CustomerEmail:   customer.Email,
		CustomerPhone:   phone,
		ShippingAddress: shippingAddress,
		Items:           orderItems,
	}

	created := false
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = s.newOrderNumber()
		// Postgres aborts the whole transaction after an errored statement,
		// so the insert runs under a savepoint the retry can roll back to.
		tx.SavePoint("order_insert")
		err := tx.Create(order).Error
		if err == nil {
			created = true
			break
		}
		if apperrors.IsDuplicateKey(err) {
			tx.RollbackTo("order_insert")
			logger.Warn("Order number collision, retrying", map[string]interface{}{
				"order_number": order.OrderNumber,
				"attempt":      attempt + 1,
			})
			order.ID = 0
			continue
		}
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}
	if !created {
		tx.Rollback()
		err := fmt.Errorf("could not allocate a unique order number after %d attempts", orderNumberAttempts)
		logger.Error("Checkout failed", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after checkout", err, map[string]interface{}{
			"customer_id": customerID,
			"cart_id":     cart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"customer_id":  customerID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        total.String(),
		"item_count":   len(orderItems),
	})

	full, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.PublishOrderCreated(full)
	}
	return full, nil
}

func (s *orderService) GetCustomerOrders(customerID uint) ([]model.Order, error) {
	return s.orderRepo.FindByCustomer(customerID)
}

// GetOrderByID returns the order when it belongs to the customer. A
// customerID of zero skips the ownership check, for admin access.
func (s *orderService) GetOrderByID(customerID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if customerID != 0 && order.CustomerID != customerID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"customer_id": customerID,
			"order_id":    orderID,
			"owner_id":    order.CustomerID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetOrderByNumber(customerID uint, orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.FindByNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if customerID != 0 && order.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(status *model.OrderStatus) ([]model.Order, error) {
	if status != nil {
		if !status.Valid() {
			return nil, ErrInvalidOrderStatus
		}
		return s.orderRepo.FindByStatus(*status)
	}
	return s.orderRepo.FindAll()
}

func (s *orderService) RecentOrders(limit int) ([]model.Order, error) {
	return s.orderRepo.FindRecent(limit)
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	logger.Info("Updating order status", map[string]interface{}{
		"order_id":   orderID,
		"new_status": status,
	})

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.PublishOrderStatusChanged(order)
	}
	return order, nil
}

func (s *orderService) OrderStats() (*model.OrderStats, error) {
	return s.orderRepo.Stats()
}
