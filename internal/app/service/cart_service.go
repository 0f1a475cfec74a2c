package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidIdentity    = errors.New("cart identity requires a customer or a session token")
)

// Identity designates the owner of a cart: a logged in customer or an
// anonymous session, never both.
type Identity struct {
	customerID   *uint
	sessionToken *string
}

func CustomerIdentity(customerID uint) Identity {
	return Identity{customerID: &customerID}
}

func SessionIdentity(token string) Identity {
	return Identity{sessionToken: &token}
}

func (i Identity) valid() bool {
	return (i.customerID != nil) != (i.sessionToken != nil)
}

// CartSummary is the lightweight header view of a cart.
type CartSummary struct {
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type CartService interface {
	CurrentCart(identity Identity) (*model.Cart, error)
	AddProduct(identity Identity, productID uint, quantity int) (*model.Cart, error)
	UpdateQuantity(identity Identity, productID uint, quantity int) (*model.Cart, error)
	RemoveProduct(identity Identity, productID uint) (*model.Cart, error)
	ClearCart(identity Identity) error
	Summary(identity Identity) (*CartSummary, error)
	MergeSessionCart(customerID uint, sessionToken string) error
	CartsWithItems() ([]model.Cart, error)
	PruneAbandonedSessionCarts(olderThan time.Duration) (int64, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, db *gorm.DB) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		db:          db,
	}
}

// CurrentCart returns the identity's active cart, creating an empty one on
// first access.
func (s *cartService) CurrentCart(identity Identity) (*model.Cart, error) {
	if !identity.valid() {
		return nil, ErrInvalidIdentity
	}

	cart, err := s.findCart(identity)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{
		CustomerID:   identity.customerID,
		SessionToken: identity.sessionToken,
	}
	if err := s.cartRepo.CreateCart(cart); err != nil {
		return nil, err
	}
	cart.Items = []model.CartItem{}
	return cart, nil
}

func (s *cartService) AddProduct(identity Identity, productID uint, quantity int) (*model.Cart, error) {
	if !identity.valid() {
		return nil, ErrInvalidIdentity
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	logger.Info("Adding product to cart", map[string]interface{}{
		"customer_id": identity.customerID,
		"product_id":  productID,
		"quantity":    quantity,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		logger.Warn("Cannot add to cart: product inactive", map[string]interface{}{
			"product_id": productID,
		})
		return nil, ErrProductUnavailable
	}

	cart, err := s.CurrentCart(identity)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindItem(cart.ID, productID)
	switch {
	case err == nil:
		newQuantity := item.Quantity + quantity
		if newQuantity > product.Stock {
			logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
				"product_id": productID,
				"requested":  newQuantity,
				"available":  product.Stock,
			})
			return nil, ErrInsufficientStock
		}
		item.Quantity = newQuantity
		if err := s.cartRepo.UpdateItem(item); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if quantity > product.Stock {
			logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
				"product_id": productID,
				"requested":  quantity,
				"available":  product.Stock,
			})
			return nil, ErrInsufficientStock
		}
		newItem := &model.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.cartRepo.CreateItem(newItem); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.cartRepo.Touch(cart.ID); err != nil {
		return nil, err
	}
	return s.cartRepo.FindCartByID(cart.ID)
}

// UpdateQuantity sets the line quantity for a product. A quantity of zero or
// less removes the line.
func (s *cartService) UpdateQuantity(identity Identity, productID uint, quantity int) (*model.Cart, error) {
	if !identity.valid() {
		return nil, ErrInvalidIdentity
	}
	if quantity <= 0 {
		return s.RemoveProduct(identity, productID)
	}

	cart, err := s.CurrentCart(identity)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindItem(cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if quantity > product.Stock {
		return nil, ErrInsufficientStock
	}

	item.Quantity = quantity
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Touch(cart.ID); err != nil {
		return nil, err
	}
	return s.cartRepo.FindCartByID(cart.ID)
}

// RemoveProduct drops a product from the cart. Removing a product that is not
// in the cart is a no-op.
func (s *cartService) RemoveProduct(identity Identity, productID uint) (*model.Cart, error) {
	if !identity.valid() {
		return nil, ErrInvalidIdentity
	}

	cart, err := s.CurrentCart(identity)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindItem(cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart, nil
		}
		return nil, err
	}

	if err := s.cartRepo.DeleteItem(item.ID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Touch(cart.ID); err != nil {
		return nil, err
	}
	return s.cartRepo.FindCartByID(cart.ID)
}

// ClearCart removes every line but keeps the cart row so the session or
// customer binding survives.
func (s *cartService) ClearCart(identity Identity) error {
	if !identity.valid() {
		return ErrInvalidIdentity
	}

	cart, err := s.findCart(identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.cartRepo.DeleteItemsByCart(cart.ID); err != nil {
		return err
	}
	return s.cartRepo.Touch(cart.ID)
}

func (s *cartService) Summary(identity Identity) (*CartSummary, error) {
	if !identity.valid() {
		return nil, ErrInvalidIdentity
	}

	cart, err := s.findCart(identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartSummary{ItemCount: 0, Total: decimal.Zero}, nil
		}
		return nil, err
	}

	return &CartSummary{
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}, nil
}

// MergeSessionCart folds an anonymous session cart into the customer's cart
// after login. Quantities for shared products are summed, the session cart is
// deleted. Runs in a single transaction.
func (s *cartService) MergeSessionCart(customerID uint, sessionToken string) error {
	logger.Info("Merging session cart into customer cart", map[string]interface{}{
		"customer_id": customerID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during cart merge, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"customer_id": customerID,
			})
		}
	}()

	var sessionCart model.Cart
	err := tx.Preload("Items").
		Where("session_token = ?", sessionToken).
		Order("updated_at DESC").
		First(&sessionCart).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		logger.Error("Failed to load session cart for merge", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return err
	}

	// An empty session cart has nothing to contribute; leave it alone.
	if sessionCart.IsEmpty() {
		tx.Rollback()
		return nil
	}

	var customerCart model.Cart
	err = tx.Preload("Items").
		Where("customer_id = ?", customerID).
		Order("updated_at DESC").
		First(&customerCart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No customer cart yet, adopt the session cart wholesale.
		err = tx.Model(&model.Cart{}).
			Where("id = ?", sessionCart.ID).
			Updates(map[string]interface{}{
				"customer_id":   customerID,
				"session_token": nil,
			}).Error
		if err != nil {
			tx.Rollback()
			logger.Error("Failed to adopt session cart", err, map[string]interface{}{
				"customer_id": customerID,
			})
			return err
		}
		return tx.Commit().Error
	}
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, sessionItem := range sessionCart.Items {
		var existing model.CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", customerCart.ID, sessionItem.ProductID).
			First(&existing).Error
		switch {
		case err == nil:
			err = tx.Model(&model.CartItem{}).
				Where("id = ?", existing.ID).
				Update("quantity", gorm.Expr("quantity + ?", sessionItem.Quantity)).Error
			if err != nil {
				tx.Rollback()
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = tx.Model(&model.CartItem{}).
				Where("id = ?", sessionItem.ID).
				Update("cart_id", customerCart.ID).Error
			if err != nil {
				tx.Rollback()
				return err
			}
		default:
			tx.Rollback()
			return err
		}
	}

	// Leftover lines on the session cart were merged by quantity, drop them
	// with the cart itself.
	if err := tx.Where("cart_id = ?", sessionCart.ID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.Cart{}, sessionCart.ID).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cart merge", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return err
	}

	logger.Info("Session cart merged successfully", map[string]interface{}{
		"customer_id": customerID,
		"merged_rows": len(sessionCart.Items),
	})
	return nil
}

func (s *cartService) CartsWithItems() ([]model.Cart, error) {
	return s.cartRepo.FindCartsWithItems()
}

// PruneAbandonedSessionCarts deletes anonymous carts idle for longer than the
// given duration and reports how many were removed.
func (s *cartService) PruneAbandonedSessionCarts(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	deleted, err := s.cartRepo.DeleteAbandonedSessionCarts(cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Info("Pruned abandoned session carts", map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff,
		})
	}
	return deleted, nil
}

func (s *cartService) findCart(identity Identity) (*model.Cart, error) {
	if identity.customerID != nil {
		return s.cartRepo.FindActiveByCustomer(*identity.customerID)
	}
	return s.cartRepo.FindActiveBySession(*identity.sessionToken)
}
