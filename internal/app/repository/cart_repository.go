package repository

import (
	"time"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	CreateCart(cart *model.Cart) error
	FindCartByID(id uint) (*model.Cart, error)
	FindActiveByCustomer(customerID uint) (*model.Cart, error)
	FindActiveBySession(token string) (*model.Cart, error)
	FindCartsWithItems() ([]model.Cart, error)
	Touch(cartID uint) error
	DeleteCart(id uint) error
	DeleteAbandonedSessionCarts(olderThan time.Time) (int64, error)

	CreateItem(item *model.CartItem) error
	FindItem(cartID, productID uint) (*model.CartItem, error)
	UpdateItem(item *model.CartItem) error
	DeleteItem(id uint) error
	DeleteItemsByCart(cartID uint) error
	DeleteItemsByProduct(productID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) CreateCart(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"customer_id": cart.CustomerID,
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"customer_id": cart.CustomerID,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}

func (r *cartRepository) FindCartByID(id uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Preload("Items.Product").First(&cart, id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart by ID", err, map[string]interface{}{
				"cart_id": id,
			})
		}
		return nil, err
	}
	return &cart, nil
}

// FindActiveByCustomer returns the customer's most recently updated cart.
// A customer can end up with several carts after merges, the newest one wins.
func (r *cartRepository) FindActiveByCustomer(customerID uint) (*model.Cart, error) {
	logger.Debug("Finding active cart for customer", map[string]interface{}{
		"customer_id": customerID,
	})

	var cart model.Cart
	err := r.db.Preload("Items.Product").
		Where("customer_id = ?", customerID).
		Order("updated_at DESC").
		First(&cart).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find active cart for customer", err, map[string]interface{}{
				"customer_id": customerID,
			})
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindActiveBySession(token string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Preload("Items.Product").
		Where("session_token = ?", token).
		Order("updated_at DESC").
		First(&cart).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find active cart for session", err, nil)
		}
		return nil, err
	}
	return &cart, nil
}

// FindCartsWithItems returns every cart holding at least one item, newest first.
func (r *cartRepository) FindCartsWithItems() ([]model.Cart, error) {
	var carts []model.Cart
	err := r.db.Preload("Items.Product").Preload("Customer").
		Joins("JOIN cart_items ci ON ci.cart_id = carts.id").
		Distinct("carts.*").
		Order("carts.updated_at DESC").
		Find(&carts).Error
	if err != nil {
		logger.Error("Failed to find carts with items", err, nil)
		return nil, err
	}
	return carts, nil
}

func (r *cartRepository) Touch(cartID uint) error {
	err := r.db.Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", time.Now()).Error
	if err != nil {
		logger.Error("Failed to touch cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteCart(id uint) error {
	logger.Debug("Deleting cart from database", map[string]interface{}{
		"cart_id": id,
	})

	if err := r.db.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items for cart", err, map[string]interface{}{
			"cart_id": id,
		})
		return err
	}
	if err := r.db.Delete(&model.Cart{}, id).Error; err != nil {
		logger.Error("Failed to delete cart from database", err, map[string]interface{}{
			"cart_id": id,
		})
		return err
	}
	return nil
}

// DeleteAbandonedSessionCarts removes anonymous carts untouched since the cutoff.
// Customer carts are kept regardless of age.
func (r *cartRepository) DeleteAbandonedSessionCarts(olderThan time.Time) (int64, error) {
	logger.Debug("Deleting abandoned session carts", map[string]interface{}{
		"older_than": olderThan,
	})

	err := r.db.Where(
		"cart_id IN (?)",
		r.db.Model(&model.Cart{}).Select("id").
			Where("customer_id IS NULL AND updated_at < ?", olderThan),
	).Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to delete abandoned cart items", err, nil)
		return 0, err
	}

	result := r.db.Where("customer_id IS NULL AND updated_at < ?", olderThan).
		Delete(&model.Cart{})
	if result.Error != nil {
		logger.Error("Failed to delete abandoned session carts", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindItem(cartID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart item", err, map[string]interface{}{
				"cart_id":    cartID,
				"product_id": productID,
			})
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) UpdateItem(item *model.CartItem) error {
	logger.Debug("Updating cart item in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})

	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(id uint) error {
	if err := r.db.Delete(&model.CartItem{}, id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItemsByCart(cartID uint) error {
	logger.Debug("Deleting all items for cart", map[string]interface{}{
		"cart_id": cartID,
	})

	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete items for cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}

// DeleteItemsByProduct removes a product from every cart, used when the
// product is deactivated or deleted.
func (r *cartRepository) DeleteItemsByProduct(productID uint) error {
	logger.Debug("Deleting cart items for product", map[string]interface{}{
		"product_id": productID,
	})

	if err := r.db.Where("product_id = ?", productID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items for product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}
