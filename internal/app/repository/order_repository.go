package repository

import (
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByNumber(orderNumber string) (*model.Order, error)
	FindByCustomer(customerID uint) ([]model.Order, error)
	FindAll() ([]model.Order, error)
	FindByStatus(status model.OrderStatus) ([]model.Order, error)
	FindRecent(limit int) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	Stats() (*model.OrderStats, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"total":        order.Total.String(),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_number": order.OrderNumber,
			"customer_id":  order.CustomerID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items.Product").Preload("Customer").First(&order, id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by ID", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByNumber(orderNumber string) (*model.Order, error) {
	logger.Debug("Finding order by number", map[string]interface{}{
		"order_number": orderNumber,
	})

	var order model.Order
	err := r.db.Preload("Items.Product").Preload("Customer").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by number", err, map[string]interface{}{
				"order_number": orderNumber,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByCustomer(customerID uint) ([]model.Order, error) {
	logger.Debug("Finding orders for customer", map[string]interface{}{
		"customer_id": customerID,
	})

	var orders []model.Order
	err := r.db.Preload("Items.Product").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders for customer", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items.Product").Preload("Customer").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find all orders", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByStatus(status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items.Product").Preload("Customer").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by status", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindRecent(limit int) ([]model.Order, error) {
	query := r.db.Preload("Items.Product").Preload("Customer").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to find recent orders", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	result := r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) Stats() (*model.OrderStats, error) {
	logger.Debug("Computing order statistics", nil)

	stats := &model.OrderStats{}
	if err := r.db.Model(&model.Order{}).Count(&stats.Total).Error; err != nil {
		logger.Error("Failed to count orders", err, nil)
		return nil, err
	}

	counts := []struct {
		status model.OrderStatus
		target *int64
	}{
		{model.OrderStatusPending, &stats.Pending},
		{model.OrderStatusProcessing, &stats.Processing},
		{model.OrderStatusShipped, &stats.Shipped},
		{model.OrderStatusDelivered, &stats.Delivered},
		{model.OrderStatusCancelled, &stats.Cancelled},
	}
	for _, c := range counts {
		err := r.db.Model(&model.Order{}).
			Where("status = ?", c.status).
			Count(c.target).Error
		if err != nil {
			logger.Error("Failed to count orders by status", err, map[string]interface{}{
				"status": c.status,
			})
			return nil, err
		}
	}
	return stats, nil
}
