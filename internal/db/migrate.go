package db

import (
	"github.com/roy-rc/sfstore/internal/app/model"
	appLogger "github.com/roy-rc/sfstore/pkg/logger"
	"gorm.io/gorm"
)

// Migrate runs auto migrations for all models
func Migrate(db *gorm.DB) error {
	appLogger.Info("Running database migrations", nil)

	err := db.AutoMigrate(
		&model.Customer{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	)
	if err != nil {
		appLogger.Error("Database migration failed", err, nil)
		return err
	}

	appLogger.Info("Database migrations completed successfully", nil)
	return nil
}
