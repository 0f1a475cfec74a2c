package db

import (
	"fmt"

	"github.com/roy-rc/sfstore/internal/app/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	if err := testDB.AutoMigrate(
		&model.Customer{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return testDB, nil
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(testDB *gorm.DB) error {
	sqlDB, err := testDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TruncateAllTables removes all rows from every table, for test isolation
func TruncateAllTables(testDB *gorm.DB) error {
	tables := []string{
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"product_categories",
		"product_related",
		"products",
		"categories",
		"customers",
	}
	for _, table := range tables {
		if err := testDB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
