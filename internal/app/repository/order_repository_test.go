package repository

import (
	"testing"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (OrderRepository, *gorm.DB, *model.Customer) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	customer := &model.Customer{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		FirstName:    "Ana",
		LastName:     "Torres",
		Role:         model.RoleCustomer,
	}
	testDB.Create(customer)

	return NewOrderRepository(testDB), testDB, customer
}

func seedOrder(t *testing.T, testDB *gorm.DB, customerID uint, number string, status model.OrderStatus) *model.Order {
	t.Helper()
	order := &model.Order{
		OrderNumber:     number,
		CustomerID:      customerID,
		Total:           decimal.RequireFromString("25.00"),
		Status:          status,
		CustomerName:    "Ana Torres",
		CustomerEmail:   "shopper@example.com",
		ShippingAddress: "Calle Mayor 1, Madrid",
	}
	require.NoError(t, testDB.Create(order).Error)
	return order
}

func TestOrderRepository_FindByNumber(t *testing.T) {
	orderRepo, testDB, customer := setupOrderRepositoryTest(t)

	order := seedOrder(t, testDB, customer.ID, "ORD-2026-AB12CD", model.OrderStatusPending)

	found, err := orderRepo.FindByNumber("ORD-2026-AB12CD")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	// The customer relation is preloaded for admin views
	assert.Equal(t, "shopper@example.com", found.Customer.Email)

	_, err = orderRepo.FindByNumber("ORD-2026-FFFFFF")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByCustomer_NewestFirst(t *testing.T) {
	orderRepo, testDB, customer := setupOrderRepositoryTest(t)

	other := &model.Customer{
		Email:        "other@example.com",
		PasswordHash: "hash",
		FirstName:    "Luis",
		LastName:     "Marin",
		Role:         model.RoleCustomer,
	}
	testDB.Create(other)

	first := seedOrder(t, testDB, customer.ID, "ORD-2026-000001", model.OrderStatusPending)
	second := seedOrder(t, testDB, customer.ID, "ORD-2026-000002", model.OrderStatusPending)
	seedOrder(t, testDB, other.ID, "ORD-2026-000003", model.OrderStatusPending)

	orders, err := orderRepo.FindByCustomer(customer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	orderRepo, testDB, customer := setupOrderRepositoryTest(t)

	order := seedOrder(t, testDB, customer.ID, "ORD-2026-AB12CD", model.OrderStatusPending)

	require.NoError(t, orderRepo.UpdateStatus(order.ID, model.OrderStatusShipped))

	found, err := orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, found.Status)

	err = orderRepo.UpdateStatus(9999, model.OrderStatusShipped)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByStatus(t *testing.T) {
	orderRepo, testDB, customer := setupOrderRepositoryTest(t)

	seedOrder(t, testDB, customer.ID, "ORD-2026-000001", model.OrderStatusPending)
	shipped := seedOrder(t, testDB, customer.ID, "ORD-2026-000002", model.OrderStatusShipped)

	orders, err := orderRepo.FindByStatus(model.OrderStatusShipped)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, shipped.ID, orders[0].ID)
}

func TestOrderRepository_FindRecent(t *testing.T) {
	orderRepo, testDB, customer := setupOrderRepositoryTest(t)

	seedOrder(t, testDB, customer.ID, "ORD-2026-000001", model.OrderStatusPending)
	seedOrder(t, testDB, customer.ID, "ORD-2026-000002", model.OrderStatusPending)
	third := seedOrder(t, testDB, customer.ID, "ORD-2026-000003", model.OrderStatusPending)

	orders, err := orderRepo.FindRecent(2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, third.ID, orders[0].ID)
}

func TestOrderRepository_Stats(t *testing.T) {
	orderRepo, testDB, customer := setupOrderRepositoryTest(t)

	seedOrder(t, testDB, customer.ID, "ORD-2026-000001", model.OrderStatusPending)
	seedOrder(t, testDB, customer.ID, "ORD-2026-000002", model.OrderStatusPending)
	seedOrder(t, testDB, customer.ID, "ORD-2026-000003", model.OrderStatusDelivered)
	seedOrder(t, testDB, customer.ID, "ORD-2026-000004", model.OrderStatusCancelled)

	stats, err := orderRepo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Delivered)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Zero(t, stats.Shipped)
}
