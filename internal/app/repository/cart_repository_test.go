package repository

import (
	"testing"
	"time"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) (CartRepository, *gorm.DB, *model.Customer, *model.Product) {
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

	product := &model.Product{
		Name:     "Ceramic Mug",
		Slug:     "ceramic-mug",
		SKU:      "MUG-001",
		Price:    decimal.RequireFromString("12.50"),
		Stock:    10,
		IsActive: true,
	}
	testDB.Create(product)

	return NewCartRepository(testDB), testDB, customer, product
}

func TestCartRepository_FindActiveByCustomer_NewestWins(t *testing.T) {
	cartRepo, testDB, customer, _ := setupCartRepositoryTest(t)

	older := &model.Cart{CustomerID: &customer.ID}
	require.NoError(t, cartRepo.CreateCart(older))
	newer := &model.Cart{CustomerID: &customer.ID}
	require.NoError(t, cartRepo.CreateCart(newer))

	// Make the timestamps unambiguous
	testDB.Model(&model.Cart{}).Where("id = ?", older.ID).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour))

	cart, err := cartRepo.FindActiveByCustomer(customer.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, cart.ID)
}

func TestCartRepository_FindActiveBySession(t *testing.T) {
	cartRepo, _, _, _ := setupCartRepositoryTest(t)

	token := "guest-token"
	cart := &model.Cart{SessionToken: &token}
	require.NoError(t, cartRepo.CreateCart(cart))

	found, err := cartRepo.FindActiveBySession(token)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)

	_, err = cartRepo.FindActiveBySession("unknown-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_ItemLifecycle(t *testing.T) {
	cartRepo, _, customer, product := setupCartRepositoryTest(t)

	cart := &model.Cart{CustomerID: &customer.ID}
	require.NoError(t, cartRepo.CreateCart(cart))

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, cartRepo.CreateItem(item))

	found, err := cartRepo.FindItem(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Quantity)

	found.Quantity = 5
	require.NoError(t, cartRepo.UpdateItem(found))

	loaded, err := cartRepo.FindCartByID(cart.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 5, loaded.Items[0].Quantity)
	// Items preload the product
	assert.Equal(t, "Ceramic Mug", loaded.Items[0].Product.Name)

	require.NoError(t, cartRepo.DeleteItem(found.ID))
	_, err = cartRepo.FindItem(cart.ID, product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_DeleteItemsByProduct(t *testing.T) {
	cartRepo, testDB, customer, product := setupCartRepositoryTest(t)

	token := "guest-token"
	customerCart := &model.Cart{CustomerID: &customer.ID}
	sessionCart := &model.Cart{SessionToken: &token}
	require.NoError(t, cartRepo.CreateCart(customerCart))
	require.NoError(t, cartRepo.CreateCart(sessionCart))

	require.NoError(t, cartRepo.CreateItem(&model.CartItem{CartID: customerCart.ID, ProductID: product.ID, Quantity: 1}))
	require.NoError(t, cartRepo.CreateItem(&model.CartItem{CartID: sessionCart.ID, ProductID: product.ID, Quantity: 2}))

	require.NoError(t, cartRepo.DeleteItemsByProduct(product.ID))

	var count int64
	testDB.Model(&model.CartItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestCartRepository_FindCartsWithItems(t *testing.T) {
	cartRepo, _, customer, product := setupCartRepositoryTest(t)

	empty := &model.Cart{CustomerID: &customer.ID}
	require.NoError(t, cartRepo.CreateCart(empty))

	token := "guest-token"
	full := &model.Cart{SessionToken: &token}
	require.NoError(t, cartRepo.CreateCart(full))
	require.NoError(t, cartRepo.CreateItem(&model.CartItem{CartID: full.ID, ProductID: product.ID, Quantity: 1}))

	carts, err := cartRepo.FindCartsWithItems()
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.Equal(t, full.ID, carts[0].ID)
}

func TestCartRepository_DeleteAbandonedSessionCarts(t *testing.T) {
	cartRepo, testDB, customer, product := setupCartRepositoryTest(t)

	token := "stale-token"
	fresh := "fresh-token"
	staleCart := &model.Cart{SessionToken: &token}
	freshCart := &model.Cart{SessionToken: &fresh}
	customerCart := &model.Cart{CustomerID: &customer.ID}
	require.NoError(t, cartRepo.CreateCart(staleCart))
	require.NoError(t, cartRepo.CreateCart(freshCart))
	require.NoError(t, cartRepo.CreateCart(customerCart))
	require.NoError(t, cartRepo.CreateItem(&model.CartItem{CartID: staleCart.ID, ProductID: product.ID, Quantity: 1}))

	stale := time.Now().Add(-48 * time.Hour)
	testDB.Model(&model.Cart{}).Where("id IN ?", []uint{staleCart.ID, customerCart.ID}).
		UpdateColumn("updated_at", stale)

	deleted, err := cartRepo.DeleteAbandonedSessionCarts(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var carts []model.Cart
	testDB.Find(&carts)
	assert.Len(t, carts, 2)

	// The stale cart's items went with it
	var items int64
	testDB.Model(&model.CartItem{}).Count(&items)
	assert.Zero(t, items)
}
