package service

import (
	"testing"
	"time"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/internal/db"
	"github.com/roy-rc/sfstore/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.Customer, *model.Product, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo, testDB)

	customer := &model.Customer{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		FirstName:    "Ana",
		LastName:     "Torres",
		Role:         model.RoleCustomer,
	}
	testDB.Create(customer)

	mug := &model.Product{
		Name:     "Ceramic Mug",
		Slug:     "ceramic-mug",
		SKU:      "MUG-001",
		Price:    decimal.RequireFromString("12.50"),
		Stock:    10,
		IsActive: true,
	}
	testDB.Create(mug)

	napkin := &model.Product{
		Name:     "Linen Napkin",
		Slug:     "linen-napkin",
		SKU:      "NAP-001",
		Price:    decimal.RequireFromString("4.00"),
		Stock:    20,
		IsActive: true,
	}
	testDB.Create(napkin)

	return cartService, testDB, customer, mug, napkin
}

func TestCartService_CurrentCart_CreatesOnFirstAccess(t *testing.T) {
	cartService, testDB, customer, _, _ := setupCartServiceTest(t)

	cart, err := cartService.CurrentCart(CustomerIdentity(customer.ID))
	require.NoError(t, err)
	assert.NotZero(t, cart.ID)
	assert.True(t, cart.IsEmpty())

	// Second access returns the same cart, not a new one
	again, err := cartService.CurrentCart(CustomerIdentity(customer.ID))
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	var count int64
	testDB.Model(&model.Cart{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCartService_AddProduct_MergesQuantities(t *testing.T) {
	cartService, _, customer, mug, _ := setupCartServiceTest(t)
	identity := CustomerIdentity(customer.ID)

	cart, err := cartService.AddProduct(identity, mug.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// Adding the same product increments the existing line
	cart, err = cartService.AddProduct(identity, mug.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 5, cart.ItemCount())
}

func TestCartService_AddProduct_Validation(t *testing.T) {
	cartService, testDB, customer, mug, _ := setupCartServiceTest(t)
	identity := CustomerIdentity(customer.ID)

	_, err := cartService.AddProduct(identity, mug.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = cartService.AddProduct(identity, 99999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = cartService.AddProduct(identity, mug.ID, 11)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Incrementing past stock is also rejected
	_, err = cartService.AddProduct(identity, mug.ID, 8)
	require.NoError(t, err)
	_, err = cartService.AddProduct(identity, mug.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	testDB.Model(&model.Product{}).Where("id = ?", mug.ID).Update("is_active", false)
	_, err = cartService.AddProduct(identity, mug.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	cartService, _, customer, mug, _ := setupCartServiceTest(t)
	identity := CustomerIdentity(customer.ID)

	_, err := cartService.AddProduct(identity, mug.ID, 2)
	require.NoError(t, err)

	cart, err := cartService.UpdateQuantity(identity, mug.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	_, err = cartService.UpdateQuantity(identity, mug.ID, 11)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Zero removes the line
	cart, err = cartService.UpdateQuantity(identity, mug.ID, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_RemoveProduct_Idempotent(t *testing.T) {
	cartService, _, customer, mug, napkin := setupCartServiceTest(t)
	identity := CustomerIdentity(customer.ID)

	_, err := cartService.AddProduct(identity, mug.ID, 1)
	require.NoError(t, err)

	cart, err := cartService.RemoveProduct(identity, mug.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// Removing again, or removing something never added, is a no-op
	_, err = cartService.RemoveProduct(identity, mug.ID)
	assert.NoError(t, err)
	_, err = cartService.RemoveProduct(identity, napkin.ID)
	assert.NoError(t, err)
}

func TestCartService_ClearCart_KeepsCartRow(t *testing.T) {
	cartService, testDB, customer, mug, napkin := setupCartServiceTest(t)
	identity := CustomerIdentity(customer.ID)

	_, err := cartService.AddProduct(identity, mug.ID, 2)
	require.NoError(t, err)
	_, err = cartService.AddProduct(identity, napkin.ID, 1)
	require.NoError(t, err)

	require.NoError(t, cartService.ClearCart(identity))

	cart, err := cartService.CurrentCart(identity)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	var count int64
	testDB.Model(&model.Cart{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCartService_Summary(t *testing.T) {
	cartService, _, customer, mug, napkin := setupCartServiceTest(t)
	identity := CustomerIdentity(customer.ID)

	// No cart yet: zeros, and no cart is created
	summary, err := cartService.Summary(identity)
	require.NoError(t, err)
	assert.Zero(t, summary.ItemCount)
	assert.True(t, summary.Total.IsZero())

	_, err = cartService.AddProduct(identity, mug.ID, 2)
	require.NoError(t, err)
	_, err = cartService.AddProduct(identity, napkin.ID, 3)
	require.NoError(t, err)

	summary, err = cartService.Summary(identity)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.ItemCount)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("37.00")), "total = %s", summary.Total)
}

func TestCartService_SessionIdentity(t *testing.T) {
	cartService, _, _, mug, _ := setupCartServiceTest(t)
	identity := SessionIdentity(util.NewSessionToken())

	cart, err := cartService.AddProduct(identity, mug.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, cart.CustomerID)
	assert.Equal(t, 2, cart.ItemCount())
}

func TestCartService_InvalidIdentity(t *testing.T) {
	cartService, _, _, _, _ := setupCartServiceTest(t)

	_, err := cartService.CurrentCart(Identity{})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestCartService_MergeSessionCart_SumsSharedLines(t *testing.T) {
	cartService, testDB, customer, mug, napkin := setupCartServiceTest(t)

	token := util.NewSessionToken()
	session := SessionIdentity(token)
	account := CustomerIdentity(customer.ID)

	// Guest cart: mug x2, napkin x1. Customer cart: mug x3.
	_, err := cartService.AddProduct(session, mug.ID, 2)
	require.NoError(t, err)
	_, err = cartService.AddProduct(session, napkin.ID, 1)
	require.NoError(t, err)
	_, err = cartService.AddProduct(account, mug.ID, 3)
	require.NoError(t, err)

	require.NoError(t, cartService.MergeSessionCart(customer.ID, token))

	cart, err := cartService.CurrentCart(account)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 5, quantityOf(cart, mug.ID))
	assert.Equal(t, 1, quantityOf(cart, napkin.ID))

	// The session cart is gone
	var count int64
	testDB.Model(&model.Cart{}).Where("session_token = ?", token).Count(&count)
	assert.Zero(t, count)
}

func TestCartService_MergeSessionCart_AdoptsWhenNoCustomerCart(t *testing.T) {
	cartService, testDB, customer, mug, _ := setupCartServiceTest(t)

	token := util.NewSessionToken()
	_, err := cartService.AddProduct(SessionIdentity(token), mug.ID, 4)
	require.NoError(t, err)

	require.NoError(t, cartService.MergeSessionCart(customer.ID, token))

	cart, err := cartService.CurrentCart(CustomerIdentity(customer.ID))
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ItemCount())

	// Exactly one cart remains and it is bound to the customer
	var carts []model.Cart
	testDB.Find(&carts)
	require.Len(t, carts, 1)
	require.NotNil(t, carts[0].CustomerID)
	assert.Equal(t, customer.ID, *carts[0].CustomerID)
	assert.Nil(t, carts[0].SessionToken)
}

func TestCartService_MergeSessionCart_NoSessionCart(t *testing.T) {
	cartService, _, customer, _, _ := setupCartServiceTest(t)

	assert.NoError(t, cartService.MergeSessionCart(customer.ID, util.NewSessionToken()))
}

func TestCartService_MergeSessionCart_EmptySessionCartIsNoOp(t *testing.T) {
	cartService, testDB, customer, _, _ := setupCartServiceTest(t)

	token := util.NewSessionToken()
	sessionCart, err := cartService.CurrentCart(SessionIdentity(token))
	require.NoError(t, err)

	require.NoError(t, cartService.MergeSessionCart(customer.ID, token))

	// The empty session cart is neither adopted nor deleted
	var stored model.Cart
	require.NoError(t, testDB.First(&stored, sessionCart.ID).Error)
	assert.Nil(t, stored.CustomerID)
	require.NotNil(t, stored.SessionToken)
	assert.Equal(t, token, *stored.SessionToken)

	var customerCarts int64
	testDB.Model(&model.Cart{}).Where("customer_id = ?", customer.ID).Count(&customerCarts)
	assert.Zero(t, customerCarts)
}

func TestCartService_PruneAbandonedSessionCarts(t *testing.T) {
	cartService, testDB, customer, mug, _ := setupCartServiceTest(t)

	token := util.NewSessionToken()
	_, err := cartService.AddProduct(SessionIdentity(token), mug.ID, 1)
	require.NoError(t, err)
	_, err = cartService.AddProduct(CustomerIdentity(customer.ID), mug.ID, 1)
	require.NoError(t, err)

	// Age both carts past the cutoff
	stale := time.Now().Add(-60 * 24 * time.Hour)
	testDB.Model(&model.Cart{}).Where("1 = 1").UpdateColumn("updated_at", stale)

	deleted, err := cartService.PruneAbandonedSessionCarts(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Customer cart survives regardless of age
	var carts []model.Cart
	testDB.Find(&carts)
	require.Len(t, carts, 1)
	assert.NotNil(t, carts[0].CustomerID)
}

func quantityOf(cart *model.Cart, productID uint) int {
	if item := cart.FindItem(productID); item != nil {
		return item.Quantity
	}
	return 0
}
