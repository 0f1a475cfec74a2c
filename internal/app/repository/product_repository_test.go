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

func setupProductRepositoryTest(t *testing.T) (ProductRepository, CategoryRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewProductRepository(testDB), NewCategoryRepository(testDB), testDB
}

func seedProduct(t *testing.T, repo ProductRepository, name, slug, sku string, price string, stock int, active bool) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:     name,
		Slug:     slug,
		SKU:      sku,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: active,
	}
	require.NoError(t, repo.Create(product))
	return product
}

func TestProductRepository_FindBySlug_ActiveOnly(t *testing.T) {
	productRepo, _, _ := setupProductRepositoryTest(t)

	seedProduct(t, productRepo, "Ceramic Mug", "ceramic-mug", "MUG-001", "12.50", 10, true)
	seedProduct(t, productRepo, "Old Teapot", "old-teapot", "TEA-001", "30.00", 5, false)

	found, err := productRepo.FindBySlug("ceramic-mug")
	require.NoError(t, err)
	assert.Equal(t, "Ceramic Mug", found.Name)

	_, err = productRepo.FindBySlug("old-teapot")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_SlugExists_IncludesSoftDeleted(t *testing.T) {
	productRepo, _, _ := setupProductRepositoryTest(t)

	product := seedProduct(t, productRepo, "Ceramic Mug", "ceramic-mug", "MUG-001", "12.50", 10, true)

	exists, err := productRepo.SlugExists("ceramic-mug", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	// The product itself is excluded
	exists, err = productRepo.SlugExists("ceramic-mug", product.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Soft-deleted products keep their slug reserved
	require.NoError(t, productRepo.Delete(product.ID))
	exists, err = productRepo.SlugExists("ceramic-mug", 0)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	productRepo, categoryRepo, _ := setupProductRepositoryTest(t)

	kitchen := &model.Category{Name: "Kitchen", Slug: "kitchen", IsActive: true}
	require.NoError(t, categoryRepo.Create(kitchen))

	mug := seedProduct(t, productRepo, "Ceramic Mug", "ceramic-mug", "MUG-001", "12.50", 10, true)
	teapot := seedProduct(t, productRepo, "Iron Teapot", "iron-teapot", "TEA-001", "45.00", 0, true)
	seedProduct(t, productRepo, "Hidden Vase", "hidden-vase", "VAS-001", "20.00", 3, false)

	require.NoError(t, productRepo.ReplaceCategories(mug, []model.Category{*kitchen}))
	require.NoError(t, productRepo.ReplaceCategories(teapot, []model.Category{*kitchen}))

	t.Run("active only", func(t *testing.T) {
		products, err := productRepo.FindWithFilter(ProductFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("in stock only", func(t *testing.T) {
		products, err := productRepo.FindWithFilter(ProductFilter{ActiveOnly: true, InStockOnly: true})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, mug.ID, products[0].ID)
	})

	t.Run("by category", func(t *testing.T) {
		products, err := productRepo.FindWithFilter(ProductFilter{CategoryID: &kitchen.ID, ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("search term", func(t *testing.T) {
		products, err := productRepo.FindWithFilter(ProductFilter{Search: "teapot", ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, teapot.ID, products[0].ID)
	})

	t.Run("sorted by price ascending", func(t *testing.T) {
		products, err := productRepo.FindWithFilter(ProductFilter{
			ActiveOnly:    true,
			SortBy:        ProductSortPrice,
			SortAscending: true,
		})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, mug.ID, products[0].ID)
		assert.Equal(t, teapot.ID, products[1].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		products, err := productRepo.FindWithFilter(ProductFilter{
			ActiveOnly:    true,
			SortBy:        ProductSortPrice,
			SortAscending: true,
			Limit:         1,
			Offset:        1,
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, teapot.ID, products[0].ID)
	})
}

func TestProductRepository_Search(t *testing.T) {
	productRepo, _, _ := setupProductRepositoryTest(t)

	mug := seedProduct(t, productRepo, "Ceramic Mug", "ceramic-mug", "MUG-001", "12.50", 10, true)
	seedProduct(t, productRepo, "Iron Teapot", "iron-teapot", "TEA-001", "45.00", 5, true)

	bySKU, err := productRepo.Search("MUG-0", 10)
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
	assert.Equal(t, mug.ID, bySKU[0].ID)

	byName, err := productRepo.Search("ceramic", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, mug.ID, byName[0].ID)
}

func TestProductRepository_FindByCategories_ExcludesProduct(t *testing.T) {
	productRepo, categoryRepo, _ := setupProductRepositoryTest(t)

	kitchen := &model.Category{Name: "Kitchen", Slug: "kitchen", IsActive: true}
	require.NoError(t, categoryRepo.Create(kitchen))

	mug := seedProduct(t, productRepo, "Ceramic Mug", "ceramic-mug", "MUG-001", "12.50", 10, true)
	teapot := seedProduct(t, productRepo, "Iron Teapot", "iron-teapot", "TEA-001", "45.00", 5, true)
	inactive := seedProduct(t, productRepo, "Hidden Vase", "hidden-vase", "VAS-001", "20.00", 3, false)

	require.NoError(t, productRepo.ReplaceCategories(mug, []model.Category{*kitchen}))
	require.NoError(t, productRepo.ReplaceCategories(teapot, []model.Category{*kitchen}))
	require.NoError(t, productRepo.ReplaceCategories(inactive, []model.Category{*kitchen}))

	siblings, err := productRepo.FindByCategories([]uint{kitchen.ID}, mug.ID, 4)
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, teapot.ID, siblings[0].ID)
}

func TestProductRepository_ReplaceRelated(t *testing.T) {
	productRepo, _, _ := setupProductRepositoryTest(t)

	mug := seedProduct(t, productRepo, "Ceramic Mug", "ceramic-mug", "MUG-001", "12.50", 10, true)
	teapot := seedProduct(t, productRepo, "Iron Teapot", "iron-teapot", "TEA-001", "45.00", 5, true)
	vase := seedProduct(t, productRepo, "Glass Vase", "glass-vase", "VAS-001", "20.00", 3, true)

	require.NoError(t, productRepo.ReplaceRelated(mug, []model.Product{*teapot}))

	related, err := productRepo.FindRelated(mug.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, teapot.ID, related[0].ID)

	require.NoError(t, productRepo.ReplaceRelated(mug, []model.Product{*vase}))

	related, err = productRepo.FindRelated(mug.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, vase.ID, related[0].ID)
}
