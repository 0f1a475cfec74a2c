package service

import (
	"testing"

	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCategoryServiceTest(t *testing.T) CategoryService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewCategoryService(repository.NewCategoryRepository(testDB))
}

func TestCategoryService_CreateCategory_SlugFromName(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	category, err := categoryService.CreateCategory(CategoryRequest{Name: "Menaje y Decoración"})
	require.NoError(t, err)
	assert.Equal(t, "menaje-y-decoracion", category.Slug)
	assert.True(t, category.IsActive)

	// Same name gets a suffixed slug
	second, err := categoryService.CreateCategory(CategoryRequest{Name: "Menaje y Decoración"})
	require.NoError(t, err)
	assert.Equal(t, "menaje-y-decoracion-2", second.Slug)
}

func TestCategoryService_CreateCategory_InactiveStaysInactive(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	inactive := false
	category, err := categoryService.CreateCategory(CategoryRequest{Name: "Archive", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, category.IsActive)

	_, err = categoryService.GetCategoryBySlug(category.Slug)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_CategoryTree(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	kitchen, err := categoryService.CreateCategory(CategoryRequest{Name: "Kitchen"})
	require.NoError(t, err)
	_, err = categoryService.CreateCategory(CategoryRequest{Name: "Mugs", ParentID: &kitchen.ID})
	require.NoError(t, err)
	_, err = categoryService.CreateCategory(CategoryRequest{Name: "Garden"})
	require.NoError(t, err)

	inactive := false
	_, err = categoryService.CreateCategory(CategoryRequest{Name: "Archive", IsActive: &inactive})
	require.NoError(t, err)

	tree, err := categoryService.CategoryTree()
	require.NoError(t, err)
	require.Len(t, tree, 2)

	byName := map[string][]string{}
	for _, root := range tree {
		var children []string
		for _, child := range root.Children {
			children = append(children, child.Name)
		}
		byName[root.Name] = children
	}
	assert.Equal(t, []string{"Mugs"}, byName["Kitchen"])
	assert.Empty(t, byName["Garden"])
}

func TestCategoryService_GetCategoryBySlug(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	created, err := categoryService.CreateCategory(CategoryRequest{Name: "Kitchen"})
	require.NoError(t, err)

	got, err := categoryService.GetCategoryBySlug("kitchen")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = categoryService.GetCategoryBySlug("missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_UpdateCategory_RejectsSelfParent(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	category, err := categoryService.CreateCategory(CategoryRequest{Name: "Kitchen"})
	require.NoError(t, err)

	_, err = categoryService.UpdateCategory(category.ID, CategoryRequest{ParentID: &category.ID})
	assert.Error(t, err)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	categoryService := setupCategoryServiceTest(t)

	category, err := categoryService.CreateCategory(CategoryRequest{Name: "Kitchen"})
	require.NoError(t, err)

	require.NoError(t, categoryService.DeleteCategory(category.ID))

	_, err = categoryService.GetCategoryByID(category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	err = categoryService.DeleteCategory(99999)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
