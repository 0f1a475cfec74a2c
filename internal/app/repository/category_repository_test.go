package repository

import (
	"testing"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryRepositoryTest(t *testing.T) (CategoryRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewCategoryRepository(testDB), testDB
}

func TestCategoryRepository_FindRoots_PreloadsActiveChildren(t *testing.T) {
	categoryRepo, _ := setupCategoryRepositoryTest(t)

	home := &model.Category{Name: "Home", Slug: "home", IsActive: true}
	require.NoError(t, categoryRepo.Create(home))

	kitchen := &model.Category{Name: "Kitchen", Slug: "kitchen", ParentID: &home.ID, IsActive: true}
	retired := &model.Category{Name: "Retired", Slug: "retired", ParentID: &home.ID, IsActive: false}
	hidden := &model.Category{Name: "Hidden Root", Slug: "hidden-root", IsActive: false}
	require.NoError(t, categoryRepo.Create(kitchen))
	require.NoError(t, categoryRepo.Create(retired))
	require.NoError(t, categoryRepo.Create(hidden))

	roots, err := categoryRepo.FindRoots()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Home", roots[0].Name)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Kitchen", roots[0].Children[0].Name)
}

func TestCategoryRepository_FindBySlug_ActiveOnly(t *testing.T) {
	categoryRepo, _ := setupCategoryRepositoryTest(t)

	require.NoError(t, categoryRepo.Create(&model.Category{Name: "Kitchen", Slug: "kitchen", IsActive: true}))
	require.NoError(t, categoryRepo.Create(&model.Category{Name: "Hidden", Slug: "hidden", IsActive: false}))

	found, err := categoryRepo.FindBySlug("kitchen")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", found.Name)

	_, err = categoryRepo.FindBySlug("hidden")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCategoryRepository_SlugExists_IncludesSoftDeleted(t *testing.T) {
	categoryRepo, _ := setupCategoryRepositoryTest(t)

	kitchen := &model.Category{Name: "Kitchen", Slug: "kitchen", IsActive: true}
	require.NoError(t, categoryRepo.Create(kitchen))

	exists, err := categoryRepo.SlugExists("kitchen", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = categoryRepo.SlugExists("kitchen", kitchen.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, categoryRepo.Delete(kitchen.ID))
	exists, err = categoryRepo.SlugExists("kitchen", 0)
	require.NoError(t, err)
	assert.True(t, exists)
}
