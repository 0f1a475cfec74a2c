package repository

import (
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
	SlugExists(slug string, excludeID uint) (bool, error)
	FindActive() ([]model.Category, error)
	FindRoots() ([]model.Category, error)
	FindChildren(parentID uint) ([]model.Category, error)
	Update(category *model.Category) error
	Delete(id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name": category.Name,
		"slug": category.Slug,
	})

	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
			"slug": category.Slug,
		})
		return err
	}

	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return nil
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find categories", err, nil)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.Preload("Children", "is_active = ?", true).First(&category, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find category by ID", err, map[string]interface{}{
				"category_id": id,
			})
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	logger.Debug("Finding category by slug", map[string]interface{}{
		"slug": slug,
	})

	var category model.Category
	err := r.db.Preload("Children", "is_active = ?", true).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find category by slug", err, map[string]interface{}{
				"slug": slug,
			})
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.Category{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check category slug", err, map[string]interface{}{
			"slug": slug,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) FindActive() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		logger.Error("Failed to find active categories", err, nil)
		return nil, err
	}
	return categories, nil
}

// FindRoots returns active top level categories with their active children preloaded.
func (r *categoryRepository) FindRoots() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Preload("Children", "is_active = ?", true).
		Where("parent_id IS NULL AND is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		logger.Error("Failed to find root categories", err, nil)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindChildren(parentID uint) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		logger.Error("Failed to find child categories", err, map[string]interface{}{
			"parent_id": parentID,
		})
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	logger.Debug("Updating category in database", map[string]interface{}{
		"category_id": category.ID,
	})

	if err := r.db.Save(category).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) Delete(id uint) error {
	logger.Debug("Deleting category from database", map[string]interface{}{
		"category_id": id,
	})

	if err := r.db.Delete(&model.Category{}, id).Error; err != nil {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"category_id": id,
		})
		return err
	}
	return nil
}
