package repository

import (
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortName      ProductSort = "name"
	ProductSortCreatedAt ProductSort = "created_at"
)

type ProductFilter struct {
	CategoryID    *uint
	Search        string
	ActiveOnly    bool
	InStockOnly   bool
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	SlugExists(slug string, excludeID uint) (bool, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	FindByCategory(categoryID uint, limit int) ([]model.Product, error)
	FindByCategories(categoryIDs []uint, excludeID uint, limit int) ([]model.Product, error)
	FindRelated(productID uint) ([]model.Product, error)
	FindFeatured(limit int) ([]model.Product, error)
	Search(term string, limit int) ([]model.Product, error)
	Update(product *model.Product) error
	ReplaceCategories(product *model.Product, categories []model.Category) error
	ReplaceRelated(product *model.Product, related []model.Product) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"slug": product.Slug,
		"sku":  product.SKU,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"slug": product.Slug,
			"sku":  product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).Preload("Categories")
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category_id": filter.CategoryID,
		"search":      filter.Search,
		"active_only": filter.ActiveOnly,
		"sort_by":     filter.SortBy,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	query := r.baseQuery()

	if filter.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.InStockOnly {
		query = query.Where("products.stock > ?", 0)
	}
	if filter.CategoryID != nil {
		query = query.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"products.name LIKE ? OR products.description LIKE ? OR products.sku LIKE ?",
			like, like, like,
		)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("products.price " + direction)
	case ProductSortName:
		query = query.Order("products.name " + direction)
	default:
		query = query.Order("products.created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Categories").Preload("Related").First(&product, id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by ID", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	logger.Debug("Finding product by slug", map[string]interface{}{
		"slug": slug,
	})

	var product model.Product
	err := r.db.Preload("Categories").Preload("Related").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by slug", err, map[string]interface{}{
				"slug": slug,
			})
		}
		return nil, err
	}
	return &product, nil
}

// SlugExists reports whether another product already uses the slug.
// Inactive and soft deleted products count, their slugs stay reserved.
func (r *productRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.Product{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check product slug", err, map[string]interface{}{
			"slug": slug,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var products []model.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by IDs", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByCategory(categoryID uint, limit int) ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{
		CategoryID: &categoryID,
		ActiveOnly: true,
		Limit:      limit,
	})
}

// FindByCategories returns active products sharing any of the given categories,
// excluding one product ID. Used for related product fallbacks.
func (r *productRepository) FindByCategories(categoryIDs []uint, excludeID uint, limit int) ([]model.Product, error) {
	if len(categoryIDs) == 0 {
		return []model.Product{}, nil
	}

	query := r.db.Model(&model.Product{}).
		Distinct("products.*").
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id IN ?", categoryIDs).
		Where("products.id <> ?", excludeID).
		Where("products.is_active = ?", true).
		Order("products.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products by categories", err, map[string]interface{}{
			"exclude_id": excludeID,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindRelated(productID uint) ([]model.Product, error) {
	var product model.Product
	err := r.db.Preload("Related", "is_active = ?", true).First(&product, productID).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find related products", err, map[string]interface{}{
				"product_id": productID,
			})
		}
		return nil, err
	}
	return product.Related, nil
}

func (r *productRepository) FindFeatured(limit int) ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{
		ActiveOnly:  true,
		InStockOnly: true,
		SortBy:      ProductSortCreatedAt,
		Limit:       limit,
	})
}

func (r *productRepository) Search(term string, limit int) ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{
		Search:     term,
		ActiveOnly: true,
		Limit:      limit,
	})
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) ReplaceCategories(product *model.Product, categories []model.Category) error {
	if err := r.db.Model(product).Association("Categories").Replace(categories); err != nil {
		logger.Error("Failed to replace product categories", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) ReplaceRelated(product *model.Product, related []model.Product) error {
	if err := r.db.Model(product).Association("Related").Replace(related); err != nil {
		logger.Error("Failed to replace related products", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
