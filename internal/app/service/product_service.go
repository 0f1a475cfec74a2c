package service

import (
	"errors"
	"fmt"

	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/pkg/logger"
	"github.com/roy-rc/sfstore/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultRelatedLimit  = 4
	defaultFeaturedLimit = 8
	defaultSearchLimit   = 50
)

var ErrInvalidProduct = errors.New("product requires a name, an SKU and a positive price")

// ProductRequest carries create and update payloads. On update, nil or empty
// fields keep their current value.
type ProductRequest struct {
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock"`
	IsActive    *bool           `json:"is_active"`
	Image       string          `json:"image"`
	Images      []string        `json:"images"`
	CategoryIDs []uint          `json:"category_ids"`
	RelatedIDs  []uint          `json:"related_ids"`
}

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	SearchProducts(term string, limit int) ([]model.Product, error)
	FeaturedProducts(limit int) ([]model.Product, error)
	RelatedProducts(productID uint, limit int) ([]model.Product, error)
	CreateProduct(req ProductRequest) (*model.Product, error)
	UpdateProduct(id uint, req ProductRequest) (*model.Product, error)
	DeleteProduct(id uint) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cartRepo     repository.CartRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cartRepo repository.CartRepository,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
	}
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindWithFilter(filter)
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) SearchProducts(term string, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	logger.Debug("Searching products", map[string]interface{}{
		"term":  term,
		"limit": limit,
	})
	return s.productRepo.Search(term, limit)
}

func (s *productService) FeaturedProducts(limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	return s.productRepo.FindFeatured(limit)
}

// RelatedProducts returns curated related products first, then fills the
// remaining slots with active products from the same categories. Duplicates
// and the product itself are excluded.
func (s *productService) RelatedProducts(productID uint, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	seen := map[uint]bool{productID: true}
	related := make([]model.Product, 0, limit)
	for _, p := range product.Related {
		if len(related) >= limit {
			break
		}
		if seen[p.ID] || !p.IsActive {
			continue
		}
		seen[p.ID] = true
		related = append(related, p)
	}

	if len(related) < limit && len(product.Categories) > 0 {
		categoryIDs := make([]uint, 0, len(product.Categories))
		for _, c := range product.Categories {
			categoryIDs = append(categoryIDs, c.ID)
		}

		fallback, err := s.productRepo.FindByCategories(categoryIDs, productID, limit)
		if err != nil {
			return nil, err
		}
		for _, p := range fallback {
			if len(related) >= limit {
				break
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			related = append(related, p)
		}
	}

	return related, nil
}

func (s *productService) CreateProduct(req ProductRequest) (*model.Product, error) {
	if req.Name == "" || req.SKU == "" || !req.Price.IsPositive() {
		return nil, ErrInvalidProduct
	}

	logger.Info("Creating product", map[string]interface{}{
		"name": req.Name,
		"sku":  req.SKU,
	})

	slug, err := s.uniqueSlug(req.Name, 0)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:     req.Name,
		Slug:     slug,
		SKU:      req.SKU,
		Price:    req.Price,
		IsActive: true,
		Image:    req.Image,
		Images:   req.Images,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	if err := s.applyAssociations(product, req); err != nil {
		return nil, err
	}
	return s.productRepo.FindByID(product.ID)
}

func (s *productService) UpdateProduct(id uint, req ProductRequest) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if req.Name != "" && req.Name != product.Name {
		slug, err := s.uniqueSlug(req.Name, product.ID)
		if err != nil {
			return nil, err
		}
		product.Name = req.Name
		product.Slug = slug
	}
	if req.SKU != "" {
		product.SKU = req.SKU
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if !req.Price.IsZero() {
		product.Price = req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.Image != "" {
		product.Image = req.Image
	}
	if req.Images != nil {
		product.Images = req.Images
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	if err := s.applyAssociations(product, req); err != nil {
		return nil, err
	}

	// Deactivating a product pulls it out of every open cart.
	if !product.IsActive {
		if err := s.cartRepo.DeleteItemsByProduct(product.ID); err != nil {
			return nil, err
		}
	}
	return s.productRepo.FindByID(product.ID)
}

func (s *productService) DeleteProduct(id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.cartRepo.DeleteItemsByProduct(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}

func (s *productService) applyAssociations(product *model.Product, req ProductRequest) error {
	if req.CategoryIDs != nil {
		categories := make([]model.Category, 0, len(req.CategoryIDs))
		for _, id := range req.CategoryIDs {
			category, err := s.categoryRepo.FindByID(id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCategoryNotFound
				}
				return err
			}
			categories = append(categories, *category)
		}
		if err := s.productRepo.ReplaceCategories(product, categories); err != nil {
			return err
		}
	}

	if req.RelatedIDs != nil {
		related, err := s.productRepo.FindByIDs(req.RelatedIDs)
		if err != nil {
			return err
		}
		if err := s.productRepo.ReplaceRelated(product, related); err != nil {
			return err
		}
	}
	return nil
}

// uniqueSlug derives a slug from the name, appending a numeric suffix when the
// base slug is taken by another product.
func (s *productService) uniqueSlug(name string, selfID uint) (string, error) {
	base := util.Slugify(name)
	slug := base
	for i := 2; ; i++ {
		taken, err := s.productRepo.SlugExists(slug, selfID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
