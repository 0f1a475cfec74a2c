package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/internal/app/service"
	apperrors "github.com/roy-rc/sfstore/internal/errors"
	"github.com/roy-rc/sfstore/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// List handles GET /api/products
func (ctrl *ProductController) List(c *gin.Context) {
	filter := repository.ProductFilter{
		ActiveOnly: true,
		Search:     c.Query("search"),
	}

	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := strconv.ParseUint(categoryID, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category ID")
			return
		}
		cid := uint(id)
		filter.CategoryID = &cid
	}
	if sortBy := c.Query("sort"); sortBy != "" {
		filter.SortBy = repository.ProductSort(sortBy)
	}
	filter.SortAscending = c.Query("order") == "asc"
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list products", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// Search handles GET /api/products/search
func (ctrl *ProductController) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A search term is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	products, err := ctrl.productService.SearchProducts(term, limit)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Product search failed", err, map[string]interface{}{
			"term": term,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"query":    term,
	})
}

// Featured handles GET /api/products/featured
func (ctrl *ProductController) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	products, err := ctrl.productService.FeaturedProducts(limit)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load featured products", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetBySlug handles GET /api/products/:slug
func (ctrl *ProductController) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	product, err := ctrl.productService.GetProductBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Related handles GET /api/products/:slug/related
func (ctrl *ProductController) Related(c *gin.Context) {
	slug := c.Param("slug")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	product, err := ctrl.productService.GetProductBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	related, err := ctrl.productService.RelatedProducts(product.ID, limit)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load related products", err, map[string]interface{}{
			"product_id": product.ID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": related})
}

// AdminList handles GET /api/admin/products, inactive products included.
func (ctrl *ProductController) AdminList(c *gin.Context) {
	filter := repository.ProductFilter{
		Search: c.Query("search"),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list products for admin", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// AdminGet handles GET /api/admin/products/:id
func (ctrl *ProductController) AdminGet(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Create handles POST /api/admin/products
func (ctrl *ProductController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product, err := ctrl.productService.CreateProduct(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "A name, an SKU and a positive price are required")
			return
		}
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.BadRequest(c, apperrors.CategoryNotFound, "A referenced category does not exist")
			return
		}
		info := apperrors.ParseError(err, "product")
		if info.Code == apperrors.ProductSKUExists || info.Code == apperrors.ProductSlugExists {
			apperrors.Conflict(c, info.Code, info.Message)
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// Update handles PUT /api/admin/products/:id
func (ctrl *ProductController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrCategoryNotFound):
			apperrors.BadRequest(c, apperrors.CategoryNotFound, "A referenced category does not exist")
		default:
			info := apperrors.ParseError(err, "product")
			if info.Code == apperrors.ProductSKUExists || info.Code == apperrors.ProductSlugExists {
				apperrors.Conflict(c, info.Code, info.Message)
				return
			}
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Delete handles DELETE /api/admin/products/:id
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
