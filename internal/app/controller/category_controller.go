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

type CategoryController struct {
	categoryService service.CategoryService
	productService  service.ProductService
}

func NewCategoryController(categoryService service.CategoryService, productService service.ProductService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
		productService:  productService,
	}
}

// Tree handles GET /api/categories
func (ctrl *CategoryController) Tree(c *gin.Context) {
	categories, err := ctrl.categoryService.CategoryTree()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load category tree", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetBySlug handles GET /api/categories/:slug
// Returns the category with its children and its active products.
func (ctrl *CategoryController) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	category, err := ctrl.categoryService.GetCategoryBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	products, err := ctrl.productService.ListProducts(categoryFilter(category.ID, limit))
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load category products", err, map[string]interface{}{
			"category_id": category.ID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"products": products,
	})
}

func categoryFilter(categoryID uint, limit int) repository.ProductFilter {
	return repository.ProductFilter{
		CategoryID: &categoryID,
		ActiveOnly: true,
		Limit:      limit,
	}
}

// AdminList handles GET /api/admin/categories
func (ctrl *CategoryController) AdminList(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list categories", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Create handles POST /api/admin/categories
func (ctrl *CategoryController) Create(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid category data")
		return
	}

	category, err := ctrl.categoryService.CreateCategory(req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.BadRequest(c, apperrors.CategoryNotFound, "Parent category does not exist")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to create category", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// Update handles PUT /api/admin/categories/:id
func (ctrl *CategoryController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category ID")
		return
	}

	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid category data")
		return
	}

	category, err := ctrl.categoryService.UpdateCategory(id, req)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to update category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Delete handles DELETE /api/admin/categories/:id
func (ctrl *CategoryController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid category ID")
		return
	}

	if err := ctrl.categoryService.DeleteCategory(id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to delete category", err, map[string]interface{}{
			"category_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
