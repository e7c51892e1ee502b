package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/middleware"
)

const defaultTopProducts = 8

type ProductController struct {
	productService   service.ProductService
	analyticsService service.AnalyticsService
	conciergeService service.ConciergeService
}

func NewProductController(
	productService service.ProductService,
	analyticsService service.AnalyticsService,
	conciergeService service.ConciergeService,
) *ProductController {
	return &ProductController{
		productService:   productService,
		analyticsService: analyticsService,
		conciergeService: conciergeService,
	}
}

type ProductQuery struct {
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Search   string `form:"search"`
	InStock  bool   `form:"in_stock"`
	Sort     string `form:"sort"`
	Limit    int    `form:"limit" binding:"omitempty,min=0,max=200"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

// ListProducts returns the catalog, optionally filtered
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	var q ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	opts := service.ProductListOptions{
		Tag:     q.Tag,
		Search:  q.Search,
		InStock: q.InStock,
		Sort:    repository.ProductSort(q.Sort),
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
	if q.Category != "" {
		category := model.ProductCategory(q.Category)
		if !model.ValidCategory(category) {
			fail(c, "Unknown category filter", model.ErrProductInvalidType)
			return
		}
		opts.Category = &category
	}

	products := ctrl.productService.ListProducts(opts)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product and records a view
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		fail(c, "Failed to fetch product", err)
		return
	}

	if err := ctrl.analyticsService.RecordView(c.Request.Context(), id); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to record product view", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

func topLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		return defaultTopProducts
	}
	return limit
}

// TopProducts returns the most viewed products
// GET /api/v1/products/top
func (ctrl *ProductController) TopProducts(c *gin.Context) {
	top := ctrl.analyticsService.TopProducts(c.Request.Context(), topLimit(c))
	c.JSON(http.StatusOK, gin.H{
		"products": top,
	})
}

// Analytics returns view counts for the back office
// GET /api/v1/admin/analytics/top
func (ctrl *ProductController) Analytics(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"top":    ctrl.analyticsService.TopProducts(ctx, topLimit(c)),
		"counts": ctrl.analyticsService.ViewCounts(ctx),
	})
}

// CreateProduct adds a product to the catalog
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var product model.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, err)
		return
	}

	created, err := ctrl.productService.CreateProduct(c.Request.Context(), product)
	if failed(c, "Failed to create product", err) {
		return
	}

	c.JSON(http.StatusCreated, withWarning(gin.H{
		"message": "Product created successfully",
		"product": created,
	}, err))
}

// UpdateProduct replaces a product
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var product model.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := ctrl.productService.UpdateProduct(c.Request.Context(), c.Param("id"), product)
	if failed(c, "Failed to update product", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"message": "Product updated successfully",
		"product": updated,
	}, err))
}

// DeleteProduct removes a product from the catalog
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	err := ctrl.productService.DeleteProduct(c.Request.Context(), c.Param("id"))
	if failed(c, "Failed to delete product", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"message": "Product deleted successfully",
	}, err))
}

// DescribeProduct drafts marketing copy for a product
// POST /api/v1/admin/products/:id/describe
func (ctrl *ProductController) DescribeProduct(c *gin.Context) {
	product, err := ctrl.productService.GetProductByID(c.Param("id"))
	if err != nil {
		fail(c, "Failed to fetch product", err)
		return
	}

	description, err := ctrl.conciergeService.DescribeProduct(c.Request.Context(), *product)
	if err != nil {
		fail(c, "Failed to describe product", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"description": description,
	})
}
