package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/service"
)

type ContentController struct {
	contentService service.ContentService
	productService service.ProductService
}

func NewContentController(contentService service.ContentService, productService service.ProductService) *ContentController {
	return &ContentController{
		contentService: contentService,
		productService: productService,
	}
}

// LayoutSectionView is a home page section with its products resolved.
type LayoutSectionView struct {
	model.LayoutSection
	Products []model.Product `json:"products"`
}

func (ctrl *ContentController) ListPages(c *gin.Context) {
	pages := ctrl.contentService.ListPages(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"pages": pages,
	})
}

// GetPage returns one footer page
// GET /api/v1/pages/:slug
func (ctrl *ContentController) GetPage(c *gin.Context) {
	page, err := ctrl.contentService.GetPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, "Failed to fetch page", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page": page,
	})
}

// GetLayout returns the home page layout with each section's products
// GET /api/v1/layout
func (ctrl *ContentController) GetLayout(c *gin.Context) {
	layout := ctrl.contentService.GetLayout(c.Request.Context())

	sections := make([]LayoutSectionView, 0, len(layout.Sections))
	for _, section := range layout.Sections {
		sections = append(sections, LayoutSectionView{
			LayoutSection: section,
			Products:      ctrl.productService.SectionProducts(section),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"layout":   layout,
		"sections": sections,
	})
}

// UpsertPage creates or replaces a footer page
// PUT /api/v1/admin/pages/:slug
func (ctrl *ContentController) UpsertPage(c *gin.Context) {
	var page model.FooterPage
	if err := c.ShouldBindJSON(&page); err != nil {
		badRequest(c, err)
		return
	}
	page.Slug = c.Param("slug")

	saved, err := ctrl.contentService.UpsertPage(c.Request.Context(), page)
	if failed(c, "Failed to save page", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"page": saved,
	}, err))
}

// DeletePage removes a footer page
// DELETE /api/v1/admin/pages/:slug
func (ctrl *ContentController) DeletePage(c *gin.Context) {
	err := ctrl.contentService.DeletePage(c.Request.Context(), c.Param("slug"))
	if failed(c, "Failed to delete page", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"message": "Page deleted",
	}, err))
}

// UpdateLayout replaces the home page layout
// PUT /api/v1/admin/layout
func (ctrl *ContentController) UpdateLayout(c *gin.Context) {
	var layout model.LayoutConfig
	if err := c.ShouldBindJSON(&layout); err != nil {
		badRequest(c, err)
		return
	}

	saved, err := ctrl.contentService.UpdateLayout(c.Request.Context(), layout)
	if failed(c, "Failed to update layout", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"layout": saved,
	}, err))
}
