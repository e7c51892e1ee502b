package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/app/service"
)

type RestockController struct {
	restockService service.RestockService
}

func NewRestockController(restockService service.RestockService) *RestockController {
	return &RestockController{
		restockService: restockService,
	}
}

type RestockRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Email     string `json:"email" binding:"required"`
}

// Register joins the waitlist of a sold out product
// POST /api/v1/restock
func (ctrl *RestockController) Register(c *gin.Context) {
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	request, err := ctrl.restockService.Register(c.Request.Context(), req.ProductID, req.Email)
	if failed(c, "Failed to register restock request", err) {
		return
	}

	c.JSON(http.StatusCreated, withWarning(gin.H{
		"message": "We will email you when it is back",
		"request": request,
	}, err))
}

// List returns the waitlist
// GET /api/v1/admin/restock
func (ctrl *RestockController) List(c *gin.Context) {
	requests := ctrl.restockService.List(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// Remove drops one waitlist entry
// DELETE /api/v1/admin/restock/:id
func (ctrl *RestockController) Remove(c *gin.Context) {
	err := ctrl.restockService.Remove(c.Request.Context(), c.Param("id"))
	if failed(c, "Failed to remove restock request", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"message": "Restock request removed",
	}, err))
}
