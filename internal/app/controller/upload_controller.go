package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/middleware"
	"github.com/ikkim/maison-backend/internal/storage"
)

// ImagePresigner issues direct-to-bucket upload URLs.
type ImagePresigner interface {
	PresignProductImage(ctx context.Context, filename, contentType string, size int64) (*storage.PresignedURLResponse, error)
}

type UploadController struct {
	storage ImagePresigner
}

func NewUploadController(storage ImagePresigner) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// GeneratePresignedURL returns a URL the back office uploads a product image to
// POST /api/v1/admin/uploads/image
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := ctrl.storage.PresignProductImage(c.Request.Context(), req.Filename, req.ContentType, req.Size)
	if err != nil {
		fail(c, "Failed to generate presigned URL", err)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Presigned URL generated", map[string]interface{}{
		"key":          response.Key,
		"content_type": req.ContentType,
	})

	c.JSON(http.StatusOK, response)
}
