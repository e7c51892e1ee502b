package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// CreateSession issues an anonymous shopper id for cart and wishlist calls
// POST /api/v1/session
func (ctrl *AuthController) CreateSession(c *gin.Context) {
	shopperID := uuid.NewString()

	middleware.GetLoggerFromContext(c).Info("Shopper session created", map[string]interface{}{
		"shopper_id": shopperID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"shopper_id": shopperID,
	})
}

// Login exchanges the admin passcode for a token
// POST /api/v1/admin/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := ctrl.authService.Login(req.Passcode)
	if err != nil {
		fail(c, "Admin login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	})
}
