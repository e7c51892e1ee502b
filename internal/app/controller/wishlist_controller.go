package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/middleware"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

// GetWishlist returns the shopper's saved products
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	items, err := ctrl.wishlistService.GetWishlist(c.Request.Context(), middleware.GetShopperID(c))
	if err != nil {
		fail(c, "Failed to fetch wishlist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// ToggleWishlist saves or unsaves a product
// POST /api/v1/wishlist/:product_id/toggle
func (ctrl *WishlistController) ToggleWishlist(c *gin.Context) {
	added, err := ctrl.wishlistService.ToggleWishlist(c.Request.Context(), middleware.GetShopperID(c), c.Param("product_id"))
	if failed(c, "Failed to toggle wishlist", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"added": added,
	}, err))
}
