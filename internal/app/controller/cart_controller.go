package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID     string `json:"product_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"omitempty,gt=0"`
	SelectedColor string `json:"selected_color"`
	SelectedSize  string `json:"selected_size"`
}

type CartLineRequest struct {
	ProductID     string `json:"product_id" binding:"required"`
	SelectedColor string `json:"selected_color"`
	SelectedSize  string `json:"selected_size"`
	Quantity      int    `json:"quantity"`
}

func (r CartLineRequest) key() model.LineKey {
	return model.LineKey{ProductID: r.ProductID, Color: r.SelectedColor, Size: r.SelectedSize}
}

// GetCart returns the shopper's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.cartService.GetCart(c.Request.Context(), middleware.GetShopperID(c))
	if err != nil {
		fail(c, "Failed to fetch cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// AddToCart adds a product variant to the cart
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := ctrl.cartService.AddToCart(c.Request.Context(), middleware.GetShopperID(c),
		req.ProductID, req.Quantity, req.SelectedColor, req.SelectedSize)
	if failed(c, "Failed to add item to cart", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"message": "Item added to cart",
		"cart":    cart,
	}, err))
}

// UpdateLine sets the quantity of one cart line
// PUT /api/v1/cart/lines
func (ctrl *CartController) UpdateLine(c *gin.Context) {
	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), middleware.GetShopperID(c), req.key(), req.Quantity)
	if failed(c, "Failed to update cart line", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"cart": cart,
	}, err))
}

// RemoveLine removes one variant line
// DELETE /api/v1/cart/lines
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := ctrl.cartService.RemoveLine(c.Request.Context(), middleware.GetShopperID(c), req.key())
	if failed(c, "Failed to remove cart line", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"cart": cart,
	}, err))
}

// RemoveProduct removes every line of a product
// DELETE /api/v1/cart/products/:product_id
func (ctrl *CartController) RemoveProduct(c *gin.Context) {
	cart, err := ctrl.cartService.RemoveFromCart(c.Request.Context(), middleware.GetShopperID(c), c.Param("product_id"))
	if failed(c, "Failed to remove product from cart", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"cart": cart,
	}, err))
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	err := ctrl.cartService.ClearCart(c.Request.Context(), middleware.GetShopperID(c))
	if failed(c, "Failed to clear cart", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"message": "Cart cleared",
	}, err))
}
