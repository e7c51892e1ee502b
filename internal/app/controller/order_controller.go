package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/middleware"
	"github.com/ikkim/maison-backend/pkg/payment/checkout"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CheckoutConfigProvider exposes the browser-safe payment settings.
type CheckoutConfigProvider interface {
	PublicConfig() checkout.PublicConfig
}

type OrderController struct {
	orderService service.OrderService
	payment      CheckoutConfigProvider
}

func NewOrderController(orderService service.OrderService, payment CheckoutConfigProvider) *OrderController {
	return &OrderController{
		orderService: orderService,
		payment:      payment,
	}
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// CheckoutConfig returns what the payment widget needs
// GET /api/v1/checkout/config
func (ctrl *OrderController) CheckoutConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.payment.PublicConfig())
}

// Checkout verifies the payment and turns the cart into an order
// POST /api/v1/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), middleware.GetShopperID(c), req)
	if failed(c, "Checkout failed", err) {
		return
	}

	middleware.GetLoggerFromContext(c).Info("Order placed", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
	})

	c.JSON(http.StatusCreated, withWarning(gin.H{
		"message": "Order placed successfully",
		"order":   order,
	}, err))
}

// ListOrders returns every order, newest first
// GET /api/v1/admin/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	orders := ctrl.orderService.ListOrders(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order
// GET /api/v1/admin/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	order, err := ctrl.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "Failed to fetch order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus moves an order along its lifecycle
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if failed(c, "Failed to update order status", err) {
		return
	}

	c.JSON(http.StatusOK, withWarning(gin.H{
		"message": "Order status updated",
		"order":   order,
	}, err))
}

// ExportOrders streams every order as a spreadsheet
// GET /api/v1/admin/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := ctrl.orderService.ExportOrders(c.Request.Context(), c.Writer); err != nil {
		fail(c, "Failed to export orders", err)
		return
	}
	c.Status(http.StatusOK)
}
