package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/internal/app/controller"
	"github.com/ikkim/maison-backend/internal/middleware"
)

// Controllers groups every handler the router mounts.
type Controllers struct {
	Auth      *controller.AuthController
	Product   *controller.ProductController
	Cart      *controller.CartController
	Wishlist  *controller.WishlistController
	Order     *controller.OrderController
	Restock   *controller.RestockController
	Content   *controller.ContentController
	Concierge *controller.ConciergeController
	Voice     *controller.VoiceController
	Upload    *controller.UploadController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Maison API is running",
		})
	})

	ctl := r.controllers
	v1 := router.Group("/api/v1")
	{
		v1.POST("/session", ctl.Auth.CreateSession)

		products := v1.Group("/products")
		{
			products.GET("", ctl.Product.ListProducts)
			products.GET("/top", ctl.Product.TopProducts)
			products.GET("/:id", ctl.Product.GetProduct)
		}

		v1.GET("/pages", ctl.Content.ListPages)
		v1.GET("/pages/:slug", ctl.Content.GetPage)
		v1.GET("/layout", ctl.Content.GetLayout)
		v1.POST("/restock", ctl.Restock.Register)
		v1.GET("/checkout/config", ctl.Order.CheckoutConfig)

		shopper := v1.Group("")
		shopper.Use(middleware.RequireShopper())
		{
			shopper.GET("/cart", ctl.Cart.GetCart)
			shopper.POST("/cart", ctl.Cart.AddToCart)
			shopper.PUT("/cart/lines", ctl.Cart.UpdateLine)
			shopper.DELETE("/cart/lines", ctl.Cart.RemoveLine)
			shopper.DELETE("/cart/products/:product_id", ctl.Cart.RemoveProduct)
			shopper.DELETE("/cart", ctl.Cart.ClearCart)

			shopper.GET("/wishlist", ctl.Wishlist.GetWishlist)
			shopper.POST("/wishlist/:product_id/toggle", ctl.Wishlist.ToggleWishlist)

			shopper.POST("/checkout", ctl.Order.Checkout)
			shopper.GET("/concierge/voice", ctl.Voice.Connect)
		}

		v1.POST("/admin/login", ctl.Auth.Login)

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.RequireAdmin())
		{
			admin.POST("/products", ctl.Product.CreateProduct)
			admin.PUT("/products/:id", ctl.Product.UpdateProduct)
			admin.DELETE("/products/:id", ctl.Product.DeleteProduct)
			admin.POST("/products/:id/describe", ctl.Product.DescribeProduct)
			admin.GET("/analytics/top", ctl.Product.Analytics)

			admin.GET("/orders", ctl.Order.ListOrders)
			admin.GET("/orders/export", ctl.Order.ExportOrders)
			admin.GET("/orders/:id", ctl.Order.GetOrder)
			admin.PUT("/orders/:id/status", ctl.Order.UpdateOrderStatus)

			admin.GET("/restock", ctl.Restock.List)
			admin.DELETE("/restock/:id", ctl.Restock.Remove)

			admin.PUT("/pages/:slug", ctl.Content.UpsertPage)
			admin.DELETE("/pages/:slug", ctl.Content.DeletePage)
			admin.PUT("/layout", ctl.Content.UpdateLayout)

			admin.POST("/concierge/draft", ctl.Concierge.DraftEmail)
			admin.POST("/concierge/send", ctl.Concierge.SendEmail)
			admin.GET("/concierge/emails", ctl.Concierge.History)

			admin.POST("/uploads/image", ctl.Upload.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, "+middleware.ShopperIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
