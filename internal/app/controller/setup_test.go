package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/kv"
	"github.com/ikkim/maison-backend/internal/middleware"
	"github.com/ikkim/maison-backend/pkg/payment/checkout"
	"github.com/stretchr/testify/require"
)

const (
	testShopper  = "3f0b7c52-8a41-4d0e-9a8e-2f4c1d6b7e90"
	testPasscode = "maison-admin"
)

type flakyStore struct {
	*kv.MemoryStore
	failing atomic.Bool
}

func (s *flakyStore) Save(ctx context.Context, slot string, data []byte) error {
	if s.failing.Load() {
		return errors.New("quota exceeded")
	}
	return s.MemoryStore.Save(ctx, slot, data)
}

type fakePayments struct {
	status string
	amount int64
}

func (f *fakePayments) Verify(_ context.Context, reference string) (*checkout.Transaction, error) {
	return &checkout.Transaction{Reference: reference, Status: f.status, Amount: f.amount}, nil
}

func (f *fakePayments) PublicConfig() checkout.PublicConfig {
	return checkout.PublicConfig{PublishableKey: "pk_test_123", Currency: "NGN"}
}

type fakeAI struct {
	reply string
	err   error
}

func (f *fakeAI) Complete(_ context.Context, _, _ string, _ *service.JSONSchema) (string, error) {
	return f.reply, f.err
}

type testEnv struct {
	router   *gin.Engine
	store    *flakyStore
	state    *repository.State
	payments *fakePayments
	ai       *fakeAI
}

func testCatalog() []model.Product {
	return []model.Product{
		{
			ID:       "P1",
			Name:     "Silk Slip Dress",
			Brand:    "Maison",
			Price:    1000,
			Images:   []string{"https://cdn.example/p1.jpg"},
			Category: model.CategoryClothing,
			Stock:    10,
			Tags:     []string{model.TagNew},
			Colors:   []model.Color{{Name: "Black", Hex: "#000000"}},
			Sizes:    []string{"S", "M"},
		},
		{
			ID:       "P2",
			Name:     "Leather Tote",
			Brand:    "Maison",
			Price:    2500,
			Images:   []string{"https://cdn.example/p2.jpg"},
			Category: model.CategoryBags,
			Stock:    5,
			Tags:     []string{model.TagBestseller},
		},
		{
			ID:       "P3",
			Name:     "Gold Hoops",
			Brand:    "Atelier",
			Price:    800,
			Images:   []string{"https://cdn.example/p3.jpg"},
			Category: model.CategoryJewelry,
			Stock:    0,
		},
	}
}

// setupControllerTest wires real services over an in-memory store and mounts
// the storefront routes the way the router does.
func setupControllerTest(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	store := &flakyStore{MemoryStore: kv.NewMemoryStore()}
	state, err := repository.Open(context.Background(), store, repository.Defaults{
		Products: testCatalog(),
		Pages:    []model.FooterPage{{Slug: "shipping", Title: "Shipping", Content: "Worldwide."}},
		Layout: model.LayoutConfig{
			HeroTitle: "Maison",
			Sections:  []model.LayoutSection{{Title: "New In", Tag: model.TagNew, Limit: 4}},
		},
	})
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(state)
	cartRepo := repository.NewCartRepository(state)
	payments := &fakePayments{status: checkout.StatusSuccess}
	ai := &fakeAI{}

	authService, err := service.NewAuthService(config.AdminConfig{
		Passcode:    testPasscode,
		TokenSecret: "test-jwt-secret",
		TokenExpiry: 15 * time.Minute,
	})
	require.NoError(t, err)

	productService := service.NewProductService(productRepo)
	analyticsService := service.NewAnalyticsService(state.ViewLogs, productRepo)
	orderRepo := repository.NewOrderRepository(state)
	conciergeService := service.NewConciergeService(ai, state.SentEmails, orderRepo)

	authCtrl := NewAuthController(authService)
	productCtrl := NewProductController(productService, analyticsService, conciergeService)
	cartCtrl := NewCartController(service.NewCartService(cartRepo, productRepo))
	wishlistCtrl := NewWishlistController(service.NewWishlistService(repository.NewWishlistRepository(state), productRepo))
	orderCtrl := NewOrderController(service.NewOrderService(orderRepo, productRepo, cartRepo, payments), payments)
	restockCtrl := NewRestockController(service.NewRestockService(state.RestockRequests, productRepo, conciergeService))
	contentCtrl := NewContentController(service.NewContentService(state.FooterPages, state.Layout), productService)
	conciergeCtrl := NewConciergeController(conciergeService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	r := gin.New()
	r.POST("/session", authCtrl.CreateSession)
	r.POST("/admin/login", authCtrl.Login)

	r.GET("/products", productCtrl.ListProducts)
	r.GET("/products/top", productCtrl.TopProducts)
	r.GET("/products/:id", productCtrl.GetProduct)
	r.POST("/restock", restockCtrl.Register)
	r.GET("/pages", contentCtrl.ListPages)
	r.GET("/pages/:slug", contentCtrl.GetPage)
	r.GET("/layout", contentCtrl.GetLayout)
	r.GET("/checkout/config", orderCtrl.CheckoutConfig)

	shopper := r.Group("", middleware.RequireShopper())
	shopper.GET("/cart", cartCtrl.GetCart)
	shopper.POST("/cart", cartCtrl.AddToCart)
	shopper.PUT("/cart/lines", cartCtrl.UpdateLine)
	shopper.DELETE("/cart/lines", cartCtrl.RemoveLine)
	shopper.DELETE("/cart/products/:product_id", cartCtrl.RemoveProduct)
	shopper.DELETE("/cart", cartCtrl.ClearCart)
	shopper.GET("/wishlist", wishlistCtrl.GetWishlist)
	shopper.POST("/wishlist/:product_id/toggle", wishlistCtrl.ToggleWishlist)
	shopper.POST("/checkout", orderCtrl.Checkout)

	admin := r.Group("/admin", authMiddleware.RequireAdmin())
	admin.POST("/products", productCtrl.CreateProduct)
	admin.PUT("/products/:id", productCtrl.UpdateProduct)
	admin.DELETE("/products/:id", productCtrl.DeleteProduct)
	admin.POST("/products/:id/describe", productCtrl.DescribeProduct)
	admin.GET("/analytics/top", productCtrl.Analytics)
	admin.GET("/orders", orderCtrl.ListOrders)
	admin.GET("/orders/export", orderCtrl.ExportOrders)
	admin.GET("/orders/:id", orderCtrl.GetOrder)
	admin.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	admin.GET("/restock", restockCtrl.List)
	admin.DELETE("/restock/:id", restockCtrl.Remove)
	admin.PUT("/pages/:slug", contentCtrl.UpsertPage)
	admin.DELETE("/pages/:slug", contentCtrl.DeletePage)
	admin.PUT("/layout", contentCtrl.UpdateLayout)
	admin.POST("/concierge/draft", conciergeCtrl.DraftEmail)
	admin.POST("/concierge/send", conciergeCtrl.SendEmail)
	admin.GET("/concierge/emails", conciergeCtrl.History)

	return &testEnv{router: r, store: store, state: state, payments: payments, ai: ai}
}

type request struct {
	method  string
	path    string
	body    interface{}
	shopper string
	token   string
}

func (env *testEnv) do(t *testing.T, req request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(req.body))
	}
	httpReq := httptest.NewRequest(req.method, req.path, &body)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.shopper != "" {
		httpReq.Header.Set(middleware.ShopperIDHeader, req.shopper)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httpReq)

	var response map[string]interface{}
	if json.Valid(w.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (env *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	w, resp := env.do(t, request{method: http.MethodPost, path: "/admin/login", body: gin.H{"passcode": testPasscode}})
	require.Equal(t, http.StatusOK, w.Code)
	return resp["token"].(string)
}
