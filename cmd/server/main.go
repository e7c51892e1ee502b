package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/internal/app/controller"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/kv"
	"github.com/ikkim/maison-backend/internal/middleware"
	"github.com/ikkim/maison-backend/internal/router"
	"github.com/ikkim/maison-backend/internal/scheduler"
	"github.com/ikkim/maison-backend/internal/storage"
	"github.com/ikkim/maison-backend/internal/voice"
	"github.com/ikkim/maison-backend/internal/websocket"
	"github.com/ikkim/maison-backend/pkg/logger"
	"github.com/ikkim/maison-backend/pkg/payment/checkout"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		Service:     "maison-backend",
		EnableColor: true,
	})

	logger.Info("Starting Maison Backend Server", map[string]interface{}{
		"environment":    cfg.Server.Environment,
		"port":           cfg.Server.Port,
		"storage_driver": cfg.Storage.Driver,
		"log_level":      logLevel,
	})

	ctx := context.Background()

	store, err := kv.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open slot store", err)
	}
	state, err := repository.Open(ctx, store, repository.StorefrontDefaults())
	if err != nil {
		logger.Fatal("Failed to load storefront state", err)
	}
	defer func() {
		if err := state.Close(); err != nil {
			logger.Error("Failed to close slot store", err)
		}
	}()

	// Repositories
	productRepo := repository.NewProductRepository(state)
	cartRepo := repository.NewCartRepository(state)
	wishlistRepo := repository.NewWishlistRepository(state)
	orderRepo := repository.NewOrderRepository(state)

	// External clients
	payments, err := checkout.NewClient(checkout.Config{
		PublishableKey: cfg.Payment.PublishableKey,
		SecretKey:      cfg.Payment.SecretKey,
		BaseURL:        cfg.Payment.BaseURL,
		Currency:       cfg.Payment.Currency,
	})
	if err != nil {
		logger.Fatal("Failed to initialize payment client", err)
	}
	s3Storage := storage.NewS3Storage(ctx, cfg.S3)

	// Services
	authService, err := service.NewAuthService(cfg.Admin)
	if err != nil {
		logger.Fatal("Failed to initialize admin auth", err)
	}
	aiService := service.NewAIService(cfg.AI)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, payments)
	analyticsService := service.NewAnalyticsService(state.ViewLogs, productRepo)
	conciergeService := service.NewConciergeService(aiService, state.SentEmails, orderRepo)
	restockService := service.NewRestockService(state.RestockRequests, productRepo, conciergeService)
	contentService := service.NewContentService(state.FooterPages, state.Layout)

	// Voice concierge
	hub := websocket.NewHub(cfg.Realtime.MaxSessions)
	dialer := &voice.RealtimeDialer{
		URL:             cfg.Realtime.URL,
		APIKey:          cfg.Realtime.APIKey,
		InputSampleRate: cfg.Realtime.InputSampleRate,
	}

	controllers := router.Controllers{
		Auth:      controller.NewAuthController(authService),
		Product:   controller.NewProductController(productService, analyticsService, conciergeService),
		Cart:      controller.NewCartController(cartService),
		Wishlist:  controller.NewWishlistController(wishlistService),
		Order:     controller.NewOrderController(orderService, payments),
		Restock:   controller.NewRestockController(restockService),
		Content:   controller.NewContentController(contentService, productService),
		Concierge: controller.NewConciergeController(conciergeService),
		Voice:     controller.NewVoiceController(hub, dialer, voice.NewConfig(cfg.Realtime), cfg.CORS.AllowedOrigins),
		Upload:    controller.NewUploadController(s3Storage),
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)
	engine := router.NewRouter(controllers, authMiddleware, cfg).Setup()

	maintenance := scheduler.NewMaintenanceScheduler(cfg.Scheduler, restockService, analyticsService)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	maintenance.Stop()
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown did not complete", err)
	}

	logger.Info("Server stopped successfully")
}
