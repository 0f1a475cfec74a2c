package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roy-rc/sfstore/config"
	"github.com/roy-rc/sfstore/internal/app/controller"
	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/internal/app/service"
	"github.com/roy-rc/sfstore/internal/db"
	"github.com/roy-rc/sfstore/internal/middleware"
	"github.com/roy-rc/sfstore/internal/router"
	"github.com/roy-rc/sfstore/internal/scheduler"
	"github.com/roy-rc/sfstore/internal/storage"
	"github.com/roy-rc/sfstore/internal/ws"
	"github.com/roy-rc/sfstore/pkg/logger"
	"github.com/roy-rc/sfstore/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting SFSTORE Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer redis.Close()
	}

	// Repositories
	customerRepo := repository.NewCustomerRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Order events for the admin dashboard
	hub := ws.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(customerRepo, &cfg.JWT)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, cartRepo)
	cartService := service.NewCartService(cartRepo, productRepo, db.GetDB())
	orderService := service.NewOrderService(orderRepo, cartRepo, customerRepo, db.GetDB(), hub)

	// Controllers
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)
	authController := controller.NewAuthController(authService, cartService, cfg)
	productController := controller.NewProductController(productService)
	categoryController := controller.NewCategoryController(categoryService, productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService, cartService)
	uploadController := controller.NewUploadController(s3Storage)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.Redis.Enabled)

	// Abandoned guest carts get pruned on a schedule
	cleanup := scheduler.NewCartCleanupScheduler(cartService, cfg.Cart.CleanupSchedule, cfg.Cart.AbandonedAfter)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start cart cleanup scheduler", err)
	}
	defer cleanup.Stop()

	r := router.NewRouter(
		authController,
		productController,
		categoryController,
		cartController,
		orderController,
		uploadController,
		authMiddleware,
		hub,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
