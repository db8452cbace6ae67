package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"comandapos/internal/caching"
	"comandapos/internal/config"
	"comandapos/internal/handlers"
	"comandapos/internal/jobs"
	"comandapos/internal/logging"
	"comandapos/internal/middleware"
	"comandapos/internal/models"
	"comandapos/internal/notify"
	"comandapos/internal/repositories"
	"comandapos/internal/services"
	"comandapos/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	comandaRepo := repositories.NewComandaRepo(pool)
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)

	// Infrastructure
	cacheService := caching.NewRedisCacheService(redisClient)
	broker := notify.NewRedisBroker(redisClient, logger)

	// Services
	pricing := services.Pricing{
		BasePriceCents:    cfg.BasePriceCents,
		PricePerUserCents: cfg.PricePerUserCents,
	}
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, logger)
	authService := services.NewAuthService(
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTL)*time.Second,
		time.Duration(cfg.RefreshTokenTTL)*time.Second,
		cacheService,
	)
	accountService := services.NewAccountService(tenantRepo, userRepo, cfg.TrialDays, logger)
	userService := services.NewUserService(userRepo, logger)
	productService := services.NewProductService(productRepo)
	comandaService := services.NewComandaService(comandaRepo, productRepo, logger)
	accessService := services.NewAccessService(tenantRepo, broker, logger)
	subscriptionService := services.NewSubscriptionService(
		tenantRepo, userRepo, subscriptionRepo, stripeService, pricing, cfg.TrialDays, logger)
	billingProcessor := services.NewBillingEventProcessor(
		tenantRepo, userRepo, subscriptionRepo, paymentRepo, broker, logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(accountService, userService, authService, logger)
	tenantHandler := handlers.NewTenantHandler(accountService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	productHandler := handlers.NewProductHandler(productService, logger)
	comandaHandler := handlers.NewComandaHandler(comandaService, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, accessService, paymentRepo, logger)
	webhookHandler := handlers.NewWebhookHandler(stripeService, billingProcessor, logger)
	eventsHandler := handlers.NewEventsHandler(broker, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())

	e.GET("/health", healthHandler.Check)
	e.POST("/webhooks/stripe", webhookHandler.HandleStripe)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	gate := middleware.NewSubscriptionGate(accessService, logger)
	protected := v1.Group("", middleware.JWTAuth(authService), gate.Middleware())

	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/tenant", tenantHandler.Get)
	protected.PUT("/tenant", tenantHandler.Rename, middleware.RequireRole(models.RoleAdmin))

	users := protected.Group("/users", middleware.RequireRole(models.RoleAdmin))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	products := protected.Group("/products")
	products.GET("", productHandler.List)
	products.POST("", productHandler.Create, middleware.RequireRole(models.RoleAdmin, models.RoleCashier))
	products.PUT("/:id", productHandler.Update, middleware.RequireRole(models.RoleAdmin, models.RoleCashier))
	products.DELETE("/:id", productHandler.Delete, middleware.RequireRole(models.RoleAdmin))

	comandas := protected.Group("/comandas")
	comandas.GET("", comandaHandler.List)
	comandas.POST("", comandaHandler.Create)
	comandas.GET("/:id", comandaHandler.Get)
	comandas.POST("/:id/items", comandaHandler.AddItems)
	comandas.PUT("/:id/status", comandaHandler.UpdateStatus)

	protected.GET("/reports/daily", comandaHandler.DailyReport,
		middleware.RequireRole(models.RoleAdmin, models.RoleCashier))

	subscription := protected.Group("/subscription")
	subscription.GET("", subscriptionHandler.Get)
	subscription.GET("/access", subscriptionHandler.Access)
	subscription.GET("/payments", subscriptionHandler.Payments)
	subscription.POST("/checkout", subscriptionHandler.CreateCheckout)
	subscription.POST("/update-price", subscriptionHandler.UpdatePrice,
		middleware.RequireRole(models.RoleAdmin))
	subscription.GET("/events", eventsHandler.StreamSubscription)

	// Background trial sweep, safety net behind the lazy on-read expiry.
	sweeper := jobs.NewTrialSweeper(tenantRepo, broker, logger)
	scheduler, err := jobs.NewJobScheduler(sweeper, logger)
	if err != nil {
		logger.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
