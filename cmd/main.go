package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"omnioracle/internal/auth"
	"omnioracle/internal/config"
	"omnioracle/internal/database"
	"omnioracle/internal/handlers"
	"omnioracle/internal/jobs"
	"omnioracle/internal/repository"
	"omnioracle/internal/services"
	"omnioracle/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database and run migrations
	if err := database.Connect(cfg.GetDSN()); err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		logrus.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize repository and websocket hub
	repo := repository.NewRepository(database.GetDB())
	hub := ws.NewHub()

	// Initialize oracle collaborator
	oracle := services.NewSimulatedOracle()
	oracle.Latency = cfg.Oracle.Latency
	oracle.ConflictRate = cfg.Oracle.ConflictRate

	// Initialize services
	portfolioService := services.NewPortfolioService(repo)
	marketService := services.NewMarketService(repo, portfolioService, hub)
	lifecycleService := services.NewLifecycleService(repo, oracle, portfolioService, hub, cfg.Oracle.FetchTimeout)
	userService := services.NewUserService(repo, portfolioService, hub)

	if cfg.App.SeedDemoData {
		if err := marketService.Seed(context.Background()); err != nil {
			logrus.Fatalf("failed to seed demo data: %v", err)
		}
	}

	// Initialize handlers
	marketHandler := handlers.NewMarketHandler(marketService, lifecycleService)
	tradingHandler := handlers.NewTradingHandler(marketService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(marketService)

	// Start resolver job
	resolver := jobs.NewMarketResolver(repo, lifecycleService, cfg.App.ResolverInterval)
	go resolver.Start()

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Push channel for market/notification updates
	router.GET("/ws", gin.WrapH(hub))

	// Authentication routes (public)
	router.POST("/auth/wallet", userHandler.ConnectWallet)

	// Public market routes
	router.GET("/api/markets", marketHandler.GetMarkets)
	router.GET("/api/markets/:id", marketHandler.GetMarketByID)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.POST("/markets", marketHandler.CreateMarket)
		api.POST("/markets/:id/status", marketHandler.UpdateStatus)
		api.POST("/markets/:id/resolve", marketHandler.ResolveMarket)
		api.POST("/markets/:id/trades", tradingHandler.Trade)
		api.GET("/trades", tradingHandler.GetTrades)

		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.GET("/notifications", userHandler.GetNotifications)
			userRoutes.POST("/notifications/:id/read", userHandler.MarkNotificationRead)
		}

		api.POST("/admin/reset", adminHandler.Reset)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logrus.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	resolver.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("forced shutdown: %v", err)
	}
}
