package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/config"
	"github.com/shoptrack/backend/internal/delivery/telegram"
	"github.com/shoptrack/backend/internal/handler"
	"github.com/shoptrack/backend/internal/marketplace"
	"github.com/shoptrack/backend/internal/notify"
	"github.com/shoptrack/backend/internal/repository"
	"github.com/shoptrack/backend/internal/scheduler"
	"github.com/shoptrack/backend/internal/service"
	"github.com/shoptrack/backend/internal/tracker"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup structured logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		dbURL = "postgres://localhost:5432/shoptrack?sslmode=disable"
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)

	// Initialize marketplace resolver
	resolver := marketplace.NewResolver(marketplace.Options{
		Timeout:      cfg.Resolver.Timeout,
		ProxyURL:     cfg.Resolver.ProxyURL,
		HTMLFallback: cfg.Resolver.HTMLFallback,
	})

	// Initialize services
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(
		productRepo, historyRepo, resolver, decimal.NewFromFloat(cfg.DefaultThreshold),
	)

	// Initialize notification pipeline
	telegramClient := telegram.NewClient(telegram.Options{Token: cfg.BotToken})
	notifier := notify.New(userRepo, telegramClient)

	// Initialize and start the price tracker
	priceTracker := tracker.New(productRepo, historyRepo, resolver, notifier, tracker.Config{
		Interval:         cfg.Tracker.Interval,
		RecoveryInterval: cfg.Tracker.RecoveryInterval,
		Pacing:           cfg.Tracker.Pacing,
	})
	if cfg.Tracker.Enabled {
		priceTracker.Start()
	}

	// Initialize and start the history retention scheduler
	retention := scheduler.New(scheduler.Config{
		Schedule:      cfg.Retention.Schedule,
		RetentionDays: cfg.Retention.Days,
		Timeout:       cfg.Retention.Timeout,
		Enabled:       cfg.Retention.Enabled,
	}, historyRepo, logger)
	if err := retention.Start(); err != nil {
		logger.Error("Failed to start retention scheduler", slog.String("error", err.Error()))
	}

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService, priceTracker)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Telegram-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public routes
	r.Post("/api/users/register", userHandler.Register)

	// Routes requiring a registered user
	r.Group(func(r chi.Router) {
		r.Use(handler.IdentityMiddleware(userService))

		r.Get("/api/users/me", userHandler.Me)
		r.Put("/api/users/profile", userHandler.CompleteProfile)

		r.Get("/api/products", productHandler.List)
		r.Post("/api/products", productHandler.Create)
		r.Delete("/api/products/{id}", productHandler.Delete)
		r.Get("/api/products/{id}/history", productHandler.History)
		r.Post("/api/products/{id}/check", productHandler.Check)
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		// Stop background work before the listener so in-flight checks finish
		priceTracker.Stop()
		if retention.IsRunning() {
			<-retention.Stop().Done()
		}

		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Server failed: %v", err)
	}
}
