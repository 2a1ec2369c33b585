package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	_ "github.com/orbitlearn/backend/docs"
	"github.com/orbitlearn/backend/internal/auth"
	"github.com/orbitlearn/backend/internal/config"
	"github.com/orbitlearn/backend/internal/handlers"
	"github.com/orbitlearn/backend/internal/logger"
	"github.com/orbitlearn/backend/internal/middleware"
	"github.com/orbitlearn/backend/internal/payments"
	"github.com/orbitlearn/backend/internal/repositories"
	"github.com/orbitlearn/backend/internal/services"
	"github.com/orbitlearn/backend/internal/tasks"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Orbitlearn API
// @version 1.0
// @description API for the Orbitlearn educational platform

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Orbitlearn API server")

	// Connect to database
	db, err := connectDB(cfg.Database.URL)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations before binding the port so a stale server never serves
	// traffic against a mismatched schema
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := auth.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Initialize asynq client for webhook event handoff
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()
	enqueuer := tasks.NewEnqueuer(asynqClient)

	// Initialize Stripe client
	stripeClient := payments.NewStripeClient(
		cfg.Stripe.SecretKey,
		cfg.Stripe.CheckoutSuccessURL,
		cfg.Stripe.CheckoutCancelURL,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	userTokenRepo := repositories.NewUserTokenRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	checkoutRepo := repositories.NewCheckoutSessionRepository(db)
	webhookEventRepo := repositories.NewWebhookEventRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, userTokenRepo, tokenGenerator, services.NewBcryptHasher(), logger.Logger)
	userService := services.NewUserService(userRepo)
	lessonService := services.NewLessonService(lessonRepo)
	progressService := services.NewProgressService(progressRepo, lessonRepo)
	billingService := services.NewBillingService(
		stripeClient,
		checkoutRepo,
		webhookEventRepo,
		subscriptionRepo,
		enqueuer,
		cfg.Stripe.WebhookSecret,
		logger.Logger,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	userHandler := handlers.NewUserHandler(userService, logger.Logger)
	lessonHandler := handlers.NewLessonHandler(lessonService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger.Logger)
	billingHandler := handlers.NewBillingHandler(billingService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenGenerator)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)
		authHandler.RegisterRoutes(r, authMiddleware)
		userHandler.RegisterRoutes(r, authMiddleware)
		lessonHandler.RegisterRoutes(r, authMiddleware)
		progressHandler.RegisterRoutes(r, authMiddleware)
		billingHandler.RegisterRoutes(r, authMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "orbitlearn_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// ErrNoChange means the schema is already current; re-running is a no-op
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
