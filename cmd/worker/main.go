package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/orbitlearn/backend/internal/config"
	"github.com/orbitlearn/backend/internal/logger"
	"github.com/orbitlearn/backend/internal/repositories"
	"github.com/orbitlearn/backend/internal/tasks"
	"go.uber.org/zap"
)

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

	logger.Logger.Info("Starting Orbitlearn Worker")

	// Connect to database
	db, err := connectDB(cfg.Database.URL)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	userTokenRepo := repositories.NewUserTokenRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	checkoutRepo := repositories.NewCheckoutSessionRepository(db)
	eventRepo := repositories.NewWebhookEventRepository(db)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				tasks.QueueWebhooks:    5,
				tasks.QueueMaintenance: 1,
			},
		},
	)

	// Create worker instance
	worker := NewWorker(
		logger.Logger,
		eventRepo,
		subscriptionRepo,
		checkoutRepo,
		userRepo,
		userTokenRepo,
		cfg.JWT.RefreshTokenExpiry,
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeWebhookEvent, worker.HandleWebhookEvent)
	mux.HandleFunc(tasks.TypeTokenCleanup, worker.HandleTokenCleanup)
	mux.HandleFunc(tasks.TypeWebhookRetention, worker.HandleWebhookRetention)
	mux.HandleFunc(tasks.TypeCheckoutCleanup, worker.HandleCheckoutCleanup)

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
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
