package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"github.com/algosignal/signalhub/internal/api"
	"github.com/algosignal/signalhub/internal/config"
	"github.com/algosignal/signalhub/internal/db"
	"github.com/algosignal/signalhub/internal/tasks"
	"github.com/algosignal/signalhub/internal/websocket"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database connection
	database, err := db.Connect(cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	// Redis is optional: without it hub events stay instance-local
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = db.ConnectRedis(cfg.Redis)
		if err != nil {
			logger.Warn("Failed to connect to Redis, events stay local", slog.Any("error", err))
			redisClient = nil
		}
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(redisClient, logger)
	go wsHub.Run()

	// Initialize scheduled tasks
	taskManager := tasks.NewManager(database, logger)
	taskManager.StartScheduledTasks(cfg.Cleanup.RetentionDays)
	defer taskManager.StopAllTasks()

	// Initialize router
	router := api.SetupRouter(database, wsHub, cfg, logger)

	// Set up CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("🚀 Signal hub starting",
		slog.String("port", cfg.Server.Port),
		slog.String("driver", cfg.Database.Driver))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped", slog.Any("error", err))
		}
		return
	case sig := <-stop:
		logger.Info("Shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", slog.Any("error", err))
	}
}
