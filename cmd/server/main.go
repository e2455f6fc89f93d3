// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/database"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/repositories"
	"github.com/javajoker/catalog-backend/internal/router"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/pkg/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}

// run wires the service and serves until a shutdown signal. Resources opened
// here are released by its defers on every return path.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the record store
	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize record store: %w", err)
	}
	defer closeStore()

	// Initialize asset storage
	storage, err := services.NewStorageService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize asset storage: %w", err)
	}

	// Product events are optional
	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			logrus.WithError(err).Warn("RabbitMQ unavailable, product events disabled")
		} else {
			defer func() {
				if err := mq.Close(); err != nil {
					logrus.WithError(err).Error("Error closing RabbitMQ client")
				}
			}()
			events = mq
		}
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(ctx, cfg, repo, storage, events)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"db":      cfg.Database.Driver,
			"storage": cfg.Storage.Driver,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	}
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
	return runErr
}

// openStore connects the configured record store and returns a close func.
func openStore(ctx context.Context, cfg *config.Config) (repositories.ProductRepository, func(), error) {
	if !cfg.Database.IsRelational() {
		client, err := database.ConnectMongo(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewMongoProductRepository(client.Database(cfg.Database.Database).Collection(repositories.ProductsCollection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			database.DisconnectMongo(client)
			return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return repo, func() { database.DisconnectMongo(client) }, nil
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewGORMProductRepository(db), func() { database.Close(db) }, nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetOutput(os.Stdout)
}
