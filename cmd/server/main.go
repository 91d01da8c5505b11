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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/config"
	"github.com/unetra-global/member-portal-sub000/internal/database"
	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/limiter"
	"github.com/unetra-global/member-portal-sub000/internal/logging"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/router"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/tasks"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logging.Setup(cfg.Log)

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	creationLimiter, closeLimiter, err := newCreationLimiter(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize creation limiter")
	}
	defer closeLimiter()

	storage, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}

	queue := tasks.NewQueue(cfg.Tasks.Workers, cfg.Tasks.QueueSize, cfg.Tasks.TaskTimeout)
	queue.Start()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Initialize(router.Dependencies{
		Config:   cfg,
		Repos:    repository.New(db),
		Limiter:  creationLimiter,
		Tasks:    queue,
		Storage:  storage,
		Payments: services.NewStripeGateway(cfg.Payment.StripeSecretKey),
		HealthCheck: func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	// Drain queued view counts and audit entries before the pool closes.
	queue.Stop()

	logrus.Info("Server exited")
}

func newCreationLimiter(cfg *config.Config) (limiter.CreationLimiter, func(), error) {
	limit, window := cfg.RateLimit.ArticleCreations, cfg.RateLimit.ArticleWindow

	if cfg.RateLimit.Backend != "redis" {
		logrus.WithField("backend", "memory").Info("Article creation limiter ready")
		return limiter.NewMemoryLimiter(limit, window, time.Now), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr(), err)
	}

	logrus.WithFields(logrus.Fields{
		"backend": "redis",
		"addr":    cfg.Redis.Addr(),
	}).Info("Article creation limiter ready")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Warn("Error closing redis client")
		}
	}
	return limiter.NewRedisLimiter(client, limit, window, time.Now), closeFn, nil
}
