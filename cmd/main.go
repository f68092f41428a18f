package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shenikar/crowd_proximity_engine/docs"
	"github.com/shenikar/crowd_proximity_engine/internal/config"
	v1 "github.com/shenikar/crowd_proximity_engine/internal/handler/http/v1"
	"github.com/shenikar/crowd_proximity_engine/internal/repository"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
	"github.com/shenikar/crowd_proximity_engine/internal/webhook"
	"github.com/shenikar/crowd_proximity_engine/pkg/logger"
	"github.com/shenikar/crowd_proximity_engine/pkg/postgres"
	redisclient "github.com/shenikar/crowd_proximity_engine/pkg/redis"
)

const shutdownTimeout = 5 * time.Second

// @title Crowd Proximity Engine API
// @version 1.0
// @description Proximity search over located entities and crowd density monitoring for cameras.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New("crowd-api", cfg.LogLevel, cfg.LogFormat)

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("API server stopped with error")
	}
	log.Info("Server gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	// Политика оценки риска площадки
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load risk policy: %w", err)
	}

	log.Info("Running database migrations...")
	version, err := postgres.Migrate(cfg.DatabaseURL, "file://migrations")
	if err != nil {
		return err
	}
	log.WithField("schema_version", version).Info("Database migrations applied successfully")

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Открытые оповещения уходят в очередь Redis, воркер доставляет их на WEBHOOK_URL
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)
	webhook.NewWebhookWorker(redisClient, log, cfg).Start(ctx)

	locationService := service.NewLocationService(
		repository.NewEntityRepository(dbpool, redisClient, cfg.EntityCacheTTL),
		log,
	)
	monitoringService := service.NewMonitoringService(
		repository.NewMonitoringStore(dbpool),
		policy,
		webhookPublisher,
		log,
		cfg,
	)

	router := gin.Default()
	v1.NewHandler(locationService, monitoringService, log, cfg).RegisterRoutes(router.Group("/api/v1"))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	select {
	case err := <-serveErr:
		return fmt.Errorf("error starting HTTP server: %w", err)
	case <-ctx.Done():
	}
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
