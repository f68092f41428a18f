package main

import (
	"context"
	"os/signal"
	"syscall"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/crowd_proximity_engine/internal/config"
	"github.com/shenikar/crowd_proximity_engine/internal/ingest"
	"github.com/shenikar/crowd_proximity_engine/internal/repository"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
	"github.com/shenikar/crowd_proximity_engine/internal/webhook"
	"github.com/shenikar/crowd_proximity_engine/pkg/logger"
	mqttclient "github.com/shenikar/crowd_proximity_engine/pkg/mqtt"
	"github.com/shenikar/crowd_proximity_engine/pkg/postgres"
	redisclient "github.com/shenikar/crowd_proximity_engine/pkg/redis"
)

// Ингестор: читает пачки обнаружений с камер из MQTT и пишет снимки и оповещения.
// Миграции применяет HTTP-сервер.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New("crowd-ingestor", cfg.LogLevel, cfg.LogFormat)

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("Failed to load risk policy: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()

	redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	monitoringService := service.NewMonitoringService(
		repository.NewMonitoringStore(dbpool),
		policy,
		webhook.NewRedisWebhookPublisher(redisClient),
		log,
		cfg,
	)
	consumer := ingest.NewConsumer(monitoringService, log)
	handler := consumer.MessageHandler(ctx)

	client, err := mqttclient.NewClient(cfg.MQTTBroker, cfg.MQTTClientID, log, func(c paho.Client) {
		if token := c.Subscribe(cfg.MQTTTopic, 1, handler); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", cfg.MQTTTopic).Error("Failed to subscribe")
			return
		}
		log.WithField("topic", cfg.MQTTTopic).Info("Subscribed to observation topic")
	})
	if err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}
	defer client.Disconnect(250)

	log.Info("Ingestor running")
	<-ctx.Done()
	log.Info("Received shutdown signal, stopping ingestor...")
}
