package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
)

const (
	webhookQueueKey = "crowd_alert_events"

	EventAlertOpened = "alert.opened"
)

// AlertEvent - данные вебхука об открытом оповещении
type AlertEvent struct {
	EventType   string        `json:"event_type"`
	Alert       *models.Alert `json:"alert"`
	PeopleCount int           `json:"people_count"`
	Level       string        `json:"level"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewAlertOpenedEvent собирает событие по снимку и открытому оповещению
func NewAlertOpenedEvent(snapshot *models.Snapshot, alert *models.Alert) AlertEvent {
	return AlertEvent{
		EventType:   EventAlertOpened,
		Alert:       alert,
		PeopleCount: snapshot.PeopleCount,
		Level:       string(snapshot.Level),
		Timestamp:   snapshot.Timestamp,
	}
}

//go:generate mockgen -source=publisher.go -destination=mocks/publisher_mock.go -package=mocks

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event AlertEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH добавляет в голову списка, воркер забирает с хвоста
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
