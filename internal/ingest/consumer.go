package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
)

// ErrInvalidPayload - сообщение не удалось разобрать как пачку обнаружений
var ErrInvalidPayload = errors.New("invalid observation payload")

const defaultHandleTimeout = 10 * time.Second

// Consumer принимает пачки обнаружений из MQTT и передает их сервису мониторинга
type Consumer struct {
	monitoring service.MonitoringService
	logger     *logrus.Logger
	timeout    time.Duration
	now        func() time.Time
}

func NewConsumer(monitoring service.MonitoringService, logger *logrus.Logger) *Consumer {
	return &Consumer{
		monitoring: monitoring,
		logger:     logger,
		timeout:    defaultHandleTimeout,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// HandleMessage разбирает сообщение и принимает пачку.
// Если camera_id не указан в теле, он берется из топика cameras/<id>/observations.
func (c *Consumer) HandleMessage(ctx context.Context, topic string, payload []byte) (*service.IngestResult, error) {
	var batch models.ObservationBatch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if batch.CameraID == "" {
		batch.CameraID = cameraFromTopic(topic)
	}
	if batch.Timestamp.IsZero() {
		batch.Timestamp = c.now()
	}

	res, err := c.monitoring.IngestBatch(ctx, &batch)
	if err != nil {
		return nil, fmt.Errorf("ingest: camera %q: %w", batch.CameraID, err)
	}
	return res, nil
}

// MessageHandler - обработчик для подписки paho. Ошибки только логируются:
// брокер не получает отказа, следующая пачка камеры заменит снимок.
func (c *Consumer) MessageHandler(ctx context.Context) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		log := c.logger.WithFields(logrus.Fields{
			"component": "ingest",
			"topic":     msg.Topic(),
		})

		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Recovered from panic while ingesting MQTT message")
			}
		}()

		handleCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		res, err := c.HandleMessage(handleCtx, msg.Topic(), msg.Payload())
		if err != nil {
			if errors.Is(err, ErrInvalidPayload) {
				log.WithError(err).Warn("Dropped malformed MQTT message")
				return
			}
			log.WithError(err).Error("Failed to ingest observation batch")
			return
		}

		entry := log.WithFields(logrus.Fields{
			"camera_id": res.Snapshot.Identity,
			"score":     res.Snapshot.Score,
		})
		if res.Alert != nil {
			entry = entry.WithField("alert_id", res.Alert.ID)
		}
		entry.Debug("Observation batch ingested")
	}
}

func cameraFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 && parts[0] == "cameras" {
		return parts[1]
	}
	return ""
}
