package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/crowd_proximity_engine/internal/alert"
	"github.com/shenikar/crowd_proximity_engine/internal/config"
	"github.com/shenikar/crowd_proximity_engine/internal/density"
	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
	"github.com/shenikar/crowd_proximity_engine/internal/webhook"
)

//go:generate mockgen -source=monitoring.go -destination=mocks/monitoring_mock.go -package=mocks

const (
	DefaultAlertLimit    = 50
	DefaultRetentionDays = 7
	DefaultRankingLimit  = 100
)

// ErrInvalidBatch - пачка без идентификатора камеры или со слишком большим числом обнаружений
var ErrInvalidBatch = errors.New("invalid observation batch")

// MaxBatchObservations - предел обнаружений в одной пачке
const MaxBatchObservations = 10000

// BatchScore - результат оценки одной пачки
type BatchScore struct {
	Assessment risk.Assessment
	Field      *density.Field
	Accepted   int
	Dropped    int
}

// IngestResult - результат приема пачки: новый снимок и оповещение, если оно открыто этой пачкой
type IngestResult struct {
	Snapshot *models.Snapshot
	Alert    *models.Alert
	Dropped  int
}

// AlertQuery - параметры выборки оповещений
type AlertQuery struct {
	ActiveOnly bool
	Reference  *geo.Coordinate
	Skip       int
	Limit      int
}

// MonitoringService определяет контракт оценки плотности толпы и работы с оповещениями
type MonitoringService interface {
	ScoreObservationBatch(ctx context.Context, batch *models.ObservationBatch) (*BatchScore, error)
	IngestBatch(ctx context.Context, batch *models.ObservationBatch) (*IngestResult, error)
	IngestBatches(ctx context.Context, batches []*models.ObservationBatch) ([]*IngestResult, error)
	GetSnapshot(ctx context.Context, identity string) (*models.Snapshot, error)
	Ranking(ctx context.Context, limit int) ([]*models.Snapshot, error)
	Overview(ctx context.Context) (*models.SystemOverview, error)
	PurgeSnapshots(ctx context.Context, olderThanDays int) (int64, error)
	ListAlerts(ctx context.Context, q AlertQuery) ([]proximity.Result[*models.Alert], error)
	ResolveAlert(ctx context.Context, id int64) (*models.Alert, error)
}

type monitoringService struct {
	store       alert.Store
	manager     *alert.Manager
	classifier  *risk.Classifier
	density     config.DensityPolicy
	publisher   webhook.WebhookPublisher
	logger      *logrus.Logger
	concurrency int
	now         func() time.Time
}

// NewMonitoringService собирает сервис по политике площадки. publisher может быть nil.
func NewMonitoringService(store alert.Store, policy *config.Policy, publisher webhook.WebhookPublisher, logger *logrus.Logger, cfg *config.Config) MonitoringService {
	concurrency := 1
	if cfg != nil && cfg.IngestConcurrency > 1 {
		concurrency = cfg.IngestConcurrency
	}
	return &monitoringService{
		store:       store,
		manager:     alert.NewManager(store, policy.AlertPolicy()),
		classifier:  risk.NewClassifier(policy.RiskPolicy()),
		density:     policy.Density,
		publisher:   publisher,
		logger:      logger,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ScoreObservationBatch строит поле плотности и оценивает риск, ничего не сохраняя
func (s *monitoringService) ScoreObservationBatch(ctx context.Context, batch *models.ObservationBatch) (*BatchScore, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "monitoring",
		"method":       "ScoreObservationBatch",
		"camera_id":    batch.CameraID,
		"observations": len(batch.Observations),
	})

	if len(batch.Observations) > MaxBatchObservations {
		log.Warn("Too many observations in batch")
		return nil, fmt.Errorf("service: %w: more than %d observations", ErrInvalidBatch, MaxBatchObservations)
	}

	width, height, radius := s.viewport(batch)
	acc, err := density.NewAccumulator(width, height, radius)
	if err != nil {
		log.WithError(err).Warn("Invalid density viewport")
		return nil, fmt.Errorf("service: could not score batch: %w", err)
	}

	dropped := acc.Fold(batch.Observations)
	for _, e := range dropped {
		log.WithError(e).Warn("Dropped malformed observation")
	}

	field := acc.Smooth(s.density.Sigma)
	peopleCount := int(math.Min(math.Round(acc.TotalWeight()), math.MaxInt32))
	assessment := s.classifier.Classify(peopleCount, field)

	log.WithFields(logrus.Fields{
		"score": assessment.Score,
		"level": assessment.Level,
	}).Debug("Batch scored")

	return &BatchScore{
		Assessment: assessment,
		Field:      field,
		Accepted:   acc.Accepted(),
		Dropped:    len(dropped),
	}, nil
}

// IngestBatch оценивает пачку, заменяет снимок камеры и при открытии оповещения публикует вебхук
func (s *monitoringService) IngestBatch(ctx context.Context, batch *models.ObservationBatch) (*IngestResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "monitoring",
		"method":    "IngestBatch",
		"camera_id": batch.CameraID,
	})
	log.Info("Ingesting observation batch")

	if batch.CameraID == "" {
		log.Warn("Batch without camera id")
		return nil, fmt.Errorf("service: %w: camera_id is required", ErrInvalidBatch)
	}
	if loc := batch.Entity().Location(); loc != nil {
		if err := loc.Validate(); err != nil {
			log.WithError(err).Warn("Batch with invalid camera location")
			return nil, fmt.Errorf("service: could not ingest batch: %w", err)
		}
	}

	score, err := s.ScoreObservationBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	at := batch.Timestamp
	if at.IsZero() {
		at = s.now()
	}

	snapshot, opened, err := s.manager.UpsertSnapshot(ctx, batch.Entity(), score.Assessment, at)
	if err != nil {
		log.WithError(err).Error("Failed to upsert snapshot")
		return nil, fmt.Errorf("service: could not ingest batch: %w", err)
	}

	if opened != nil {
		log.WithFields(logrus.Fields{
			"alert_id": opened.ID,
			"severity": opened.Severity,
			"score":    opened.Score,
		}).Warn("Crowd density alert opened")
		s.publish(ctx, log, snapshot, opened)
	}

	log.WithFields(logrus.Fields{
		"score": snapshot.Score,
		"level": snapshot.Level,
	}).Info("Observation batch ingested successfully")

	return &IngestResult{Snapshot: snapshot, Alert: opened, Dropped: score.Dropped}, nil
}

// IngestBatches обрабатывает пачки разных камер параллельно. Первая ошибка отменяет остальные.
func (s *monitoringService) IngestBatches(ctx context.Context, batches []*models.ObservationBatch) ([]*IngestResult, error) {
	results := make([]*IngestResult, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			res, err := s.IngestBatch(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d (%s): %w", i, batch.CameraID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetSnapshot возвращает текущий снимок камеры
func (s *monitoringService) GetSnapshot(ctx context.Context, identity string) (*models.Snapshot, error) {
	snapshot, err := s.store.GetSnapshot(ctx, identity)
	if err != nil {
		if errors.Is(err, alert.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("service: camera %s: %w", identity, ErrNotFound)
		}
		return nil, fmt.Errorf("service: could not get snapshot: %w", err)
	}
	return snapshot, nil
}

// Ranking возвращает снимки по убыванию оценки
func (s *monitoringService) Ranking(ctx context.Context, limit int) ([]*models.Snapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "monitoring",
		"method":  "Ranking",
		"limit":   limit,
	})

	snapshots, err := s.store.ListSnapshots(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list snapshots")
		return nil, fmt.Errorf("service: could not rank cameras: %w", err)
	}

	ranked, err := proximity.Rank(snapshots, proximity.Query{
		TieBreak: &proximity.AttributeOrder{Attribute: "score", Descending: true},
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("service: could not rank cameras: %w", err)
	}

	out := make([]*models.Snapshot, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Item)
	}
	return out, nil
}

// Overview считает сводку по всем камерам
func (s *monitoringService) Overview(ctx context.Context) (*models.SystemOverview, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "monitoring",
		"method":  "Overview",
	})

	snapshots, err := s.store.ListSnapshots(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list snapshots")
		return nil, fmt.Errorf("service: could not build overview: %w", err)
	}
	active, err := s.store.ListAlerts(ctx, true, 0)
	if err != nil {
		log.WithError(err).Error("Failed to list active alerts")
		return nil, fmt.Errorf("service: could not build overview: %w", err)
	}

	overview := &models.SystemOverview{
		TotalCameras: len(snapshots),
		ActiveAlerts: len(active),
		LastUpdated:  s.now(),
	}
	critical := s.manager.Policy().HighSeverityThreshold
	total := 0.0
	for _, snap := range snapshots {
		overview.TotalPeople += snap.PeopleCount
		total += snap.Score
		if snap.Level == risk.LevelHigh {
			overview.HighDensityCameras++
		}
		if snap.Score >= critical {
			overview.CriticalCameras++
		}
	}
	if len(snapshots) > 0 {
		overview.AverageScore = math.Round(total/float64(len(snapshots))*10) / 10
	}
	return overview, nil
}

// PurgeSnapshots удаляет снимки старше olderThanDays дней
func (s *monitoringService) PurgeSnapshots(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = DefaultRetentionDays
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "monitoring",
		"method":  "PurgeSnapshots",
		"days":    olderThanDays,
	})

	cutoff := s.now().AddDate(0, 0, -olderThanDays)
	deleted, err := s.store.DeleteSnapshotsBefore(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("Failed to delete old snapshots")
		return 0, fmt.Errorf("service: could not purge snapshots: %w", err)
	}

	log.WithField("deleted", deleted).Info("Old snapshots purged")
	return deleted, nil
}

// ListAlerts возвращает оповещения: HIGH раньше MEDIUM, затем ближе к reference, затем новые
func (s *monitoringService) ListAlerts(ctx context.Context, q AlertQuery) ([]proximity.Result[*models.Alert], error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "monitoring",
		"method":      "ListAlerts",
		"active_only": q.ActiveOnly,
	})

	alerts, err := s.store.ListAlerts(ctx, q.ActiveOnly, 0)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}

	ranked, err := alert.RankAlerts(alerts, q.Reference, q.Skip, q.Limit)
	if err != nil {
		log.WithError(err).Warn("Invalid alert query")
		return nil, fmt.Errorf("service: invalid alert query: %w", err)
	}
	return ranked, nil
}

// ResolveAlert закрывает оповещение
func (s *monitoringService) ResolveAlert(ctx context.Context, id int64) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "monitoring",
		"method":   "ResolveAlert",
		"alert_id": id,
	})
	log.Info("Attempting to resolve alert")

	resolved, err := s.manager.ResolveAlert(ctx, id)
	if err != nil {
		if errors.Is(err, alert.ErrUnknownIdentity) {
			log.WithError(err).Warn("Alert not found or already resolved")
		} else {
			log.WithError(err).Error("Failed to resolve alert")
		}
		return nil, fmt.Errorf("service: could not resolve alert: %w", err)
	}

	log.Info("Alert resolved successfully")
	return resolved, nil
}

func (s *monitoringService) viewport(batch *models.ObservationBatch) (int, int, float64) {
	width, height, radius := batch.Width, batch.Height, batch.KernelRadius
	if width == 0 {
		width = s.density.Width
	}
	if height == 0 {
		height = s.density.Height
	}
	if radius == 0 {
		radius = s.density.KernelRadius
	}
	return width, height, radius
}

// publish ставит событие в очередь; ошибка доставки не отменяет прием пачки
func (s *monitoringService) publish(ctx context.Context, log *logrus.Entry, snapshot *models.Snapshot, opened *models.Alert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, webhook.NewAlertOpenedEvent(snapshot, opened)); err != nil {
		log.WithError(err).Error("Failed to publish alert webhook event")
	}
}
