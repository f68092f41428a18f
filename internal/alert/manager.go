package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
)

// Policy - пороги открытия оповещения и его серьезности
type Policy struct {
	OpenThreshold         float64
	HighSeverityThreshold float64
}

func DefaultPolicy() Policy {
	return Policy{OpenThreshold: 70, HighSeverityThreshold: 80}
}

// Manager хранит последний снимок по каждому идентификатору и открывает оповещения.
// Оповещение закрывается только через ResolveAlert.
type Manager struct {
	store  Store
	policy Policy
	locks  stripedLocks
	now    func() time.Time
}

func NewManager(store Store, policy Policy) *Manager {
	return &Manager{
		store:  store,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Policy возвращает текущие пороги
func (m *Manager) Policy() Policy {
	return m.policy
}

// UpsertSnapshot заменяет снимок идентификатора и, если оценка достигла порога,
// открывает оповещение. Возвращает оповещение, только если оно создано этим вызовом.
func (m *Manager) UpsertSnapshot(ctx context.Context, entity models.MonitoredEntity, assessment risk.Assessment, at time.Time) (*models.Snapshot, *models.Alert, error) {
	if entity.Identity == "" {
		return nil, nil, ErrEmptyIdentity
	}
	if at.IsZero() {
		at = m.now()
	}

	unlock := m.locks.lock(entity.Identity)
	defer unlock()

	snapshot, err := m.store.UpsertSnapshot(ctx, &models.Snapshot{
		MonitoredEntity: entity,
		Assessment:      assessment,
		Timestamp:       at,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not upsert snapshot: %w", err)
	}

	if assessment.Score < m.policy.OpenThreshold {
		return snapshot, nil, nil
	}

	active, err := m.store.ActiveAlert(ctx, entity.Identity)
	if err != nil {
		return snapshot, nil, fmt.Errorf("could not get active alert: %w", err)
	}
	if active != nil {
		return snapshot, nil, nil
	}

	created, err := m.store.CreateAlert(ctx, m.newAlert(entity, assessment, at))
	if errors.Is(err, ErrAlertExists) {
		return snapshot, nil, nil
	}
	if err != nil {
		return snapshot, nil, fmt.Errorf("could not create alert: %w", err)
	}
	return snapshot, created, nil
}

// ResolveAlert закрывает открытое оповещение. Повторный вызов возвращает ErrUnknownIdentity.
func (m *Manager) ResolveAlert(ctx context.Context, id int64) (*models.Alert, error) {
	resolved, err := m.store.ResolveAlert(ctx, id, m.now())
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Severity возвращает серьезность для оценки, уже достигшей порога открытия
func (m *Manager) Severity(score float64) string {
	if score >= m.policy.HighSeverityThreshold {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

func (m *Manager) newAlert(entity models.MonitoredEntity, a risk.Assessment, at time.Time) *models.Alert {
	return &models.Alert{
		Identity:   entity.Identity,
		EntityName: entity.Name,
		AlertType:  models.AlertTypeHighCrowdDensity,
		Severity:   m.Severity(a.Score),
		Message:    fmt.Sprintf("High crowd density detected: %.1f/100 score with %d people", a.Score, a.PeopleCount),
		Score:      a.Score,
		Latitude:   entity.Latitude,
		Longitude:  entity.Longitude,
		IsActive:   true,
		CreatedAt:  at,
	}
}

// RankAlerts упорядочивает оповещения: HIGH раньше MEDIUM, затем по расстоянию до reference
// (если задано), затем новые раньше старых.
func RankAlerts(alerts []*models.Alert, reference *geo.Coordinate, skip, limit int) ([]proximity.Result[*models.Alert], error) {
	return proximity.Rank(alerts, proximity.Query{
		Reference:     reference,
		PriorityOrder: []string{models.SeverityHigh, models.SeverityMedium},
		Skip:          skip,
		Limit:         limit,
	})
}
