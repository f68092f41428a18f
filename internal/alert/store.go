package alert

import (
	"context"
	"errors"
	"time"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
)

var (
	// ErrUnknownIdentity - оповещение не найдено или уже закрыто
	ErrUnknownIdentity = errors.New("alert not found")
	// ErrAlertExists - у идентификатора уже есть открытое оповещение
	ErrAlertExists = errors.New("active alert already exists")
	// ErrSnapshotNotFound - для идентификатора нет снимка
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrEmptyIdentity - пустой идентификатор источника
	ErrEmptyIdentity = errors.New("empty identity")
)

// Store - хранилище снимков и оповещений.
// CreateAlert обязан вернуть ErrAlertExists, если открытое оповещение уже есть.
type Store interface {
	UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) (*models.Snapshot, error)
	GetSnapshot(ctx context.Context, identity string) (*models.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]*models.Snapshot, error)
	DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error)

	ActiveAlert(ctx context.Context, identity string) (*models.Alert, error)
	CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	ResolveAlert(ctx context.Context, id int64, at time.Time) (*models.Alert, error)
	ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]*models.Alert, error)
}
