package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shenikar/crowd_proximity_engine/internal/alert"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
)

const (
	snapshotColumns = `identity, name, category, latitude, longitude, score, level, priority, people_count, max_density, mean_density, observed_at, created_at, updated_at`
	alertColumns    = `id, identity, entity_name, alert_type, severity, message, score, latitude, longitude, is_active, created_at, resolved_at`
)

// MonitoringStore хранит снимки камер и оповещения в PostgreSQL.
// Не более одного открытого оповещения на камеру гарантирует частичный уникальный индекс.
type MonitoringStore struct {
	db DB
}

func NewMonitoringStore(db DB) alert.Store {
	return &MonitoringStore{db: db}
}

// UpsertSnapshot заменяет снимок камеры
func (s *MonitoringStore) UpsertSnapshot(ctx context.Context, snapshot *models.Snapshot) (*models.Snapshot, error) {
	query := `
		INSERT INTO camera_snapshots (identity, name, category, latitude, longitude, score, level, priority,
			people_count, max_density, mean_density, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (identity) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			score = EXCLUDED.score,
			level = EXCLUDED.level,
			priority = EXCLUDED.priority,
			people_count = EXCLUDED.people_count,
			max_density = EXCLUDED.max_density,
			mean_density = EXCLUDED.mean_density,
			observed_at = EXCLUDED.observed_at,
			updated_at = NOW()
		RETURNING created_at, updated_at;
	`
	stored := *snapshot
	err := s.db.QueryRow(ctx, query,
		stored.Identity,
		stored.Name,
		stored.Category,
		stored.Latitude,
		stored.Longitude,
		stored.Score,
		string(stored.Level),
		string(stored.Priority),
		stored.PeopleCount,
		stored.MaxCellValue,
		stored.MeanNonZeroCellValue,
		stored.Timestamp,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return &stored, nil
}

// GetSnapshot возвращает снимок камеры
func (s *MonitoringStore) GetSnapshot(ctx context.Context, identity string) (*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM camera_snapshots WHERE identity = $1;`
	snapshot, err := scanSnapshot(s.db.QueryRow(ctx, query, identity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("camera %s: %w", identity, alert.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snapshot, nil
}

// ListSnapshots возвращает все снимки, новые первыми
func (s *MonitoringStore) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM camera_snapshots ORDER BY observed_at DESC;`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*models.Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return snapshots, nil
}

// DeleteSnapshotsBefore удаляет снимки старше before и возвращает их количество
func (s *MonitoringStore) DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	cmdTag, err := s.db.Exec(ctx, `DELETE FROM camera_snapshots WHERE observed_at < $1;`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// ActiveAlert возвращает открытое оповещение камеры или nil
func (s *MonitoringStore) ActiveAlert(ctx context.Context, identity string) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE identity = $1 AND is_active;`
	a, err := scanAlert(s.db.QueryRow(ctx, query, identity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active alert: %w", err)
	}
	return a, nil
}

// CreateAlert открывает оповещение. При конфликте с уже открытым возвращает alert.ErrAlertExists.
func (s *MonitoringStore) CreateAlert(ctx context.Context, a *models.Alert) (*models.Alert, error) {
	query := `
		INSERT INTO alerts (identity, entity_name, alert_type, severity, message, score, latitude, longitude, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		ON CONFLICT (identity) WHERE is_active DO NOTHING
		RETURNING id;
	`
	created := *a
	err := s.db.QueryRow(ctx, query,
		created.Identity,
		created.EntityName,
		created.AlertType,
		created.Severity,
		created.Message,
		created.Score,
		created.Latitude,
		created.Longitude,
		created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, alert.ErrAlertExists
		}
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	created.IsActive = true
	created.ResolvedAt = nil
	return &created, nil
}

// ResolveAlert закрывает открытое оповещение
func (s *MonitoringStore) ResolveAlert(ctx context.Context, id int64, at time.Time) (*models.Alert, error) {
	query := `
		UPDATE alerts SET is_active = FALSE, resolved_at = $2
		WHERE id = $1 AND is_active
		RETURNING ` + alertColumns + `;`
	a, err := scanAlert(s.db.QueryRow(ctx, query, id, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("alert %d: %w", id, alert.ErrUnknownIdentity)
		}
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}
	return a, nil
}

// ListAlerts возвращает оповещения от новых к старым; limit <= 0 - без ограничения
func (s *MonitoringStore) ListAlerts(ctx context.Context, activeOnly bool, limit int) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	args := []any{}
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return alerts, nil
}

func scanSnapshot(row pgx.Row) (*models.Snapshot, error) {
	s := &models.Snapshot{}
	var level, priority string
	err := row.Scan(
		&s.Identity,
		&s.Name,
		&s.Category,
		&s.Latitude,
		&s.Longitude,
		&s.Score,
		&level,
		&priority,
		&s.PeopleCount,
		&s.MaxCellValue,
		&s.MeanNonZeroCellValue,
		&s.Timestamp,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Level = risk.Level(level)
	s.Priority = risk.Priority(priority)
	return s, nil
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	a := &models.Alert{}
	err := row.Scan(
		&a.ID,
		&a.Identity,
		&a.EntityName,
		&a.AlertType,
		&a.Severity,
		&a.Message,
		&a.Score,
		&a.Latitude,
		&a.Longitude,
		&a.IsActive,
		&a.CreatedAt,
		&a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
