package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/crowd_proximity_engine/internal/alert"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
)

var (
	snapshotColumnNames = []string{
		"identity", "name", "category", "latitude", "longitude", "score", "level", "priority",
		"people_count", "max_density", "mean_density", "observed_at", "created_at", "updated_at",
	}
	alertColumnNames = []string{
		"id", "identity", "entity_name", "alert_type", "severity", "message", "score",
		"latitude", "longitude", "is_active", "created_at", "resolved_at",
	}
)

func newMockStore(t *testing.T) (alert.Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewMonitoringStore(mock), mock
}

func TestMonitoringStore_UpsertSnapshot(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	lat, lng := 55.75, 37.61

	snapshot := &models.Snapshot{
		MonitoredEntity: models.MonitoredEntity{Identity: "gate-1", Name: "Gate 1", Category: "camera", Latitude: &lat, Longitude: &lng},
		Assessment:      risk.Assessment{Score: 82.5, Level: risk.LevelHigh, Priority: risk.PriorityUrgent, PeopleCount: 24, MaxCellValue: 1.2, MeanNonZeroCellValue: 0.3},
		Timestamp:       now,
	}
	mock.ExpectQuery("INSERT INTO camera_snapshots").
		WithArgs("gate-1", "Gate 1", "camera", &lat, &lng, 82.5, "HIGH", "URGENT", 24, 1.2, 0.3, now).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	stored, err := store.UpsertSnapshot(context.Background(), snapshot)

	require.NoError(t, err)
	assert.Equal(t, now, stored.UpdatedAt)
	assert.Equal(t, 82.5, stored.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonitoringStore_GetSnapshot_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .+ FROM camera_snapshots WHERE identity").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetSnapshot(context.Background(), "nope")

	assert.ErrorIs(t, err, alert.ErrSnapshotNotFound)
}

func TestMonitoringStore_ListSnapshots(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	lat, lng := 55.75, 37.61

	mock.ExpectQuery("SELECT .+ FROM camera_snapshots ORDER BY observed_at DESC").
		WillReturnRows(pgxmock.NewRows(snapshotColumnNames).
			AddRow("gate-1", "Gate 1", "camera", &lat, &lng, 91.0, "HIGH", "URGENT", 30, 1.5, 0.4, now, now, now).
			AddRow("lobby", "Lobby", "camera", (*float64)(nil), (*float64)(nil), 3.2, "LOW", "NORMAL", 1, 0.1, 0.05, now, now, now))

	snapshots, err := store.ListSnapshots(context.Background())

	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, risk.LevelHigh, snapshots[0].Level)
	assert.Equal(t, risk.PriorityUrgent, snapshots[0].Priority)
	assert.NotNil(t, snapshots[0].Location())
	assert.Nil(t, snapshots[1].Location())
}

func TestMonitoringStore_DeleteSnapshotsBefore(t *testing.T) {
	store, mock := newMockStore(t)
	cutoff := time.Date(2026, 4, 24, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM camera_snapshots").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := store.DeleteSnapshotsBefore(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestMonitoringStore_ActiveAlert_None(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .+ FROM alerts WHERE identity").
		WithArgs("gate-1").
		WillReturnError(pgx.ErrNoRows)

	active, err := store.ActiveAlert(context.Background(), "gate-1")

	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestMonitoringStore_CreateAlert(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO alerts").
		WithArgs(anyArgs(9)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	created, err := store.CreateAlert(context.Background(), &models.Alert{
		Identity: "gate-1", AlertType: models.AlertTypeHighCrowdDensity, Severity: models.SeverityHigh, Score: 91, CreatedAt: now,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.True(t, created.IsActive)
}

func TestMonitoringStore_CreateAlert_Conflict(t *testing.T) {
	store, mock := newMockStore(t)

	// ON CONFLICT DO NOTHING не возвращает строк
	mock.ExpectQuery("INSERT INTO alerts").
		WithArgs(anyArgs(9)...).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.CreateAlert(context.Background(), &models.Alert{Identity: "gate-1"})

	assert.ErrorIs(t, err, alert.ErrAlertExists)
}

func TestMonitoringStore_ResolveAlert(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	resolvedAt := created.Add(time.Hour)

	mock.ExpectQuery("UPDATE alerts SET is_active = FALSE").
		WithArgs(int64(42), resolvedAt).
		WillReturnRows(pgxmock.NewRows(alertColumnNames).AddRow(
			int64(42), "gate-1", "Gate 1", models.AlertTypeHighCrowdDensity, models.SeverityHigh, "msg", 91.0,
			(*float64)(nil), (*float64)(nil), false, created, &resolvedAt,
		))

	resolved, err := store.ResolveAlert(context.Background(), 42, resolvedAt)

	require.NoError(t, err)
	assert.False(t, resolved.IsActive)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, resolvedAt, *resolved.ResolvedAt)
}

func TestMonitoringStore_ResolveAlert_Unknown(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE alerts SET is_active = FALSE").
		WithArgs(int64(7), at).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.ResolveAlert(context.Background(), 7, at)

	assert.ErrorIs(t, err, alert.ErrUnknownIdentity)
}

func TestMonitoringStore_ListAlerts(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM alerts WHERE is_active ORDER BY created_at DESC, id DESC LIMIT").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows(alertColumnNames).AddRow(
			int64(1), "gate-1", "Gate 1", models.AlertTypeHighCrowdDensity, models.SeverityMedium, "msg", 72.0,
			(*float64)(nil), (*float64)(nil), true, now, (*time.Time)(nil),
		))

	alerts, err := store.ListAlerts(context.Background(), true, 50)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsActive)
	assert.Nil(t, alerts[0].ResolvedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
