package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
)

func camera(id string) models.MonitoredEntity {
	lat, lng := 55.75, 37.61
	return models.MonitoredEntity{Identity: id, Name: "Camera " + id, Category: "camera", Latitude: &lat, Longitude: &lng}
}

func assessment(score float64) risk.Assessment {
	return risk.Assessment{Score: score, Level: risk.LevelHigh, Priority: risk.PriorityUrgent, PeopleCount: 25}
}

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewManager(store, DefaultPolicy()), store
}

func TestUpsertSnapshot_OpensAlertAtThreshold(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	snap, created, err := m.UpsertSnapshot(ctx, camera("cam-1"), assessment(70), at)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "cam-1", snap.Identity)
	assert.Equal(t, at, snap.Timestamp)
	assert.Equal(t, models.SeverityMedium, created.Severity)
	assert.Equal(t, models.AlertTypeHighCrowdDensity, created.AlertType)
	assert.Equal(t, "High crowd density detected: 70.0/100 score with 25 people", created.Message)
	assert.True(t, created.IsActive)

	active, err := store.ActiveAlert(ctx, "cam-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, created.ID, active.ID)
}

func TestUpsertSnapshot_BelowThresholdNoAlert(t *testing.T) {
	m, store := newTestManager(t)

	_, created, err := m.UpsertSnapshot(context.Background(), camera("cam-1"), assessment(69.9), time.Time{})
	require.NoError(t, err)
	assert.Nil(t, created)

	alerts, err := store.ListAlerts(context.Background(), false, 0)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestUpsertSnapshot_Severity(t *testing.T) {
	m, _ := newTestManager(t)

	_, high, err := m.UpsertSnapshot(context.Background(), camera("a"), assessment(85), time.Time{})
	require.NoError(t, err)
	_, medium, err := m.UpsertSnapshot(context.Background(), camera("b"), assessment(79.9), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, models.SeverityHigh, high.Severity)
	assert.Equal(t, models.SeverityMedium, medium.Severity)
	assert.Equal(t, models.SeverityHigh, m.Severity(80))
}

func TestUpsertSnapshot_AtMostOneOpenAlert(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	_, first, err := m.UpsertSnapshot(ctx, camera("cam-1"), assessment(75), time.Time{})
	require.NoError(t, err)
	require.NotNil(t, first)

	_, second, err := m.UpsertSnapshot(ctx, camera("cam-1"), assessment(95), time.Time{})
	require.NoError(t, err)
	assert.Nil(t, second)

	// снижение оценки не закрывает оповещение
	_, _, err = m.UpsertSnapshot(ctx, camera("cam-1"), assessment(10), time.Time{})
	require.NoError(t, err)
	active, err := store.ActiveAlert(ctx, "cam-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	snap, err := store.GetSnapshot(ctx, "cam-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.Score)
}

func TestUpsertSnapshot_ConcurrentSameIdentity(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	opened := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := m.UpsertSnapshot(ctx, camera("gate"), assessment(90), time.Time{})
			assert.NoError(t, err)
			if created != nil {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opened)
	alerts, err := store.ListAlerts(ctx, true, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

// racyStore не проверяет конфликт при создании и уступает планировщику между
// проверкой и вставкой, так что единственность оповещения держится только на блокировке менеджера
type racyStore struct {
	*MemoryStore
	mu     sync.Mutex
	alerts []*models.Alert
}

func (s *racyStore) ActiveAlert(_ context.Context, identity string) (*models.Alert, error) {
	s.mu.Lock()
	var found *models.Alert
	for _, a := range s.alerts {
		if a.Identity == identity && a.IsActive {
			found = a
		}
	}
	s.mu.Unlock()

	time.Sleep(time.Millisecond)
	return found, nil
}

func (s *racyStore) CreateAlert(_ context.Context, a *models.Alert) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *a
	stored.ID = int64(len(s.alerts) + 1)
	stored.IsActive = true
	s.alerts = append(s.alerts, &stored)
	out := stored
	return &out, nil
}

func TestUpsertSnapshot_LockSerializesCheckAndCreate(t *testing.T) {
	store := &racyStore{MemoryStore: NewMemoryStore()}
	m := NewManager(store, DefaultPolicy())
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _, err := m.UpsertSnapshot(ctx, camera("gate"), assessment(95), time.Time{})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.alerts, 1)
}

func TestUpsertSnapshot_ReplacesSnapshot(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()
	first := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	_, _, err := m.UpsertSnapshot(ctx, camera("cam-1"), assessment(20), first)
	require.NoError(t, err)
	_, _, err = m.UpsertSnapshot(ctx, camera("cam-1"), assessment(30), first.Add(time.Minute))
	require.NoError(t, err)

	snaps, err := store.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 30.0, snaps[0].Score)
	assert.Equal(t, first.Add(time.Minute), snaps[0].Timestamp)
}

func TestUpsertSnapshot_EmptyIdentity(t *testing.T) {
	m, _ := newTestManager(t)

	_, _, err := m.UpsertSnapshot(context.Background(), models.MonitoredEntity{}, assessment(90), time.Time{})
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestResolveAlert(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, created, err := m.UpsertSnapshot(ctx, camera("cam-1"), assessment(88), time.Time{})
	require.NoError(t, err)

	resolved, err := m.ResolveAlert(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, resolved.IsActive)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = m.ResolveAlert(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUnknownIdentity)

	_, err = m.ResolveAlert(ctx, 999)
	assert.ErrorIs(t, err, ErrUnknownIdentity)

	// после закрытия следующая высокая оценка открывает новое оповещение
	_, reopened, err := m.UpsertSnapshot(ctx, camera("cam-1"), assessment(88), time.Time{})
	require.NoError(t, err)
	require.NotNil(t, reopened)
	assert.Greater(t, reopened.ID, created.ID)
}

type racingStore struct {
	*MemoryStore
}

func (s racingStore) ActiveAlert(context.Context, string) (*models.Alert, error) {
	return nil, nil
}

func (s racingStore) CreateAlert(context.Context, *models.Alert) (*models.Alert, error) {
	return nil, ErrAlertExists
}

func TestUpsertSnapshot_StoreConflictIsNotAnError(t *testing.T) {
	m := NewManager(racingStore{NewMemoryStore()}, DefaultPolicy())

	snap, created, err := m.UpsertSnapshot(context.Background(), camera("cam-1"), assessment(90), time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Nil(t, created)
}

type failingStore struct {
	*MemoryStore
}

var errStoreDown = errors.New("store down")

func (s failingStore) UpsertSnapshot(context.Context, *models.Snapshot) (*models.Snapshot, error) {
	return nil, errStoreDown
}

func TestUpsertSnapshot_StoreError(t *testing.T) {
	m := NewManager(failingStore{NewMemoryStore()}, DefaultPolicy())

	_, _, err := m.UpsertSnapshot(context.Background(), camera("cam-1"), assessment(90), time.Time{})
	assert.ErrorIs(t, err, errStoreDown)
}

func TestRankAlerts(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	near, far := 55.75, 56.75
	lng := 37.61
	alerts := []*models.Alert{
		{ID: 1, Severity: models.SeverityMedium, Latitude: &near, Longitude: &lng, CreatedAt: now},
		{ID: 2, Severity: models.SeverityHigh, Latitude: &far, Longitude: &lng, CreatedAt: now},
		{ID: 3, Severity: models.SeverityHigh, Latitude: &near, Longitude: &lng, CreatedAt: now.Add(-time.Hour)},
		{ID: 4, Severity: models.SeverityHigh, CreatedAt: now},
	}

	ref := geo.Coordinate{Latitude: 55.75, Longitude: 37.61}
	ranked, err := RankAlerts(alerts, &ref, 0, -1)
	require.NoError(t, err)

	got := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		got = append(got, r.Item.ID)
	}
	assert.Equal(t, []int64{3, 2, 4, 1}, got)

	noRef, err := RankAlerts(alerts, nil, 0, 2)
	require.NoError(t, err)
	require.Len(t, noRef, 2)
	// без точки отсчета: HIGH, затем новые раньше старых, затем по ID
	assert.Equal(t, int64(2), noRef[0].Item.ID)
	assert.Equal(t, int64(4), noRef[1].Item.ID)
}
