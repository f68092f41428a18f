package alert

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
)

// MemoryStore - Store в памяти процесса. Используется в тестах и при запуске без базы.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*models.Snapshot
	alerts    []*models.Alert
	nextID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*models.Snapshot)}
}

func (s *MemoryStore) UpsertSnapshot(_ context.Context, snapshot *models.Snapshot) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *snapshot
	now := time.Now().UTC()
	if prev, ok := s.snapshots[snapshot.Identity]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.snapshots[snapshot.Identity] = &stored

	out := stored
	return &out, nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, identity string) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[identity]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	out := *snap
	return &out, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context) ([]*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		c := *snap
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Snapshot) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) DeleteSnapshotsBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for identity, snap := range s.snapshots {
		if snap.Timestamp.Before(before) {
			delete(s.snapshots, identity)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) ActiveAlert(_ context.Context, identity string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a := s.activeLocked(identity); a != nil {
		out := *a
		return &out, nil
	}
	return nil, nil
}

func (s *MemoryStore) CreateAlert(_ context.Context, alert *models.Alert) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLocked(alert.Identity) != nil {
		return nil, ErrAlertExists
	}
	s.nextID++
	stored := *alert
	stored.ID = s.nextID
	stored.IsActive = true
	stored.ResolvedAt = nil
	s.alerts = append(s.alerts, &stored)

	out := stored
	return &out, nil
}

func (s *MemoryStore) ResolveAlert(_ context.Context, id int64, at time.Time) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID != id {
			continue
		}
		if !a.IsActive {
			return nil, ErrUnknownIdentity
		}
		a.IsActive = false
		resolvedAt := at
		a.ResolvedAt = &resolvedAt
		out := *a
		return &out, nil
	}
	return nil, ErrUnknownIdentity
}

// ListAlerts возвращает оповещения от новых к старым; limit <= 0 - без ограничения
func (s *MemoryStore) ListAlerts(_ context.Context, activeOnly bool, limit int) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Alert, 0)
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if activeOnly && !a.IsActive {
			continue
		}
		c := *a
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) activeLocked(identity string) *models.Alert {
	for _, a := range s.alerts {
		if a.Identity == identity && a.IsActive {
			return a
		}
	}
	return nil
}
