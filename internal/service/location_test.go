package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
	"github.com/shenikar/crowd_proximity_engine/internal/service/mocks"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// newTestLocationService - сервис с моком репозитория
func newTestLocationService(t *testing.T) (service.LocationService, *mocks.MockEntityRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockEntityRepository(ctrl)
	return service.NewLocationService(repoMock, newTestLogger()), repoMock
}

func entityAt(name, category string, lat, lng float64) *models.LocatedEntity {
	return &models.LocatedEntity{ID: uuid.New(), Name: name, Category: category, Latitude: lat, Longitude: lng}
}

func TestCreateEntity_Success(t *testing.T) {
	// Подготовка
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()
	entity := &models.LocatedEntity{Name: "Медпункт", Category: " Facility ", Latitude: 55.75, Longitude: 37.61}

	// Ожидания
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, e *models.LocatedEntity) error {
			assert.Equal(t, "facility", e.Category)
			assert.False(t, e.RecordedAt.IsZero())
			return nil
		}).
		Times(1)

	// Действие
	err := svc.CreateEntity(ctx, entity)

	// Проверки
	require.NoError(t, err)
}

func TestCreateEntity_InvalidCoordinate(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	err := svc.CreateEntity(context.Background(), &models.LocatedEntity{Latitude: 91, Longitude: 0})

	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestGetEntity_NotFound(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()
	id := uuid.New()

	repoMock.EXPECT().
		GetByID(ctx, id).
		Return(nil, fmt.Errorf("entity with id %s: %w", id, service.ErrNotFound)).
		Times(1)

	entity, err := svc.GetEntity(ctx, id)

	require.Error(t, err)
	assert.Nil(t, entity)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorContains(t, err, "could not get entity")
}

func TestUpdateEntity_Success(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()
	existing := entityAt("Парковка A", "parking", 55.75, 37.61)
	update := &models.LocatedEntity{
		ID:         existing.ID,
		Name:       "Парковка A (север)",
		Category:   "parking",
		Latitude:   55.76,
		Longitude:  37.62,
		Attributes: map[string]float64{"available_capacity": 10},
	}

	repoMock.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	repoMock.EXPECT().
		Update(ctx, existing).
		Return(nil).
		Times(1)

	err := svc.UpdateEntity(ctx, update)

	require.NoError(t, err)
	assert.Equal(t, "Парковка A (север)", update.Name)
	assert.Equal(t, 55.76, existing.Latitude)
	assert.Equal(t, 10.0, existing.Attributes["available_capacity"])
}

func TestUpdateEntity_NotFound(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()
	update := entityAt("x", "facility", 1, 1)

	repoMock.EXPECT().GetByID(ctx, update.ID).Return(nil, service.ErrNotFound).Times(1)
	repoMock.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	err := svc.UpdateEntity(ctx, update)

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestNearby_RadiusAndOrder(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()

	near := entityAt("near", "facility", 0, 0.01)
	nearer := entityAt("nearer", "facility", 0, 0.001)
	far := entityAt("far", "facility", 0, 1)
	repoMock.EXPECT().
		ListByCategory(ctx, "facility").
		Return([]*models.LocatedEntity{far, near, nearer}, nil).
		Times(1)

	radius := 5.0
	results, err := svc.Nearby(ctx, service.NearbyQuery{
		Category:  "Facility",
		Reference: &geo.Coordinate{Latitude: 0, Longitude: 0},
		RadiusKm:  &radius,
		Limit:     service.DefaultNearbyLimit,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "nearer", results[0].Item.Name)
	assert.Equal(t, "near", results[1].Item.Name)
	require.NotNil(t, results[0].DistanceKm)
	assert.Less(t, *results[0].DistanceKm, *results[1].DistanceKm)
}

func TestNearby_EmergencyPriorityDefaults(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()

	medium := entityAt("medium", "emergency", 0, 0.001)
	medium.Priority = "medium"
	critical := entityAt("critical", "emergency", 0, 0.5)
	critical.Priority = "critical"
	repoMock.EXPECT().ListByCategory(ctx, "emergency").Return([]*models.LocatedEntity{medium, critical}, nil)

	results, err := svc.Nearby(ctx, service.NearbyQuery{
		Category:  "emergency",
		Reference: &geo.Coordinate{},
		Limit:     10,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "critical", results[0].Item.Name)
}

func TestNearby_ParkingAvailabilityTieBreak(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()

	low := entityAt("low", "parking", 10, 10)
	low.Attributes = map[string]float64{"availability_percentage": 5, "available_capacity": 2}
	high := entityAt("high", "parking", 10, 10)
	high.Attributes = map[string]float64{"availability_percentage": 80, "available_capacity": 40}
	full := entityAt("full", "parking", 10, 10)
	full.Attributes = map[string]float64{"availability_percentage": 0, "available_capacity": 0}
	repoMock.EXPECT().ListByCategory(ctx, "parking").Return([]*models.LocatedEntity{low, full, high}, nil)

	pred, err := proximity.ParsePredicate("available_capacity:gt:0")
	require.NoError(t, err)
	results, err := svc.Nearby(ctx, service.NearbyQuery{
		Category:   "parking",
		Reference:  &geo.Coordinate{Latitude: 10, Longitude: 10},
		Predicates: []proximity.Predicate{pred},
		Limit:      10,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "high", results[0].Item.Name)
	assert.Equal(t, "low", results[1].Item.Name)
}

func TestNearby_LimitIsCapped(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()

	entities := make([]*models.LocatedEntity, 0, 600)
	for i := 0; i < 600; i++ {
		entities = append(entities, entityAt(fmt.Sprint(i), "route", 0, 0))
	}
	repoMock.EXPECT().ListByCategory(ctx, "route").Return(entities, nil)

	results, err := svc.Nearby(ctx, service.NearbyQuery{Category: "route", Limit: 10000})

	require.NoError(t, err)
	assert.Len(t, results, service.MaxNearbyLimit)
}

func TestNearby_InvalidRadius(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()
	repoMock.EXPECT().ListByCategory(ctx, "").Return([]*models.LocatedEntity{}, nil)

	radius := -1.0
	_, err := svc.Nearby(ctx, service.NearbyQuery{Reference: &geo.Coordinate{}, RadiusKm: &radius, Limit: 10})

	assert.ErrorIs(t, err, proximity.ErrInvalidRadius)
}

func TestNearby_RepositoryError(t *testing.T) {
	svc, repoMock := newTestLocationService(t)
	ctx := context.Background()
	repoMock.EXPECT().ListByCategory(ctx, "facility").Return(nil, errors.New("db down"))

	_, err := svc.Nearby(ctx, service.NearbyQuery{Category: "facility", Limit: 10})

	assert.ErrorContains(t, err, "could not list entities")
}
