package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
)

var entityColumnNames = []string{
	"id", "category", "name", "latitude", "longitude", "priority",
	"labels", "attributes", "recorded_at", "created_at", "updated_at",
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestEntityRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	rdb, redisMock := redismock.NewClientMock()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO located_entities").
		WithArgs(anyArgs(9)...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	redisMock.ExpectDel("entities:all", "entities:category:facility").SetVal(1)

	repo := NewEntityRepository(mock, rdb, time.Minute)
	entity := &models.LocatedEntity{Category: "facility", Name: "Медпункт", Latitude: 55.75, Longitude: 37.61}

	err = repo.Create(context.Background(), entity)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entity.ID)
	assert.Equal(t, now, entity.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEntityRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM located_entities WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	repo := NewEntityRepository(mock, nil, time.Minute)
	entity, err := repo.GetByID(context.Background(), id)

	assert.Nil(t, entity)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_GetByID_DecodesMaps(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM located_entities WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(entityColumnNames).AddRow(
			id, "parking", "P1", 55.75, 37.61, "",
			[]byte(`{"status":"open"}`), []byte(`{"available_capacity":12}`),
			now, now, now,
		))

	repo := NewEntityRepository(mock, nil, time.Minute)
	entity, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "open", entity.Labels["status"])
	assert.Equal(t, 12.0, entity.Attributes["available_capacity"])
}

func TestEntityRepository_Update_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE located_entities SET").
		WithArgs(anyArgs(9)...).
		WillReturnError(pgx.ErrNoRows)

	repo := NewEntityRepository(mock, nil, time.Minute)
	err = repo.Update(context.Background(), &models.LocatedEntity{ID: uuid.New(), Category: "facility"})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestEntityRepository_Update_InvalidatesBothCategories(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	rdb, redisMock := redismock.NewClientMock()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE located_entities SET").
		WithArgs(anyArgs(9)...).
		WillReturnRows(pgxmock.NewRows([]string{"category", "created_at", "updated_at"}).AddRow("crowd", now, now))
	redisMock.ExpectDel("entities:all", "entities:category:facility", "entities:category:crowd").SetVal(2)

	repo := NewEntityRepository(mock, rdb, time.Minute)
	err = repo.Update(context.Background(), &models.LocatedEntity{ID: uuid.New(), Category: "facility"})

	require.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEntityRepository_ListByCategory_CacheMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	rdb, redisMock := redismock.NewClientMock()

	id := uuid.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	expected := []*models.LocatedEntity{{
		ID: id, Category: "parking", Name: "P1", Latitude: 55.75, Longitude: 37.61,
		Labels: map[string]string{"status": "open"}, Attributes: map[string]float64{},
		RecordedAt: now, CreatedAt: now, UpdatedAt: now,
	}}
	cached, err := json.Marshal(expected)
	require.NoError(t, err)

	redisMock.ExpectGet("entities:category:parking").RedisNil()
	mock.ExpectQuery("SELECT .+ FROM located_entities WHERE category").
		WithArgs("parking").
		WillReturnRows(pgxmock.NewRows(entityColumnNames).AddRow(
			id, "parking", "P1", 55.75, 37.61, "",
			[]byte(`{"status":"open"}`), []byte(`{}`),
			now, now, now,
		))
	redisMock.ExpectSet("entities:category:parking", cached, time.Minute).SetVal("OK")

	repo := NewEntityRepository(mock, rdb, time.Minute)
	entities, err := repo.ListByCategory(context.Background(), "parking")

	require.NoError(t, err)
	assert.Equal(t, expected, entities)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEntityRepository_ListByCategory_CacheHit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	rdb, redisMock := redismock.NewClientMock()

	expected := []*models.LocatedEntity{{ID: uuid.New(), Category: "facility", Name: "F1", Latitude: 1, Longitude: 2}}
	cached, err := json.Marshal(expected)
	require.NoError(t, err)
	redisMock.ExpectGet("entities:category:facility").SetVal(string(cached))

	repo := NewEntityRepository(mock, rdb, time.Minute)
	entities, err := repo.ListByCategory(context.Background(), "facility")

	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, expected[0].ID, entities[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_ListByCategory_CacheErrorFallsBackToDB(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("entities:all").SetErr(errors.New("connection refused"))
	mock.ExpectQuery("SELECT .+ FROM located_entities ORDER BY").
		WillReturnRows(pgxmock.NewRows(entityColumnNames))

	repo := NewEntityRepository(mock, rdb, time.Minute)
	entities, err := repo.ListByCategory(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.NoError(t, mock.ExpectationsWereMet())
}
