package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
)

const entityColumns = `id, category, name, latitude, longitude, priority, labels, attributes, recorded_at, created_at, updated_at`

type EntityRepository struct {
	db          DB
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewEntityRepository создает репозиторий записей с координатами.
// redisClient может быть nil, тогда кэш не используется.
func NewEntityRepository(db DB, redisClient *redis.Client, cacheTTL time.Duration) service.EntityRepository {
	return &EntityRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Create сохраняет новую запись
func (r *EntityRepository) Create(ctx context.Context, entity *models.LocatedEntity) error {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	labels, attrs, err := marshalMaps(entity)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO located_entities (id, category, name, latitude, longitude, priority, labels, attributes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at;
	`
	err = r.db.QueryRow(ctx, query,
		entity.ID,
		entity.Category,
		entity.Name,
		entity.Latitude,
		entity.Longitude,
		entity.Priority,
		labels,
		attrs,
		entity.RecordedAt,
	).Scan(&entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}

	r.invalidate(ctx, entity.Category)
	return nil
}

// GetByID возвращает запись по UUID
func (r *EntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LocatedEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM located_entities WHERE id = $1;`
	entity, err := scanEntity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("entity with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get entity by id: %w", err)
	}
	return entity, nil
}

// Update перезаписывает запись; категория может измениться, поэтому сбрасываются обе
func (r *EntityRepository) Update(ctx context.Context, entity *models.LocatedEntity) error {
	labels, attrs, err := marshalMaps(entity)
	if err != nil {
		return err
	}

	query := `
		UPDATE located_entities SET
			category = $1,
			name = $2,
			latitude = $3,
			longitude = $4,
			priority = $5,
			labels = $6,
			attributes = $7,
			recorded_at = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING (SELECT category FROM located_entities WHERE id = $9), created_at, updated_at;
	`
	var previousCategory string
	err = r.db.QueryRow(ctx, query,
		entity.Category,
		entity.Name,
		entity.Latitude,
		entity.Longitude,
		entity.Priority,
		labels,
		attrs,
		entity.RecordedAt,
		entity.ID,
	).Scan(&previousCategory, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("entity with id %s: %w", entity.ID, service.ErrNotFound)
		}
		return fmt.Errorf("failed to update entity: %w", err)
	}

	r.invalidate(ctx, entity.Category, previousCategory)
	return nil
}

// ListByCategory возвращает записи категории (пустая категория - все записи).
// Результат кэшируется в Redis на cacheTTL.
func (r *EntityRepository) ListByCategory(ctx context.Context, category string) ([]*models.LocatedEntity, error) {
	if cached, err := r.getListFromCache(ctx, category); err == nil && cached != nil {
		return cached, nil
	}

	query := `SELECT ` + entityColumns + ` FROM located_entities`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY recorded_at DESC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	entities := make([]*models.LocatedEntity, 0)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}

	_ = r.setListCache(ctx, category, entities)
	return entities, nil
}

func scanEntity(row pgx.Row) (*models.LocatedEntity, error) {
	entity := &models.LocatedEntity{}
	var labels, attrs []byte
	err := row.Scan(
		&entity.ID,
		&entity.Category,
		&entity.Name,
		&entity.Latitude,
		&entity.Longitude,
		&entity.Priority,
		&labels,
		&attrs,
		&entity.RecordedAt,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &entity.Labels); err != nil {
			return nil, fmt.Errorf("failed to decode labels: %w", err)
		}
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &entity.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode attributes: %w", err)
		}
	}
	return entity, nil
}

func marshalMaps(entity *models.LocatedEntity) ([]byte, []byte, error) {
	labels := entity.Labels
	if labels == nil {
		labels = map[string]string{}
	}
	attrs := entity.Attributes
	if attrs == nil {
		attrs = map[string]float64{}
	}
	l, err := json.Marshal(labels)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode labels: %w", err)
	}
	a, err := json.Marshal(attrs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	return l, a, nil
}

func entityListKey(category string) string {
	if category == "" {
		return "entities:all"
	}
	return "entities:category:" + category
}

// getListFromCache возвращает nil, nil при промахе
func (r *EntityRepository) getListFromCache(ctx context.Context, category string) ([]*models.LocatedEntity, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, entityListKey(category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entities from cache: %w", err)
	}

	entities := make([]*models.LocatedEntity, 0)
	if err := json.Unmarshal(val, &entities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entities from cache: %w", err)
	}
	return entities, nil
}

func (r *EntityRepository) setListCache(ctx context.Context, category string, entities []*models.LocatedEntity) error {
	if r.redisClient == nil {
		return nil
	}
	val, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("failed to marshal entities for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, entityListKey(category), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set entities in cache: %w", err)
	}
	return nil
}

// invalidate удаляет списки затронутых категорий и общий список
func (r *EntityRepository) invalidate(ctx context.Context, categories ...string) {
	if r.redisClient == nil {
		return
	}
	keys := []string{entityListKey("")}
	for _, c := range categories {
		if c != "" && !slices.Contains(keys, entityListKey(c)) {
			keys = append(keys, entityListKey(c))
		}
	}
	_ = r.redisClient.Del(ctx, keys...).Err()
}

