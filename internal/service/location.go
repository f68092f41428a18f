package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
)

//go:generate mockgen -source=location.go -destination=mocks/location_mock.go -package=mocks

// ErrNotFound - запись не найдена
var ErrNotFound = errors.New("not found")

const (
	DefaultNearbyLimit = 100
	MaxNearbyLimit     = 500
)

// categoryDefaults - порядок приоритетов и дополнительная сортировка, если запрос их не задает
var categoryDefaults = map[string]struct {
	priorities []string
	tieBreak   *proximity.AttributeOrder
}{
	"emergency": {priorities: []string{"critical", "high", "medium"}},
	"parking":   {tieBreak: &proximity.AttributeOrder{Attribute: "availability_percentage", Descending: true}},
	"crowd":     {tieBreak: &proximity.AttributeOrder{Attribute: "people_count"}},
}

// EntityRepository определяет контракт для работы с бд записей с координатами
type EntityRepository interface {
	Create(ctx context.Context, entity *models.LocatedEntity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LocatedEntity, error)
	Update(ctx context.Context, entity *models.LocatedEntity) error
	ListByCategory(ctx context.Context, category string) ([]*models.LocatedEntity, error)
}

// NearbyQuery - параметры поиска ближайших записей
type NearbyQuery struct {
	Category      string
	Labels        map[string]string
	Predicates    []proximity.Predicate
	Reference     *geo.Coordinate
	RadiusKm      *float64
	PriorityOrder []string
	TieBreak      *proximity.AttributeOrder
	Skip          int
	Limit         int
}

// LocationService определяет контракт для работы с записями с координатами
type LocationService interface {
	CreateEntity(ctx context.Context, entity *models.LocatedEntity) error
	GetEntity(ctx context.Context, id uuid.UUID) (*models.LocatedEntity, error)
	UpdateEntity(ctx context.Context, entity *models.LocatedEntity) error
	Nearby(ctx context.Context, q NearbyQuery) ([]proximity.Result[*models.LocatedEntity], error)
}

type locationService struct {
	repo   EntityRepository
	logger *logrus.Logger
}

func NewLocationService(repo EntityRepository, logger *logrus.Logger) LocationService {
	return &locationService{
		repo:   repo,
		logger: logger,
	}
}

// CreateEntity проверяет координаты и сохраняет запись
func (s *locationService) CreateEntity(ctx context.Context, entity *models.LocatedEntity) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "location",
		"method":   "CreateEntity",
		"category": entity.Category,
		"name":     entity.Name,
	})
	log.Info("Attempting to create a new entity")

	entity.Category = normalizeCategory(entity.Category)
	if err := entity.Coordinate().Validate(); err != nil {
		log.WithError(err).Warn("Rejected entity with invalid coordinates")
		return fmt.Errorf("service: could not create entity: %w", err)
	}
	if entity.RecordedAt.IsZero() {
		entity.RecordedAt = time.Now().UTC()
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		log.WithError(err).Error("Failed to create entity in repository")
		return fmt.Errorf("service: could not create entity: %w", err)
	}

	log.WithField("entity_id", entity.ID).Info("Entity created successfully")
	return nil
}

// GetEntity получает запись по ID
func (s *locationService) GetEntity(ctx context.Context, id uuid.UUID) (*models.LocatedEntity, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "location",
		"method":    "GetEntity",
		"entity_id": id,
	})
	log.Info("Fetching entity by ID")

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("Entity not found")
		} else {
			log.WithError(err).Error("Failed to get entity in repository")
		}
		return nil, fmt.Errorf("service: could not get entity: %w", err)
	}

	log.Info("Entity fetched successfully")
	return entity, nil
}

// UpdateEntity обновляет существующую запись
func (s *locationService) UpdateEntity(ctx context.Context, entity *models.LocatedEntity) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "location",
		"method":    "UpdateEntity",
		"entity_id": entity.ID,
	})
	log.Info("Attempting to update entity")

	if err := entity.Coordinate().Validate(); err != nil {
		log.WithError(err).Warn("Rejected entity with invalid coordinates")
		return fmt.Errorf("service: could not update entity: %w", err)
	}

	existing, err := s.repo.GetByID(ctx, entity.ID)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent entity")
		return fmt.Errorf("service: entity with id %s not found for update: %w", entity.ID, err)
	}

	existing.Category = normalizeCategory(entity.Category)
	existing.Name = entity.Name
	existing.Latitude = entity.Latitude
	existing.Longitude = entity.Longitude
	existing.Priority = entity.Priority
	existing.Labels = entity.Labels
	existing.Attributes = entity.Attributes
	if !entity.RecordedAt.IsZero() {
		existing.RecordedAt = entity.RecordedAt
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update entity in repository")
		return fmt.Errorf("service: could not update entity: %w", err)
	}
	*entity = *existing

	log.Info("Entity updated successfully")
	return nil
}

// Nearby отбирает записи категории и ранжирует их по приоритету, расстоянию и свежести
func (s *locationService) Nearby(ctx context.Context, q NearbyQuery) ([]proximity.Result[*models.LocatedEntity], error) {
	category := normalizeCategory(q.Category)
	log := s.logger.WithFields(logrus.Fields{
		"service":  "location",
		"method":   "Nearby",
		"category": category,
		"skip":     q.Skip,
		"limit":    q.Limit,
	})
	log.Info("Searching nearby entities")

	if q.Limit > MaxNearbyLimit {
		q.Limit = MaxNearbyLimit
	}
	if defaults, ok := categoryDefaults[category]; ok {
		if len(q.PriorityOrder) == 0 {
			q.PriorityOrder = defaults.priorities
		}
		if q.TieBreak == nil {
			q.TieBreak = defaults.tieBreak
		}
	}

	entities, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		log.WithError(err).Error("Failed to list entities from repository")
		return nil, fmt.Errorf("service: could not list entities: %w", err)
	}

	results, err := proximity.Rank(entities, proximity.Query{
		Filter: proximity.Filter{
			Category:   category,
			Labels:     q.Labels,
			Predicates: q.Predicates,
		},
		Reference:     q.Reference,
		RadiusKm:      q.RadiusKm,
		PriorityOrder: q.PriorityOrder,
		TieBreak:      q.TieBreak,
		Skip:          q.Skip,
		Limit:         q.Limit,
	})
	if err != nil {
		log.WithError(err).Warn("Invalid nearby query")
		return nil, fmt.Errorf("service: invalid nearby query: %w", err)
	}

	log.WithField("count", len(results)).Info("Nearby entities ranked successfully")
	return results, nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
