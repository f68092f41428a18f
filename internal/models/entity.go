package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
)

// LocatedEntity - запись с координатами: объект инфраструктуры, парковка, экстренный вызов,
// пропавший человек, камера и т.д. Тип задается тегом Category.
type LocatedEntity struct {
	ID         uuid.UUID          `json:"id"`
	Category   string             `json:"category"`
	Name       string             `json:"name"`
	Latitude   float64            `json:"latitude"`
	Longitude  float64            `json:"longitude"`
	Priority   string             `json:"priority,omitempty"`
	Labels     map[string]string  `json:"labels,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Coordinate возвращает координаты записи
func (e *LocatedEntity) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: e.Latitude, Longitude: e.Longitude}
}

// Candidate реализует proximity.Located
func (e *LocatedEntity) Candidate() proximity.Candidate {
	loc := e.Coordinate()
	return proximity.Candidate{
		Key:        e.ID.String(),
		Location:   &loc,
		Category:   e.Category,
		Priority:   e.Priority,
		Labels:     e.Labels,
		Attributes: e.Attributes,
		RecordedAt: e.RecordedAt,
	}
}
