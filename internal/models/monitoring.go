package models

import (
	"fmt"
	"time"

	"github.com/shenikar/crowd_proximity_engine/internal/density"
	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
)

const (
	// AlertTypeHighCrowdDensity - единственный тип оповещения, открываемого по оценке риска
	AlertTypeHighCrowdDensity = "HIGH_CROWD_DENSITY"

	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
)

// MonitoredEntity - источник оценок риска, например камера
type MonitoredEntity struct {
	Identity  string   `json:"identity"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Location возвращает координаты, если они известны
func (m MonitoredEntity) Location() *geo.Coordinate {
	if m.Latitude == nil || m.Longitude == nil {
		return nil
	}
	return &geo.Coordinate{Latitude: *m.Latitude, Longitude: *m.Longitude}
}

// Snapshot - последняя оценка риска для одного источника. На идентификатор - ровно одна запись.
type Snapshot struct {
	MonitoredEntity
	risk.Assessment
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Candidate реализует proximity.Located
func (s *Snapshot) Candidate() proximity.Candidate {
	return proximity.Candidate{
		Key:      s.Identity,
		Location: s.Location(),
		Category: s.Category,
		Priority: string(s.Level),
		Attributes: map[string]float64{
			"score":        s.Score,
			"people_count": float64(s.PeopleCount),
		},
		RecordedAt: s.Timestamp,
	}
}

// Alert - оповещение о высокой плотности толпы
type Alert struct {
	ID         int64      `json:"id"`
	Identity   string     `json:"camera_id"`
	EntityName string     `json:"camera_name"`
	AlertType  string     `json:"alert_type"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Score      float64    `json:"score"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Candidate реализует proximity.Located; ключ дополнен нулями, чтобы строковый порядок совпадал с числовым
func (a *Alert) Candidate() proximity.Candidate {
	var loc *geo.Coordinate
	if a.Latitude != nil && a.Longitude != nil {
		loc = &geo.Coordinate{Latitude: *a.Latitude, Longitude: *a.Longitude}
	}
	labels := map[string]string{"active": "false"}
	if a.IsActive {
		labels["active"] = "true"
	}
	return proximity.Candidate{
		Key:        fmt.Sprintf("%020d", a.ID),
		Location:   loc,
		Category:   a.AlertType,
		Priority:   a.Severity,
		Labels:     labels,
		Attributes: map[string]float64{"score": a.Score},
		RecordedAt: a.CreatedAt,
	}
}

// ObservationBatch - обнаружения людей с одного кадра камеры
type ObservationBatch struct {
	CameraID     string                `json:"camera_id"`
	CameraName   string                `json:"camera_name"`
	Category     string                `json:"category,omitempty"`
	Latitude     *float64              `json:"latitude,omitempty"`
	Longitude    *float64              `json:"longitude,omitempty"`
	Width        int                   `json:"width,omitempty"`
	Height       int                   `json:"height,omitempty"`
	KernelRadius float64               `json:"kernel_radius,omitempty"`
	Observations []density.Observation `json:"observations"`
	Timestamp    time.Time             `json:"timestamp"`
}

// Entity возвращает описание источника пачки
func (b ObservationBatch) Entity() MonitoredEntity {
	category := b.Category
	if category == "" {
		category = "camera"
	}
	name := b.CameraName
	if name == "" {
		name = b.CameraID
	}
	return MonitoredEntity{
		Identity:  b.CameraID,
		Name:      name,
		Category:  category,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
	}
}

// SystemOverview - сводка по всем камерам
type SystemOverview struct {
	TotalCameras       int       `json:"total_cameras"`
	TotalPeople        int       `json:"total_people"`
	HighDensityCameras int       `json:"high_density_cameras"`
	AverageScore       float64   `json:"average_score"`
	CriticalCameras    int       `json:"critical_cameras"`
	ActiveAlerts       int       `json:"active_alerts"`
	LastUpdated        time.Time `json:"last_updated"`
}
