package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/shenikar/crowd_proximity_engine/internal/density"
	"github.com/shenikar/crowd_proximity_engine/internal/risk"
)

// EntityRequest DTO для создания и обновления записи с координатами
// @Description DTO для создания и обновления записи с координатами
type EntityRequest struct {
	Category   string             `json:"category" validate:"required,max=64"`
	Name       string             `json:"name" validate:"required,min=1,max=255"`
	Latitude   *float64           `json:"latitude" validate:"required,latitude"`
	Longitude  *float64           `json:"longitude" validate:"required,longitude"`
	Priority   string             `json:"priority,omitempty" validate:"max=32"`
	Labels     map[string]string  `json:"labels,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
	RecordedAt *time.Time         `json:"recorded_at,omitempty"`
}

// EntityResponse DTO для ответа с информацией о записи
// @Description DTO для ответа с информацией о записи
type EntityResponse struct {
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

// NearbyItem DTO записи в выдаче поиска
// @Description DTO записи в выдаче поиска
type NearbyItem struct {
	EntityResponse
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// NearbyResponse DTO ответа поиска ближайших записей
// @Description DTO ответа поиска ближайших записей
type NearbyResponse struct {
	Items []NearbyItem `json:"items"`
	Count int          `json:"count"`
}

// ObservationBatchRequest DTO пачки обнаружений с камеры
// @Description DTO пачки обнаружений с камеры
type ObservationBatchRequest struct {
	CameraID     string                `json:"camera_id" validate:"required,max=128"`
	CameraName   string                `json:"camera_name,omitempty" validate:"max=255"`
	Category     string                `json:"category,omitempty" validate:"max=64"`
	Latitude     *float64              `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64              `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Width        int                   `json:"width,omitempty" validate:"gte=0,lte=4096"`
	Height       int                   `json:"height,omitempty" validate:"gte=0,lte=4096"`
	KernelRadius float64               `json:"kernel_radius,omitempty" validate:"gte=0,lte=100"`
	Observations []density.Observation `json:"observations" validate:"max=10000"`
	Timestamp    *time.Time            `json:"timestamp,omitempty"`
}

// ObservationBatchesRequest DTO нескольких пачек
// @Description DTO нескольких пачек
type ObservationBatchesRequest struct {
	Batches []ObservationBatchRequest `json:"batches" validate:"required,min=1,max=100,dive"`
}

// ScoreResponse DTO результата оценки пачки без сохранения
// @Description DTO результата оценки пачки без сохранения
type ScoreResponse struct {
	Assessment risk.Assessment `json:"assessment"`
	Accepted   int             `json:"accepted"`
	Dropped    int             `json:"dropped"`
	Heatmap    [][]float64     `json:"heatmap,omitempty"`
}

// SnapshotResponse DTO текущего состояния камеры
// @Description DTO текущего состояния камеры
type SnapshotResponse struct {
	CameraID    string        `json:"camera_id"`
	CameraName  string        `json:"camera_name"`
	Category    string        `json:"category"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	Score       float64       `json:"score"`
	Level       risk.Level    `json:"level"`
	Priority    risk.Priority `json:"priority"`
	PeopleCount int           `json:"people_count"`
	MaxDensity  float64       `json:"max_density"`
	MeanDensity float64       `json:"mean_density"`
	Timestamp   time.Time     `json:"timestamp"`
}

// AlertResponse DTO оповещения
// @Description DTO оповещения
type AlertResponse struct {
	ID         int64      `json:"id"`
	CameraID   string     `json:"camera_id"`
	CameraName string     `json:"camera_name"`
	AlertType  string     `json:"alert_type"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Score      float64    `json:"score"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	DistanceKm *float64   `json:"distance_km,omitempty"`
}

// IngestResponse DTO результата приема пачки
// @Description DTO результата приема пачки
type IngestResponse struct {
	Snapshot *SnapshotResponse `json:"snapshot"`
	Alert    *AlertResponse    `json:"alert,omitempty"`
	Dropped  int               `json:"dropped"`
}

// PurgeResponse DTO результата очистки старых снимков
// @Description DTO результата очистки старых снимков
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
	Days    int   `json:"days"`
}
