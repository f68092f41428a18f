package v1

import (
	"time"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
)

// DTOToEntityModel преобразует DTO создания/обновления в доменную модель
func DTOToEntityModel(dto EntityRequest) *models.LocatedEntity {
	entity := &models.LocatedEntity{
		Category:   dto.Category,
		Name:       dto.Name,
		Priority:   dto.Priority,
		Labels:     dto.Labels,
		Attributes: dto.Attributes,
	}
	if dto.Latitude != nil {
		entity.Latitude = *dto.Latitude
	}
	if dto.Longitude != nil {
		entity.Longitude = *dto.Longitude
	}
	if dto.RecordedAt != nil {
		entity.RecordedAt = dto.RecordedAt.UTC()
	}
	return entity
}

// ModelToEntityResponse преобразует доменную модель в DTO для ответа
func ModelToEntityResponse(model *models.LocatedEntity) *EntityResponse {
	return &EntityResponse{
		ID:         model.ID,
		Category:   model.Category,
		Name:       model.Name,
		Latitude:   model.Latitude,
		Longitude:  model.Longitude,
		Priority:   model.Priority,
		Labels:     model.Labels,
		Attributes: model.Attributes,
		RecordedAt: model.RecordedAt,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// ResultsToNearbyResponse преобразует результаты ранжирования в DTO
func ResultsToNearbyResponse(results []proximity.Result[*models.LocatedEntity]) *NearbyResponse {
	items := make([]NearbyItem, len(results))
	for i, r := range results {
		items[i] = NearbyItem{EntityResponse: *ModelToEntityResponse(r.Item), DistanceKm: r.DistanceKm}
	}
	return &NearbyResponse{Items: items, Count: len(items)}
}

// DTOToBatchModel преобразует DTO пачки в доменную модель
func DTOToBatchModel(dto ObservationBatchRequest) *models.ObservationBatch {
	batch := &models.ObservationBatch{
		CameraID:     dto.CameraID,
		CameraName:   dto.CameraName,
		Category:     dto.Category,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		Width:        dto.Width,
		Height:       dto.Height,
		KernelRadius: dto.KernelRadius,
		Observations: dto.Observations,
	}
	if dto.Timestamp != nil {
		batch.Timestamp = dto.Timestamp.UTC()
	} else {
		batch.Timestamp = time.Now().UTC()
	}
	return batch
}

func ModelToSnapshotResponse(model *models.Snapshot) *SnapshotResponse {
	return &SnapshotResponse{
		CameraID:    model.Identity,
		CameraName:  model.Name,
		Category:    model.Category,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		Score:       model.Score,
		Level:       model.Level,
		Priority:    model.Priority,
		PeopleCount: model.PeopleCount,
		MaxDensity:  model.MaxCellValue,
		MeanDensity: model.MeanNonZeroCellValue,
		Timestamp:   model.Timestamp,
	}
}

func ModelsToSnapshotResponses(snapshots []*models.Snapshot) []*SnapshotResponse {
	responses := make([]*SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		responses[i] = ModelToSnapshotResponse(s)
	}
	return responses
}

func ModelToAlertResponse(model *models.Alert, distanceKm *float64) *AlertResponse {
	return &AlertResponse{
		ID:         model.ID,
		CameraID:   model.Identity,
		CameraName: model.EntityName,
		AlertType:  model.AlertType,
		Severity:   model.Severity,
		Message:    model.Message,
		Score:      model.Score,
		Latitude:   model.Latitude,
		Longitude:  model.Longitude,
		IsActive:   model.IsActive,
		CreatedAt:  model.CreatedAt,
		ResolvedAt: model.ResolvedAt,
		DistanceKm: distanceKm,
	}
}

func ResultsToAlertResponses(results []proximity.Result[*models.Alert]) []*AlertResponse {
	responses := make([]*AlertResponse, len(results))
	for i, r := range results {
		responses[i] = ModelToAlertResponse(r.Item, r.DistanceKm)
	}
	return responses
}

func IngestResultToResponse(res *service.IngestResult) *IngestResponse {
	resp := &IngestResponse{
		Snapshot: ModelToSnapshotResponse(res.Snapshot),
		Dropped:  res.Dropped,
	}
	if res.Alert != nil {
		resp.Alert = ModelToAlertResponse(res.Alert, nil)
	}
	return resp
}
