package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/crowd_proximity_engine/internal/alert"
	"github.com/shenikar/crowd_proximity_engine/internal/config"
	"github.com/shenikar/crowd_proximity_engine/internal/density"
	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
)

type Handler struct {
	locationService   service.LocationService
	monitoringService service.MonitoringService
	logger            *logrus.Logger
	validate          *validator.Validate
	cfg               *config.Config
}

func NewHandler(locationService service.LocationService, monitoringService service.MonitoringService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		locationService:   locationService,
		monitoringService: monitoringService,
		logger:            logger,
		validate:          validator.New(),
		cfg:               cfg,
	}
}

// respondError переводит ошибку сервиса в HTTP-статус
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, alert.ErrUnknownIdentity):
		log.WithError(err).Warn("Resource not found")
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, density.ErrInvalidViewport),
		errors.Is(err, proximity.ErrInvalidRadius),
		errors.Is(err, proximity.ErrInvalidPredicate),
		errors.Is(err, service.ErrInvalidBatch),
		errors.Is(err, alert.ErrEmptyIdentity):
		log.WithError(err).Warn("Rejected invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Service call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// @Summary Create a located entity
// @Description Create a new entity with coordinates (hospital, parking, crowd point...). Requires API key.
// @Tags Entities
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param entity body EntityRequest true "Entity creation request"
// @Success 201 {object} EntityResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /entities [post]
func (h *Handler) createEntity(c *gin.Context) {
	var input EntityRequest
	log := h.logger.WithField("method", "createEntity")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToEntityModel(input)
	if err := h.locationService.CreateEntity(c.Request.Context(), model); err != nil {
		h.respondError(c, log, err, "entity not found")
		return
	}
	c.JSON(http.StatusCreated, ModelToEntityResponse(model))
}

// @Summary Get entity by ID
// @Description Get a single located entity by its ID
// @Tags Entities
// @Produce json
// @Param id path string true "Entity ID"
// @Success 200 {object} EntityResponse
// @Failure 400 {object} map[string]string "Invalid entity ID"
// @Failure 404 {object} map[string]string "Entity not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /entities/{id} [get]
func (h *Handler) getEntity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity ID"})
		return
	}
	log := h.logger.WithField("method", "getEntity").WithField("id", id)

	entity, err := h.locationService.GetEntity(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err, "entity not found")
		return
	}
	c.JSON(http.StatusOK, ModelToEntityResponse(entity))
}

// @Summary Update an existing entity
// @Description Replace fields of an existing entity by ID. Requires API key.
// @Tags Entities
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Entity ID"
// @Param entity body EntityRequest true "Entity update request"
// @Success 200 {object} EntityResponse
// @Failure 400 {object} map[string]string "Invalid entity ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entity not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /entities/{id} [put]
func (h *Handler) updateEntity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entity ID"})
		return
	}
	log := h.logger.WithField("method", "updateEntity").WithField("id", id)

	var input EntityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToEntityModel(input)
	model.ID = id

	if err := h.locationService.UpdateEntity(c.Request.Context(), model); err != nil {
		h.respondError(c, log, err, "entity not found")
		return
	}
	c.JSON(http.StatusOK, ModelToEntityResponse(model))
}

// @Summary Find nearby entities
// @Description Filter entities of a category and rank them by priority, distance and recency
// @Tags Entities
// @Produce json
// @Param category query string true "Entity category"
// @Param lat query number false "Reference latitude"
// @Param lng query number false "Reference longitude"
// @Param radius_km query number false "Search radius in kilometers, requires lat and lng"
// @Param label query []string false "Label filter key:value" collectionFormat(multi)
// @Param attr query []string false "Attribute predicate attribute:op:value" collectionFormat(multi)
// @Param priority query string false "Comma separated priority order"
// @Param sort_attr query string false "Attribute used to break distance ties"
// @Param sort_dir query string false "asc or desc" default(asc)
// @Param skip query int false "Number of items to skip" default(0)
// @Param limit query int false "Maximum number of items" default(100)
// @Param format query string false "json or geojson" default(json)
// @Success 200 {object} NearbyResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /entities/nearby [get]
func (h *Handler) nearby(c *gin.Context) {
	log := h.logger.WithField("method", "nearby")

	q, err := parseNearbyQuery(c)
	if err != nil {
		log.WithError(err).Warn("Invalid nearby query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.locationService.Nearby(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, log, err, "entity not found")
		return
	}

	if strings.EqualFold(c.Query("format"), "geojson") {
		body, err := json.Marshal(EntitiesToFeatureCollection(results))
		if err != nil {
			log.WithError(err).Error("Failed to encode GeoJSON")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Data(http.StatusOK, GeoJSONContentType, body)
		return
	}
	c.JSON(http.StatusOK, ResultsToNearbyResponse(results))
}

// @Summary Score an observation batch
// @Description Build the density field for a batch and classify the risk without storing anything
// @Tags Cameras
// @Accept json
// @Produce json
// @Param batch body ObservationBatchRequest true "Observation batch"
// @Param heatmap query bool false "Include smoothed density rows" default(false)
// @Success 200 {object} ScoreResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cameras/score [post]
func (h *Handler) scoreBatch(c *gin.Context) {
	var input ObservationBatchRequest
	log := h.logger.WithField("method", "scoreBatch")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := h.monitoringService.ScoreObservationBatch(c.Request.Context(), DTOToBatchModel(input))
	if err != nil {
		h.respondError(c, log, err, "camera not found")
		return
	}

	resp := ScoreResponse{
		Assessment: score.Assessment,
		Accepted:   score.Accepted,
		Dropped:    score.Dropped,
	}
	if withHeatmap, _ := strconv.ParseBool(c.Query("heatmap")); withHeatmap && score.Field != nil {
		resp.Heatmap = score.Field.Rows()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Ingest a camera observation batch
// @Description Score a batch, replace the camera snapshot and open an alert if needed. Requires API key.
// @Tags Cameras
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param batch body ObservationBatchRequest true "Observation batch"
// @Success 200 {object} IngestResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cameras/observations [post]
func (h *Handler) ingestBatch(c *gin.Context) {
	var input ObservationBatchRequest
	log := h.logger.WithField("method", "ingestBatch")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.monitoringService.IngestBatch(c.Request.Context(), DTOToBatchModel(input))
	if err != nil {
		h.respondError(c, log, err, "camera not found")
		return
	}
	c.JSON(http.StatusOK, IngestResultToResponse(res))
}

// @Summary Ingest batches from several cameras
// @Description Ingest up to 100 batches concurrently. Requires API key.
// @Tags Cameras
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param batches body ObservationBatchesRequest true "Observation batches"
// @Success 200 {array} IngestResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cameras/batches [post]
func (h *Handler) ingestBatches(c *gin.Context) {
	var input ObservationBatchesRequest
	log := h.logger.WithField("method", "ingestBatches")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batches := make([]*models.ObservationBatch, len(input.Batches))
	for i, b := range input.Batches {
		batches[i] = DTOToBatchModel(b)
	}

	results, err := h.monitoringService.IngestBatches(c.Request.Context(), batches)
	if err != nil {
		h.respondError(c, log, err, "camera not found")
		return
	}

	resp := make([]*IngestResponse, len(results))
	for i, r := range results {
		resp[i] = IngestResultToResponse(r)
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get camera snapshot
// @Description Get the latest risk snapshot of a camera
// @Tags Cameras
// @Produce json
// @Param id path string true "Camera ID"
// @Success 200 {object} SnapshotResponse
// @Failure 404 {object} map[string]string "Camera not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cameras/{id}/snapshot [get]
func (h *Handler) getSnapshot(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getSnapshot").WithField("camera_id", id)

	snapshot, err := h.monitoringService.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err, "camera not found")
		return
	}
	c.JSON(http.StatusOK, ModelToSnapshotResponse(snapshot))
}

// @Summary Rank cameras by risk
// @Description Get camera snapshots ordered by score, highest first
// @Tags Cameras
// @Produce json
// @Param limit query int false "Maximum number of cameras" default(100)
// @Success 200 {array} SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid limit"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cameras/ranking [get]
func (h *Handler) ranking(c *gin.Context) {
	log := h.logger.WithField("method", "ranking")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultRankingLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	snapshots, err := h.monitoringService.Ranking(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, log, err, "camera not found")
		return
	}
	c.JSON(http.StatusOK, ModelsToSnapshotResponses(snapshots))
}

// @Summary Purge old snapshots
// @Description Delete camera snapshots older than the given number of days. Requires API key.
// @Tags Cameras
// @Produce json
// @Security ApiKeyAuth
// @Param days query int false "Retention in days" default(7)
// @Success 200 {object} PurgeResponse
// @Failure 400 {object} map[string]string "Invalid days"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /cameras/snapshots [delete]
func (h *Handler) purgeSnapshots(c *gin.Context) {
	log := h.logger.WithField("method", "purgeSnapshots")

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(service.DefaultRetentionDays)))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}

	deleted, err := h.monitoringService.PurgeSnapshots(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, log, err, "camera not found")
		return
	}
	c.JSON(http.StatusOK, PurgeResponse{Deleted: deleted, Days: days})
}

// @Summary List alerts
// @Description List crowd density alerts, ranked by severity and distance to an optional reference point
// @Tags Alerts
// @Produce json
// @Param active_only query bool false "Only open alerts" default(true)
// @Param lat query number false "Reference latitude"
// @Param lng query number false "Reference longitude"
// @Param skip query int false "Number of items to skip" default(0)
// @Param limit query int false "Maximum number of items" default(50)
// @Success 200 {array} AlertResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")

	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active_only", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active_only"})
		return
	}
	reference, err := parseReference(c)
	if err != nil {
		log.WithError(err).Warn("Invalid reference point")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	skip, limit, err := parsePage(c, service.DefaultAlertLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.monitoringService.ListAlerts(c.Request.Context(), service.AlertQuery{
		ActiveOnly: activeOnly,
		Reference:  reference,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		h.respondError(c, log, err, "alert not found")
		return
	}
	c.JSON(http.StatusOK, ResultsToAlertResponses(results))
}

// @Summary Resolve an alert
// @Description Close an open alert. A later high score for the camera opens a new one. Requires API key.
// @Tags Alerts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Alert not found or already resolved"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id}/resolve [put]
func (h *Handler) resolveAlert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "resolveAlert").WithField("id", id)

	resolved, err := h.monitoringService.ResolveAlert(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err, "alert not found")
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(resolved, nil))
}

// @Summary Get system overview
// @Description Aggregate statistics over all monitored cameras
// @Tags System
// @Produce json
// @Success 200 {object} models.SystemOverview
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /system/overview [get]
func (h *Handler) overview(c *gin.Context) {
	log := h.logger.WithField("method", "overview")

	overview, err := h.monitoringService.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err, "not found")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
