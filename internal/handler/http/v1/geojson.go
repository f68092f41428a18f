package v1

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/shenikar/crowd_proximity_engine/internal/models"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
)

const GeoJSONContentType = "application/geo+json"

// EntitiesToFeatureCollection строит коллекцию точек для карты, порядок ранжирования сохраняется
func EntitiesToFeatureCollection(results []proximity.Result[*models.LocatedEntity]) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(results))}
	for rank, r := range results {
		e := r.Item
		props := map[string]interface{}{
			"id":          e.ID.String(),
			"rank":        rank + 1,
			"category":    e.Category,
			"name":        e.Name,
			"recorded_at": e.RecordedAt,
		}
		if e.Priority != "" {
			props["priority"] = e.Priority
		}
		if len(e.Labels) > 0 {
			props["labels"] = e.Labels
		}
		if len(e.Attributes) > 0 {
			props["attributes"] = e.Attributes
		}
		if r.DistanceKm != nil {
			props["distance_km"] = *r.DistanceKm
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			// GeoJSON: порядок осей долгота, широта
			Geometry:   geom.NewPointFlat(geom.XY, []float64{e.Longitude, e.Latitude}).SetSRID(4326),
			Properties: props,
		})
	}
	return fc
}
