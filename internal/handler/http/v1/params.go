package v1

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/crowd_proximity_engine/internal/geo"
	"github.com/shenikar/crowd_proximity_engine/internal/proximity"
	"github.com/shenikar/crowd_proximity_engine/internal/service"
)

// parseReference читает необязательную точку отсчета lat/lng; задаются только вместе
func parseReference(c *gin.Context) (*geo.Coordinate, error) {
	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lngRaw == "" {
		return nil, errors.New("lat and lng must be given together")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latRaw)
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q", lngRaw)
	}
	coord, err := geo.NewCoordinate(lat, lng)
	if err != nil {
		return nil, err
	}
	return &coord, nil
}

func parsePage(c *gin.Context, defaultLimit int) (skip, limit int, err error) {
	skip, err = strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		return 0, 0, errors.New("invalid skip")
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 0 {
		return 0, 0, errors.New("invalid limit")
	}
	return skip, limit, nil
}

func parseNearbyQuery(c *gin.Context) (service.NearbyQuery, error) {
	q := service.NearbyQuery{Category: c.Query("category")}

	reference, err := parseReference(c)
	if err != nil {
		return q, err
	}
	q.Reference = reference

	if raw := c.Query("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("invalid radius_km %q", raw)
		}
		if reference == nil {
			return q, errors.New("radius_km requires lat and lng")
		}
		q.RadiusKm = &radius
	}

	for _, raw := range c.QueryArray("label") {
		key, value, ok := strings.Cut(raw, ":")
		if !ok || key == "" {
			return q, fmt.Errorf("invalid label %q, expected key:value", raw)
		}
		if q.Labels == nil {
			q.Labels = make(map[string]string)
		}
		q.Labels[key] = value
	}

	for _, raw := range c.QueryArray("attr") {
		p, err := proximity.ParsePredicate(raw)
		if err != nil {
			return q, err
		}
		q.Predicates = append(q.Predicates, p)
	}

	if raw := c.Query("priority"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				q.PriorityOrder = append(q.PriorityOrder, p)
			}
		}
	}

	if attr := c.Query("sort_attr"); attr != "" {
		order := &proximity.AttributeOrder{Attribute: attr}
		switch strings.ToLower(c.DefaultQuery("sort_dir", "asc")) {
		case "asc":
		case "desc":
			order.Descending = true
		default:
			return q, fmt.Errorf("invalid sort_dir %q", c.Query("sort_dir"))
		}
		q.TieBreak = order
	}

	q.Skip, q.Limit, err = parsePage(c, service.DefaultNearbyLimit)
	if err != nil {
		return q, err
	}
	return q, nil
}
