package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SearchStopsHandler performs prefix search on stop names.
func SearchStopsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		stops, err := deps.Stops.SearchByPrefix(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(stops)
	}
}

// NearbyStopsHandler returns stops within a radius of a point.
func NearbyStopsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 500)
		limit := c.QueryInt("limit", 50)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 10000 {
			return errBadRequest(c, "radius must be between 1 and 10000 meters")
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		stops, err := deps.Stops.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(stops)
	}
}

// GetStopHandler returns a single stop by ID.
func GetStopHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "stop id is required")
		}
		stop, err := deps.Stops.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "stop not found")
		}
		return c.JSON(stop)
	}
}

// BatchStopsHandler returns multiple stops by ID.
func BatchStopsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids := c.Query("ids", "")
		if ids == "" {
			return errBadRequest(c, "ids query parameter is required (comma-separated)")
		}

		var stopIDs []string
		for _, id := range strings.Split(ids, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				stopIDs = append(stopIDs, trimmed)
			}
		}

		if len(stopIDs) == 0 {
			return errBadRequest(c, "at least one stop ID is required")
		}
		if len(stopIDs) > 100 {
			return errBadRequest(c, "maximum 100 stop IDs allowed")
		}

		stops, err := deps.Stops.GetByIDs(c.Context(), stopIDs)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(stops)
	}
}

// StopDeparturesHandler returns the realtime departure board at a stop.
func StopDeparturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "stop id is required")
		}
		limit := c.QueryInt("limit", 10)
		if limit <= 0 || limit > 50 {
			limit = 10
		}

		departures, err := deps.Departures.AtStop(c.Context(), id, limit)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("departure board fetch failed", "stop_id", id, "error", err)
			return errUpstream(c, err)
		}
		return c.JSON(departures)
	}
}
