package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/pkg/validate"
)

type planRequest struct {
	StopIDs  []string `json:"stop_ids" validate:"required,min=2,max=8,dive,required"`
	DepartAt string   `json:"depart_at" validate:"omitempty"`
}

// parseDepartAt accepts RFC 3339 or "15:04" (today, local time); empty
// means now.
func parseDepartAt(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("15:04", raw); err == nil {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// PlanHandler assembles an itinerary through the given ordered stops.
// POST /v1/journeys/plan {"stop_ids":["..."],"depart_at":"07:12"}
func PlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req planRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}
		depart, ok := parseDepartAt(req.DepartAt)
		if !ok {
			return errBadRequest(c, "depart_at must be RFC 3339 or HH:MM")
		}

		it, err := deps.Planner.Assemble(c.Context(), req.StopIDs, depart)
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(it)
	}
}

type validateRequest struct {
	Itinerary domain.Itinerary `json:"itinerary" validate:"required"`
	DepartAt  string           `json:"depart_at"`
}

// ValidateHandler re-validates every leg of a submitted itinerary against
// fresh upstream data. Legs keep their positions; failed legs come back
// with valid=false and a reason.
// POST /v1/journeys/validate
func ValidateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req validateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Itinerary.Legs) == 0 {
			return errBadRequest(c, "itinerary must have at least one leg")
		}
		depart, ok := parseDepartAt(req.DepartAt)
		if !ok {
			return errBadRequest(c, "depart_at must be RFC 3339 or HH:MM")
		}

		out, err := deps.Planner.ValidateAll(c.Context(), req.Itinerary, depart)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(out)
	}
}

type insertViaRequest struct {
	Itinerary domain.Itinerary `json:"itinerary" validate:"required"`
	LegIndex  int              `json:"leg_index" validate:"min=0"`
	ViaStopID string           `json:"via_stop_id" validate:"required"`
}

// InsertViaHandler splits a leg around an intermediate stop. The outer
// origin and destination are untouched.
// POST /v1/journeys/plan/via
func InsertViaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req insertViaRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		via, err := deps.Stops.GetByID(c.Context(), req.ViaStopID)
		if err != nil {
			return errNotFound(c, "via stop not found")
		}

		out, err := deps.Planner.InsertVia(req.Itinerary, req.LegIndex, *via)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(out)
	}
}

type removeLegRequest struct {
	Itinerary domain.Itinerary `json:"itinerary" validate:"required"`
	LegIndex  int              `json:"leg_index" validate:"min=0"`
}

// RemoveLegHandler splices a leg out of the chain.
// POST /v1/journeys/plan/remove-leg
func RemoveLegHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req removeLegRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		out, err := deps.Planner.RemoveLeg(req.Itinerary, req.LegIndex)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(out)
	}
}
