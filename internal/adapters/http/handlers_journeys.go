package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

type promoteRequest struct {
	RouteID   string           `json:"route_id"`
	Itinerary domain.Itinerary `json:"itinerary"`
}

// PromoteJourneyHandler persists a planned itinerary as a tracked journey.
// POST /v1/journeys
func PromoteJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req promoteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		j, err := deps.Journeys.Promote(c.Context(), currentUser(c), req.RouteID, req.Itinerary)
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(j)
	}
}

// GetJourneyHandler returns one of the user's journeys.
func GetJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		j, err := deps.Journeys.GetByID(c.Context(), c.Params("id"), currentUser(c))
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(j)
	}
}

// ListJourneysHandler lists the user's journeys, newest first.
func ListJourneysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		journeys, err := deps.Journeys.ListByUser(c.Context(), currentUser(c), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, journeys, 20, 100)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}
