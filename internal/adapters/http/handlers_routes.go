package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/pkg/validate"
)

type routeRequest struct {
	Name          string   `json:"name" validate:"required,max=100"`
	OriginID      string   `json:"origin_id" validate:"required"`
	DestinationID string   `json:"destination_id" validate:"required,nefield=OriginID"`
	Weekdays      []string `json:"weekdays" validate:"required,min=1,dive,oneof=mon tue wed thu fri sat sun"`
	DepartureTime string   `json:"departure_time" validate:"required"`
	ThresholdMin  int      `json:"threshold_minutes" validate:"min=0,max=240"`
	Active        *bool    `json:"active"`
}

var weekdayNames = map[string]domain.Weekdays{
	"mon": 1 << 0,
	"tue": 1 << 1,
	"wed": 1 << 2,
	"thu": 1 << 3,
	"fri": 1 << 4,
	"sat": 1 << 5,
	"sun": 1 << 6,
}

func (r routeRequest) toDomain(id, userID string) *domain.CommuteRoute {
	var days domain.Weekdays
	for _, name := range r.Weekdays {
		days |= weekdayNames[name]
	}
	route := &domain.CommuteRoute{
		ID:            id,
		UserID:        userID,
		Name:          r.Name,
		OriginID:      r.OriginID,
		DestinationID: r.DestinationID,
		Weekdays:      days,
		DepartureTime: r.DepartureTime,
		ThresholdMin:  r.ThresholdMin,
		Active:        true,
	}
	if r.Active != nil {
		route.Active = *r.Active
	}
	return route
}

// CreateRouteHandler saves a new commute route.
// POST /v1/routes
func CreateRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		route, err := deps.Routes.Create(c.Context(), req.toDomain("", currentUser(c)))
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(route)
	}
}

// UpdateRouteHandler replaces a commute route.
// PUT /v1/routes/:id
func UpdateRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		route, err := deps.Routes.Update(c.Context(), req.toDomain(c.Params("id"), currentUser(c)))
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(route)
	}
}

// DeleteRouteHandler removes a commute route.
// DELETE /v1/routes/:id
func DeleteRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Routes.Delete(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// GetRouteHandler returns one of the user's commute routes.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route, err := deps.Routes.GetByID(c.Context(), c.Params("id"), currentUser(c))
		if err != nil {
			if mapped, ok := errDomain(c, err); ok {
				return mapped
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(route)
	}
}

// ListRoutesHandler lists the user's commute routes.
func ListRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		routes, err := deps.Routes.ListByUser(c.Context(), currentUser(c))
		if err != nil {
			return errInternal(c, err.Error())
		}

		page, pg := paginate(c, routes, 50, 200)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}
