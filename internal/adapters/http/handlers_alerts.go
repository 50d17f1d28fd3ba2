package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// ListAlertsHandler returns currently active service alerts.
// GET /v1/alerts
func ListAlertsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alerts, err := deps.Alerts.ListActive(c.Context(), time.Now())
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(alerts)
	}
}

// ListLinesHandler returns the lines of one transport mode.
// GET /v1/lines?mode=rail
func ListLinesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := domain.TransportMode(c.Query("mode"))
		switch mode {
		case domain.ModeMetro, domain.ModeRail, domain.ModeBus, domain.ModeTram, domain.ModeFerry, domain.ModeOther:
		default:
			return errBadRequest(c, "mode must be one of metro, rail, bus, tram, ferry, other")
		}

		lines, err := deps.Lines.ListByMode(c.Context(), mode)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(lines)
	}
}
