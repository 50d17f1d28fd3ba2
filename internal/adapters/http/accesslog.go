package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware writes one structured slog line per request. The
// matched route pattern is logged alongside the raw path so stop and
// journey IDs do not blow up log cardinality, and authenticated requests
// are tagged with the session's user.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("route", c.Route().Path),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			attrs = append(attrs, slog.String("request_id", rid))
		}
		if uid, _ := c.Locals(userIDLocal).(string); uid != "" {
			attrs = append(attrs, slog.String("user_id", uid))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		slog.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)

		return err
	}
}
