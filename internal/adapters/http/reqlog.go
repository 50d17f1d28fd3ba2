package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type loggerKey struct{}

type requestIDKey struct{}

// RequestIDLogMiddleware seeds the request's Go context with the request
// ID and a logger carrying it, so repository and upstream-client log lines
// can be joined back to the access log entry for the same request.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			return c.Next()
		}

		ctx := context.WithValue(c.Context(), requestIDKey{}, rid)
		ctx = context.WithValue(ctx, loggerKey{}, slog.Default().With("request_id", rid))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// LoggerFromCtx returns the request-scoped logger, or the process default
// outside a request.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// RequestIDFromCtx returns the request ID seeded by RequestIDLogMiddleware,
// or "" outside a request.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
