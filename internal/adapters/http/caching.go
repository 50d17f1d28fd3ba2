package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler. User-scoped
// endpoints are always private.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0"

		case strings.HasPrefix(path, "/v1/stops/search") ||
			strings.HasPrefix(path, "/v1/stops/nearby"):
			ttl = "public, max-age=300" // 5 min for stop lookups

		case strings.Contains(path, "/departures"):
			ttl = "public, max-age=30" // realtime boards go stale fast

		case strings.HasPrefix(path, "/v1/stops/"):
			ttl = "public, max-age=600" // 10 min for single stop

		case strings.HasPrefix(path, "/v1/routes") ||
			strings.HasPrefix(path, "/v1/journeys") ||
			strings.HasPrefix(path, "/v1/compensation") ||
			strings.HasPrefix(path, "/v1/notifications"):
			ttl = "private, no-store" // per-user data

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
