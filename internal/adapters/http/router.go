package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/oskarlindgren/pendla/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	const reqTimeout = 15 * time.Second

	// Public endpoints
	v1 := app.Group("/v1")
	v1.Get("/stops/search", timeout.NewWithContext(SearchStopsHandler(deps), reqTimeout))
	v1.Get("/stops/nearby", timeout.NewWithContext(NearbyStopsHandler(deps), reqTimeout))
	v1.Get("/stops/batch", timeout.NewWithContext(BatchStopsHandler(deps), reqTimeout))
	v1.Get("/stops/:id", timeout.NewWithContext(GetStopHandler(deps), reqTimeout))
	v1.Get("/stops/:id/departures", timeout.NewWithContext(StopDeparturesHandler(deps), reqTimeout))
	v1.Get("/alerts", timeout.NewWithContext(ListAlertsHandler(deps), reqTimeout))
	v1.Get("/lines", timeout.NewWithContext(ListLinesHandler(deps), reqTimeout))

	// Planning is public: itineraries are request-scoped until promoted
	v1.Post("/journeys/plan", timeout.NewWithContext(PlanHandler(deps), 30*time.Second))
	v1.Post("/journeys/plan/via", timeout.NewWithContext(InsertViaHandler(deps), reqTimeout))
	v1.Post("/journeys/plan/remove-leg", timeout.NewWithContext(RemoveLegHandler(deps), reqTimeout))
	v1.Post("/journeys/validate", timeout.NewWithContext(ValidateHandler(deps), 30*time.Second))

	// Authenticated endpoints (bearer session)
	auth := AuthMiddleware(deps)
	v1.Post("/journeys", auth, timeout.NewWithContext(PromoteJourneyHandler(deps), reqTimeout))
	v1.Get("/journeys", auth, timeout.NewWithContext(ListJourneysHandler(deps), reqTimeout))
	v1.Get("/journeys/:id", auth, timeout.NewWithContext(GetJourneyHandler(deps), reqTimeout))

	v1.Post("/routes", auth, timeout.NewWithContext(CreateRouteHandler(deps), reqTimeout))
	v1.Get("/routes", auth, timeout.NewWithContext(ListRoutesHandler(deps), reqTimeout))
	v1.Get("/routes/:id", auth, timeout.NewWithContext(GetRouteHandler(deps), reqTimeout))
	v1.Put("/routes/:id", auth, timeout.NewWithContext(UpdateRouteHandler(deps), reqTimeout))
	v1.Delete("/routes/:id", auth, timeout.NewWithContext(DeleteRouteHandler(deps), reqTimeout))

	v1.Get("/compensation/cases", auth, timeout.NewWithContext(ListCasesHandler(deps), reqTimeout))
	v1.Get("/compensation/cases/:id", auth, timeout.NewWithContext(GetCaseHandler(deps), reqTimeout))
	v1.Post("/compensation/cases/:id/submit", auth, timeout.NewWithContext(SubmitCaseHandler(deps), reqTimeout))

	v1.Get("/notifications", auth, timeout.NewWithContext(ListNotificationsHandler(deps), reqTimeout))
	v1.Post("/notifications/:id/read", auth, timeout.NewWithContext(MarkNotificationReadHandler(deps), reqTimeout))
	v1.Post("/notifications/read-all", auth, timeout.NewWithContext(MarkAllNotificationsReadHandler(deps), reqTimeout))

	v1.Post("/push/subscriptions", auth, timeout.NewWithContext(CreatePushSubscriptionHandler(deps), reqTimeout))
	v1.Delete("/push/subscriptions/:id", auth, timeout.NewWithContext(DeletePushSubscriptionHandler(deps), reqTimeout))

	// GraphQL: public queries plus user-scoped ones when a token is sent
	app.Post("/graphql", OptionalAuthMiddleware(deps), GraphQLHandler(deps))

	// WebSocket: authenticated realtime relay
	app.Use("/ws", auth, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
