package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const userIDLocal = "user_id"

// AuthMiddleware resolves the Authorization bearer token to a session and
// stores the user ID in locals. Expired or unknown tokens get a 401.
func AuthMiddleware(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errUnauthorized(c, "missing Authorization header")
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return errUnauthorized(c, "Authorization must be a bearer token")
		}

		session, err := deps.Sessions.GetByToken(c.Context(), token)
		if err != nil {
			return errUnauthorized(c, "invalid session token")
		}
		if session.Expired(time.Now()) {
			return errUnauthorized(c, "session expired")
		}

		c.Locals(userIDLocal, session.UserID)
		return c.Next()
	}
}

// OptionalAuthMiddleware resolves a bearer token when one is present but
// never rejects the request. Used on mixed endpoints such as /graphql.
func OptionalAuthMiddleware(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || token == "" {
			return c.Next()
		}
		session, err := deps.Sessions.GetByToken(c.Context(), token)
		if err == nil && !session.Expired(time.Now()) {
			c.Locals(userIDLocal, session.UserID)
		}
		return c.Next()
	}
}

// currentUser returns the authenticated user ID set by AuthMiddleware.
func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDLocal).(string)
	return id
}

func contextWithGQLUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, gqlUserKey, userID)
}
