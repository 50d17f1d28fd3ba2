package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware adds a weak ETag to publicly cacheable GET responses
// (stop lookups, departure boards, alerts, lines) so polling clients can
// revalidate instead of re-downloading. User-scoped responses carry
// "private" or "no-store" Cache-Control and are left untagged.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		cacheControl := string(c.Response().Header.Peek(fiber.HeaderCacheControl))
		if !strings.Contains(cacheControl, "public") {
			return nil
		}

		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		sum := sha256.Sum256(body)
		tag := `W/"` + hex.EncodeToString(sum[:8]) + `"`
		c.Set(fiber.HeaderETag, tag)

		if c.Get(fiber.HeaderIfNoneMatch) == tag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}
