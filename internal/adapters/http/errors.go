package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, 401, "unauthorized", msg)
}

// errForbidden returns a 403 error.
func errForbidden(c *fiber.Ctx, msg string) error {
	return newError(c, 403, "forbidden", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errUpstream maps a transit-provider error to its HTTP shape. Falls back
// to 500 for anything outside the provider taxonomy.
func errUpstream(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoRouteFound):
		return newError(c, 404, "no_route", "no route found between the given stops")
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return newError(c, 429, "rate_limited", "transit provider rate limit reached")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return newError(c, 502, "upstream_unavailable", "transit provider unavailable")
	default:
		return errInternal(c, err.Error())
	}
}

// errDomain maps common domain errors. Returns false when the error is not
// one of the known kinds and the handler should map it itself.
func errDomain(c *fiber.Ctx, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "resource not found"), true
	case errors.Is(err, domain.ErrForbidden):
		return errForbidden(c, "you do not own this resource"), true
	case errors.Is(err, domain.ErrUnauthorized):
		return errUnauthorized(c, "authentication required"), true
	case errors.Is(err, domain.ErrCaseExists):
		return errConflict(c, "a compensation case already exists for this journey"), true
	case errors.Is(err, domain.ErrInvalidTransition):
		return errConflict(c, err.Error()), true
	}
	return nil, false
}
