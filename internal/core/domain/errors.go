package domain

import "errors"

// Upstream provider failures. Callers treat these as terminal for the
// request; there is no retry policy in the planning path.
var (
	// ErrUpstreamUnavailable covers network failures and non-2xx responses
	// from a transit data provider.
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")

	// ErrUpstreamRateLimited means the provider rejected the call on quota.
	ErrUpstreamRateLimited = errors.New("upstream provider rate limited")

	// ErrNoRouteFound means the provider answered with an empty result set
	// for a stop pair.
	ErrNoRouteFound = errors.New("no route found between stops")
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the session is missing or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the resource belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrCaseExists means a compensation case already exists for the journey.
	ErrCaseExists = errors.New("compensation case already exists for journey")

	// ErrInvalidTransition means a status change is not allowed from the
	// current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError is a leg-level validation failure carrying a
// human-readable reason. A single leg failing does not invalidate the
// rest of the itinerary.
type ValidationError struct {
	LegIndex int
	Reason   string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
