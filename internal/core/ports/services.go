package ports

import (
	"context"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// TripPlanner is the upstream trip-planning provider (ResRobot). Given a
// stop pair and a departure time it returns zero or more itinerary
// candidates with per-leg planned and realtime timestamps.
type TripPlanner interface {
	PlanTrips(ctx context.Context, fromStopID, toStopID string, depart time.Time) ([]domain.Itinerary, error)
}

// DepartureBoard is the upstream realtime-departures provider (Trafiklab).
type DepartureBoard interface {
	Departures(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishDelay(ctx context.Context, userID string, n *domain.Notification) error
	PublishCancellation(ctx context.Context, userID string, n *domain.Notification) error
	PublishCase(ctx context.Context, c *domain.CompensationCase) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeDelays(ctx context.Context, handler func(ctx context.Context, n *domain.Notification) error) error
	SubscribeCases(ctx context.Context, handler func(ctx context.Context, c *domain.CompensationCase) error) error
}

// CacheService provides read-through caching keyed by request fingerprint.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PushSender hands a notification to the external Web Push delivery
// service. Best-effort; delivery guarantees are out of scope.
type PushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, title, body string) error
}
