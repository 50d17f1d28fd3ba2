package ports

import (
	"context"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// UserRepository persists user reference rows.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionRepository resolves bearer tokens to sessions.
type SessionRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// StopRepository persists stops.
type StopRepository interface {
	Upsert(ctx context.Context, stop *domain.Stop) error
	UpsertBatch(ctx context.Context, stops []domain.Stop) error
	GetByID(ctx context.Context, id string) (*domain.Stop, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Stop, error)
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Stop, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Stop, error)
}

// LineRepository persists lines.
type LineRepository interface {
	Upsert(ctx context.Context, line *domain.Line) error
	GetByID(ctx context.Context, id string) (*domain.Line, error)
	ListByMode(ctx context.Context, mode domain.TransportMode) ([]domain.Line, error)
}

// CommuteRouteRepository persists saved commute routes.
type CommuteRouteRepository interface {
	Create(ctx context.Context, route *domain.CommuteRoute) error
	Update(ctx context.Context, route *domain.CommuteRoute) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.CommuteRoute, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CommuteRoute, error)
	// ListActive returns routes active on the given weekday whose departure
	// time-of-day falls inside [from, to) expressed as "HH:MM".
	ListActive(ctx context.Context, day time.Weekday, from, to string) ([]domain.CommuteRoute, error)
}

// JourneyRepository persists journeys.
type JourneyRepository interface {
	Create(ctx context.Context, j *domain.Journey) error
	GetByID(ctx context.Context, id string) (*domain.Journey, error)
	// FindByRouteAndDate returns the journey tracked for a commute route on
	// a calendar day, or ErrNotFound.
	FindByRouteAndDate(ctx context.Context, routeID string, date time.Time) (*domain.Journey, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Journey, error)
	UpdateStatus(ctx context.Context, id string, status domain.JourneyStatus) error
	UpdateDelay(ctx context.Context, id string, delayMinutes int) error
}

// CompensationCaseRepository persists compensation cases. CreateUnique
// enforces at most one case per journey and returns domain.ErrCaseExists
// when one is already there.
type CompensationCaseRepository interface {
	CreateUnique(ctx context.Context, c *domain.CompensationCase) error
	GetByID(ctx context.Context, id string) (*domain.CompensationCase, error)
	GetByJourney(ctx context.Context, journeyID string) (*domain.CompensationCase, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.CompensationCase, error)
	UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error
	SetClaimData(ctx context.Context, id string, data []byte) error
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	// LastOfType returns the newest notification of the given type for a
	// journey, used for the repeat-suppression window.
	LastOfType(ctx context.Context, userID, journeyID string, t domain.NotificationType) (*domain.Notification, error)
}

// ServiceAlertRepository persists disruption notices.
type ServiceAlertRepository interface {
	Upsert(ctx context.Context, a *domain.ServiceAlert) error
	ListActive(ctx context.Context, at time.Time) ([]domain.ServiceAlert, error)
}

// PushSubscriptionRepository persists Web Push registrations.
type PushSubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.PushSubscription) error
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
}
