package domain

import (
	"time"
)

// TransportMode classifies a stop or line by vehicle type.
type TransportMode string

const (
	ModeMetro TransportMode = "metro"
	ModeRail  TransportMode = "rail"
	ModeBus   TransportMode = "bus"
	ModeTram  TransportMode = "tram"
	ModeFerry TransportMode = "ferry"
	ModeOther TransportMode = "other"
)

// User is an account holder. Authentication happens at an external
// identity provider; we only keep the reference row.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session maps a bearer token to a user. Expired sessions surface as
// ErrUnauthorized at the HTTP layer.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// Stop is a transit stop or station. Reference data loaded by the
// station loader from the national stop register.
type Stop struct {
	ID           string        `json:"id"`
	StopID       string        `json:"stop_id"` // upstream (Rikshållplats) identifier
	Name         string        `json:"name"`
	Location     GeoPoint      `json:"location"`
	Mode         TransportMode `json:"mode"`
	PlatformCode string        `json:"platform_code,omitempty"`
	Distance     *float64      `json:"distance,omitempty"` // computed field
	CreatedAt    time.Time     `json:"created_at"`
}

// Line is a transit line (e.g. pendeltåg 43, tunnelbana 14).
type Line struct {
	ID          string        `json:"id"`
	Designation string        `json:"designation"`
	Mode        TransportMode `json:"mode"`
	Name        string        `json:"name,omitempty"`
	Color       string        `json:"color,omitempty"`
}

// Departure is a realtime board entry at a stop.
type Departure struct {
	Line      Line       `json:"line"`
	Direction string     `json:"direction"`
	Planned   time.Time  `json:"planned"`
	Expected  *time.Time `json:"expected,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	Cancelled bool       `json:"cancelled"`
}

// Delay returns the departure delay, zero when no realtime estimate exists
// or the vehicle runs early.
func (d Departure) Delay() time.Duration {
	if d.Expected == nil {
		return 0
	}
	delay := d.Expected.Sub(d.Planned)
	if delay < 0 {
		return 0
	}
	return delay
}

// CommuteRoute is a user-owned saved commute: fixed origin and destination,
// the weekdays it runs, the usual departure time, and the delay threshold
// above which compensation applies.
type CommuteRoute struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	OriginID      string    `json:"origin_id"`
	DestinationID string    `json:"destination_id"`
	Weekdays      Weekdays  `json:"weekdays"`
	DepartureTime string    `json:"departure_time"` // "HH:MM" local time
	ThresholdMin  int       `json:"threshold_minutes"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultThresholdMin is the compensation threshold used when a route
// does not set its own.
const DefaultThresholdMin = 20

// Threshold returns the route's compensation threshold in minutes,
// falling back to the default.
func (r *CommuteRoute) Threshold() int {
	if r == nil || r.ThresholdMin <= 0 {
		return DefaultThresholdMin
	}
	return r.ThresholdMin
}

// Weekdays is a bitset of active weekdays, bit 0 = Monday ... bit 6 = Sunday.
type Weekdays uint8

// WeekdaysAll has every day set.
const WeekdaysAll Weekdays = 0x7F

// Has reports whether the given weekday is set.
func (w Weekdays) Has(day time.Weekday) bool {
	return w&(1<<weekdayBit(day)) != 0
}

// With returns a copy with the given weekday set.
func (w Weekdays) With(day time.Weekday) Weekdays {
	return w | (1 << weekdayBit(day))
}

func weekdayBit(day time.Weekday) uint {
	// time.Weekday starts on Sunday; our bit 0 is Monday.
	if day == time.Sunday {
		return 6
	}
	return uint(day) - 1
}

// JourneyStatus is the lifecycle state of a persisted journey.
type JourneyStatus string

const (
	JourneyPlanned   JourneyStatus = "planned"
	JourneyActive    JourneyStatus = "active"
	JourneyCompleted JourneyStatus = "completed"
	JourneyCancelled JourneyStatus = "cancelled"
)

// Journey is an itinerary promoted to a persisted record, tracked against
// realtime data until completion.
type Journey struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	RouteID       string        `json:"route_id,omitempty"` // owning commute route, if any
	Status        JourneyStatus `json:"status"`
	Itinerary     Itinerary     `json:"itinerary"`
	DelayMinutes  int           `json:"delay_minutes"`
	TravelDate    time.Time     `json:"travel_date"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CaseStatus is the lifecycle state of a compensation case.
type CaseStatus string

const (
	CaseDetected   CaseStatus = "detected"
	CaseDraft      CaseStatus = "draft"
	CaseSubmitted  CaseStatus = "submitted"
	CaseProcessing CaseStatus = "processing"
	CaseApproved   CaseStatus = "approved"
	CaseRejected   CaseStatus = "rejected"
)

// CompensationCase tracks a delay-refund claim for one journey.
// At most one case exists per journey.
type CompensationCase struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	JourneyID    string     `json:"journey_id"`
	DelayMinutes int        `json:"delay_minutes"`
	ThresholdMin int        `json:"threshold_minutes"`
	AmountSEK    int        `json:"amount_sek"`
	Status       CaseStatus `json:"status"`
	ClaimData    []byte     `json:"-"` // encrypted personal/payment payload
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotifyDelay        NotificationType = "delay"
	NotifyCancellation NotificationType = "cancellation"
	NotifyCompensation NotificationType = "compensation"
	NotifyRouteChange  NotificationType = "route_change"
	NotifyMaintenance  NotificationType = "maintenance"
)

// Severity ranks notifications for display ordering.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is a persisted in-app message for a user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Severity  Severity         `json:"severity"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	RouteID   string           `json:"route_id,omitempty"`
	JourneyID string           `json:"journey_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// ServiceAlert is a line- or stop-scoped disruption notice with a
// validity window.
type ServiceAlert struct {
	ID        string    `json:"id"`
	LineID    string    `json:"line_id,omitempty"`
	StopID    string    `json:"stop_id,omitempty"`
	Header    string    `json:"header"`
	Details   string    `json:"details,omitempty"`
	Severity  Severity  `json:"severity"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
	CreatedAt time.Time `json:"created_at"`
}

// ActiveAt reports whether the alert's validity window covers t.
func (a *ServiceAlert) ActiveAt(t time.Time) bool {
	return !t.Before(a.ValidFrom) && t.Before(a.ValidTo)
}

// PushSubscription stores a Web Push endpoint for a user. Delivery is
// handled by an external sender; we only persist the registration.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256DH    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
