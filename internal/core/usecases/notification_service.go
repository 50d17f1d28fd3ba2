package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// repeatWindow suppresses duplicate notifications for the same journey and
// type. The polling loop re-observes the same delay every tick; without a
// window each tick would emit a fresh row.
const repeatWindow = 15 * time.Minute

// NotificationService persists notification rows and fans them out to the
// event bus and the external push sender, all best-effort.
type NotificationService struct {
	notifications ports.NotificationRepository
	subs          ports.PushSubscriptionRepository
	publisher     ports.EventPublisher
	push          ports.PushSender
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notifications ports.NotificationRepository,
	subs ports.PushSubscriptionRepository,
	publisher ports.EventPublisher,
	push ports.PushSender,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		subs:          subs,
		publisher:     publisher,
		push:          push,
	}
}

// NotifyDelay emits a delay notification for a journey.
func (s *NotificationService) NotifyDelay(ctx context.Context, j *domain.Journey, delayMinutes int) error {
	n := &domain.Notification{
		UserID:    j.UserID,
		Type:      domain.NotifyDelay,
		Severity:  severityForDelay(delayMinutes),
		Title:     fmt.Sprintf("%s delayed %d min", j.Itinerary.Origin().Name, delayMinutes),
		Body:      fmt.Sprintf("Your journey from %s to %s is running %d minutes late.", j.Itinerary.Origin().Name, j.Itinerary.Destination().Name, delayMinutes),
		RouteID:   j.RouteID,
		JourneyID: j.ID,
	}
	return s.emit(ctx, n, func(ctx context.Context) error {
		return s.publisher.PublishDelay(ctx, j.UserID, n)
	})
}

// NotifyCancellation emits a cancellation notification for a journey.
func (s *NotificationService) NotifyCancellation(ctx context.Context, j *domain.Journey) error {
	n := &domain.Notification{
		UserID:    j.UserID,
		Type:      domain.NotifyCancellation,
		Severity:  domain.SeverityCritical,
		Title:     "Departure cancelled",
		Body:      fmt.Sprintf("Your journey from %s to %s has been cancelled.", j.Itinerary.Origin().Name, j.Itinerary.Destination().Name),
		RouteID:   j.RouteID,
		JourneyID: j.ID,
	}
	return s.emit(ctx, n, func(ctx context.Context) error {
		return s.publisher.PublishCancellation(ctx, j.UserID, n)
	})
}

// NotifyCompensation tells the user a compensation case was opened.
func (s *NotificationService) NotifyCompensation(ctx context.Context, c *domain.CompensationCase) error {
	n := &domain.Notification{
		UserID:    c.UserID,
		Type:      domain.NotifyCompensation,
		Severity:  domain.SeverityInfo,
		Title:     "You may be entitled to compensation",
		Body:      fmt.Sprintf("A %d minute delay qualifies for a claim of about %d kr.", c.DelayMinutes, c.AmountSEK),
		JourneyID: c.JourneyID,
	}
	return s.emit(ctx, n, func(ctx context.Context) error {
		return s.publisher.PublishCase(ctx, c)
	})
}

// emit persists the row unless an identical one landed inside the repeat
// window, then publishes and pushes best-effort.
func (s *NotificationService) emit(ctx context.Context, n *domain.Notification, publish func(context.Context) error) error {
	if n.JourneyID != "" {
		last, err := s.notifications.LastOfType(ctx, n.UserID, n.JourneyID, n.Type)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("dedup lookup: %w", err)
		}
		if last != nil && time.Since(last.CreatedAt) < repeatWindow {
			return nil
		}
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if s.publisher != nil {
		_ = publish(ctx)
	}
	s.pushOut(ctx, n)
	return nil
}

// pushOut hands the notification to the external push sender for every
// registered endpoint. Failures are dropped; delivery is fire-and-forget.
func (s *NotificationService) pushOut(ctx context.Context, n *domain.Notification) {
	if s.push == nil || s.subs == nil {
		return
	}
	subs, err := s.subs.ListByUser(ctx, n.UserID)
	if err != nil {
		return
	}
	for i := range subs {
		_ = s.push.Send(ctx, &subs[i], n.Title, n.Body)
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.notifications.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.notifications.MarkRead(ctx, id, userID)
}

// MarkAllRead flags every notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

func severityForDelay(minutes int) domain.Severity {
	switch {
	case minutes >= 30:
		return domain.SeverityCritical
	case minutes >= 10:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
