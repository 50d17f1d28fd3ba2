package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// JourneyService promotes itineraries to persisted journeys and applies
// realtime observations to them.
type JourneyService struct {
	journeys     ports.JourneyRepository
	notifier     *NotificationService
	compensation *CompensationService
}

// NewJourneyService creates a new JourneyService.
func NewJourneyService(journeys ports.JourneyRepository, notifier *NotificationService, compensation *CompensationService) *JourneyService {
	return &JourneyService{journeys: journeys, notifier: notifier, compensation: compensation}
}

// Promote persists a planned itinerary as a journey. Itineraries that are
// never promoted stay request-scoped and are not stored.
func (s *JourneyService) Promote(ctx context.Context, userID, routeID string, it domain.Itinerary) (*domain.Journey, error) {
	if len(it.Legs) == 0 {
		return nil, fmt.Errorf("itinerary has no legs")
	}
	if err := it.Validate(); err != nil {
		return nil, fmt.Errorf("itinerary invalid: %w", err)
	}

	j := &domain.Journey{
		UserID:     userID,
		RouteID:    routeID,
		Status:     domain.JourneyPlanned,
		Itinerary:  it,
		TravelDate: it.PlannedDeparture(),
	}
	if err := s.journeys.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("create journey: %w", err)
	}
	return j, nil
}

// GetByID returns a journey with an ownership check.
func (s *JourneyService) GetByID(ctx context.Context, id, userID string) (*domain.Journey, error) {
	j, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return j, nil
}

// ListByUser returns the user's journeys, newest first.
func (s *JourneyService) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Journey, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.journeys.ListByUser(ctx, userID, limit)
}

// journeyTransitions lists the allowed status moves.
var journeyTransitions = map[domain.JourneyStatus][]domain.JourneyStatus{
	domain.JourneyPlanned: {domain.JourneyActive, domain.JourneyCancelled},
	domain.JourneyActive:  {domain.JourneyCompleted, domain.JourneyCancelled},
}

// Transition moves a journey to a new status.
func (s *JourneyService) Transition(ctx context.Context, id string, to domain.JourneyStatus) error {
	j, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return err
	}
	allowed := false
	for _, next := range journeyTransitions[j.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, to)
	}
	return s.journeys.UpdateStatus(ctx, id, to)
}

// Observe applies a realtime observation to a journey: records the delay,
// fires delay/cancellation notifications, and runs the compensation
// evaluator. The delay only ever grows; a lower reading is kept but never
// shrinks the recorded maximum (eligibility stays monotonic).
func (s *JourneyService) Observe(ctx context.Context, journeyID string, delayMinutes int, cancelled bool) error {
	j, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return err
	}
	if j.Status == domain.JourneyCompleted || j.Status == domain.JourneyCancelled {
		return nil
	}

	if j.Status == domain.JourneyPlanned && !j.TravelDate.After(time.Now()) {
		if err := s.journeys.UpdateStatus(ctx, journeyID, domain.JourneyActive); err != nil {
			return fmt.Errorf("activate journey: %w", err)
		}
		j.Status = domain.JourneyActive
	}

	grew := delayMinutes > j.DelayMinutes
	if grew {
		if err := s.journeys.UpdateDelay(ctx, journeyID, delayMinutes); err != nil {
			return fmt.Errorf("record delay: %w", err)
		}
		j.DelayMinutes = delayMinutes
	}

	if cancelled {
		// A cancellation can arrive together with an eligible delay on the
		// same board entry; the evaluator still has to run, because the
		// journey is terminal afterwards and later ticks skip it.
		if err := s.journeys.UpdateStatus(ctx, journeyID, domain.JourneyCancelled); err != nil {
			return fmt.Errorf("cancel journey: %w", err)
		}
		j.Status = domain.JourneyCancelled
		if s.notifier != nil {
			_ = s.notifier.NotifyCancellation(ctx, j)
		}
		if s.compensation != nil {
			if _, _, err := s.compensation.Evaluate(ctx, j); err != nil {
				return fmt.Errorf("evaluate compensation: %w", err)
			}
		}
		return nil
	}

	if grew && delayMinutes > 0 && s.notifier != nil {
		_ = s.notifier.NotifyDelay(ctx, j, delayMinutes)
	}

	if s.compensation != nil {
		if _, _, err := s.compensation.Evaluate(ctx, j); err != nil {
			return fmt.Errorf("evaluate compensation: %w", err)
		}
	}
	return nil
}
