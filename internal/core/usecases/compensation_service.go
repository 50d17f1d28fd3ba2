package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// AmountPerDelayMinuteSEK is the linear claim-estimate multiplier. It is a
// placeholder business rule copied from the claim-form flow, not a tariff.
const AmountPerDelayMinuteSEK = 6.5

// CompensationService decides delay-compensation eligibility and owns the
// case lifecycle.
type CompensationService struct {
	cases    ports.CompensationCaseRepository
	routes   ports.CommuteRouteRepository
	notifier *NotificationService
}

// NewCompensationService creates a new CompensationService.
func NewCompensationService(
	cases ports.CompensationCaseRepository,
	routes ports.CommuteRouteRepository,
	notifier *NotificationService,
) *CompensationService {
	return &CompensationService{cases: cases, routes: routes, notifier: notifier}
}

// EstimateAmountSEK converts observed delay minutes into a claim estimate,
// rounded to whole kronor.
func EstimateAmountSEK(delayMinutes int) int {
	return int(math.Round(float64(delayMinutes) * AmountPerDelayMinuteSEK))
}

// Evaluate checks a journey against its route's threshold and, on the
// first crossing, creates exactly one compensation case. Re-evaluating a
// journey that already has a case is a no-op returning the existing case.
// Eligibility is monotonic: a later observation with equal or greater
// delay never flips an eligible journey back.
func (s *CompensationService) Evaluate(ctx context.Context, j *domain.Journey) (*domain.CompensationCase, bool, error) {
	threshold := domain.DefaultThresholdMin
	if j.RouteID != "" {
		route, err := s.routes.GetByID(ctx, j.RouteID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("load route %s: %w", j.RouteID, err)
		}
		if err == nil {
			threshold = route.Threshold()
		}
	}

	if j.DelayMinutes < threshold {
		return nil, false, nil
	}

	c := &domain.CompensationCase{
		UserID:       j.UserID,
		JourneyID:    j.ID,
		DelayMinutes: j.DelayMinutes,
		ThresholdMin: threshold,
		AmountSEK:    EstimateAmountSEK(j.DelayMinutes),
		Status:       domain.CaseDetected,
	}

	err := s.cases.CreateUnique(ctx, c)
	if errors.Is(err, domain.ErrCaseExists) {
		existing, getErr := s.cases.GetByJourney(ctx, j.ID)
		if getErr != nil {
			return nil, false, fmt.Errorf("load existing case: %w", getErr)
		}
		return existing, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create case: %w", err)
	}

	if s.notifier != nil {
		// Best-effort; the case stands even if the notification fails.
		_ = s.notifier.NotifyCompensation(ctx, c)
	}
	return c, true, nil
}

// caseTransitions lists the allowed status moves. Creation is the
// evaluator's job; everything after is user or operator action.
var caseTransitions = map[domain.CaseStatus][]domain.CaseStatus{
	domain.CaseDetected:   {domain.CaseDraft, domain.CaseSubmitted},
	domain.CaseDraft:      {domain.CaseSubmitted},
	domain.CaseSubmitted:  {domain.CaseProcessing},
	domain.CaseProcessing: {domain.CaseApproved, domain.CaseRejected},
}

func transitionAllowed(from, to domain.CaseStatus) bool {
	for _, s := range caseTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Submit attaches the (already encrypted) claim payload and moves the case
// to submitted. Only the owning user may submit.
func (s *CompensationService) Submit(ctx context.Context, caseID, userID string, claimData []byte) (*domain.CompensationCase, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if !transitionAllowed(c.Status, domain.CaseSubmitted) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, c.Status, domain.CaseSubmitted)
	}

	if len(claimData) > 0 {
		if err := s.cases.SetClaimData(ctx, caseID, claimData); err != nil {
			return nil, fmt.Errorf("store claim data: %w", err)
		}
	}
	if err := s.cases.UpdateStatus(ctx, caseID, domain.CaseSubmitted); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	c.Status = domain.CaseSubmitted
	return c, nil
}

// Advance moves a case along its lifecycle (operator action).
func (s *CompensationService) Advance(ctx context.Context, caseID string, to domain.CaseStatus) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if !transitionAllowed(c.Status, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, c.Status, to)
	}
	return s.cases.UpdateStatus(ctx, caseID, to)
}

// ListByUser returns the user's cases, newest first.
func (s *CompensationService) ListByUser(ctx context.Context, userID string, limit int) ([]domain.CompensationCase, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.cases.ListByUser(ctx, userID, limit)
}

// GetByID returns a case with an ownership check.
func (s *CompensationService) GetByID(ctx context.Context, caseID, userID string) (*domain.CompensationCase, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}
