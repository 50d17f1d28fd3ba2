package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// PlannerService assembles multi-stop commutes into validated leg chains.
type PlannerService struct {
	planner ports.TripPlanner
	stops   ports.StopRepository
	cache   ports.CacheService

	// window bounds how far after the requested departure a connection may
	// leave and still count as valid.
	window time.Duration
	// maxInFlight caps concurrent upstream calls in ValidateAll.
	maxInFlight int
}

// NewPlannerService creates a new PlannerService.
func NewPlannerService(planner ports.TripPlanner, stops ports.StopRepository, cache ports.CacheService) *PlannerService {
	return &PlannerService{
		planner:     planner,
		stops:       stops,
		cache:       cache,
		window:      2 * time.Hour,
		maxInFlight: 4,
	}
}

// Assemble stitches an ordered stop list into an itinerary. Every adjacent
// pair becomes one leg, validated against the trip planner. A failing pair
// yields an invalid leg with a reason; it does not abort the rest of the
// chain.
func (s *PlannerService) Assemble(ctx context.Context, stopIDs []string, depart time.Time) (*domain.Itinerary, error) {
	if len(stopIDs) < 2 {
		return nil, fmt.Errorf("at least two stops are required")
	}

	stops, err := s.resolveStops(ctx, stopIDs)
	if err != nil {
		return nil, err
	}

	it := &domain.Itinerary{}
	cursor := depart
	for i := 0; i+1 < len(stops); i++ {
		leg := s.planLeg(ctx, stops[i], stops[i+1], cursor)
		if leg.Valid {
			cursor = leg.ArrivesAt()
		}
		it.Legs = append(it.Legs, leg)
	}
	return it, nil
}

// legResult pairs a validated leg with its position in the chain so that
// concurrent results can be merged by key.
type legResult struct {
	index int
	leg   domain.Leg
}

// ValidateAll re-validates every leg concurrently: one task per leg,
// bounded in-flight upstream calls, results merged back by index. The
// context cancels outstanding tasks when the caller goes away.
func (s *PlannerService) ValidateAll(ctx context.Context, it domain.Itinerary, depart time.Time) (domain.Itinerary, error) {
	if len(it.Legs) == 0 {
		return it, nil
	}

	results := make(chan legResult, len(it.Legs))
	sem := make(chan struct{}, s.maxInFlight)

	var wg sync.WaitGroup
	for i, leg := range it.Legs {
		wg.Add(1)
		go func(i int, leg domain.Leg) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				leg.Valid = false
				leg.Reason = "validation cancelled"
				results <- legResult{index: i, leg: leg}
				return
			}
			results <- legResult{index: i, leg: s.planLeg(ctx, leg.From, leg.To, depart)}
		}(i, leg)
	}
	wg.Wait()
	close(results)

	out := domain.Itinerary{Legs: make([]domain.Leg, len(it.Legs))}
	copy(out.Legs, it.Legs)
	for r := range results {
		out.Legs[r.index] = r.leg
	}
	return out, ctx.Err()
}

// InsertVia splits the leg at index into two around the given stop. The
// previous segment's destination and the following segment's origin are
// re-linked in one operation, so the chain never dangles and the outer
// origin and destination are preserved.
func (s *PlannerService) InsertVia(it domain.Itinerary, index int, via domain.Stop) (domain.Itinerary, error) {
	if index < 0 || index >= len(it.Legs) {
		return it, fmt.Errorf("leg index %d out of range", index)
	}

	old := it.Legs[index]
	first := domain.Leg{Kind: domain.LegTransit, From: old.From, To: via}
	second := domain.Leg{Kind: domain.LegTransit, From: via, To: old.To}

	out := domain.Itinerary{Legs: make([]domain.Leg, 0, len(it.Legs)+1)}
	out.Legs = append(out.Legs, it.Legs[:index]...)
	out.Legs = append(out.Legs, first, second)
	out.Legs = append(out.Legs, it.Legs[index+1:]...)

	if err := out.Validate(); err != nil {
		return it, err
	}
	return out, nil
}

// RemoveLeg splices out the leg at index. When a middle leg goes, the
// following leg is re-anchored to the removed leg's origin and marked for
// re-validation so no stop reference is left dangling.
func (s *PlannerService) RemoveLeg(it domain.Itinerary, index int) (domain.Itinerary, error) {
	if index < 0 || index >= len(it.Legs) {
		return it, fmt.Errorf("leg index %d out of range", index)
	}

	out := domain.Itinerary{Legs: make([]domain.Leg, 0, len(it.Legs)-1)}
	out.Legs = append(out.Legs, it.Legs[:index]...)
	out.Legs = append(out.Legs, it.Legs[index+1:]...)

	if index > 0 && index < len(it.Legs)-1 {
		out.Legs[index].From = it.Legs[index].From
		out.Legs[index].Valid = false
		out.Legs[index].Reason = "needs re-validation"
	}

	if err := out.Validate(); err != nil {
		return it, err
	}
	return out, nil
}

// planLeg queries the trip planner for one stop pair and folds the best
// candidate into a single leg. Upstream failures become an invalid leg
// with a reason rather than an error; the caller decides what to do with
// the rest of the chain.
func (s *PlannerService) planLeg(ctx context.Context, from, to domain.Stop, depart time.Time) domain.Leg {
	leg := domain.Leg{Kind: domain.LegTransit, From: from, To: to}

	candidates, err := s.planPair(ctx, from.StopID, to.StopID, depart)
	if err != nil {
		leg.Reason = reasonFor(err)
		return leg
	}

	best, ok := s.pickCandidate(candidates, depart)
	if !ok {
		leg.Reason = fmt.Sprintf("no connection within %s of requested departure", s.window)
		return leg
	}

	first := best.Legs[0]
	last := best.Legs[len(best.Legs)-1]
	leg.Kind = first.Kind
	leg.Line = firstLine(best)
	leg.Platform = first.Platform
	leg.PlannedDep = first.PlannedDep
	leg.ExpectedDep = first.ExpectedDep
	leg.PlannedArr = last.PlannedArr
	leg.ExpectedArr = last.ExpectedArr
	leg.Cancelled = best.Cancelled()
	leg.Valid = !leg.Cancelled
	if leg.Cancelled {
		leg.Reason = "connection cancelled"
	}
	return leg
}

// planPair is a read-through cache over the trip planner, keyed by the
// request fingerprint. Departure times are bucketed to five minutes so
// near-identical requests share an entry; the short TTL is the explicit
// staleness policy.
func (s *PlannerService) planPair(ctx context.Context, fromID, toID string, depart time.Time) ([]domain.Itinerary, error) {
	bucket := depart.Unix() / 300
	key := fmt.Sprintf("plan:%s:%s:%d", fromID, toID, bucket)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var its []domain.Itinerary
			if err := json.Unmarshal(data, &its); err == nil {
				return its, nil
			}
		}
	}

	its, err := s.planner.PlanTrips(ctx, fromID, toID, depart)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(its); err == nil {
			_ = s.cache.Set(ctx, key, data, 120)
		}
	}
	return its, nil
}

// pickCandidate returns the earliest candidate departing inside the window.
func (s *PlannerService) pickCandidate(candidates []domain.Itinerary, depart time.Time) (domain.Itinerary, bool) {
	deadline := depart.Add(s.window)
	for _, c := range candidates {
		if len(c.Legs) == 0 {
			continue
		}
		dep := c.ExpectedDeparture()
		if !dep.Before(depart.Add(-time.Minute)) && dep.Before(deadline) {
			return c, true
		}
	}
	return domain.Itinerary{}, false
}

func (s *PlannerService) resolveStops(ctx context.Context, ids []string) ([]domain.Stop, error) {
	stops := make([]domain.Stop, 0, len(ids))
	for _, id := range ids {
		stop, err := s.stops.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve stop %s: %w", id, err)
		}
		stops = append(stops, *stop)
	}
	return stops, nil
}

func firstLine(it domain.Itinerary) *domain.Line {
	for _, l := range it.Legs {
		if l.Kind == domain.LegTransit && l.Line != nil {
			return l.Line
		}
	}
	return nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoRouteFound):
		return "no route found between stops"
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return "provider rate limit reached, try again later"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "provider unavailable"
	case errors.Is(err, context.Canceled):
		return "validation cancelled"
	default:
		return err.Error()
	}
}
