package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// WatcherService polls realtime boards for commute routes near their
// departure time and feeds the observations into journey tracking.
type WatcherService struct {
	routes   *CommuteRouteService
	journeys ports.JourneyRepository
	tracker  *JourneyService
	planner  *PlannerService
	board    ports.DepartureBoard
	stops    ports.StopRepository

	lookahead   time.Duration
	maxInFlight int
}

// NewWatcherService creates a new WatcherService.
func NewWatcherService(
	routes *CommuteRouteService,
	journeys ports.JourneyRepository,
	tracker *JourneyService,
	planner *PlannerService,
	board ports.DepartureBoard,
	stops ports.StopRepository,
	lookahead time.Duration,
) *WatcherService {
	return &WatcherService{
		routes:      routes,
		journeys:    journeys,
		tracker:     tracker,
		planner:     planner,
		board:       board,
		stops:       stops,
		lookahead:   lookahead,
		maxInFlight: 8,
	}
}

// Tick processes every commute route due inside the lookahead window.
// Routes are watched concurrently with bounded in-flight upstream calls.
func (s *WatcherService) Tick(ctx context.Context, now time.Time) {
	due, err := s.routes.DueAround(ctx, now, s.lookahead)
	if err != nil {
		slog.Error("list due routes", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxInFlight)
	for _, route := range due {
		wg.Add(1)
		go func(route domain.CommuteRoute) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.watchRoute(ctx, route, now); err != nil {
				slog.Warn("watch route", "route_id", route.ID, "error", err)
			}
		}(route)
	}
	wg.Wait()
}

// watchRoute ensures today's journey exists for the route, reads the
// realtime board at the origin, and applies the observation.
func (s *WatcherService) watchRoute(ctx context.Context, route domain.CommuteRoute, now time.Time) error {
	j, err := s.journeys.FindByRouteAndDate(ctx, route.ID, now)
	if errors.Is(err, domain.ErrNotFound) {
		j, err = s.startJourney(ctx, route, now)
		if err != nil {
			return fmt.Errorf("start journey: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("find journey: %w", err)
	}
	if j.Status == domain.JourneyCompleted || j.Status == domain.JourneyCancelled {
		return nil
	}

	origin, err := s.stops.GetByID(ctx, route.OriginID)
	if err != nil {
		return fmt.Errorf("resolve origin: %w", err)
	}

	board, err := s.board.Departures(ctx, origin.StopID, now)
	if err != nil {
		return fmt.Errorf("departure board: %w", err)
	}

	dep, ok := matchDeparture(board, j)
	if !ok {
		return nil
	}

	delayMin := int(dep.Delay().Minutes())
	return s.tracker.Observe(ctx, j.ID, delayMin, dep.Cancelled)
}

// startJourney plans origin-to-destination for the route's departure time
// and promotes it so the observation has something to land on.
func (s *WatcherService) startJourney(ctx context.Context, route domain.CommuteRoute, now time.Time) (*domain.Journey, error) {
	depart, err := routeDeparture(route, now)
	if err != nil {
		return nil, err
	}

	it, err := s.planner.Assemble(ctx, []string{route.OriginID, route.DestinationID}, depart)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	for _, leg := range it.Legs {
		if !leg.Valid {
			return nil, fmt.Errorf("no valid connection: %s", leg.Reason)
		}
	}

	return s.tracker.Promote(ctx, route.UserID, route.ID, *it)
}

// routeDeparture anchors the route's "HH:MM" departure to now's date.
func routeDeparture(route domain.CommuteRoute, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", route.DepartureTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("departure time %q: %w", route.DepartureTime, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

// matchDeparture finds the board entry for the journey's first transit
// leg: same line designation when known, planned time within a quarter
// hour either way.
func matchDeparture(board []domain.Departure, j *domain.Journey) (domain.Departure, bool) {
	const slack = 15 * time.Minute

	var designation string
	var planned time.Time
	for _, leg := range j.Itinerary.Legs {
		if leg.Kind == domain.LegTransit {
			if leg.Line != nil {
				designation = leg.Line.Designation
			}
			planned = leg.PlannedDep
			break
		}
	}
	if planned.IsZero() {
		return domain.Departure{}, false
	}

	for _, d := range board {
		if designation != "" && d.Line.Designation != designation {
			continue
		}
		diff := d.Planned.Sub(planned)
		if diff < 0 {
			diff = -diff
		}
		if diff <= slack {
			return d, true
		}
	}
	return domain.Departure{}, false
}
