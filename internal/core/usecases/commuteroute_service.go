package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// CommuteRouteService handles saved commute routes.
type CommuteRouteService struct {
	routes ports.CommuteRouteRepository
	stops  ports.StopRepository
}

// NewCommuteRouteService creates a new CommuteRouteService.
func NewCommuteRouteService(routes ports.CommuteRouteRepository, stops ports.StopRepository) *CommuteRouteService {
	return &CommuteRouteService{routes: routes, stops: stops}
}

// Create validates and stores a new commute route for the user.
func (s *CommuteRouteService) Create(ctx context.Context, route *domain.CommuteRoute) (*domain.CommuteRoute, error) {
	if err := s.validate(ctx, route); err != nil {
		return nil, err
	}
	if route.ThresholdMin <= 0 {
		route.ThresholdMin = domain.DefaultThresholdMin
	}
	route.Active = true
	if err := s.routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	return route, nil
}

// Update replaces a route after an ownership check.
func (s *CommuteRouteService) Update(ctx context.Context, route *domain.CommuteRoute) (*domain.CommuteRoute, error) {
	existing, err := s.routes.GetByID(ctx, route.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != route.UserID {
		return nil, domain.ErrForbidden
	}
	if err := s.validate(ctx, route); err != nil {
		return nil, err
	}
	if route.ThresholdMin <= 0 {
		route.ThresholdMin = domain.DefaultThresholdMin
	}
	if err := s.routes.Update(ctx, route); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}
	return route, nil
}

// Delete removes a route after an ownership check.
func (s *CommuteRouteService) Delete(ctx context.Context, id, userID string) error {
	existing, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return domain.ErrForbidden
	}
	return s.routes.Delete(ctx, id)
}

// GetByID returns a route after an ownership check.
func (s *CommuteRouteService) GetByID(ctx context.Context, id, userID string) (*domain.CommuteRoute, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if route.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return route, nil
}

// ListByUser returns the user's saved routes.
func (s *CommuteRouteService) ListByUser(ctx context.Context, userID string) ([]domain.CommuteRoute, error) {
	return s.routes.ListByUser(ctx, userID)
}

// DueAround returns active routes whose departure time-of-day falls inside
// the window [at, at+span) on at's weekday. The watcher polls with this.
func (s *CommuteRouteService) DueAround(ctx context.Context, at time.Time, span time.Duration) ([]domain.CommuteRoute, error) {
	from := at.Format("15:04")
	to := at.Add(span).Format("15:04")
	return s.routes.ListActive(ctx, at.Weekday(), from, to)
}

func (s *CommuteRouteService) validate(ctx context.Context, route *domain.CommuteRoute) error {
	if route.Name == "" {
		return fmt.Errorf("route name is required")
	}
	if route.OriginID == route.DestinationID {
		return fmt.Errorf("origin and destination must differ")
	}
	if _, err := time.Parse("15:04", route.DepartureTime); err != nil {
		return fmt.Errorf("departure_time must be HH:MM: %w", err)
	}
	if route.Weekdays == 0 {
		return fmt.Errorf("at least one weekday is required")
	}
	if _, err := s.stops.GetByID(ctx, route.OriginID); err != nil {
		return fmt.Errorf("origin stop: %w", err)
	}
	if _, err := s.stops.GetByID(ctx, route.DestinationID); err != nil {
		return fmt.Errorf("destination stop: %w", err)
	}
	return nil
}
