package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// StopService handles stop lookups and search.
type StopService struct {
	stops ports.StopRepository
	cache ports.CacheService
}

// NewStopService creates a new StopService.
func NewStopService(stops ports.StopRepository, cache ports.CacheService) *StopService {
	return &StopService{stops: stops, cache: cache}
}

// SearchByPrefix returns stops whose name starts with the given prefix.
func (s *StopService) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Stop, error) {
	if prefix == "" {
		return nil, fmt.Errorf("search prefix must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("stops:prefix:%s:%d", prefix, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stops []domain.Stop
			if err := json.Unmarshal(data, &stops); err == nil {
				return stops, nil
			}
		}
	}

	stops, err := s.stops.SearchByPrefix(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}

	// Stop register changes rarely; 10 minutes is plenty fresh.
	if s.cache != nil {
		if data, err := json.Marshal(stops); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return stops, nil
}

// FindNearby returns stops within radiusMeters of the given point.
func (s *StopService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Stop, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("stops:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stops []domain.Stop
			if err := json.Unmarshal(data, &stops); err == nil {
				return stops, nil
			}
		}
	}

	stops, err := s.stops.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stops); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return stops, nil
}

// GetByID returns a single stop.
func (s *StopService) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	return s.stops.GetByID(ctx, id)
}

// GetByIDs returns multiple stops by their IDs.
func (s *StopService) GetByIDs(ctx context.Context, ids []string) ([]domain.Stop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.stops.GetByIDs(ctx, ids)
}
