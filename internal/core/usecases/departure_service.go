package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/ports"
)

// DepartureService serves realtime departure boards through the upstream
// provider, behind a short staleness-window cache.
type DepartureService struct {
	board ports.DepartureBoard
	cache ports.CacheService
}

// NewDepartureService creates a new DepartureService.
func NewDepartureService(board ports.DepartureBoard, cache ports.CacheService) *DepartureService {
	return &DepartureService{board: board, cache: cache}
}

// AtStop returns upcoming departures at a stop. Responses are cached for
// 60 seconds per stop; realtime estimates older than that are stale anyway.
func (s *DepartureService) AtStop(ctx context.Context, stopID string, limit int) ([]domain.Departure, error) {
	if stopID == "" {
		return nil, fmt.Errorf("stop id is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	cacheKey := "departures:" + stopID
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var deps []domain.Departure
			if err := json.Unmarshal(data, &deps); err == nil {
				return clampDepartures(deps, limit), nil
			}
		}
	}

	deps, err := s.board.Departures(ctx, stopID, time.Now())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(deps); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}
	return clampDepartures(deps, limit), nil
}

func clampDepartures(deps []domain.Departure, limit int) []domain.Departure {
	if len(deps) > limit {
		return deps[:limit]
	}
	return deps
}
