package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/core/usecases"
)

func TestAtStop_RequiresStopID(t *testing.T) {
	svc := usecases.NewDepartureService(&mockBoard{}, nil)
	if _, err := svc.AtStop(context.Background(), "", 10); err == nil {
		t.Error("expected error for empty stop id")
	}
}

func TestAtStop_ClampsLimit(t *testing.T) {
	board := &mockBoard{
		departuresFn: func(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
			deps := make([]domain.Departure, 20)
			return deps, nil
		},
	}

	svc := usecases.NewDepartureService(board, nil)
	deps, err := svc.AtStop(context.Background(), "740000001", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 5 {
		t.Errorf("expected 5 departures, got %d", len(deps))
	}

	deps, _ = svc.AtStop(context.Background(), "740000001", 999)
	if len(deps) != 10 {
		t.Errorf("out-of-range limit should fall back to 10, got %d", len(deps))
	}
}

func TestAtStop_ReadThroughCache(t *testing.T) {
	calls := 0
	board := &mockBoard{
		departuresFn: func(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
			calls++
			return []domain.Departure{{Line: domain.Line{Designation: "43"}}}, nil
		},
	}

	svc := usecases.NewDepartureService(board, newMockCache())
	for i := 0; i < 3; i++ {
		if _, err := svc.AtStop(context.Background(), "740000001", 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestAtStop_UpstreamErrorPassesThrough(t *testing.T) {
	board := &mockBoard{
		departuresFn: func(ctx context.Context, stopID string, at time.Time) ([]domain.Departure, error) {
			return nil, domain.ErrUpstreamUnavailable
		},
	}

	svc := usecases.NewDepartureService(board, nil)
	if _, err := svc.AtStop(context.Background(), "740000001", 10); err == nil {
		t.Error("expected upstream error")
	}
}
