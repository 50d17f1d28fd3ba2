package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// JourneyRepo implements ports.JourneyRepository with pgx. The itinerary
// is stored as a JSONB snapshot; status and delay live in their own
// columns so the watcher can update them cheaply.
type JourneyRepo struct {
	db *DB
}

// NewJourneyRepo creates a new JourneyRepo.
func NewJourneyRepo(db *DB) *JourneyRepo {
	return &JourneyRepo{db: db}
}

// Create inserts a journey.
func (r *JourneyRepo) Create(ctx context.Context, j *domain.Journey) error {
	itinerary, err := json.Marshal(j.Itinerary)
	if err != nil {
		return fmt.Errorf("marshal itinerary: %w", err)
	}
	var routeID *string
	if j.RouteID != "" {
		routeID = &j.RouteID
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO journeys (user_id, route_id, status, itinerary, delay_minutes, travel_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, j.UserID, routeID, j.Status, itinerary, j.DelayMinutes, j.TravelDate,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

// GetByID returns a journey by UUID.
func (r *JourneyRepo) GetByID(ctx context.Context, id string) (*domain.Journey, error) {
	var j domain.Journey
	var routeID *string
	var itinerary []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, route_id, status, itinerary, delay_minutes, travel_date, created_at, updated_at
		FROM journeys WHERE id = $1
	`, id).Scan(&j.ID, &j.UserID, &routeID, &j.Status, &itinerary,
		&j.DelayMinutes, &j.TravelDate, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if routeID != nil {
		j.RouteID = *routeID
	}
	if err := json.Unmarshal(itinerary, &j.Itinerary); err != nil {
		return nil, fmt.Errorf("unmarshal itinerary: %w", err)
	}
	return &j, nil
}

// FindByRouteAndDate returns the journey tracked for a route on a
// calendar day.
func (r *JourneyRepo) FindByRouteAndDate(ctx context.Context, routeID string, date time.Time) (*domain.Journey, error) {
	var j domain.Journey
	var rid *string
	var itinerary []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, route_id, status, itinerary, delay_minutes, travel_date, created_at, updated_at
		FROM journeys
		WHERE route_id = $1 AND travel_date::date = $2::date
		ORDER BY created_at DESC
		LIMIT 1
	`, routeID, date).Scan(&j.ID, &j.UserID, &rid, &j.Status, &itinerary,
		&j.DelayMinutes, &j.TravelDate, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if rid != nil {
		j.RouteID = *rid
	}
	if err := json.Unmarshal(itinerary, &j.Itinerary); err != nil {
		return nil, fmt.Errorf("unmarshal itinerary: %w", err)
	}
	return &j, nil
}

// ListByUser returns the user's journeys, newest first.
func (r *JourneyRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Journey, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, route_id, status, itinerary, delay_minutes, travel_date, created_at, updated_at
		FROM journeys WHERE user_id = $1
		ORDER BY travel_date DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var journeys []domain.Journey
	for rows.Next() {
		var j domain.Journey
		var routeID *string
		var itinerary []byte
		if err := rows.Scan(&j.ID, &j.UserID, &routeID, &j.Status, &itinerary,
			&j.DelayMinutes, &j.TravelDate, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		if routeID != nil {
			j.RouteID = *routeID
		}
		if err := json.Unmarshal(itinerary, &j.Itinerary); err != nil {
			return nil, fmt.Errorf("unmarshal itinerary: %w", err)
		}
		journeys = append(journeys, j)
	}
	return journeys, rows.Err()
}

// UpdateStatus sets the journey status.
func (r *JourneyRepo) UpdateStatus(ctx context.Context, id string, status domain.JourneyStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE journeys SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateDelay records the observed delay. GREATEST keeps the stored value
// monotonic even if two watcher ticks race.
func (r *JourneyRepo) UpdateDelay(ctx context.Context, id string, delayMinutes int) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE journeys
		SET delay_minutes = GREATEST(delay_minutes, $2), updated_at = now()
		WHERE id = $1
	`, id, delayMinutes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
