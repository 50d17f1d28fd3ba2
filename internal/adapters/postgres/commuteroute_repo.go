package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// CommuteRouteRepo implements ports.CommuteRouteRepository with pgx.
type CommuteRouteRepo struct {
	db *DB
}

// NewCommuteRouteRepo creates a new CommuteRouteRepo.
func NewCommuteRouteRepo(db *DB) *CommuteRouteRepo {
	return &CommuteRouteRepo{db: db}
}

const routeColumns = `
	id, user_id, name, origin_id, destination_id,
	weekdays, departure_time, threshold_minutes, active, created_at, updated_at`

// Create inserts a new commute route.
func (r *CommuteRouteRepo) Create(ctx context.Context, route *domain.CommuteRoute) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO commute_routes
			(user_id, name, origin_id, destination_id, weekdays, departure_time, threshold_minutes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, route.UserID, route.Name, route.OriginID, route.DestinationID,
		int(route.Weekdays), route.DepartureTime, route.ThresholdMin, route.Active,
	).Scan(&route.ID, &route.CreatedAt, &route.UpdatedAt)
}

// Update replaces route fields.
func (r *CommuteRouteRepo) Update(ctx context.Context, route *domain.CommuteRoute) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE commute_routes
		SET name = $2, origin_id = $3, destination_id = $4, weekdays = $5,
		    departure_time = $6, threshold_minutes = $7, active = $8, updated_at = now()
		WHERE id = $1
	`, route.ID, route.Name, route.OriginID, route.DestinationID,
		int(route.Weekdays), route.DepartureTime, route.ThresholdMin, route.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a route.
func (r *CommuteRouteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM commute_routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns a route by UUID.
func (r *CommuteRouteRepo) GetByID(ctx context.Context, id string) (*domain.CommuteRoute, error) {
	return scanRoute(r.db.Pool.QueryRow(ctx,
		`SELECT `+routeColumns+` FROM commute_routes WHERE id = $1`, id))
}

// ListByUser returns the user's routes.
func (r *CommuteRouteRepo) ListByUser(ctx context.Context, userID string) ([]domain.CommuteRoute, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+routeColumns+` FROM commute_routes WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoutes(rows)
}

// ListActive returns active routes for a weekday whose departure
// time-of-day falls in [from, to). The weekday bitset uses bit 0 = Monday.
func (r *CommuteRouteRepo) ListActive(ctx context.Context, day time.Weekday, from, to string) ([]domain.CommuteRoute, error) {
	bit := int(day) - 1
	if day == time.Sunday {
		bit = 6
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+routeColumns+`
		FROM commute_routes
		WHERE active
		  AND (weekdays >> $1) & 1 = 1
		  AND departure_time >= $2 AND departure_time < $3
		ORDER BY departure_time
	`, bit, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoutes(rows)
}

func scanRoute(row pgx.Row) (*domain.CommuteRoute, error) {
	var route domain.CommuteRoute
	var weekdays int
	err := row.Scan(
		&route.ID, &route.UserID, &route.Name, &route.OriginID, &route.DestinationID,
		&weekdays, &route.DepartureTime, &route.ThresholdMin, &route.Active,
		&route.CreatedAt, &route.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	route.Weekdays = domain.Weekdays(weekdays)
	return &route, nil
}

func collectRoutes(rows pgx.Rows) ([]domain.CommuteRoute, error) {
	var routes []domain.CommuteRoute
	for rows.Next() {
		var route domain.CommuteRoute
		var weekdays int
		if err := rows.Scan(
			&route.ID, &route.UserID, &route.Name, &route.OriginID, &route.DestinationID,
			&weekdays, &route.DepartureTime, &route.ThresholdMin, &route.Active,
			&route.CreatedAt, &route.UpdatedAt,
		); err != nil {
			return nil, err
		}
		route.Weekdays = domain.Weekdays(weekdays)
		routes = append(routes, route)
	}
	return routes, rows.Err()
}
