package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// StopRepo implements ports.StopRepository with pgx.
type StopRepo struct {
	db *DB
}

// NewStopRepo creates a new StopRepo.
func NewStopRepo(db *DB) *StopRepo {
	return &StopRepo{db: db}
}

// Upsert inserts or updates a single stop, keyed by the upstream stop id.
func (r *StopRepo) Upsert(ctx context.Context, s *domain.Stop) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO stops (stop_id, name, location, mode, platform_code)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6)
		ON CONFLICT (stop_id) DO UPDATE
		SET name = EXCLUDED.name, location = EXCLUDED.location,
		    mode = EXCLUDED.mode, platform_code = EXCLUDED.platform_code
	`, s.StopID, s.Name, s.Location.Lon, s.Location.Lat, s.Mode, s.PlatformCode)
	return err
}

// UpsertBatch inserts many stops using pgx.Batch.
func (r *StopRepo) UpsertBatch(ctx context.Context, stops []domain.Stop) error {
	batch := &pgx.Batch{}
	for _, s := range stops {
		batch.Queue(`
			INSERT INTO stops (stop_id, name, location, mode, platform_code)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6)
			ON CONFLICT (stop_id) DO UPDATE
			SET name = EXCLUDED.name, location = EXCLUDED.location, mode = EXCLUDED.mode
		`, s.StopID, s.Name, s.Location.Lon, s.Location.Lat, s.Mode, s.PlatformCode)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range stops {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

const stopColumns = `
	id, stop_id, name,
	ST_Y(location::geometry) as lat,
	ST_X(location::geometry) as lon,
	mode, COALESCE(platform_code, ''), created_at`

func scanStop(row pgx.Row) (*domain.Stop, error) {
	var s domain.Stop
	err := row.Scan(
		&s.ID, &s.StopID, &s.Name,
		&s.Location.Lat, &s.Location.Lon,
		&s.Mode, &s.PlatformCode, &s.CreatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// GetByID returns a stop by UUID.
func (r *StopRepo) GetByID(ctx context.Context, id string) (*domain.Stop, error) {
	return scanStop(r.db.Pool.QueryRow(ctx,
		`SELECT `+stopColumns+` FROM stops WHERE id = $1`, id))
}

// GetByIDs returns multiple stops by UUID, in arbitrary order.
func (r *StopRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Stop, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+stopColumns+` FROM stops WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStops(rows)
}

// SearchByPrefix returns stops whose name starts with the prefix,
// case-insensitively.
func (r *StopRepo) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]domain.Stop, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stopColumns+`
		FROM stops
		WHERE name ILIKE $1 || '%'
		ORDER BY name
		LIMIT $2
	`, prefix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStops(rows)
}

// FindNearby returns stops within radiusMeters using PostGIS ST_DWithin.
func (r *StopRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Stop, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, stop_id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       mode, COALESCE(platform_code, ''),
		       ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) as distance,
		       created_at
		FROM stops
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		var s domain.Stop
		var dist float64
		if err := rows.Scan(
			&s.ID, &s.StopID, &s.Name,
			&s.Location.Lat, &s.Location.Lon,
			&s.Mode, &s.PlatformCode,
			&dist, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.Distance = &dist
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

func collectStops(rows pgx.Rows) ([]domain.Stop, error) {
	var stops []domain.Stop
	for rows.Next() {
		var s domain.Stop
		if err := rows.Scan(
			&s.ID, &s.StopID, &s.Name,
			&s.Location.Lat, &s.Location.Lon,
			&s.Mode, &s.PlatformCode, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}
