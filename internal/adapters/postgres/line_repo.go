package postgres

import (
	"context"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// LineRepo implements ports.LineRepository with pgx.
type LineRepo struct {
	db *DB
}

// NewLineRepo creates a new LineRepo.
func NewLineRepo(db *DB) *LineRepo {
	return &LineRepo{db: db}
}

// Upsert inserts or updates a line.
func (r *LineRepo) Upsert(ctx context.Context, l *domain.Line) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO lines (designation, mode, name, color)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (designation, mode) DO UPDATE
		SET name = EXCLUDED.name, color = EXCLUDED.color
	`, l.Designation, l.Mode, l.Name, l.Color)
	return err
}

// GetByID returns a line by UUID.
func (r *LineRepo) GetByID(ctx context.Context, id string) (*domain.Line, error) {
	var l domain.Line
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, designation, mode, COALESCE(name, ''), COALESCE(color, '')
		FROM lines WHERE id = $1
	`, id).Scan(&l.ID, &l.Designation, &l.Mode, &l.Name, &l.Color)
	if err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

// ListByMode returns all lines of a transport mode.
func (r *LineRepo) ListByMode(ctx context.Context, mode domain.TransportMode) ([]domain.Line, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, designation, mode, COALESCE(name, ''), COALESCE(color, '')
		FROM lines WHERE mode = $1 ORDER BY designation
	`, mode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ID, &l.Designation, &l.Mode, &l.Name, &l.Color); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
