package postgres

import (
	"context"
	"time"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// AlertRepo implements ports.ServiceAlertRepository with pgx.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new AlertRepo.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// Upsert inserts or refreshes an alert keyed by its upstream id.
func (r *AlertRepo) Upsert(ctx context.Context, a *domain.ServiceAlert) error {
	var lineID, stopID *string
	if a.LineID != "" {
		lineID = &a.LineID
	}
	if a.StopID != "" {
		stopID = &a.StopID
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO service_alerts (id, line_id, stop_id, header, details, severity, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			header = EXCLUDED.header,
			details = EXCLUDED.details,
			severity = EXCLUDED.severity,
			valid_from = EXCLUDED.valid_from,
			valid_to = EXCLUDED.valid_to
	`, a.ID, lineID, stopID, a.Header, a.Details, a.Severity, a.ValidFrom, a.ValidTo)
	return err
}

// ListActive returns alerts whose validity window covers the given time.
func (r *AlertRepo) ListActive(ctx context.Context, at time.Time) ([]domain.ServiceAlert, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, line_id, stop_id, header, details, severity, valid_from, valid_to, created_at
		FROM service_alerts
		WHERE valid_from <= $1 AND valid_to > $1
		ORDER BY severity DESC, valid_from
	`, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.ServiceAlert
	for rows.Next() {
		var a domain.ServiceAlert
		var lineID, stopID *string
		if err := rows.Scan(&a.ID, &lineID, &stopID, &a.Header, &a.Details,
			&a.Severity, &a.ValidFrom, &a.ValidTo, &a.CreatedAt); err != nil {
			return nil, err
		}
		if lineID != nil {
			a.LineID = *lineID
		}
		if stopID != nil {
			a.StopID = *stopID
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
