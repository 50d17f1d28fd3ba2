package postgres

import (
	"context"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// CaseRepo implements ports.CompensationCaseRepository. The
// compensation_cases table carries a UNIQUE constraint on journey_id so
// the one-case-per-journey rule is enforced by the database, not just
// application code.
type CaseRepo struct {
	db *DB
}

// NewCaseRepo creates a new CaseRepo.
func NewCaseRepo(db *DB) *CaseRepo {
	return &CaseRepo{db: db}
}

// CreateUnique inserts the case unless one already exists for the
// journey. ON CONFLICT DO NOTHING makes the insert a no-op in that
// case; zero rows affected maps to domain.ErrCaseExists.
func (r *CaseRepo) CreateUnique(ctx context.Context, c *domain.CompensationCase) error {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO compensation_cases (journey_id, user_id, status, delay_minutes, threshold_min, amount_sek)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (journey_id) DO NOTHING
	`, c.JourneyID, c.UserID, c.Status, c.DelayMinutes, c.ThresholdMin, c.AmountSEK)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCaseExists
	}
	return r.db.Pool.QueryRow(ctx,
		`SELECT id, created_at, updated_at FROM compensation_cases WHERE journey_id = $1`,
		c.JourneyID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

const caseColumns = `id, journey_id, user_id, status, delay_minutes, threshold_min, amount_sek, claim_data, created_at, updated_at`

func scanCase(row interface{ Scan(...any) error }) (*domain.CompensationCase, error) {
	var c domain.CompensationCase
	err := row.Scan(&c.ID, &c.JourneyID, &c.UserID, &c.Status,
		&c.DelayMinutes, &c.ThresholdMin, &c.AmountSEK, &c.ClaimData, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

// GetByID returns a case by UUID.
func (r *CaseRepo) GetByID(ctx context.Context, id string) (*domain.CompensationCase, error) {
	return scanCase(r.db.Pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM compensation_cases WHERE id = $1`, id))
}

// GetByJourney returns the case for a journey, if any.
func (r *CaseRepo) GetByJourney(ctx context.Context, journeyID string) (*domain.CompensationCase, error) {
	return scanCase(r.db.Pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM compensation_cases WHERE journey_id = $1`, journeyID))
}

// ListByUser returns the user's cases, newest first.
func (r *CaseRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.CompensationCase, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+caseColumns+` FROM compensation_cases WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []domain.CompensationCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

// UpdateStatus sets the case status.
func (r *CaseRepo) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE compensation_cases SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetClaimData stores the prepared claim payload.
func (r *CaseRepo) SetClaimData(ctx context.Context, id string, data []byte) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE compensation_cases
		SET claim_data = $2, updated_at = now()
		WHERE id = $1
	`, id, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
