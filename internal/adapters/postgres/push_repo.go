package postgres

import (
	"context"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// PushRepo implements ports.PushSubscriptionRepository.
type PushRepo struct {
	db *DB
}

// NewPushRepo creates a new PushRepo.
func NewPushRepo(db *DB) *PushRepo {
	return &PushRepo{db: db}
}

// Create registers a push endpoint. Re-registering the same endpoint for
// the same user refreshes its keys instead of duplicating the row.
func (r *PushRepo) Create(ctx context.Context, sub *domain.PushSubscription) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, endpoint) DO UPDATE SET
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth
		RETURNING id, created_at
	`, sub.UserID, sub.Endpoint, sub.P256DH, sub.Auth).Scan(&sub.ID, &sub.CreatedAt)
}

// Delete removes a subscription, scoped to the owner.
func (r *PushRepo) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's registered endpoints.
func (r *PushRepo) ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.PushSubscription
	for rows.Next() {
		var s domain.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256DH, &s.Auth, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
