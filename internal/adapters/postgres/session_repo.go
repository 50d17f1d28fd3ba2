package postgres

import (
	"context"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// SessionRepo implements ports.SessionRepository. Token issuance happens
// at the identity provider; this repo only resolves and revokes tokens.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// GetByToken resolves a bearer token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.Pool.QueryRow(ctx, `
		SELECT token, user_id, expires_at, created_at
		FROM sessions WHERE token = $1
	`, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// Delete revokes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID returns a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, email, display_name, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}
