package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oskarlindgren/pendla/internal/core/domain"
)

// NotificationRepo implements ports.NotificationRepository with pgx.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, user_id, type, severity, title, body, route_id, journey_id, read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*domain.Notification, error) {
	var n domain.Notification
	var routeID, journeyID *string
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Severity, &n.Title, &n.Body,
		&routeID, &journeyID, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if routeID != nil {
		n.RouteID = *routeID
	}
	if journeyID != nil {
		n.JourneyID = *journeyID
	}
	return &n, nil
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	var routeID, journeyID *string
	if n.RouteID != "" {
		routeID = &n.RouteID
	}
	if n.JourneyID != "" {
		journeyID = &n.JourneyID
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, severity, title, body, route_id, journey_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, n.UserID, n.Type, n.Severity, n.Title, n.Body, routeID, journeyID,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		q += ` AND read = false`
	}
	q += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

// MarkRead marks one notification as read, scoped to the owner.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	return err
}

// LastOfType returns the newest notification of a type for a journey.
// A nil result with nil error means none exists.
func (r *NotificationRepo) LastOfType(ctx context.Context, userID, journeyID string, t domain.NotificationType) (*domain.Notification, error) {
	n, err := scanNotification(r.db.Pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND journey_id = $2 AND type = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, journeyID, t))
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return n, err
}
