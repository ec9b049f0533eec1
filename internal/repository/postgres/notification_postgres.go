package postgres

import (
	"context"
	"database/sql"

	"doctrack/internal/model"
	"doctrack/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) error {
	const q = `
		INSERT INTO notifications (id, user_id, title, message, type, read, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, q, n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.Read, nullString(n.Link), n.CreatedAt)
	return err
}

func (r *NotificationPostgres) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	const q = `
		SELECT id, user_id, title, message, type, read, link, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		var (
			n    model.Notification
			typ  string
			link sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.Read, &link, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(typ)
		n.Link = link.String
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead flips the read flag of one of the user's notifications.
func (r *NotificationPostgres) MarkRead(ctx context.Context, id, userID string) error {
	const q = `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *NotificationPostgres) MarkAllRead(ctx context.Context, userID string) error {
	const q = `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
