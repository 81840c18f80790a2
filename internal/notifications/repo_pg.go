package notifications

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, message, type, related_card_id, related_user_id, read, read_at, created_at`

func (r *PGRepo) Create(ctx context.Context, n Notification) error {
	const query = `
INSERT INTO notifications (id, user_id, message, type, related_card_id, related_user_id, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Message,
		string(n.Type),
		nullableString(n.RelatedCardID),
		nullableString(n.RelatedUserID),
		n.CreatedAt,
	)
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	query := `SELECT ` + selectColumns + `
FROM notifications
WHERE user_id = $1 AND ($2 = FALSE OR read = FALSE)
ORDER BY created_at DESC, id ASC
LIMIT $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID).Scan(&n)
	return n, err
}

func (r *PGRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	const query = `
UPDATE notifications
SET read = TRUE, read_at = COALESCE(read_at, $3)
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE notifications SET read = TRUE, read_at = $2 WHERE user_id = $1 AND read = FALSE`, userID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE read = TRUE AND read_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (Notification, error) {
	var n Notification
	var typ string
	var cardID, userID sql.NullString
	var readAt sql.NullTime
	if err := row.Scan(&n.ID, &n.UserID, &n.Message, &typ, &cardID, &userID, &n.Read, &readAt, &n.CreatedAt); err != nil {
		return Notification{}, err
	}
	n.Type = Type(typ)
	n.RelatedCardID = cardID.String
	n.RelatedUserID = userID.String
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
