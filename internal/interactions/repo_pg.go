package interactions

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create relies on the (user_id, card_id, type) unique constraint so that
// concurrent creates resolve to exactly one row.
func (r *PGRepo) Create(ctx context.Context, in Interaction) error {
	const query = `
INSERT INTO bookmark_likes (id, user_id, card_id, type, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, card_id, type) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query, in.ID, in.UserID, in.CardID, string(in.Type), in.CreatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, cardID string, typ Type) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM bookmark_likes WHERE user_id = $1 AND card_id = $2 AND type = $3`,
		userID, cardID, string(typ),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAbsent
	}
	return nil
}

func (r *PGRepo) Status(ctx context.Context, userID, cardID string) (Status, error) {
	const query = `
SELECT
    COALESCE(bool_or(type = 'like'), FALSE),
    COALESCE(bool_or(type = 'bookmark'), FALSE)
FROM bookmark_likes
WHERE user_id = $1 AND card_id = $2`
	var s Status
	err := r.DB.QueryRowContext(ctx, query, userID, cardID).Scan(&s.Liked, &s.Bookmarked)
	return s, err
}

func (r *PGRepo) CardIDs(ctx context.Context, userID string, typ Type, limit int) ([]string, error) {
	const query = `
SELECT card_id
FROM bookmark_likes
WHERE user_id = $1 AND type = $2
ORDER BY created_at DESC, id ASC
LIMIT $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, string(typ), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PGRepo) Tallies(ctx context.Context) (map[string]Tally, error) {
	const query = `
SELECT card_id,
       COUNT(*) FILTER (WHERE type = 'like'),
       COUNT(*) FILTER (WHERE type = 'bookmark')
FROM bookmark_likes
GROUP BY card_id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Tally)
	for rows.Next() {
		var id string
		var t Tally
		if err := rows.Scan(&id, &t.Likes, &t.Bookmarks); err != nil {
			return nil, err
		}
		out[id] = t
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
