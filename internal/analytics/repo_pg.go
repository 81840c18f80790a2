package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Insert(ctx context.Context, entry Log) error {
	const query = `
INSERT INTO analytics_logs (id, user_id, action_type, card_id, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var metadata any
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = string(raw)
	}
	var cardID sql.NullString
	if entry.CardID != "" {
		cardID = sql.NullString{String: entry.CardID, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		string(entry.Action),
		cardID,
		metadata,
		entry.CreatedAt,
	)
	return err
}

func (r *PGRepo) CountByCard(ctx context.Context, since time.Time, actions []Action) ([]CardCount, error) {
	const query = `
SELECT card_id, COUNT(*) AS n
FROM analytics_logs
WHERE created_at >= $1 AND action_type = ANY($2) AND card_id IS NOT NULL
GROUP BY card_id
ORDER BY n DESC, card_id ASC`

	rows, err := r.DB.QueryContext(ctx, query, since, actionStrings(actions))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CardCount
	for rows.Next() {
		var cc CardCount
		if err := rows.Scan(&cc.CardID, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (r *PGRepo) RecentCardIDs(ctx context.Context, userID string, actions []Action, limit int) ([]string, error) {
	const query = `
SELECT card_id
FROM analytics_logs
WHERE user_id = $1 AND action_type = ANY($2) AND card_id IS NOT NULL
ORDER BY created_at DESC
LIMIT $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, actionStrings(actions), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PGRepo) CountByAction(ctx context.Context, userID string, since time.Time) (map[Action]int64, error) {
	const query = `
SELECT action_type, COUNT(*)
FROM analytics_logs
WHERE user_id = $1 AND created_at >= $2
GROUP BY action_type`

	rows, err := r.DB.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Action]int64{}
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		out[Action(action)] = n
	}
	return out, rows.Err()
}

func (r *PGRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analytics_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ Repo = (*PGRepo)(nil)
