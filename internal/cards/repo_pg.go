package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"workspace-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, title, content, author_id, tags, category, visibility, view_count, like_count,
bookmark_count, rating_average, rating_count, created_at, updated_at`

const popularityOrder = `ORDER BY view_count DESC, like_count DESC, id ASC`

func (r *PGRepo) Create(ctx context.Context, card Card) error {
	const query = `
INSERT INTO knowledge_cards (id, title, content, author_id, tags, category, visibility, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		card.ID,
		card.Title,
		card.Content,
		card.AuthorID,
		nonNil(card.Tags),
		card.Category,
		string(card.Visibility),
		card.CreatedAt,
		card.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Card, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM knowledge_cards WHERE id = $1`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrNotFound
	}
	return card, err
}

func (r *PGRepo) Update(ctx context.Context, card Card) error {
	const query = `
UPDATE knowledge_cards
SET title = $2, content = $3, tags = $4, category = $5, visibility = $6, updated_at = $7
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		card.ID,
		card.Title,
		card.Content,
		nonNil(card.Tags),
		card.Category,
		string(card.Visibility),
		card.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM knowledge_cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) List(ctx context.Context, f Filter) ([]Card, error) {
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Visibility != "" {
		add("visibility = $%d", string(f.Visibility))
	}
	if f.AuthorID != "" {
		add("author_id = $%d", f.AuthorID)
	}
	if f.Category != "" {
		add("lower(category) = lower($%d)", f.Category)
	}
	if f.Tag != "" {
		add("lower($%d) = ANY(tags)", f.Tag)
	}
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", n, n))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + selectColumns + ` FROM knowledge_cards`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id ASC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return r.query(ctx, b.String(), args...)
}

func (r *PGRepo) GetMany(ctx context.Context, ids []string) ([]Card, error) {
	if len(ids) == 0 {
		return []Card{}, nil
	}
	return r.query(ctx, `SELECT `+selectColumns+` FROM knowledge_cards WHERE id = ANY($1)`, ids)
}

func (r *PGRepo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE knowledge_cards SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) AdjustCounter(ctx context.Context, id string, counter Counter, delta int64) error {
	var column string
	switch counter {
	case CounterLikes:
		column = "like_count"
	case CounterBookmarks:
		column = "bookmark_count"
	default:
		return fmt.Errorf("unknown counter %q", counter)
	}
	query := `UPDATE knowledge_cards SET ` + column + ` = GREATEST(` + column + ` + $2, 0) WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, delta)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) AddRating(ctx context.Context, id string, value int) (Rating, error) {
	const query = `
UPDATE knowledge_cards
SET rating_average = (rating_average * rating_count + $2) / (rating_count + 1),
    rating_count = rating_count + 1
WHERE id = $1
RETURNING rating_average, rating_count`
	var out Rating
	err := r.DB.QueryRowContext(ctx, query, id, value).Scan(&out.Average, &out.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return Rating{}, ErrNotFound
	}
	return out, err
}

func (r *PGRepo) FindByInterests(ctx context.Context, interests []string, excludeAuthor string, limit int) ([]Card, error) {
	lowered := make([]string, 0, len(interests))
	for _, i := range interests {
		lowered = append(lowered, strings.ToLower(i))
	}
	query := `SELECT ` + selectColumns + `
FROM knowledge_cards
WHERE visibility = 'public'
  AND author_id <> $2
  AND (lower(category) = ANY($1) OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE lower(t) = ANY($1)))
` + popularityOrder + `
LIMIT $3`
	return r.query(ctx, query, lowered, excludeAuthor, limit)
}

func (r *PGRepo) MostViewed(ctx context.Context, excludeAuthor string, limit int) ([]Card, error) {
	query := `SELECT ` + selectColumns + `
FROM knowledge_cards
WHERE visibility = 'public' AND author_id <> $1
` + popularityOrder + `
LIMIT $2`
	return r.query(ctx, query, excludeAuthor, limit)
}

func (r *PGRepo) ListCounters(ctx context.Context) ([]Counters, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, like_count, bookmark_count FROM knowledge_cards ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Counters, 0)
	for rows.Next() {
		var c Counters
		if err := rows.Scan(&c.CardID, &c.Likes, &c.Bookmarks); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetCounters(ctx context.Context, c Counters) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE knowledge_cards SET like_count = $2, bookmark_count = $3 WHERE id = $1`,
		c.CardID, c.Likes, c.Bookmarks,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Card, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (Card, error) {
	var c Card
	var visibility string
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Content,
		&c.AuthorID,
		db.TextArray(&c.Tags),
		&c.Category,
		&visibility,
		&c.ViewCount,
		&c.LikeCount,
		&c.BookmarkCount,
		&c.Rating.Average,
		&c.Rating.Count,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Card{}, err
	}
	c.Visibility = Visibility(visibility)
	return c, nil
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

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ Repo = (*PGRepo)(nil)
