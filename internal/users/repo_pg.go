package users

import (
	"context"
	"database/sql"
	"errors"

	"workspace-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, email, name, password_hash, picture_url, favorite_topics, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, password_hash, picture_url, favorite_topics, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		nullableString(user.PasswordHash),
		user.PictureURL,
		nonNil(user.FavoriteTopics),
	)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, userID)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM users WHERE email = $1`, email)
}

func (r *PGRepo) UpsertOAuth(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, email, name, picture_url, favorite_topics, created_at, updated_at)
VALUES ($1, $2, $3, $4, '{}', now(), now())
ON CONFLICT (email) DO UPDATE SET
  name = EXCLUDED.name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()
RETURNING ` + selectColumns
	return scanUser(r.DB.QueryRowContext(ctx, query, user.ID, user.Email, user.Name, user.PictureURL))
}

func (r *PGRepo) UpdateFavoriteTopics(ctx context.Context, userID string, topics []string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET favorite_topics = $2, updated_at = now() WHERE id = $1`, userID, nonNil(topics))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var passwordHash sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&passwordHash,
		&user.PictureURL,
		db.TextArray(&user.FavoriteTopics),
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.PasswordHash = passwordHash.String
	return user, nil
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

var _ Repo = (*PGRepo)(nil)
