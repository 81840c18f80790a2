package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Repo persists users. Emails are stored lowercased and are unique.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// UpsertOAuth inserts the user or refreshes the profile of the account with
	// the same email, returning the stored row.
	UpsertOAuth(ctx context.Context, user User) (User, error)
	UpdateFavoriteTopics(ctx context.Context, userID string, topics []string) error
}
