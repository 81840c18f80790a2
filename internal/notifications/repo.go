package notifications

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("notification not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo persists notifications. Every user-scoped call treats a foreign id as missing.
type Repo interface {
	Create(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	PurgeReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
