package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service manages a user's notifications.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

// Notify stores a new unread notification.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	if strings.TrimSpace(n.UserID) == "" || strings.TrimSpace(n.Message) == "" {
		return ErrInvalidInput
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = TypeSystem
	}
	n.Read = false
	n.ReadAt = nil
	n.CreatedAt = s.Now()
	return s.Repo.Create(ctx, n)
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.Repo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.Repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.Repo.MarkRead(ctx, userID, id, s.Now())
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID, s.Now())
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

// ExpireRead deletes notifications read longer ago than retention.
func (s *Service) ExpireRead(ctx context.Context, retention time.Duration) (int64, error) {
	return s.Repo.PurgeReadBefore(ctx, s.Now().Add(-retention))
}
