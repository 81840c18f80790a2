package cards

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("card not found")
	ErrForbidden    = errors.New("card access denied")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo persists knowledge cards.
type Repo interface {
	Create(ctx context.Context, card Card) error
	Get(ctx context.Context, id string) (Card, error)
	Update(ctx context.Context, card Card) error
	Delete(ctx context.Context, id string) error
	// List orders newest first.
	List(ctx context.Context, f Filter) ([]Card, error)
	// GetMany skips ids that do not exist; order is unspecified.
	GetMany(ctx context.Context, ids []string) ([]Card, error)
	IncrementViews(ctx context.Context, id string) error
	// AdjustCounter adds delta to the counter, never going below zero.
	AdjustCounter(ctx context.Context, id string, counter Counter, delta int64) error
	AddRating(ctx context.Context, id string, value int) (Rating, error)
	// FindByInterests returns public cards not authored by excludeAuthor whose
	// category or any tag matches an interest case-insensitively, ordered by
	// views desc, likes desc, id asc.
	FindByInterests(ctx context.Context, interests []string, excludeAuthor string, limit int) ([]Card, error)
	// MostViewed uses the same ordering as FindByInterests over all public cards.
	MostViewed(ctx context.Context, excludeAuthor string, limit int) ([]Card, error)
	ListCounters(ctx context.Context) ([]Counters, error)
	SetCounters(ctx context.Context, c Counters) error
}
