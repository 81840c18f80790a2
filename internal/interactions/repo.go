package interactions

import (
	"context"
	"errors"
)

var (
	// ErrExists is returned by Create when the (user, card, type) row is present.
	ErrExists = errors.New("interaction exists")
	// ErrAbsent is returned by Delete when there is nothing to remove.
	ErrAbsent = errors.New("interaction absent")
)

// Repo persists interaction rows.
type Repo interface {
	Create(ctx context.Context, in Interaction) error
	Delete(ctx context.Context, userID, cardID string, typ Type) error
	Status(ctx context.Context, userID, cardID string) (Status, error)
	// CardIDs lists the user's cards of one type, newest first.
	CardIDs(ctx context.Context, userID string, typ Type, limit int) ([]string, error)
	// Tallies counts rows per card for every card with at least one row.
	Tallies(ctx context.Context) (map[string]Tally, error)
}
