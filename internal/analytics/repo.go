package analytics

import (
	"context"
	"time"
)

// Repo persists analytics logs. Entries are never updated.
type Repo interface {
	Insert(ctx context.Context, entry Log) error
	// CountByCard counts entries per card since the cutoff, ordered by count
	// desc then card id asc.
	CountByCard(ctx context.Context, since time.Time, actions []Action) ([]CardCount, error)
	// RecentCardIDs returns card ids from the user's newest entries, newest first.
	RecentCardIDs(ctx context.Context, userID string, actions []Action, limit int) ([]string, error)
	CountByAction(ctx context.Context, userID string, since time.Time) (map[Action]int64, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
