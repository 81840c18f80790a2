package analytics

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	logs []Log
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Insert(ctx context.Context, entry Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, entry)
	return nil
}

func (r *MemoryRepo) CountByCard(ctx context.Context, since time.Time, actions []Action) ([]CardCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := actionSet(actions)

	r.mu.RLock()
	counts := map[string]int64{}
	for _, l := range r.logs {
		if l.CardID == "" || l.CreatedAt.Before(since) {
			continue
		}
		if _, ok := wanted[l.Action]; !ok {
			continue
		}
		counts[l.CardID]++
	}
	r.mu.RUnlock()

	out := make([]CardCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, CardCount{CardID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CardID < out[j].CardID
	})
	return out, nil
}

func (r *MemoryRepo) RecentCardIDs(ctx context.Context, userID string, actions []Action, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := actionSet(actions)

	r.mu.RLock()
	matched := make([]Log, 0)
	for _, l := range r.logs {
		if l.UserID != userID || l.CardID == "" {
			continue
		}
		if _, ok := wanted[l.Action]; ok {
			matched = append(matched, l)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	ids := make([]string, len(matched))
	for i, l := range matched {
		ids[i] = l.CardID
	}
	return ids, nil
}

func (r *MemoryRepo) CountByAction(ctx context.Context, userID string, since time.Time) (map[Action]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[Action]int64{}
	for _, l := range r.logs {
		if l.UserID == userID && !l.CreatedAt.Before(since) {
			out[l.Action]++
		}
	}
	return out, nil
}

func (r *MemoryRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.logs[:0]
	var purged int64
	for _, l := range r.logs {
		if l.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, l)
	}
	r.logs = kept
	return purged, nil
}

func actionSet(actions []Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

var _ Repo = (*MemoryRepo)(nil)
