package interactions

import (
	"context"
	"sort"
	"sync"
)

type key struct {
	userID string
	cardID string
	typ    Type
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[key]Interaction
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[key]Interaction)}
}

func (r *MemoryRepo) Create(ctx context.Context, in Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := key{in.UserID, in.CardID, in.Type}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[k]; ok {
		return ErrExists
	}
	r.items[k] = in
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, cardID string, typ Type) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := key{userID, cardID, typ}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[k]; !ok {
		return ErrAbsent
	}
	delete(r.items, k)
	return nil
}

func (r *MemoryRepo) Status(ctx context.Context, userID, cardID string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, liked := r.items[key{userID, cardID, TypeLike}]
	_, bookmarked := r.items[key{userID, cardID, TypeBookmark}]
	return Status{Liked: liked, Bookmarked: bookmarked}, nil
}

func (r *MemoryRepo) CardIDs(ctx context.Context, userID string, typ Type, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var matches []Interaction
	for k, in := range r.items {
		if k.userID == userID && k.typ == typ {
			matches = append(matches, in)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, 0, len(matches))
	for _, in := range matches {
		out = append(out, in.CardID)
	}
	return out, nil
}

func (r *MemoryRepo) Tallies(ctx context.Context) (map[string]Tally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Tally)
	for k := range r.items {
		t := out[k.cardID]
		if k.typ == TypeLike {
			t.Likes++
		} else {
			t.Bookmarks++
		}
		out[k.cardID] = t
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
