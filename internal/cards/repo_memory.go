package cards

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Card
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Card)}
}

func (r *MemoryRepo) Create(ctx context.Context, card Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[card.ID] = card.clone()
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Card, error) {
	if err := ctx.Err(); err != nil {
		return Card{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.items[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	return card.clone(), nil
}

func (r *MemoryRepo) Update(ctx context.Context, card Card) error {
	return r.mutate(ctx, card.ID, func(c *Card) {
		c.Title = card.Title
		c.Content = card.Content
		c.Tags = append([]string(nil), card.Tags...)
		c.Category = card.Category
		c.Visibility = card.Visibility
		c.UpdatedAt = card.UpdatedAt
	})
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := strings.ToLower(f.Query)
	tag := strings.ToLower(f.Tag)

	r.mu.RLock()
	out := make([]Card, 0)
	for _, c := range r.items {
		if f.Visibility != "" && c.Visibility != f.Visibility {
			continue
		}
		if f.AuthorID != "" && c.AuthorID != f.AuthorID {
			continue
		}
		if f.Category != "" && !strings.EqualFold(c.Category, f.Category) {
			continue
		}
		if tag != "" && !containsFold(c.Tags, tag) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(c.Title), query) && !strings.Contains(strings.ToLower(c.Content), query) {
			continue
		}
		out = append(out, c.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Offset, f.Limit), nil
}

func (r *MemoryRepo) GetMany(ctx context.Context, ids []string) ([]Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Card, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if c, ok := r.items[id]; ok {
			out = append(out, c.clone())
		}
	}
	return out, nil
}

func (r *MemoryRepo) IncrementViews(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(c *Card) { c.ViewCount++ })
}

func (r *MemoryRepo) AdjustCounter(ctx context.Context, id string, counter Counter, delta int64) error {
	return r.mutate(ctx, id, func(c *Card) {
		switch counter {
		case CounterLikes:
			c.LikeCount = max(c.LikeCount+delta, 0)
		case CounterBookmarks:
			c.BookmarkCount = max(c.BookmarkCount+delta, 0)
		}
	})
}

func (r *MemoryRepo) AddRating(ctx context.Context, id string, value int) (Rating, error) {
	var out Rating
	err := r.mutate(ctx, id, func(c *Card) {
		total := c.Rating.Average*float64(c.Rating.Count) + float64(value)
		c.Rating.Count++
		c.Rating.Average = total / float64(c.Rating.Count)
		out = c.Rating
	})
	return out, err
}

func (r *MemoryRepo) FindByInterests(ctx context.Context, interests []string, excludeAuthor string, limit int) ([]Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Card, 0)
	for _, c := range r.items {
		if c.Visibility != VisibilityPublic || c.AuthorID == excludeAuthor {
			continue
		}
		if containsFold(interests, c.Category) || anyFold(interests, c.Tags) {
			out = append(out, c.clone())
		}
	}
	r.mu.RUnlock()

	sortByPopularity(out)
	return page(out, 0, limit), nil
}

func (r *MemoryRepo) MostViewed(ctx context.Context, excludeAuthor string, limit int) ([]Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Card, 0)
	for _, c := range r.items {
		if c.Visibility == VisibilityPublic && c.AuthorID != excludeAuthor {
			out = append(out, c.clone())
		}
	}
	r.mu.RUnlock()

	sortByPopularity(out)
	return page(out, 0, limit), nil
}

func (r *MemoryRepo) ListCounters(ctx context.Context) ([]Counters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Counters, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, Counters{CardID: c.ID, Likes: c.LikeCount, Bookmarks: c.BookmarkCount})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CardID < out[j].CardID })
	return out, nil
}

func (r *MemoryRepo) SetCounters(ctx context.Context, counters Counters) error {
	return r.mutate(ctx, counters.CardID, func(c *Card) {
		c.LikeCount = counters.Likes
		c.BookmarkCount = counters.Bookmarks
	})
}

func (r *MemoryRepo) mutate(ctx context.Context, id string, fn func(*Card)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	fn(&c)
	r.items[id] = c
	return nil
}

func sortByPopularity(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].ViewCount != cards[j].ViewCount {
			return cards[i].ViewCount > cards[j].ViewCount
		}
		if cards[i].LikeCount != cards[j].LikeCount {
			return cards[i].LikeCount > cards[j].LikeCount
		}
		return cards[i].ID < cards[j].ID
	})
}

func page(cards []Card, offset, limit int) []Card {
	if offset > 0 {
		if offset >= len(cards) {
			return []Card{}
		}
		cards = cards[offset:]
	}
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}
	return cards
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func anyFold(list, candidates []string) bool {
	for _, c := range candidates {
		if containsFold(list, c) {
			return true
		}
	}
	return false
}

var _ Repo = (*MemoryRepo)(nil)
