// Package recommend ranks knowledge cards from activity logs and user interests.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"workspace-backend/internal/analytics"
	"workspace-backend/internal/cards"
	"workspace-backend/internal/shared/cache"
	"workspace-backend/internal/shared/telemetry"
	"workspace-backend/internal/suggest"
	"workspace-backend/internal/users"
)

const (
	DefaultTrendingDays = 7
	DefaultLimit        = 10
	MaxLimit            = 50

	maxTrendingDays  = 365
	recentLogLimit   = 50
	trendingCacheKey = "recommend:trending:%d:%d"
)

// Activity is the slice of the analytics store used for ranking.
type Activity interface {
	CountByCard(ctx context.Context, since time.Time, actions []analytics.Action) ([]analytics.CardCount, error)
	RecentCardIDs(ctx context.Context, userID string, actions []analytics.Action, limit int) ([]string, error)
}

// CardSource loads candidate cards.
type CardSource interface {
	GetMany(ctx context.Context, ids []string) ([]cards.Card, error)
	FindByInterests(ctx context.Context, interests []string, excludeAuthor string, limit int) ([]cards.Card, error)
	MostViewed(ctx context.Context, excludeAuthor string, limit int) ([]cards.Card, error)
}

// Preferences exposes stored favorite topics.
type Preferences interface {
	FavoriteTopics(ctx context.Context, userID string) ([]string, error)
}

// TrendingItem is a card with its interaction count in the window.
type TrendingItem struct {
	Card             cards.Card `json:"card"`
	InteractionCount int64      `json:"interactionCount"`
}

// Service serves the three recommendation queries.
type Service struct {
	Activity Activity
	Cards    CardSource
	Prefs    Preferences
	Cache    cache.Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

// NewService constructs a Service without caching.
func NewService(activity Activity, source CardSource, prefs Preferences) *Service {
	return &Service{
		Activity: activity,
		Cards:    source,
		Prefs:    prefs,
		Cache:    cache.Noop{},
		Now:      time.Now,
	}
}

// Trending ranks public cards by view, like and bookmark entries in the
// trailing window. Ties go to the lower card id.
func (s *Service) Trending(ctx context.Context, days, limit int) ([]TrendingItem, error) {
	days = clampDays(days)
	limit = clampLimit(limit)

	key := fmt.Sprintf(trendingCacheKey, days, limit)
	var cached []TrendingItem
	switch err := s.cache().Get(ctx, key, &cached); {
	case err == nil:
		return cached, nil
	case !errors.Is(err, cache.ErrMiss):
		telemetry.Warn("recommend.cache_read_failed", map[string]any{"key": key, "error": err.Error()})
	}

	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	counts, err := s.Activity.CountByCard(ctx, since, analytics.InteractionActions)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}

	items, err := s.join(ctx, counts, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache().Set(ctx, key, items, s.CacheTTL); err != nil {
		telemetry.Warn("recommend.cache_write_failed", map[string]any{"key": key, "error": err.Error()})
	}
	return items, nil
}

// join loads cards for counts in rank order, skipping deleted and non-public
// cards, until limit items are collected.
func (s *Service) join(ctx context.Context, counts []analytics.CardCount, limit int) ([]TrendingItem, error) {
	out := make([]TrendingItem, 0, limit)
	batch := limit * 2
	for start := 0; start < len(counts) && len(out) < limit; start += batch {
		chunk := counts[start:min(start+batch, len(counts))]
		ids := make([]string, len(chunk))
		for i, cc := range chunk {
			ids[i] = cc.CardID
		}
		found, err := s.Cards.GetMany(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load cards: %w", err)
		}
		byID := make(map[string]cards.Card, len(found))
		for _, c := range found {
			byID[c.ID] = c
		}
		for _, cc := range chunk {
			c, ok := byID[cc.CardID]
			if !ok || c.Visibility != cards.VisibilityPublic {
				continue
			}
			out = append(out, TrendingItem{Card: c, InteractionCount: cc.Count})
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Personalized matches public cards by other authors against the tags and
// categories of the user's recent activity plus their favorite topics. With
// no interest signal it falls back to the most viewed public cards.
func (s *Service) Personalized(ctx context.Context, userID string, limit int) ([]cards.Card, error) {
	limit = clampLimit(limit)

	interests, err := s.Interests(ctx, userID)
	if err != nil {
		return nil, err
	}
	if interests.Cardinality() == 0 {
		return s.Cards.MostViewed(ctx, userID, limit)
	}

	terms := interests.ToSlice()
	sort.Strings(terms)
	out, err := s.Cards.FindByInterests(ctx, terms, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("find by interests: %w", err)
	}
	return out, nil
}

// Interests returns the lowercased interest set for a user.
func (s *Service) Interests(ctx context.Context, userID string) (mapset.Set[string], error) {
	interests := mapset.NewThreadUnsafeSet[string]()
	add := func(term string) {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			interests.Add(term)
		}
	}

	ids, err := s.Activity.RecentCardIDs(ctx, userID, analytics.InteractionActions, recentLogLimit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	if len(ids) > 0 {
		recent, err := s.Cards.GetMany(ctx, uniq(ids))
		if err != nil {
			return nil, fmt.Errorf("load recent cards: %w", err)
		}
		for _, c := range recent {
			add(c.Category)
			for _, t := range c.Tags {
				add(t)
			}
		}
	}

	if s.Prefs != nil {
		topics, err := s.Prefs.FavoriteTopics(ctx, userID)
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("favorite topics: %w", err)
		}
		for _, t := range topics {
			add(t)
		}
	}
	return interests, nil
}

// Suggest proposes tags and a category for draft content.
func (s *Service) Suggest(title, content string, existingTags []string) suggest.Result {
	return suggest.Suggest(title, content, existingTags)
}

func (s *Service) cache() cache.Cache {
	if s.Cache == nil {
		return cache.Noop{}
	}
	return s.Cache
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func clampDays(days int) int {
	if days <= 0 {
		return DefaultTrendingDays
	}
	return min(days, maxTrendingDays)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

func uniq(ids []string) []string {
	return mapset.NewThreadUnsafeSet(ids...).ToSlice()
}
