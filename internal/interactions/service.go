package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workspace-backend/internal/analytics"
	"workspace-backend/internal/cards"
	"workspace-backend/internal/notifications"
	"workspace-backend/internal/shared/metrics"
	"workspace-backend/internal/shared/tasks"
	"workspace-backend/internal/shared/telemetry"
)

var (
	ErrAlreadyLiked      = errors.New("card already liked")
	ErrAlreadyBookmarked = errors.New("card already bookmarked")
	ErrNotLiked          = errors.New("card not liked")
	ErrNotBookmarked     = errors.New("card not bookmarked")
)

const maxBookmarks = 100

// Cards is the slice of the card service interactions depend on.
type Cards interface {
	Readable(ctx context.Context, viewerID, id string) (cards.Card, error)
	AdjustCounter(ctx context.Context, id string, counter cards.Counter, delta int64) error
}

// CardLoader fetches cards by id.
type CardLoader interface {
	GetMany(ctx context.Context, ids []string) ([]cards.Card, error)
}

// CounterStore exposes the denormalized counters for reconciliation.
type CounterStore interface {
	ListCounters(ctx context.Context) ([]cards.Counters, error)
	SetCounters(ctx context.Context, c cards.Counters) error
}

// Notifier delivers a notification to a user.
type Notifier interface {
	Notify(ctx context.Context, n notifications.Notification) error
}

// Recorder logs user activity best-effort.
type Recorder interface {
	Record(ctx context.Context, userID string, action analytics.Action, cardID string, metadata map[string]any)
}

type Service struct {
	Repo     Repo
	Cards    Cards
	Loader   CardLoader
	Counters CounterStore
	Notifier Notifier
	Tasks    tasks.Enqueuer
	Activity Recorder
	Now      func() time.Time
}

// NewService wires the service against the card service and repository.
func NewService(repo Repo, cardSvc *cards.Service, notifier Notifier, runner tasks.Enqueuer, activity Recorder) *Service {
	return &Service{
		Repo:     repo,
		Cards:    cardSvc,
		Loader:   cardSvc.Repo,
		Counters: cardSvc.Repo,
		Notifier: notifier,
		Tasks:    runner,
		Activity: activity,
		Now:      time.Now,
	}
}

// Add creates the interaction, bumps the card counter and notifies the author
// when the actor is someone else. A second Add fails with ErrAlreadyLiked or
// ErrAlreadyBookmarked and leaves the counter alone.
func (s *Service) Add(ctx context.Context, actor Actor, cardID string, typ Type) error {
	card, err := s.Cards.Readable(ctx, actor.ID, cardID)
	if err != nil {
		return err
	}

	in := Interaction{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		CardID:    cardID,
		Type:      typ,
		CreatedAt: s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, in); err != nil {
		if errors.Is(err, ErrExists) {
			return alreadyErr(typ)
		}
		return fmt.Errorf("create %s: %w", typ, err)
	}
	metrics.IncInteractionCreated()

	if err := s.Cards.AdjustCounter(ctx, cardID, typ.counter(), 1); err != nil {
		telemetry.Warn("interaction.counter_failed", map[string]any{"cardId": cardID, "type": string(typ), "error": err.Error()})
	}
	if actor.ID != card.AuthorID {
		s.notifyAuthor(ctx, actor, card, typ)
	}
	s.Activity.Record(ctx, actor.ID, activityFor(typ), cardID, nil)
	return nil
}

// Remove deletes the interaction and decrements the counter, floored at zero.
func (s *Service) Remove(ctx context.Context, actor Actor, cardID string, typ Type) error {
	if _, err := s.Cards.Readable(ctx, actor.ID, cardID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, actor.ID, cardID, typ); err != nil {
		if errors.Is(err, ErrAbsent) {
			return notErr(typ)
		}
		return fmt.Errorf("delete %s: %w", typ, err)
	}
	metrics.IncInteractionDeleted()

	if err := s.Cards.AdjustCounter(ctx, cardID, typ.counter(), -1); err != nil {
		telemetry.Warn("interaction.counter_failed", map[string]any{"cardId": cardID, "type": string(typ), "error": err.Error()})
	}
	return nil
}

// Status reports whether the user liked and bookmarked the card.
func (s *Service) Status(ctx context.Context, userID, cardID string) (Status, error) {
	if _, err := s.Cards.Readable(ctx, userID, cardID); err != nil {
		return Status{}, err
	}
	return s.Repo.Status(ctx, userID, cardID)
}

// Bookmarks returns the user's bookmarked cards that are still readable, newest bookmark first.
func (s *Service) Bookmarks(ctx context.Context, userID string, limit int) ([]cards.Card, error) {
	if limit <= 0 || limit > maxBookmarks {
		limit = maxBookmarks
	}
	ids, err := s.Repo.CardIDs(ctx, userID, TypeBookmark, limit)
	if err != nil {
		return nil, err
	}
	found, err := s.Loader.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]cards.Card, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	out := make([]cards.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok && c.VisibleTo(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Reconcile rewrites card counters that drifted from the interaction rows and
// returns how many cards were corrected.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	tallies, err := s.Repo.Tallies(ctx)
	if err != nil {
		return 0, fmt.Errorf("tally interactions: %w", err)
	}
	counters, err := s.Counters.ListCounters(ctx)
	if err != nil {
		return 0, fmt.Errorf("list counters: %w", err)
	}

	fixed := 0
	for _, c := range counters {
		want := tallies[c.CardID]
		if c.Likes == want.Likes && c.Bookmarks == want.Bookmarks {
			continue
		}
		telemetry.Info("interaction.counter_drift", map[string]any{
			"cardId":        c.CardID,
			"likes":         c.Likes,
			"wantLikes":     want.Likes,
			"bookmarks":     c.Bookmarks,
			"wantBookmarks": want.Bookmarks,
		})
		err := s.Counters.SetCounters(ctx, cards.Counters{CardID: c.CardID, Likes: want.Likes, Bookmarks: want.Bookmarks})
		if err != nil && !errors.Is(err, cards.ErrNotFound) {
			return fixed, fmt.Errorf("set counters: %w", err)
		}
		fixed++
	}
	return fixed, nil
}

func (s *Service) notifyAuthor(ctx context.Context, actor Actor, card cards.Card, typ Type) {
	name := actor.Name
	if name == "" {
		name = "Someone"
	}
	verb, ntype := "liked", notifications.TypeLike
	if typ == TypeBookmark {
		verb, ntype = "bookmarked", notifications.TypeBookmark
	}
	n := notifications.Notification{
		UserID:        card.AuthorID,
		Message:       fmt.Sprintf("%s %s your card %q", name, verb, card.Title),
		Type:          ntype,
		RelatedCardID: card.ID,
		RelatedUserID: actor.ID,
	}
	s.Tasks.Enqueue(ctx, "notifications."+string(typ), func(ctx context.Context) error {
		return s.Notifier.Notify(ctx, n)
	})
}

func activityFor(typ Type) analytics.Action {
	if typ == TypeBookmark {
		return analytics.ActionBookmark
	}
	return analytics.ActionLike
}

func alreadyErr(typ Type) error {
	if typ == TypeBookmark {
		return ErrAlreadyBookmarked
	}
	return ErrAlreadyLiked
}

func notErr(typ Type) error {
	if typ == TypeBookmark {
		return ErrNotBookmarked
	}
	return ErrNotLiked
}
