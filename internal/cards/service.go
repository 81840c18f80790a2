package cards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-backend/internal/analytics"
	"workspace-backend/internal/suggest"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxTags          = 20
)

// Recorder logs user activity best-effort.
type Recorder interface {
	Record(ctx context.Context, userID string, action analytics.Action, cardID string, metadata map[string]any)
}

type Service struct {
	Repo     Repo
	Activity Recorder
	Now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, activity Recorder) *Service {
	return &Service{Repo: repo, Activity: activity, Now: time.Now}
}

// Input carries the editable fields of a card.
type Input struct {
	Title      string
	Content    string
	Tags       []string
	Category   string
	Visibility Visibility
}

func (in Input) normalize() (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || in.Content == "" {
		return Input{}, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	if in.Visibility == "" {
		in.Visibility = VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return Input{}, fmt.Errorf("%w: unknown visibility %q", ErrInvalidInput, in.Visibility)
	}
	in.Tags = NormalizeTags(in.Tags)
	if len(in.Tags) > maxTags {
		return Input{}, fmt.Errorf("%w: at most %d tags", ErrInvalidInput, maxTags)
	}
	if in.Category == "" {
		in.Category = suggest.Category(in.Title, in.Content, in.Tags)
	}
	return in, nil
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Create stores a new card authored by authorID.
func (s *Service) Create(ctx context.Context, authorID string, in Input) (Card, error) {
	if authorID == "" {
		return Card{}, ErrForbidden
	}
	in, err := in.normalize()
	if err != nil {
		return Card{}, err
	}
	now := s.Now().UTC()
	card := Card{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   authorID,
		Tags:       in.Tags,
		Category:   in.Category,
		Visibility: in.Visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, card); err != nil {
		return Card{}, fmt.Errorf("create card: %w", err)
	}
	s.Activity.Record(ctx, authorID, analytics.ActionCreate, card.ID, nil)
	return card, nil
}

// Readable loads a card and applies the visibility gate without counting a view.
func (s *Service) Readable(ctx context.Context, viewerID, id string) (Card, error) {
	card, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Card{}, err
	}
	if !card.VisibleTo(viewerID) {
		return Card{}, ErrForbidden
	}
	return card, nil
}

// View is Readable plus a view count increment and a view log entry.
func (s *Service) View(ctx context.Context, viewerID, id string) (Card, error) {
	card, err := s.Readable(ctx, viewerID, id)
	if err != nil {
		return Card{}, err
	}
	if err := s.Repo.IncrementViews(ctx, id); err != nil {
		return Card{}, fmt.Errorf("count view: %w", err)
	}
	card.ViewCount++
	s.Activity.Record(ctx, viewerID, analytics.ActionView, id, nil)
	return card, nil
}

// Update replaces the editable fields. Author only.
func (s *Service) Update(ctx context.Context, actorID, id string, in Input) (Card, error) {
	card, err := s.owned(ctx, actorID, id)
	if err != nil {
		return Card{}, err
	}
	in, err = in.normalize()
	if err != nil {
		return Card{}, err
	}
	card.Title = in.Title
	card.Content = in.Content
	card.Tags = in.Tags
	card.Category = in.Category
	card.Visibility = in.Visibility
	card.UpdatedAt = s.Now().UTC()
	if err := s.Repo.Update(ctx, card); err != nil {
		return Card{}, fmt.Errorf("update card: %w", err)
	}
	s.Activity.Record(ctx, actorID, analytics.ActionUpdate, id, nil)
	return card, nil
}

// Delete removes a card. Author only.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete card: %w", err)
	}
	s.Activity.Record(ctx, actorID, analytics.ActionDelete, id, nil)
	return nil
}

// ListPublic lists public cards. A free-text query is logged as a search.
func (s *Service) ListPublic(ctx context.Context, viewerID string, f Filter) ([]Card, error) {
	f.Visibility = VisibilityPublic
	f.AuthorID = ""
	f.Query = strings.TrimSpace(f.Query)
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	items, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if f.Query != "" {
		s.Activity.Record(ctx, viewerID, analytics.ActionSearch, "", map[string]any{"query": f.Query, "results": len(items)})
	}
	return items, nil
}

// ListMine lists every card authored by userID.
func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]Card, error) {
	return s.Repo.List(ctx, Filter{AuthorID: userID, Limit: clampLimit(limit), Offset: max(offset, 0)})
}

// Rate folds a 1..5 rating into the card's running average.
func (s *Service) Rate(ctx context.Context, userID, id string, value int) (Rating, error) {
	if value < 1 || value > 5 {
		return Rating{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if _, err := s.Readable(ctx, userID, id); err != nil {
		return Rating{}, err
	}
	return s.Repo.AddRating(ctx, id, value)
}

// AdjustCounter moves a denormalized interaction counter, floored at zero.
func (s *Service) AdjustCounter(ctx context.Context, id string, counter Counter, delta int64) error {
	return s.Repo.AdjustCounter(ctx, id, counter, delta)
}

func (s *Service) owned(ctx context.Context, actorID, id string) (Card, error) {
	card, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Card{}, err
	}
	if actorID == "" || card.AuthorID != actorID {
		return Card{}, ErrForbidden
	}
	return card, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
