package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"workspace-backend/internal/shared/tasks"
)

// ErrInvalidInput is returned for malformed requests.
var ErrInvalidInput = errors.New("invalid input")

const maxSummaryDays = 365

// Service records activity off the request path and reports on it.
type Service struct {
	Repo  Repo
	Tasks tasks.Enqueuer
	Now   func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, runner tasks.Enqueuer) *Service {
	return &Service{Repo: repo, Tasks: runner, Now: func() time.Time { return time.Now().UTC() }}
}

// Record schedules a log entry as a best-effort task. Anonymous actions are skipped.
func (s *Service) Record(ctx context.Context, userID string, action Action, cardID string, metadata map[string]any) {
	if s == nil || userID == "" {
		return
	}
	entry := Log{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		CardID:    cardID,
		Metadata:  metadata,
		CreatedAt: s.Now(),
	}
	s.Tasks.Enqueue(ctx, "analytics.record."+string(action), func(ctx context.Context) error {
		return s.Repo.Insert(ctx, entry)
	})
}

// Summary counts the user's actions over the trailing window.
type Summary struct {
	Days    int              `json:"days"`
	Since   time.Time        `json:"since"`
	Total   int64            `json:"total"`
	Actions map[Action]int64 `json:"actions"`
}

// Summarize returns per-action counts for the last days days.
func (s *Service) Summarize(ctx context.Context, userID string, days int) (Summary, error) {
	if userID == "" || days <= 0 || days > maxSummaryDays {
		return Summary{}, ErrInvalidInput
	}
	since := s.Now().AddDate(0, 0, -days)
	counts, err := s.Repo.CountByAction(ctx, userID, since)
	if err != nil {
		return Summary{}, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return Summary{Days: days, Since: since, Total: total, Actions: counts}, nil
}

// Purge deletes entries older than retention.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return s.Repo.PurgeBefore(ctx, s.Now().Add(-retention))
}
