package cards

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/analytics"
)

type entry struct {
	userID string
	action analytics.Action
	cardID string
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []entry
}

func (f *fakeRecorder) Record(ctx context.Context, userID string, action analytics.Action, cardID string, metadata map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry{userID, action, cardID})
}

func (f *fakeRecorder) actions() []analytics.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]analytics.Action, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.action)
	}
	return out
}

func newTestService() (*Service, *fakeRecorder) {
	rec := &fakeRecorder{}
	svc := NewService(NewMemoryRepo(), rec)
	svc.Now = func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }
	return svc, rec
}

func TestCreateNormalizesAndSuggestsCategory(t *testing.T) {
	svc, rec := newTestService()
	card, err := svc.Create(context.Background(), "alice", Input{
		Title:   "Tuning Postgres",
		Content: "An index speeds up every sql query on a large table.",
		Tags:    []string{" SQL", "sql", "Perf ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sql", "perf"}, card.Tags)
	assert.Equal(t, "Database", card.Category)
	assert.Equal(t, VisibilityPublic, card.Visibility)
	assert.Equal(t, []analytics.Action{analytics.ActionCreate}, rec.actions())

	_, err = svc.Create(context.Background(), "alice", Input{Title: "x", Content: "y", Visibility: "secret"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVisibilityGate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	private, err := svc.Create(ctx, "alice", Input{Title: "p", Content: "private body", Visibility: VisibilityPrivate})
	require.NoError(t, err)
	shared, err := svc.Create(ctx, "alice", Input{Title: "s", Content: "shared body", Visibility: VisibilityShared})
	require.NoError(t, err)
	public, err := svc.Create(ctx, "alice", Input{Title: "o", Content: "public body", Visibility: VisibilityPublic})
	require.NoError(t, err)

	cases := []struct {
		card   Card
		viewer string
		ok     bool
	}{
		{public, "", true},
		{public, "bob", true},
		{shared, "", false},
		{shared, "bob", true},
		{private, "bob", false},
		{private, "", false},
		{private, "alice", true},
	}
	for _, tc := range cases {
		_, err := svc.View(ctx, tc.viewer, tc.card.ID)
		if tc.ok {
			assert.NoError(t, err, "%s/%s", tc.card.Visibility, tc.viewer)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s/%s", tc.card.Visibility, tc.viewer)
		}
	}

	_, err = svc.View(ctx, "bob", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestViewCountsAndLogs(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	card, err := svc.Create(ctx, "alice", Input{Title: "t", Content: "body"})
	require.NoError(t, err)

	got, err := svc.View(ctx, "bob", card.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ViewCount)
	got, err = svc.View(ctx, "bob", card.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.ViewCount)

	assert.Equal(t, []analytics.Action{analytics.ActionCreate, analytics.ActionView, analytics.ActionView}, rec.actions())
}

func TestUpdateAndDeleteAuthorOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	card, err := svc.Create(ctx, "alice", Input{Title: "t", Content: "body"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "bob", card.ID, Input{Title: "hijack", Content: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, "alice", card.ID, Input{Title: "new", Content: "docker deploy", Visibility: VisibilityShared})
	require.NoError(t, err)
	assert.Equal(t, "DevOps", updated.Category)
	assert.Equal(t, VisibilityShared, updated.Visibility)

	assert.ErrorIs(t, svc.Delete(ctx, "bob", card.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "alice", card.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "alice", card.ID), ErrNotFound)
}

func TestListPublicFiltersAndLogsSearch(t *testing.T) {
	svc, rec := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, "alice", Input{Title: "Go channels", Content: "select statements", Tags: []string{"go"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", Input{Title: "Hidden", Content: "go notes", Tags: []string{"go"}, Visibility: VisibilityPrivate})
	require.NoError(t, err)

	items, err := svc.ListPublic(ctx, "bob", Filter{Tag: "GO"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Go channels", items[0].Title)

	items, err = svc.ListPublic(ctx, "bob", Filter{Query: "SELECT"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Contains(t, rec.actions(), analytics.ActionSearch)

	mine, err := svc.ListMine(ctx, "alice", 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestRateRunningAverage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	card, err := svc.Create(ctx, "alice", Input{Title: "t", Content: "body"})
	require.NoError(t, err)

	_, err = svc.Rate(ctx, "bob", card.ID, 6)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Rate(ctx, "bob", card.ID, 5)
	require.NoError(t, err)
	r, err := svc.Rate(ctx, "carol", card.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, r.Count)
	assert.InDelta(t, 3.5, r.Average, 1e-9)
}

func TestAdjustCounterFloorsAtZero(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	card, err := svc.Create(ctx, "alice", Input{Title: "t", Content: "body"})
	require.NoError(t, err)

	require.NoError(t, svc.AdjustCounter(ctx, card.ID, CounterLikes, 1))
	require.NoError(t, svc.AdjustCounter(ctx, card.ID, CounterLikes, -1))
	require.NoError(t, svc.AdjustCounter(ctx, card.ID, CounterLikes, -1))
	got, err := svc.Repo.Get(ctx, card.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.LikeCount)

	assert.ErrorIs(t, svc.AdjustCounter(ctx, "missing", CounterLikes, 1), ErrNotFound)
}

func TestMemoryRepoInterestsOrdering(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	mk := func(id, author, category string, tags []string, views, likes int64, vis Visibility) {
		require.NoError(t, repo.Create(ctx, Card{ID: id, AuthorID: author, Category: category, Tags: tags, ViewCount: views, LikeCount: likes, Visibility: vis}))
	}
	mk("c", "x", "Database", nil, 10, 1, VisibilityPublic)
	mk("b", "x", "General", []string{"sql"}, 10, 1, VisibilityPublic)
	mk("a", "x", "General", []string{"sql"}, 10, 5, VisibilityPublic)
	mk("d", "me", "Database", nil, 99, 0, VisibilityPublic)
	mk("e", "x", "Database", nil, 99, 0, VisibilityPrivate)
	mk("f", "x", "General", []string{"cooking"}, 50, 0, VisibilityPublic)

	got, err := repo.FindByInterests(ctx, []string{"database", "sql"}, "me", 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	top, err := repo.MostViewed(ctx, "me", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "f", top[0].ID)
	assert.Equal(t, "a", top[1].ID)
}
