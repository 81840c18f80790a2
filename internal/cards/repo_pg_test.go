package cards

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/shared/storage/db/dbtest"
)

var cardColumns = []string{"id", "title", "content", "author_id", "tags", "category", "visibility", "view_count",
	"like_count", "bookmark_count", "rating_average", "rating_count", "created_at", "updated_at"}

func TestPGRepoGetScansTags(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, title, content").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(cardColumns).
			AddRow("c1", "T", "C", "u1", "{go,sql}", "Database", "public", 3, 2, 1, 4.5, 2, now, now))

	card, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, card.Tags)
	assert.Equal(t, VisibilityPublic, card.Visibility)
	assert.InDelta(t, 4.5, card.Rating.Average, 1e-9)
}

func TestPGRepoGetMissing(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("SELECT id, title, content").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(cardColumns))

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoAdjustCounterFloors(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectExec(`UPDATE knowledge_cards SET like_count = GREATEST\(like_count \+ \$2, 0\)`).
		WithArgs("c1", int64(-1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AdjustCounter(context.Background(), "c1", CounterLikes, -1))
	assert.Error(t, repo.AdjustCounter(context.Background(), "c1", Counter("share"), 1))
}

func TestPGRepoListBuildsFilters(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectQuery(`WHERE visibility = \$1 AND lower\(\$2\) = ANY\(tags\) AND \(title ILIKE \$3 OR content ILIKE \$3\) ORDER BY created_at DESC, id ASC LIMIT \$4`).
		WithArgs("public", "go", `%50\%%`, 20).
		WillReturnRows(sqlmock.NewRows(cardColumns))

	items, err := repo.List(context.Background(), Filter{Visibility: VisibilityPublic, Tag: "go", Query: "50%", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPGRepoAddRatingReturnsAggregate(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("UPDATE knowledge_cards").
		WithArgs("c1", 4).
		WillReturnRows(sqlmock.NewRows([]string{"rating_average", "rating_count"}).AddRow(4.0, 1))

	r, err := repo.AddRating(context.Background(), "c1", 4)
	require.NoError(t, err)
	assert.Equal(t, Rating{Average: 4, Count: 1}, r)
}
