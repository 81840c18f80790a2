package interactions

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/shared/storage/db/dbtest"
)

func TestPGRepoCreateConflictIsExists(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO bookmark_likes").
		WithArgs("i1", "u1", "c1", "like", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), Interaction{ID: "i1", UserID: "u1", CardID: "c1", Type: TypeLike, CreatedAt: at})
	assert.ErrorIs(t, err, ErrExists)
}

func TestPGRepoDeleteAbsent(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectExec("DELETE FROM bookmark_likes").
		WithArgs("u1", "c1", "bookmark").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "u1", "c1", TypeBookmark), ErrAbsent)
}

func TestPGRepoTallies(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("SELECT card_id").
		WillReturnRows(sqlmock.NewRows([]string{"card_id", "likes", "bookmarks"}).
			AddRow("c1", 2, 0).
			AddRow("c2", 0, 1))

	got, err := repo.Tallies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]Tally{"c1": {Likes: 2}, "c2": {Bookmarks: 1}}, got)
}
