package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/shared/storage/db/dbtest"
)

func TestPGRepoMarkReadMissingRow(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE notifications").
		WithArgs("n1", "u1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.MarkRead(context.Background(), "u1", "n1", at), ErrNotFound)
}

func TestPGRepoListByUser(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "message", "type", "related_card_id", "related_user_id", "read", "read_at", "created_at"}).
		AddRow("n1", "u1", "liked", "like", "c1", nil, false, nil, created)
	mock.ExpectQuery("SELECT id, user_id, message").
		WithArgs("u1", true, 20).
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "u1", true, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, TypeLike, items[0].Type)
	assert.Equal(t, "c1", items[0].RelatedCardID)
	assert.Empty(t, items[0].RelatedUserID)
	assert.Nil(t, items[0].ReadAt)
}
