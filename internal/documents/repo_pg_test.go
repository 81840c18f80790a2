package documents

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/shared/storage/db/dbtest"
)

var documentColumns = []string{
	"id", "workspace_id", "author_id", "title", "description", "file_url", "file_name", "file_type", "file_size",
	"extracted_text", "extracted_at", "summary", "tags", "view_count", "download_count", "created_at", "updated_at",
}

func TestPGRepoGetDecodesSummary(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM documents WHERE id = \\$1").
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows(documentColumns).AddRow(
			"d1", "w1", "u1", "Notes", "", "k/notes.txt", "notes.txt", "text/plain", int64(42),
			nil, now, `{"content":"short","keyPoints":["a"],"topics":["go"],"sentiment":"neutral"}`, "{go,db}",
			int64(3), int64(1), now, now,
		))

	doc, err := repo.Get(context.Background(), "d1")
	require.NoError(t, err)
	assert.Empty(t, doc.ExtractedText)
	require.NotNil(t, doc.ExtractedAt)
	assert.Equal(t, now, *doc.ExtractedAt)
	require.NotNil(t, doc.Summary)
	assert.Equal(t, "short", doc.Summary.Content)
	assert.Equal(t, []string{"a"}, doc.Summary.KeyPoints)
	assert.Equal(t, []string{"go", "db"}, doc.Tags)
	assert.EqualValues(t, 3, doc.ViewCount)
}

func TestPGRepoGetMissing(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("FROM documents WHERE id").
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows(documentColumns))

	_, err := repo.Get(context.Background(), "d1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoSetExtractedTextRecordsEmptyAttempt(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE documents SET extracted_text = \\$2, extracted_at = \\$3").
		WithArgs("d1", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetExtractedText(context.Background(), "d1", "", now))
}

func TestPGRepoSetExtractedTextMissing(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE documents SET extracted_text").
		WithArgs("d1", "text", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetExtractedText(context.Background(), "d1", "text", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoDeleteByWorkspaceReturnsKeys(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("DELETE FROM documents WHERE workspace_id").
		WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"file_url"}).AddRow("k/a.txt").AddRow("k/b.pdf"))

	keys, err := repo.DeleteByWorkspace(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k/a.txt", "k/b.pdf"}, keys)
}
