package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workspace-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, workspace_id, author_id, title, description, file_url, file_name, file_type, file_size,
extracted_text, extracted_at, summary, tags, view_count, download_count, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, workspace_id, author_id, title, description, file_url, file_name, file_type, file_size,
    extracted_text, extracted_at, tags, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.WorkspaceID,
		doc.AuthorID,
		doc.Title,
		doc.Description,
		doc.FileURL,
		doc.FileName,
		doc.FileType,
		doc.FileSize,
		nullableText(doc.ExtractedText),
		nullableTime(doc.ExtractedAt),
		nonNil(doc.Tags),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Document, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

func (r *PGRepo) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]Document, error) {
	query := `SELECT ` + selectColumns + `
FROM documents
WHERE workspace_id = $1
ORDER BY created_at DESC, id ASC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetExtractedText(ctx context.Context, id, text string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET extracted_text = $2, extracted_at = $3, updated_at = $3 WHERE id = $1`,
		id, nullableText(text), at,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) SetSummary(ctx context.Context, id string, summary Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET summary = $2, updated_at = $3 WHERE id = $1`,
		id, string(payload), summary.CreatedAt,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE documents SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) IncrementDownloads(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE documents SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) (Document, error) {
	row := r.DB.QueryRowContext(ctx, `DELETE FROM documents WHERE id = $1 RETURNING `+selectColumns, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

func (r *PGRepo) DeleteByWorkspace(ctx context.Context, workspaceID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `DELETE FROM documents WHERE workspace_id = $1 RETURNING file_url`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var extracted sql.NullString
	var extractedAt sql.NullTime
	var summary []byte
	err := row.Scan(
		&doc.ID,
		&doc.WorkspaceID,
		&doc.AuthorID,
		&doc.Title,
		&doc.Description,
		&doc.FileURL,
		&doc.FileName,
		&doc.FileType,
		&doc.FileSize,
		&extracted,
		&extractedAt,
		&summary,
		db.TextArray(&doc.Tags),
		&doc.ViewCount,
		&doc.DownloadCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.ExtractedText = extracted.String
	if extractedAt.Valid {
		doc.ExtractedAt = &extractedAt.Time
	}
	if len(summary) > 0 {
		var s Summary
		if err := json.Unmarshal(summary, &s); err != nil {
			return Document{}, fmt.Errorf("decode summary: %w", err)
		}
		doc.Summary = &s
	}
	return doc, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ Repo = (*PGRepo)(nil)

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
