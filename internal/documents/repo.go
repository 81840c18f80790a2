package documents

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrForbidden    = errors.New("document access denied")
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoContent means neither the file nor title and description hold enough text.
	ErrNoContent = errors.New("no readable content")
	// ErrSummarizerUnavailable means no summarizer was configured at startup.
	ErrSummarizerUnavailable = errors.New("summarizer not configured")
	// ErrPresignUnsupported means the object store cannot issue direct upload URLs.
	ErrPresignUnsupported = errors.New("direct uploads not supported")
)

// Repo persists document metadata.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	Get(ctx context.Context, id string) (Document, error)
	// ListByWorkspace orders newest first.
	ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]Document, error)
	// SetExtractedText records an extraction attempt; text may be empty.
	SetExtractedText(ctx context.Context, id, text string, at time.Time) error
	SetSummary(ctx context.Context, id string, summary Summary) error
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	// Delete returns the removed document so its file can be released.
	Delete(ctx context.Context, id string) (Document, error)
	// DeleteByWorkspace returns the storage keys of the removed documents.
	DeleteByWorkspace(ctx context.Context, workspaceID string) ([]string, error)
}
