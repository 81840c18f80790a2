package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-backend/internal/extract"
	"workspace-backend/internal/shared/metrics"
	"workspace-backend/internal/shared/storage/object"
	"workspace-backend/internal/shared/tasks"
	"workspace-backend/internal/shared/telemetry"
	"workspace-backend/internal/summarize"
	"workspace-backend/internal/workspaces"
)

const (
	// MaxFileSize bounds uploads and fetches for extraction.
	MaxFileSize = 10 << 20

	defaultListLimit    = 20
	maxListLimit        = 100
	defaultFetchTimeout = 10 * time.Second
	presignExpiry       = 15 * time.Minute
	summarySentiment    = "neutral"
	genericBinaryType   = "application/octet-stream"
	substituteSeparator = ". "
)

// Access checks a user's permission inside a workspace.
type Access interface {
	Authorize(ctx context.Context, workspaceID, userID string, p workspaces.Permission) (workspaces.Role, error)
}

// Service contains business logic for documents.
type Service struct {
	Repo         Repo
	Store        object.Store
	Access       Access
	Summarizer   summarize.Summarizer
	Tasks        tasks.Enqueuer
	FetchTimeout time.Duration
	Now          func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, store object.Store, access Access, summarizer summarize.Summarizer, runner tasks.Enqueuer) *Service {
	return &Service{
		Repo:         repo,
		Store:        store,
		Access:       access,
		Summarizer:   summarizer,
		Tasks:        runner,
		FetchTimeout: defaultFetchTimeout,
		Now:          time.Now,
	}
}

// UploadInput describes a file being added to a workspace.
type UploadInput struct {
	Title       string
	Description string
	Tags        []string
	FileName    string
	// DeclaredType is the client-supplied MIME type, possibly empty.
	DeclaredType string
	Body         io.Reader
}

// Upload stores the file, extracts its text best-effort and records the document.
func (s *Service) Upload(ctx context.Context, actorID, workspaceID string, in UploadInput) (Document, error) {
	if strings.TrimSpace(in.FileName) == "" || in.Body == nil {
		return Document{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if err := s.authorize(ctx, workspaceID, actorID, workspaces.PermWrite); err != nil {
		return Document{}, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, MaxFileSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return Document{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxFileSize)
	}
	if len(data) == 0 {
		return Document{}, extract.ErrEmptyFile
	}

	obj, err := s.Store.Save(ctx, workspaceID, in.FileName, bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("store file: %w", err)
	}
	return s.record(ctx, actorID, workspaceID, in, obj, data)
}

// Presign issues a direct upload URL for stores that support it.
func (s *Service) Presign(ctx context.Context, actorID, workspaceID, fileName, contentType string) (object.PresignedUpload, error) {
	presigner, ok := s.Store.(object.Presigner)
	if !ok {
		return object.PresignedUpload{}, ErrPresignUnsupported
	}
	if strings.TrimSpace(fileName) == "" {
		return object.PresignedUpload{}, fmt.Errorf("%w: fileName is required", ErrInvalidInput)
	}
	if err := s.authorize(ctx, workspaceID, actorID, workspaces.PermWrite); err != nil {
		return object.PresignedUpload{}, err
	}
	return presigner.PresignPut(ctx, workspaceID, fileName, contentType, presignExpiry)
}

// RegisterStored records a document whose bytes were uploaded directly to
// storage under key.
func (s *Service) RegisterStored(ctx context.Context, actorID, workspaceID, key string, in UploadInput) (Document, error) {
	if strings.TrimSpace(in.FileName) == "" {
		return Document{}, fmt.Errorf("%w: fileName is required", ErrInvalidInput)
	}
	if !object.InNamespace(key, workspaceID) {
		return Document{}, fmt.Errorf("%w: key does not belong to this workspace", ErrInvalidInput)
	}
	if err := s.authorize(ctx, workspaceID, actorID, workspaces.PermWrite); err != nil {
		return Document{}, err
	}

	data, err := s.readObject(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Document{}, fmt.Errorf("%w: no uploaded file at key", ErrInvalidInput)
		}
		return Document{}, err
	}
	if len(data) == 0 {
		return Document{}, extract.ErrEmptyFile
	}
	obj := object.Object{Key: key, Size: int64(len(data))}
	return s.record(ctx, actorID, workspaceID, in, obj, data)
}

func (s *Service) record(ctx context.Context, actorID, workspaceID string, in UploadInput, obj object.Object, data []byte) (Document, error) {
	fileType := resolveType(in.DeclaredType, obj.ContentType, data)
	text, err := extract.Extract(data, fileType, in.FileName)
	if err != nil {
		return Document{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.FileName
	}
	now := s.now()
	doc := Document{
		ID:            uuid.NewString(),
		WorkspaceID:   workspaceID,
		AuthorID:      actorID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		FileURL:       obj.Key,
		FileName:      in.FileName,
		FileType:      fileType,
		FileSize:      obj.Size,
		ExtractedText: text,
		ExtractedAt:   &now,
		Tags:          normalizeTags(in.Tags),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		if derr := s.Store.Delete(context.WithoutCancel(ctx), obj.Key); derr != nil {
			telemetry.Warn("documents.cleanup_failed", map[string]any{"key": obj.Key, "error": derr.Error()})
		}
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	telemetry.Info("documents.uploaded", map[string]any{
		"documentId":  doc.ID,
		"workspaceId": workspaceID,
		"fileType":    fileType,
		"fileSize":    doc.FileSize,
		"extracted":   text != "",
	})
	return doc, nil
}

// List returns the workspace's documents, newest first.
func (s *Service) List(ctx context.Context, actorID, workspaceID string, limit, offset int) ([]Document, error) {
	if err := s.authorize(ctx, workspaceID, actorID, workspaces.PermRead); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.Repo.ListByWorkspace(ctx, workspaceID, min(limit, maxListLimit), max(offset, 0))
}

// Get counts a view and schedules extraction for files that were never parsed.
func (s *Service) Get(ctx context.Context, actorID, id string) (Document, error) {
	doc, err := s.readable(ctx, actorID, id)
	if err != nil {
		return Document{}, err
	}
	if err := s.Repo.IncrementViews(ctx, id); err != nil {
		return Document{}, fmt.Errorf("count view: %w", err)
	}
	doc.ViewCount++

	if needsExtraction(doc) {
		s.Tasks.Enqueue(ctx, "documents.extract", func(ctx context.Context) error {
			_, err := s.ensureText(ctx, doc)
			return err
		})
	}
	return doc, nil
}

// Download opens the stored file and counts the download.
func (s *Service) Download(ctx context.Context, actorID, id string) (Document, io.ReadCloser, error) {
	doc, err := s.readable(ctx, actorID, id)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Store.Open(ctx, doc.FileURL)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Document{}, nil, ErrNotFound
		}
		return Document{}, nil, fmt.Errorf("open file: %w", err)
	}
	if err := s.Repo.IncrementDownloads(ctx, id); err != nil {
		rc.Close()
		return Document{}, nil, fmt.Errorf("count download: %w", err)
	}
	doc.DownloadCount++
	return doc, rc, nil
}

// Delete removes a document. Allowed for its author and the workspace owner.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	role, err := s.Access.Authorize(ctx, doc.WorkspaceID, actorID, workspaces.PermRead)
	if err != nil {
		return mapAccessErr(err)
	}
	if doc.AuthorID != actorID && role != workspaces.RoleOwner {
		return ErrForbidden
	}
	if _, err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.releaseFile(ctx, doc.FileURL)
	return nil
}

// PurgeWorkspace deletes every document of a workspace along with its files.
func (s *Service) PurgeWorkspace(ctx context.Context, workspaceID string) error {
	keys, err := s.Repo.DeleteByWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, key := range keys {
		s.releaseFile(ctx, key)
	}
	telemetry.Info("documents.purged", map[string]any{"workspaceId": workspaceID, "count": len(keys)})
	return nil
}

// Summarize produces and persists a summary of the document. It prefers the
// cached text, then the stored file, then title and description.
func (s *Service) Summarize(ctx context.Context, actorID, id string) (summarize.Result, error) {
	doc, err := s.readable(ctx, actorID, id)
	if err != nil {
		return summarize.Result{}, err
	}
	if s.Summarizer == nil {
		return summarize.Result{}, ErrSummarizerUnavailable
	}

	text := doc.ExtractedText
	if !summarize.HasContent(text) && needsExtraction(doc) {
		text, err = s.ensureText(ctx, doc)
		if err != nil {
			telemetry.Warn("documents.fetch_failed", map[string]any{"documentId": id, "error": err.Error()})
		}
	}
	if !summarize.HasContent(text) {
		text = substituteText(doc)
	}
	if !summarize.HasContent(text) {
		metrics.IncSummarizeNoContent()
		return summarize.Result{}, ErrNoContent
	}

	start := time.Now()
	res, err := s.Summarizer.Summarize(ctx, text, doc.Title)
	if err != nil {
		return summarize.Result{}, fmt.Errorf("summarize: %w", err)
	}
	metrics.IncSummarize()
	metrics.ObserveSummarizeDurationMs(float64(time.Since(start).Milliseconds()))

	summary := Summary{
		Content:   res.Summary,
		KeyPoints: res.Points,
		Topics:    res.Keywords,
		Sentiment: summarySentiment,
		CreatedAt: s.now(),
	}
	if err := s.Repo.SetSummary(ctx, id, summary); err != nil {
		return summarize.Result{}, fmt.Errorf("save summary: %w", err)
	}
	telemetry.Info("documents.summarized", map[string]any{
		"documentId": id,
		"summarizer": s.Summarizer.Name(),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return res, nil
}

func needsExtraction(doc Document) bool {
	return doc.ExtractedText == "" && doc.ExtractedAt == nil
}

// ensureText fetches and extracts the stored file and records the attempt,
// including one that found no text.
func (s *Service) ensureText(ctx context.Context, doc Document) (string, error) {
	timeout := s.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := s.readObject(fetchCtx, doc.FileURL)
	if err != nil {
		return "", fmt.Errorf("fetch file: %w", err)
	}
	text, err := extract.Extract(data, doc.FileType, doc.FileName)
	if err != nil {
		return "", err
	}
	if err := s.Repo.SetExtractedText(ctx, doc.ID, text, s.now()); err != nil {
		return text, fmt.Errorf("cache text: %w", err)
	}
	return text, nil
}

func (s *Service) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxFileSize)
	}
	return data, nil
}

func (s *Service) readable(ctx context.Context, actorID, id string) (Document, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if err := s.authorize(ctx, doc.WorkspaceID, actorID, workspaces.PermRead); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *Service) authorize(ctx context.Context, workspaceID, actorID string, p workspaces.Permission) error {
	_, err := s.Access.Authorize(ctx, workspaceID, actorID, p)
	return mapAccessErr(err)
}

func (s *Service) releaseFile(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("documents.release_failed", map[string]any{"key": key, "error": err.Error()})
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func mapAccessErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workspaces.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, workspaces.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}

// substituteText stands in for unreadable files.
func substituteText(doc Document) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{doc.Title, doc.Description} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, substituteSeparator)
}

// resolveType prefers a specific declared type over the sniffed one.
func resolveType(declared, sniffed string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != genericBinaryType {
		return mt
	}
	if sniffed == "" {
		sniffed, _, _ = object.Sniff(bytes.NewReader(data))
	}
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mt
	}
	return genericBinaryType
}

func normalizeTags(tags []string) []string {
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
