package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[doc.ID] = clone(doc)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.items[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return clone(doc), nil
}

func (r *MemoryRepo) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Document, 0)
	for _, doc := range r.items {
		if doc.WorkspaceID == workspaceID {
			out = append(out, clone(doc))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return []Document{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) SetExtractedText(ctx context.Context, id, text string, at time.Time) error {
	return r.mutate(ctx, id, func(d *Document) {
		d.ExtractedText = text
		d.ExtractedAt = &at
		d.UpdatedAt = at
	})
}

func (r *MemoryRepo) SetSummary(ctx context.Context, id string, summary Summary) error {
	return r.mutate(ctx, id, func(d *Document) {
		s := summary
		d.Summary = &s
		d.UpdatedAt = summary.CreatedAt
	})
}

func (r *MemoryRepo) IncrementViews(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(d *Document) { d.ViewCount++ })
}

func (r *MemoryRepo) IncrementDownloads(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(d *Document) { d.DownloadCount++ })
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.items[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	delete(r.items, id)
	return doc, nil
}

func (r *MemoryRepo) DeleteByWorkspace(ctx context.Context, workspaceID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0)
	for id, doc := range r.items {
		if doc.WorkspaceID == workspaceID {
			keys = append(keys, doc.FileURL)
			delete(r.items, id)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *MemoryRepo) mutate(ctx context.Context, id string, fn func(*Document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	fn(&doc)
	r.items[id] = doc
	return nil
}

func clone(doc Document) Document {
	doc.Tags = append([]string(nil), doc.Tags...)
	if doc.Summary != nil {
		s := *doc.Summary
		s.KeyPoints = append([]string(nil), s.KeyPoints...)
		s.Topics = append([]string(nil), s.Topics...)
		doc.Summary = &s
	}
	return doc
}

var _ Repo = (*MemoryRepo)(nil)
