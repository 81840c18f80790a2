package workspaces

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	items   map[string]Workspace
	members map[string]map[string]Member
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items:   make(map[string]Workspace),
		members: make(map[string]map[string]Member),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, ws Workspace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[ws.ID] = ws
	r.members[ws.ID] = map[string]Member{
		ws.OwnerID: {UserID: ws.OwnerID, Role: RoleOwner, JoinedAt: ws.CreatedAt},
	}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.items[id]
	if !ok {
		return Workspace{}, ErrNotFound
	}
	return ws, nil
}

func (r *MemoryRepo) ListForUser(ctx context.Context, userID string) ([]Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Workspace, 0)
	for id, members := range r.members {
		if _, ok := members[userID]; ok {
			out = append(out, r.items[id])
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) MemberRole(ctx context.Context, workspaceID, userID string) (Role, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[workspaceID][userID].Role, nil
}

func (r *MemoryRepo) Members(ctx context.Context, workspaceID string) ([]Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Member, 0, len(r.members[workspaceID]))
	for _, m := range r.members[workspaceID] {
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *MemoryRepo) PutMember(ctx context.Context, workspaceID string, m Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.members[workspaceID]
	if !ok {
		return ErrNotFound
	}
	if existing, ok := members[m.UserID]; ok {
		existing.Role = m.Role
		members[m.UserID] = existing
		return nil
	}
	members[m.UserID] = m
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	delete(r.members, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
