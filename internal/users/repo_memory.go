package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User), byEmail: make(map[string]string)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(user), nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(r.users[id]), nil
}

func (r *MemoryRepo) UpsertOAuth(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if id, ok := r.byEmail[user.Email]; ok {
		existing := r.users[id]
		existing.Name = user.Name
		existing.PictureURL = user.PictureURL
		existing.UpdatedAt = now
		r.users[id] = existing
		return clone(existing), nil
	}
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID
	return clone(user), nil
}

func (r *MemoryRepo) UpdateFavoriteTopics(ctx context.Context, userID string, topics []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.FavoriteTopics = append([]string{}, topics...)
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

func clone(u User) User {
	u.FavoriteTopics = append([]string{}, u.FavoriteTopics...)
	return u
}

var _ Repo = (*MemoryRepo)(nil)
