package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxFavoriteTopics = 20
)

// Service contains account logic.
type Service struct {
	Repo Repo
	// Cost is the bcrypt work factor.
	Cost int
}

// NewService constructs a Service with the default bcrypt cost.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Cost: bcrypt.DefaultCost}
}

// Register creates a password account.
func (s *Service) Register(ctx context.Context, email, password, name string) (User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           strings.TrimSpace(name),
		PasswordHash:   string(hash),
		FavoriteTopics: []string{},
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

// Authenticate checks a password login. Unknown emails and OAuth-only accounts
// fail the same way as a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertFromOAuth persists an identity returned by an OAuth provider.
func (s *Service) UpsertFromOAuth(ctx context.Context, user User) (User, error) {
	user.Email = normalizeEmail(user.Email)
	if strings.TrimSpace(user.ID) == "" || user.Email == "" {
		return User{}, fmt.Errorf("%w: user id and email are required", ErrInvalidInput)
	}
	return s.Repo.UpsertOAuth(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

// Exists reports whether a user with the id is registered.
func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := s.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// FavoriteTopics returns the user's interest seed for recommendations.
func (s *Service) FavoriteTopics(ctx context.Context, userID string) ([]string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.FavoriteTopics, nil
}

// SetFavoriteTopics stores lowercased, de-duplicated topics.
func (s *Service) SetFavoriteTopics(ctx context.Context, userID string, topics []string) ([]string, error) {
	normalized := NormalizeTopics(topics)
	if len(normalized) > maxFavoriteTopics {
		return nil, fmt.Errorf("%w: at most %d topics", ErrInvalidInput, maxFavoriteTopics)
	}
	if err := s.Repo.UpdateFavoriteTopics(ctx, userID, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// NormalizeTopics trims, lowercases and de-duplicates topics, keeping order.
func NormalizeTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	seen := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
