package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *Service {
	svc := NewService(NewMemoryRepo())
	svc.Cost = bcrypt.MinCost
	return svc
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Ana@Example.com ", "correct horse", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "ANA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bo@example.com", "password1", "Bo")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "BO@example.com", "password2", "Bo again")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, "not-an-email", "password1", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(ctx, "cy@example.com", "short", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOAuthAccountCannotPasswordLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.UpsertFromOAuth(ctx, User{ID: "google:1", Email: "g@example.com", Name: "G"})
	require.NoError(t, err)
	assert.Equal(t, "google:1", u.ID)

	again, err := svc.UpsertFromOAuth(ctx, User{ID: "google:1", Email: "G@example.com", Name: "G2"})
	require.NoError(t, err)
	assert.Equal(t, "G2", again.Name)

	_, err = svc.Authenticate(ctx, "g@example.com", "anything1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetFavoriteTopics(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u, err := svc.Register(ctx, "d@example.com", "password1", "D")
	require.NoError(t, err)

	topics, err := svc.SetFavoriteTopics(ctx, u.ID, []string{" Go ", "databases", "go", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "databases"}, topics)

	stored, err := svc.FavoriteTopics(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, topics, stored)

	_, err = svc.SetFavoriteTopics(ctx, "missing", []string{"x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
