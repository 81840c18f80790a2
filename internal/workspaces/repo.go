package workspaces

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("workspace not found")
	ErrForbidden    = errors.New("workspace access denied")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo persists workspaces and their memberships.
type Repo interface {
	// Create stores the workspace together with its owner membership.
	Create(ctx context.Context, ws Workspace) error
	Get(ctx context.Context, id string) (Workspace, error)
	ListForUser(ctx context.Context, userID string) ([]Workspace, error)
	// MemberRole returns "" when the user is not a member.
	MemberRole(ctx context.Context, workspaceID, userID string) (Role, error)
	Members(ctx context.Context, workspaceID string) ([]Member, error)
	// PutMember adds the member or updates their role.
	PutMember(ctx context.Context, workspaceID string, m Member) error
	Delete(ctx context.Context, id string) error
}
