package workspaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-backend/internal/shared/telemetry"
)

// Cascader removes data owned by a workspace before the workspace itself is deleted.
type Cascader interface {
	PurgeWorkspace(ctx context.Context, workspaceID string) error
}

// Directory resolves user ids for membership changes.
type Directory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	Repo      Repo
	Cascaders []Cascader
	Directory Directory
	Now       func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Create makes a workspace owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID, name, description string) (Workspace, error) {
	name = strings.TrimSpace(name)
	if ownerID == "" || name == "" {
		return Workspace{}, ErrInvalidInput
	}
	now := s.Now().UTC()
	ws := Workspace{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, ws); err != nil {
		return Workspace{}, fmt.Errorf("create workspace: %w", err)
	}
	ws.Members = []Member{{UserID: ownerID, Role: RoleOwner, JoinedAt: now}}
	return ws, nil
}

// List returns the workspaces userID belongs to.
func (s *Service) List(ctx context.Context, userID string) ([]Workspace, error) {
	return s.Repo.ListForUser(ctx, userID)
}

// Get returns the workspace with its members when userID may read it.
func (s *Service) Get(ctx context.Context, userID, id string) (Workspace, error) {
	if _, err := s.Authorize(ctx, id, userID, PermRead); err != nil {
		return Workspace{}, err
	}
	ws, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Workspace{}, err
	}
	members, err := s.Repo.Members(ctx, id)
	if err != nil {
		return Workspace{}, err
	}
	ws.Members = members
	return ws, nil
}

// Authorize checks that userID holds a role in workspaceID granting p.
// It returns ErrNotFound for a missing workspace and ErrForbidden otherwise.
func (s *Service) Authorize(ctx context.Context, workspaceID, userID string, p Permission) (Role, error) {
	if _, err := s.Repo.Get(ctx, workspaceID); err != nil {
		return "", err
	}
	role, err := s.Repo.MemberRole(ctx, workspaceID, userID)
	if err != nil {
		return "", err
	}
	if !role.Allows(p) {
		return role, ErrForbidden
	}
	return role, nil
}

// AddMember grants userID the given role. Only the owner may manage members
// and ownership cannot be assigned or revoked this way.
func (s *Service) AddMember(ctx context.Context, actorID, workspaceID, userID string, role Role) (Member, error) {
	if userID == "" || (role != RoleEditor && role != RoleViewer) {
		return Member{}, ErrInvalidInput
	}
	if _, err := s.Authorize(ctx, workspaceID, actorID, PermManage); err != nil {
		return Member{}, err
	}
	current, err := s.Repo.MemberRole(ctx, workspaceID, userID)
	if err != nil {
		return Member{}, err
	}
	if current == RoleOwner {
		return Member{}, ErrInvalidInput
	}
	if s.Directory != nil {
		ok, err := s.Directory.Exists(ctx, userID)
		if err != nil {
			return Member{}, err
		}
		if !ok {
			return Member{}, fmt.Errorf("%w: unknown user", ErrInvalidInput)
		}
	}

	m := Member{UserID: userID, Role: role, JoinedAt: s.Now().UTC()}
	if err := s.Repo.PutMember(ctx, workspaceID, m); err != nil {
		return Member{}, fmt.Errorf("put member: %w", err)
	}
	return m, nil
}

// Delete removes the workspace and everything it owns. Owner only.
func (s *Service) Delete(ctx context.Context, actorID, workspaceID string) error {
	if _, err := s.Authorize(ctx, workspaceID, actorID, PermManage); err != nil {
		return err
	}
	for _, c := range s.Cascaders {
		if err := c.PurgeWorkspace(ctx, workspaceID); err != nil {
			return fmt.Errorf("purge workspace: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, workspaceID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete workspace: %w", err)
	}
	telemetry.Info("workspace.deleted", map[string]any{"workspaceId": workspaceID, "userId": actorID})
	return nil
}
