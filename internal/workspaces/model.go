package workspaces

import "time"

// Role is a member's level of access within a workspace.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Permission is an action checked against a member's role.
type Permission int

const (
	PermRead Permission = iota
	PermWrite
	PermManage
)

// Allows reports whether the role grants p.
func (r Role) Allows(p Permission) bool {
	switch p {
	case PermRead:
		return r.Valid()
	case PermWrite:
		return r == RoleOwner || r == RoleEditor
	case PermManage:
		return r == RoleOwner
	}
	return false
}

// Workspace is a collaboration boundary that owns documents.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	Members     []Member  `json:"members,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Member struct {
	UserID   string    `json:"userId"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}
