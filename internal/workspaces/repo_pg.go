package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, ws Workspace) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertWorkspace = `
INSERT INTO workspaces (id, name, description, owner_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, insertWorkspace, ws.ID, ws.Name, ws.Description, ws.OwnerID, ws.CreatedAt, ws.UpdatedAt); err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}

	const insertOwner = `
INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, insertOwner, ws.ID, ws.OwnerID, string(RoleOwner), ws.CreatedAt); err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	return tx.Commit()
}

func (r *PGRepo) Get(ctx context.Context, id string) (Workspace, error) {
	const query = `
SELECT id, name, description, owner_id, created_at, updated_at
FROM workspaces
WHERE id = $1`
	var ws Workspace
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&ws.ID, &ws.Name, &ws.Description, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Workspace{}, ErrNotFound
	}
	return ws, err
}

func (r *PGRepo) ListForUser(ctx context.Context, userID string) ([]Workspace, error) {
	const query = `
SELECT w.id, w.name, w.description, w.owner_id, w.created_at, w.updated_at
FROM workspaces w
JOIN workspace_members m ON m.workspace_id = w.id
WHERE m.user_id = $1
ORDER BY w.created_at DESC, w.id ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Workspace, 0)
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Description, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (r *PGRepo) MemberRole(ctx context.Context, workspaceID, userID string) (Role, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		`SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return Role(role), err
}

func (r *PGRepo) Members(ctx context.Context, workspaceID string) ([]Member, error) {
	const query = `
SELECT user_id, role, joined_at
FROM workspace_members
WHERE workspace_id = $1
ORDER BY joined_at ASC, user_id ASC`
	rows, err := r.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Member, 0)
	for rows.Next() {
		var m Member
		var role string
		if err := rows.Scan(&m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Role = Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepo) PutMember(ctx context.Context, workspaceID string, m Member) error {
	const query = `
INSERT INTO workspace_members (workspace_id, user_id, role, joined_at)
SELECT id, $2, $3, $4 FROM workspaces WHERE id = $1
ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	res, err := r.DB.ExecContext(ctx, query, workspaceID, m.UserID, string(m.Role), m.JoinedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
