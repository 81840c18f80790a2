package workspaces

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/shared/storage/db/dbtest"
)

func TestPGRepoCreateInsertsOwnerInTx(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ws := Workspace{ID: "w1", Name: "Team", OwnerID: "u1", CreatedAt: now, UpdatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workspaces").
		WithArgs("w1", "Team", "", "u1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO workspace_members").
		WithArgs("w1", "u1", "owner", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), ws))
}

func TestPGRepoCreateRollsBack(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workspaces").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), Workspace{ID: "w1", Name: "Team", OwnerID: "u1", CreatedAt: now, UpdatedAt: now})
	assert.Error(t, err)
}

func TestPGRepoMemberRoleAbsent(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}

	mock.ExpectQuery("SELECT role FROM workspace_members").
		WithArgs("w1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := repo.MemberRole(context.Background(), "w1", "u2")
	require.NoError(t, err)
	assert.Equal(t, Role(""), role)
}

func TestPGRepoPutMemberMissingWorkspace(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	repo := &PGRepo{DB: conn}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO workspace_members").
		WithArgs("w1", "u2", "viewer", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.PutMember(context.Background(), "w1", Member{UserID: "u2", Role: RoleViewer, JoinedAt: now})
	assert.ErrorIs(t, err, ErrNotFound)
}
