// Governing: SPEC-0002 REQ "Membership Lookup", ADR-0005
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Membership is the join entity recording a user's role within one
// workspace. WorkspaceName is populated from the joined workspaces row.
type Membership struct {
	UserID        string    `db:"user_id"`
	WorkspaceID   string    `db:"workspace_id"`
	Role          string    `db:"role"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	WorkspaceName string    `db:"workspace_name"`
}

// Member is a membership row joined with the member's user record, for
// listing endpoints.
type Member struct {
	UserID      string    `db:"user_id"`
	Email       string    `db:"email"`
	DisplayName string    `db:"display_name"`
	Role        string    `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
}

type MembershipStore struct {
	db *sqlx.DB
}

func NewMembershipStore(db *sqlx.DB) *MembershipStore {
	return &MembershipStore{db: db}
}

func (s *MembershipStore) q(query string) string { return s.db.Rebind(query) }

// FindMembership returns the user's membership in the workspace, joined
// with the workspace row. Memberships in soft-deleted workspaces do not
// resolve: this is the invariant the whole permission model leans on, so
// the filter lives in the query, not in callers.
func (s *MembershipStore) FindMembership(ctx context.Context, userID, workspaceID string) (*Membership, error) {
	var m Membership
	err := s.db.GetContext(ctx, &m, s.q(`
		SELECT m.user_id, m.workspace_id, m.role, m.created_at, m.updated_at,
		       w.name AS workspace_name
		FROM memberships m
		JOIN workspaces w ON w.id = m.workspace_id
		WHERE m.user_id = ? AND m.workspace_id = ? AND w.deleted_at IS NULL
	`), userID, workspaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByWorkspace returns all members of the workspace with their user
// records, owners first.
func (s *MembershipStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]*Member, error) {
	var members []*Member
	err := s.db.SelectContext(ctx, &members, s.q(`
		SELECT m.user_id, u.email, u.display_name, m.role, m.created_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		JOIN workspaces w ON w.id = m.workspace_id
		WHERE m.workspace_id = ? AND w.deleted_at IS NULL
		ORDER BY CASE m.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, u.email ASC
	`), workspaceID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Add inserts a membership.
func (s *MembershipStore) Add(ctx context.Context, userID, workspaceID, role string) (*Membership, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO memberships (user_id, workspace_id, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`), userID, workspaceID, role, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateMember
		}
		return nil, err
	}
	return s.FindMembership(ctx, userID, workspaceID)
}

// Remove deletes a membership.
func (s *MembershipStore) Remove(ctx context.Context, userID, workspaceID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM memberships WHERE user_id = ? AND workspace_id = ?
	`), userID, workspaceID)
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

// UpdateRole changes the member's role.
func (s *MembershipStore) UpdateRole(ctx context.Context, userID, workspaceID, role string) (*Membership, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE memberships SET role = ?, updated_at = ? WHERE user_id = ? AND workspace_id = ?
	`), role, now, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.FindMembership(ctx, userID, workspaceID)
}
