// Governing: SPEC-0002 REQ "Workspace Tenancy", ADR-0005
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Workspace struct {
	ID        string       `db:"id"`
	Slug      string       `db:"slug"`
	Name      string       `db:"name"`
	DeletedAt sql.NullTime `db:"deleted_at"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

type WorkspaceStore struct {
	db *sqlx.DB
}

func NewWorkspaceStore(db *sqlx.DB) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

func (s *WorkspaceStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a workspace and an owner membership for creatorID in a
// single transaction. A workspace always has at least one owner.
func (s *WorkspaceStore) Create(ctx context.Context, slug, name, creatorID string) (*Workspace, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO workspaces (id, slug, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`), id, slug, name, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO memberships (user_id, workspace_id, role, created_at, updated_at)
		VALUES (?, ?, 'owner', ?, ?)
	`), creatorID, id, now, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns a workspace by ID, excluding soft-deleted workspaces.
func (s *WorkspaceStore) GetByID(ctx context.Context, id string) (*Workspace, error) {
	var w Workspace
	err := s.db.GetContext(ctx, &w, s.q(`SELECT * FROM workspaces WHERE id = ? AND deleted_at IS NULL`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetBySlug returns a workspace by slug, excluding soft-deleted workspaces.
func (s *WorkspaceStore) GetBySlug(ctx context.Context, slug string) (*Workspace, error) {
	var w Workspace
	err := s.db.GetContext(ctx, &w, s.q(`SELECT * FROM workspaces WHERE slug = ? AND deleted_at IS NULL`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Update changes the workspace name.
func (s *WorkspaceStore) Update(ctx context.Context, id, name string) (*Workspace, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE workspaces SET name = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL
	`), name, now, id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SoftDelete marks the workspace deleted. Memberships survive the row but
// stop resolving: every membership lookup joins on deleted_at IS NULL.
func (s *WorkspaceStore) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE workspaces SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL
	`), now, now, id)
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

// ListForUser returns the non-deleted workspaces the user belongs to.
func (s *WorkspaceStore) ListForUser(ctx context.Context, userID string) ([]*Workspace, error) {
	var ws []*Workspace
	err := s.db.SelectContext(ctx, &ws, s.q(`
		SELECT w.* FROM workspaces w
		JOIN memberships m ON m.workspace_id = w.id
		WHERE m.user_id = ? AND w.deleted_at IS NULL
		ORDER BY w.name ASC
	`), userID)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// isUniqueViolation detects unique-constraint errors across the supported
// drivers without importing their error types here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
