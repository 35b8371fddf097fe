// Governing: SPEC-0001 REQ "Short Link Management", ADR-0002
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Link struct {
	ID          string         `db:"id"`
	WorkspaceID string         `db:"workspace_id"`
	Slug        string         `db:"slug"`
	URL         string         `db:"url"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	CreatedBy   sql.NullString `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Creator returns the creator's user ID, or "" when no creator is
// recorded (imported or system-created links).
func (l *Link) Creator() string {
	if l.CreatedBy.Valid {
		return l.CreatedBy.String
	}
	return ""
}

type LinkStore struct {
	db *sqlx.DB
}

func NewLinkStore(db *sqlx.DB) *LinkStore {
	return &LinkStore{db: db}
}

func (s *LinkStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a link. createdBy may be empty for links with no recorded
// creator; ownership checks then deny the "own" permission variants.
func (s *LinkStore) Create(ctx context.Context, workspaceID, slug, url, title, description, createdBy string) (*Link, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var creator sql.NullString
	if createdBy != "" {
		creator = sql.NullString{String: createdBy, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO links (id, workspace_id, slug, url, title, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, workspaceID, slug, url, title, description, creator, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *LinkStore) GetByID(ctx context.Context, id string) (*Link, error) {
	var l Link
	err := s.db.GetContext(ctx, &l, s.q(`SELECT * FROM links WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LinkStore) GetByWorkspaceAndID(ctx context.Context, workspaceID, id string) (*Link, error) {
	var l Link
	err := s.db.GetContext(ctx, &l, s.q(`SELECT * FROM links WHERE id = ? AND workspace_id = ?`), id, workspaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetBySlug returns a link by its slug within one workspace. Slugs are
// unique per workspace, not globally.
func (s *LinkStore) GetBySlug(ctx context.Context, workspaceID, slug string) (*Link, error) {
	var l Link
	err := s.db.GetContext(ctx, &l, s.q(`SELECT * FROM links WHERE workspace_id = ? AND slug = ?`), workspaceID, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LinkStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]*Link, error) {
	var links []*Link
	err := s.db.SelectContext(ctx, &links, s.q(`
		SELECT * FROM links WHERE workspace_id = ? ORDER BY slug ASC
	`), workspaceID)
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (s *LinkStore) Update(ctx context.Context, id, url, title, description string) (*Link, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE links SET url = ?, title = ?, description = ?, updated_at = ? WHERE id = ?
	`), url, title, description, now, id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *LinkStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM links WHERE id = ?`), id)
	return err
}

// BulkDelete removes the given links, scoped to the workspace so IDs from
// other tenants are silently ignored. Returns the number of rows deleted.
func (s *LinkStore) BulkDelete(ctx context.Context, workspaceID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM links WHERE workspace_id = ? AND id IN (?)`, workspaceID, ids)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
