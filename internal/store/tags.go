// Governing: SPEC-0002 REQ "Link Tagging", ADR-0005
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Tag struct {
	ID          string    `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	Name        string    `db:"name"`
	CreatedAt   time.Time `db:"created_at"`
}

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

func (s *TagStore) q(query string) string { return s.db.Rebind(query) }

// Upsert returns the workspace's tag with the given name, creating it if
// needed. Tag names are unique per workspace.
func (s *TagStore) Upsert(ctx context.Context, workspaceID, name string) (*Tag, error) {
	var t Tag
	err := s.db.GetContext(ctx, &t, s.q(`
		SELECT * FROM tags WHERE workspace_id = ? AND name = ?
	`), workspaceID, name)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO tags (id, workspace_id, name, created_at) VALUES (?, ?, ?, ?)
	`), id, workspaceID, name, now)
	if err != nil {
		return nil, err
	}
	err = s.db.GetContext(ctx, &t, s.q(`SELECT * FROM tags WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TagStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]*Tag, error) {
	var tags []*Tag
	err := s.db.SelectContext(ctx, &tags, s.q(`
		SELECT * FROM tags WHERE workspace_id = ? ORDER BY name ASC
	`), workspaceID)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// SetLinkTags replaces the link's tag set with the given names, upserting
// tags as needed.
func (s *TagStore) SetLinkTags(ctx context.Context, workspaceID, linkID string, names []string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM link_tags WHERE link_id = ?`), linkID); err != nil {
		return err
	}
	for _, name := range names {
		tag, err := s.Upsert(ctx, workspaceID, name)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, s.q(`
			INSERT INTO link_tags (link_id, tag_id) VALUES (?, ?)
		`), linkID, tag.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TagStore) ListLinkTags(ctx context.Context, linkID string) ([]*Tag, error) {
	var tags []*Tag
	err := s.db.SelectContext(ctx, &tags, s.q(`
		SELECT t.* FROM tags t
		JOIN link_tags lt ON lt.tag_id = t.id
		WHERE lt.link_id = ?
		ORDER BY t.name ASC
	`), linkID)
	if err != nil {
		return nil, err
	}
	return tags, nil
}
