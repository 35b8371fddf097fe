// Governing: SPEC-0002 REQ "Store Interfaces", ADR-0005
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlugTaken is returned when a workspace or link slug collides.
	ErrSlugTaken = errors.New("slug already exists")

	// ErrDuplicateMember is returned when adding a membership that
	// already exists.
	ErrDuplicateMember = errors.New("user is already a member of this workspace")
)

// MembershipStoreIface exposes membership data operations. No handler MAY
// query the DB directly; all access goes through this interface.
type MembershipStoreIface interface {
	FindMembership(ctx context.Context, userID, workspaceID string) (*Membership, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*Member, error)
	Add(ctx context.Context, userID, workspaceID, role string) (*Membership, error)
	Remove(ctx context.Context, userID, workspaceID string) error
	UpdateRole(ctx context.Context, userID, workspaceID, role string) (*Membership, error)
}

// LinkStoreIface exposes link data operations.
type LinkStoreIface interface {
	Create(ctx context.Context, workspaceID, slug, url, title, description, createdBy string) (*Link, error)
	GetByID(ctx context.Context, id string) (*Link, error)
	GetByWorkspaceAndID(ctx context.Context, workspaceID, id string) (*Link, error)
	GetBySlug(ctx context.Context, workspaceID, slug string) (*Link, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*Link, error)
	Update(ctx context.Context, id, url, title, description string) (*Link, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, workspaceID string, ids []string) (int64, error)
}
