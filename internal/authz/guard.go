// Governing: SPEC-0004 REQ "Server Permission Guard", ADR-0013
//
// The guard is the authoritative enforcement point. Every check resolves
// the acting user's membership fresh from the database — a role claimed by
// the caller or cached client-side is never trusted. Two shapes coexist on
// purpose:
//
//   - the Require* guards fail loudly with a typed *Error and never degrade
//     a denial into an empty result;
//   - RequireLinkOwnership is the one resolver: it returns capability
//     booleans for the caller to branch on, because its call sites need
//     both capabilities at once (e.g. to report enabled/disabled actions).
//     Do not add more resolvers without the same justification.
package authz

import (
	"context"
	"errors"

	"github.com/linkdeck/linkdeck/internal/metrics"
	"github.com/linkdeck/linkdeck/internal/permissions"
	"github.com/linkdeck/linkdeck/internal/store"
)

const (
	msgNoWorkspaceAccess = "You do not have access to this workspace"
	msgAdminRequired     = "Only workspace owners and admins can perform this action"
	msgOwnerRequired     = "Only workspace owners can perform this action"
	msgLinkNotFound      = "Link not found"
	msgTargetNotMember   = "Target user is not a member of this workspace"
	msgCannotRemove      = "You don't have permission to remove this member"
	msgCannotChangeRole  = "Only workspace owners can change member roles"
)

// MembershipFinder is the guard's sole source of truth for roles. The
// implementation must exclude memberships whose workspace is soft-deleted.
type MembershipFinder interface {
	FindMembership(ctx context.Context, userID, workspaceID string) (*store.Membership, error)
}

// LinkFinder resolves links for ownership checks.
type LinkFinder interface {
	GetByID(ctx context.Context, id string) (*store.Link, error)
	GetByWorkspaceAndID(ctx context.Context, workspaceID, id string) (*store.Link, error)
}

// Guard authorizes requests against the policy table using fresh
// membership lookups. It holds no per-request state and is safe for
// concurrent use.
type Guard struct {
	memberships MembershipFinder
	links       LinkFinder
}

func NewGuard(memberships MembershipFinder, links LinkFinder) *Guard {
	return &Guard{memberships: memberships, links: links}
}

// Access is the result of a successful workspace access check.
type Access struct {
	Role       permissions.Role
	Membership *store.Membership
}

// LinkAccess is the resolver result: the link plus what the acting user
// may do with it. Callers branch on the booleans; nothing here throws for
// lack of permission.
type LinkAccess struct {
	Link      *store.Link
	Role      permissions.Role
	CanUpdate bool
	CanDelete bool
}

// MemberAction selects the relational rule applied by
// RequireMemberManagementPermission.
type MemberAction string

const (
	ActionRemove     MemberAction = "remove"
	ActionChangeRole MemberAction = "changeRole"
)

// MemberManagement is the validated pair of roles for a member-management
// operation.
type MemberManagement struct {
	ActorRole  permissions.Role
	TargetRole permissions.Role
}

// GetMembership returns the principal's membership in the workspace, or
// nil when none exists (including when the workspace is soft-deleted).
// Lookup failures other than absence are returned as-is.
func (g *Guard) GetMembership(ctx context.Context, userID, workspaceID string) (*store.Membership, error) {
	m, err := g.memberships.FindMembership(ctx, userID, workspaceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RequireWorkspaceAccess fails with FORBIDDEN when the principal has no
// membership in the workspace.
func (g *Guard) RequireWorkspaceAccess(ctx context.Context, userID, workspaceID string) (*Access, error) {
	access, err := g.workspaceAccess(ctx, userID, workspaceID)
	return access, g.observe(err)
}

// RequirePermission fails with FORBIDDEN and the token's denial message
// when the principal's role does not hold p. On success it returns the
// validated permission context.
func (g *Guard) RequirePermission(ctx context.Context, userID, workspaceID string, p permissions.Permission) (permissions.Context, error) {
	pctx, err := g.permission(ctx, userID, workspaceID, p)
	return pctx, g.observe(err)
}

// RequireAnyPermission succeeds when the role holds at least one of perms;
// the denial message is generic because no single token was requested.
func (g *Guard) RequireAnyPermission(ctx context.Context, userID, workspaceID string, perms ...permissions.Permission) (permissions.Context, error) {
	pctx, err := g.anyPermission(ctx, userID, workspaceID, perms...)
	return pctx, g.observe(err)
}

// RequireAdminRole gates operations by rank alone, independent of the
// permission-token system.
func (g *Guard) RequireAdminRole(ctx context.Context, userID, workspaceID string) (permissions.Context, error) {
	pctx, err := g.requireRank(ctx, userID, workspaceID, permissions.RoleAdmin, msgAdminRequired)
	return pctx, g.observe(err)
}

// RequireOwnerRole gates owner-only operations by rank alone.
func (g *Guard) RequireOwnerRole(ctx context.Context, userID, workspaceID string) (permissions.Context, error) {
	pctx, err := g.requireRank(ctx, userID, workspaceID, permissions.RoleOwner, msgOwnerRequired)
	return pctx, g.observe(err)
}

// RequireLinkOwnership resolves the link (scoped to workspaceID when
// non-empty), failing with NOT_FOUND before any role is evaluated, then
// returns the ownership-aware capabilities. Lack of permission is reported
// through the booleans, never an error; only the complete absence of a
// workspace membership still fails, with FORBIDDEN.
func (g *Guard) RequireLinkOwnership(ctx context.Context, userID, linkID, workspaceID string) (*LinkAccess, error) {
	la, err := g.linkOwnership(ctx, userID, linkID, workspaceID)
	return la, g.observe(err)
}

// RequireMemberManagementPermission resolves both the actor's and the
// target's membership and applies the pairwise remove/change-role rules.
func (g *Guard) RequireMemberManagementPermission(ctx context.Context, userID, workspaceID, targetUserID string, action MemberAction) (*MemberManagement, error) {
	mm, err := g.memberManagement(ctx, userID, workspaceID, targetUserID, action)
	return mm, g.observe(err)
}

// --- unobserved internals; metrics are recorded once, at the public
// boundary, so composed checks count as one ---

func (g *Guard) workspaceAccess(ctx context.Context, userID, workspaceID string) (*Access, error) {
	m, err := g.GetMembership(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, Forbidden(msgNoWorkspaceAccess)
	}
	return &Access{Role: permissions.Role(m.Role), Membership: m}, nil
}

func (g *Guard) permission(ctx context.Context, userID, workspaceID string, p permissions.Permission) (permissions.Context, error) {
	access, err := g.workspaceAccess(ctx, userID, workspaceID)
	if err != nil {
		return permissions.Context{}, err
	}
	pctx := permissions.Context{Role: access.Role, UserID: userID, WorkspaceID: workspaceID}
	if !permissions.HasPermission(pctx, p) {
		return permissions.Context{}, Forbidden(permissions.ErrorMessage(p))
	}
	return pctx, nil
}

func (g *Guard) anyPermission(ctx context.Context, userID, workspaceID string, perms ...permissions.Permission) (permissions.Context, error) {
	access, err := g.workspaceAccess(ctx, userID, workspaceID)
	if err != nil {
		return permissions.Context{}, err
	}
	pctx := permissions.Context{Role: access.Role, UserID: userID, WorkspaceID: workspaceID}
	if !permissions.HasAnyPermission(pctx, perms...) {
		return permissions.Context{}, Forbidden(permissions.ErrorMessage(""))
	}
	return pctx, nil
}

func (g *Guard) requireRank(ctx context.Context, userID, workspaceID string, rank permissions.Role, denial string) (permissions.Context, error) {
	access, err := g.workspaceAccess(ctx, userID, workspaceID)
	if err != nil {
		return permissions.Context{}, err
	}
	if !access.Role.AtLeast(rank) {
		return permissions.Context{}, Forbidden(denial)
	}
	return permissions.Context{Role: access.Role, UserID: userID, WorkspaceID: workspaceID}, nil
}

func (g *Guard) linkOwnership(ctx context.Context, userID, linkID, workspaceID string) (*LinkAccess, error) {
	var (
		link *store.Link
		err  error
	)
	if workspaceID != "" {
		link, err = g.links.GetByWorkspaceAndID(ctx, workspaceID, linkID)
	} else {
		link, err = g.links.GetByID(ctx, linkID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound(msgLinkNotFound)
	}
	if err != nil {
		return nil, err
	}

	access, err := g.workspaceAccess(ctx, userID, link.WorkspaceID)
	if err != nil {
		return nil, err
	}

	return &LinkAccess{
		Link:      link,
		Role:      access.Role,
		CanUpdate: permissions.CanUpdateLink(access.Role, link.Creator(), userID),
		CanDelete: permissions.CanDeleteLink(access.Role, link.Creator(), userID),
	}, nil
}

func (g *Guard) memberManagement(ctx context.Context, userID, workspaceID, targetUserID string, action MemberAction) (*MemberManagement, error) {
	access, err := g.workspaceAccess(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	target, err := g.GetMembership(ctx, targetUserID, workspaceID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, NotFound(msgTargetNotMember)
	}

	actorRole := access.Role
	targetRole := permissions.Role(target.Role)

	switch action {
	case ActionRemove:
		if !permissions.CanRemoveMember(actorRole, targetRole) {
			return nil, Forbidden(msgCannotRemove)
		}
	case ActionChangeRole:
		if !permissions.CanChangeRole(actorRole, targetRole) {
			return nil, Forbidden(msgCannotChangeRole)
		}
	default:
		return nil, Forbidden(permissions.ErrorMessage(""))
	}

	return &MemberManagement{ActorRole: actorRole, TargetRole: targetRole}, nil
}

// observe records one guard outcome. Denials are counted by code;
// infrastructure failures (lookup errors) count as neither allowed nor
// denied.
func (g *Guard) observe(err error) error {
	if err == nil {
		metrics.AuthzChecksTotal.WithLabelValues("allowed").Inc()
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		metrics.AuthzChecksTotal.WithLabelValues("denied").Inc()
		metrics.AuthzDenialsTotal.WithLabelValues(string(ae.Code)).Inc()
	}
	return err
}
