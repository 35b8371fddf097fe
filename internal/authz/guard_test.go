// Governing: SPEC-0004 REQ "Server Permission Guard"
package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/permissions"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/testutil"
)

type guardEnv struct {
	Guard       *authz.Guard
	Users       *store.UserStore
	Workspaces  *store.WorkspaceStore
	Memberships *store.MembershipStore
	Links       *store.LinkStore
}

func newGuardEnv(t *testing.T) *guardEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	users := store.NewUserStore(db)
	workspaces := store.NewWorkspaceStore(db)
	memberships := store.NewMembershipStore(db)
	links := store.NewLinkStore(db)
	return &guardEnv{
		Guard:       authz.NewGuard(memberships, links),
		Users:       users,
		Workspaces:  workspaces,
		Memberships: memberships,
		Links:       links,
	}
}

func (e *guardEnv) seedUser(t *testing.T, email string) *store.User {
	t.Helper()
	u, _, err := e.Users.Upsert(context.Background(), "test", "sub-"+email, email, "Test User")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedWorkspace creates a workspace whose creator becomes the owner.
func (e *guardEnv) seedWorkspace(t *testing.T, slug, ownerID string) *store.Workspace {
	t.Helper()
	ws, err := e.Workspaces.Create(context.Background(), slug, slug, ownerID)
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	return ws
}

func (e *guardEnv) addMember(t *testing.T, userID, workspaceID, role string) {
	t.Helper()
	if _, err := e.Memberships.Add(context.Background(), userID, workspaceID, role); err != nil {
		t.Fatalf("add member: %v", err)
	}
}

func wantAuthzError(t *testing.T, err error, code authz.Code, message string) {
	t.Helper()
	var ae *authz.Error
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *authz.Error", err)
	}
	if ae.Code != code {
		t.Errorf("code = %s, want %s", ae.Code, code)
	}
	if ae.Message != message {
		t.Errorf("message = %q, want %q", ae.Message, message)
	}
}

func TestRequireWorkspaceAccess_NoMembership(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	stranger := env.seedUser(t, "stranger@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)

	_, err := env.Guard.RequireWorkspaceAccess(context.Background(), stranger.ID, ws.ID)
	wantAuthzError(t, err, authz.CodeForbidden, "You do not have access to this workspace")
}

func TestRequireWorkspaceAccess_Member(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)

	access, err := env.Guard.RequireWorkspaceAccess(context.Background(), owner.ID, ws.ID)
	if err != nil {
		t.Fatalf("RequireWorkspaceAccess: %v", err)
	}
	if access.Role != permissions.RoleOwner {
		t.Errorf("role = %s, want owner", access.Role)
	}
	if access.Membership == nil || access.Membership.WorkspaceID != ws.ID {
		t.Errorf("membership = %+v, want row for %s", access.Membership, ws.ID)
	}
}

func TestRequireWorkspaceAccess_SoftDeletedWorkspace(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)

	if err := env.Workspaces.SoftDelete(context.Background(), ws.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// The membership row still exists, but it must not resolve.
	_, err := env.Guard.RequireWorkspaceAccess(context.Background(), owner.ID, ws.ID)
	wantAuthzError(t, err, authz.CodeForbidden, "You do not have access to this workspace")
}

func TestRequirePermission_MemberDeniedInvite(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	member := env.seedUser(t, "member@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, member.ID, ws.ID, "member")

	_, err := env.Guard.RequirePermission(context.Background(), member.ID, ws.ID, permissions.PermMembersInvite)
	wantAuthzError(t, err, authz.CodeForbidden, "You don't have permission to invite members")
}

func TestRequirePermission_AdminAllowedInvite(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	admin := env.seedUser(t, "admin@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, admin.ID, ws.ID, "admin")

	pctx, err := env.Guard.RequirePermission(context.Background(), admin.ID, ws.ID, permissions.PermMembersInvite)
	if err != nil {
		t.Fatalf("RequirePermission: %v", err)
	}
	if pctx.Role != permissions.RoleAdmin || pctx.UserID != admin.ID || pctx.WorkspaceID != ws.ID {
		t.Errorf("context = %+v, want validated admin context", pctx)
	}
}

func TestRequirePermission_AdminDeniedOwnerOnlyToken(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	admin := env.seedUser(t, "admin@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, admin.ID, ws.ID, "admin")

	_, err := env.Guard.RequirePermission(context.Background(), admin.ID, ws.ID, permissions.PermWorkspaceDelete)
	wantAuthzError(t, err, authz.CodeForbidden, "Only workspace owners can delete workspaces")
}

func TestRequireAnyPermission(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	member := env.seedUser(t, "member@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, member.ID, ws.ID, "member")

	ctx := context.Background()
	if _, err := env.Guard.RequireAnyPermission(ctx, member.ID, ws.ID, permissions.PermWorkspaceDelete, permissions.PermLinksCreate); err != nil {
		t.Fatalf("member holds links:create, any-quantifier should pass: %v", err)
	}

	_, err := env.Guard.RequireAnyPermission(ctx, member.ID, ws.ID, permissions.PermWorkspaceDelete, permissions.PermMembersInvite)
	wantAuthzError(t, err, authz.CodeForbidden, "Insufficient permissions")
}

func TestRequireAdminRole(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	member := env.seedUser(t, "member@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, member.ID, ws.ID, "member")

	ctx := context.Background()
	if _, err := env.Guard.RequireAdminRole(ctx, owner.ID, ws.ID); err != nil {
		t.Fatalf("owner should pass RequireAdminRole: %v", err)
	}

	_, err := env.Guard.RequireAdminRole(ctx, member.ID, ws.ID)
	wantAuthzError(t, err, authz.CodeForbidden, "Only workspace owners and admins can perform this action")
}

func TestRequireOwnerRole(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	admin := env.seedUser(t, "admin@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, admin.ID, ws.ID, "admin")

	ctx := context.Background()
	if _, err := env.Guard.RequireOwnerRole(ctx, owner.ID, ws.ID); err != nil {
		t.Fatalf("owner should pass RequireOwnerRole: %v", err)
	}

	_, err := env.Guard.RequireOwnerRole(ctx, admin.ID, ws.ID)
	wantAuthzError(t, err, authz.CodeForbidden, "Only workspace owners can perform this action")
}

func TestRequireLinkOwnership_LinkMissing(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	env.seedWorkspace(t, "acme", owner.ID)

	// NOT_FOUND fires before any role evaluation: the caller isn't even
	// a member of anything relevant and still sees "Link not found".
	_, err := env.Guard.RequireLinkOwnership(context.Background(), owner.ID, "no-such-link", "")
	wantAuthzError(t, err, authz.CodeNotFound, "Link not found")
}

func TestRequireLinkOwnership_MemberOwnLink(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	member := env.seedUser(t, "member@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, member.ID, ws.ID, "member")

	ctx := context.Background()
	link, err := env.Links.Create(ctx, ws.ID, "mine", "https://example.com", "", "", member.ID)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	la, err := env.Guard.RequireLinkOwnership(ctx, member.ID, link.ID, "")
	if err != nil {
		t.Fatalf("RequireLinkOwnership: %v", err)
	}
	if !la.CanUpdate || !la.CanDelete {
		t.Errorf("member must act on their own link, got %+v", la)
	}
}

func TestRequireLinkOwnership_MemberForeignLink_NoError(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	member := env.seedUser(t, "member@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, member.ID, ws.ID, "member")

	ctx := context.Background()
	link, err := env.Links.Create(ctx, ws.ID, "theirs", "https://example.com", "", "", owner.ID)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	// The resolver reports capabilities; it does not throw on denial.
	la, err := env.Guard.RequireLinkOwnership(ctx, member.ID, link.ID, "")
	if err != nil {
		t.Fatalf("RequireLinkOwnership: %v", err)
	}
	if la.CanUpdate || la.CanDelete {
		t.Errorf("member must not act on someone else's link, got %+v", la)
	}
}

func TestRequireLinkOwnership_AdminOwnerlessLink(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	admin := env.seedUser(t, "admin@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, admin.ID, ws.ID, "admin")

	ctx := context.Background()
	// Imported link with no recorded creator.
	link, err := env.Links.Create(ctx, ws.ID, "imported", "https://example.com", "", "", "")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	la, err := env.Guard.RequireLinkOwnership(ctx, admin.ID, link.ID, "")
	if err != nil {
		t.Fatalf("RequireLinkOwnership: %v", err)
	}
	if !la.CanUpdate || !la.CanDelete {
		t.Errorf("absent ownership must not hurt an admin, got %+v", la)
	}
}

func TestRequireLinkOwnership_WorkspaceScopeMismatch(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	wsA := env.seedWorkspace(t, "acme", owner.ID)
	wsB := env.seedWorkspace(t, "globex", owner.ID)

	ctx := context.Background()
	link, err := env.Links.Create(ctx, wsA.ID, "scoped", "https://example.com", "", "", owner.ID)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	// Scoping to the wrong workspace reads as NOT_FOUND, not FORBIDDEN.
	_, err = env.Guard.RequireLinkOwnership(ctx, owner.ID, link.ID, wsB.ID)
	wantAuthzError(t, err, authz.CodeNotFound, "Link not found")
}

func TestRequireMemberManagement_AdminCannotRemoveAdmin(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	adminA := env.seedUser(t, "admin-a@example.com")
	adminB := env.seedUser(t, "admin-b@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, adminA.ID, ws.ID, "admin")
	env.addMember(t, adminB.ID, ws.ID, "admin")

	_, err := env.Guard.RequireMemberManagementPermission(context.Background(), adminA.ID, ws.ID, adminB.ID, authz.ActionRemove)
	wantAuthzError(t, err, authz.CodeForbidden, "You don't have permission to remove this member")
}

func TestRequireMemberManagement_OwnerRemovesAdmin(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	admin := env.seedUser(t, "admin@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)
	env.addMember(t, admin.ID, ws.ID, "admin")

	mm, err := env.Guard.RequireMemberManagementPermission(context.Background(), owner.ID, ws.ID, admin.ID, authz.ActionRemove)
	if err != nil {
		t.Fatalf("RequireMemberManagementPermission: %v", err)
	}
	if mm.ActorRole != permissions.RoleOwner || mm.TargetRole != permissions.RoleAdmin {
		t.Errorf("roles = %+v, want owner acting on admin", mm)
	}
}

func TestRequireMemberManagement_TargetNotMember(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	outsider := env.seedUser(t, "outsider@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)

	_, err := env.Guard.RequireMemberManagementPermission(context.Background(), owner.ID, ws.ID, outsider.ID, authz.ActionRemove)
	wantAuthzError(t, err, authz.CodeNotFound, "Target user is not a member of this workspace")
}

func TestRequireMemberManagement_ChangeRole(t *testing.T) {
	env := newGuardEnv(t)
	ownerA := env.seedUser(t, "owner-a@example.com")
	ownerB := env.seedUser(t, "owner-b@example.com")
	admin := env.seedUser(t, "admin@example.com")
	ws := env.seedWorkspace(t, "acme", ownerA.ID)
	env.addMember(t, ownerB.ID, ws.ID, "owner")
	env.addMember(t, admin.ID, ws.ID, "admin")

	ctx := context.Background()
	if _, err := env.Guard.RequireMemberManagementPermission(ctx, ownerA.ID, ws.ID, admin.ID, authz.ActionChangeRole); err != nil {
		t.Fatalf("owner changing an admin's role should pass: %v", err)
	}

	// No demotion path between owners.
	_, err := env.Guard.RequireMemberManagementPermission(ctx, ownerA.ID, ws.ID, ownerB.ID, authz.ActionChangeRole)
	wantAuthzError(t, err, authz.CodeForbidden, "Only workspace owners can change member roles")

	// Admins never change roles.
	_, err = env.Guard.RequireMemberManagementPermission(ctx, admin.ID, ws.ID, ownerB.ID, authz.ActionChangeRole)
	wantAuthzError(t, err, authz.CodeForbidden, "Only workspace owners can change member roles")
}

func TestGetMembership_NilOnAbsence(t *testing.T) {
	env := newGuardEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	stranger := env.seedUser(t, "stranger@example.com")
	ws := env.seedWorkspace(t, "acme", owner.ID)

	m, err := env.Guard.GetMembership(context.Background(), stranger.ID, ws.ID)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if m != nil {
		t.Errorf("membership = %+v, want nil", m)
	}
}
