// Governing: SPEC-0003 REQ "Policy Predicates", ADR-0011
//
// Pure predicates over the static policy table. Everything here is a total
// function: unknown roles, unknown tokens, and absent ownership all resolve
// to false rather than an error, so callers never need a failure path for
// the lookup itself.
package permissions

// Context is the ephemeral value carried through one authorization check.
// It is reconstructed from a fresh membership lookup on every check and
// never persisted.
type Context struct {
	Role        Role
	UserID      string
	WorkspaceID string
}

// HasPermission reports whether the context's role holds p.
func HasPermission(ctx Context, p Permission) bool {
	return rolePermissions[ctx.Role][p]
}

// HasAnyPermission reports whether the role holds at least one of perms.
// An empty list is false.
func HasAnyPermission(ctx Context, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(ctx, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role holds every one of perms.
// An empty list is vacuously true.
func HasAllPermissions(ctx Context, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(ctx, p) {
			return false
		}
	}
	return true
}

// removableBy is a pairwise relation, not derivable from the permission
// sets: the answer depends on both roles at once. Owners are never
// removable, by anyone.
var removableBy = map[Role]map[Role]bool{
	RoleOwner: {RoleAdmin: true, RoleMember: true},
	RoleAdmin: {RoleMember: true},
}

// CanRemoveMember reports whether acting may remove a member holding target.
func CanRemoveMember(acting, target Role) bool {
	return removableBy[acting][target]
}

// CanChangeRole reports whether acting may change target's role. Only
// owners change roles, and no owner can change another owner's role —
// there is no demotion or transfer path in this model.
func CanChangeRole(acting, target Role) bool {
	return acting == RoleOwner && target != RoleOwner && target.IsValid()
}

// canActOnLink is the ownership rule shared by link update and delete:
// admin and owner act on any link, including links with no recorded
// creator; a member acts only on links they created. An empty createdBy
// never satisfies the member case — a member cannot claim an ownerless
// link.
func canActOnLink(role Role, createdBy, userID string) bool {
	if role.AtLeast(RoleAdmin) {
		return true
	}
	if role != RoleMember {
		return false
	}
	return createdBy != "" && createdBy == userID
}

// CanUpdateLink reports whether role/userID may update a link created by
// createdBy (empty when the creator is unknown).
func CanUpdateLink(role Role, createdBy, userID string) bool {
	return canActOnLink(role, createdBy, userID)
}

// CanDeleteLink reports whether role/userID may delete a link created by
// createdBy.
func CanDeleteLink(role Role, createdBy, userID string) bool {
	return canActOnLink(role, createdBy, userID)
}

// CanManageWorkspace reports whether role may change workspace settings.
func CanManageWorkspace(role Role) bool {
	return role.AtLeast(RoleAdmin)
}

// CanInviteMembers reports whether role may invite new members.
func CanInviteMembers(role Role) bool {
	return role.AtLeast(RoleAdmin)
}

// CanPerformBulkOperations reports whether role may run bulk link
// operations.
func CanPerformBulkOperations(role Role) bool {
	return role.AtLeast(RoleAdmin)
}
