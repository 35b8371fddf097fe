// Governing: SPEC-0003 REQ "Permission Vocabulary", REQ "Role Permission Sets", ADR-0011
package permissions

// Permission is an opaque token naming one fine-grained capability.
// The vocabulary is closed: adding a token is a code change, and a token
// absent from a role's grant list is denied for that role.
type Permission string

const (
	PermWorkspaceUpdate  Permission = "workspace:update"
	PermWorkspaceDelete  Permission = "workspace:delete"
	PermWorkspaceBilling Permission = "workspace:billing"

	PermMembersInvite     Permission = "members:invite"
	PermMembersRemove     Permission = "members:remove"
	PermMembersChangeRole Permission = "members:changeRole"

	PermLinksCreate    Permission = "links:create"
	PermLinksUpdate    Permission = "links:update"
	PermLinksDelete    Permission = "links:delete"
	PermLinksUpdateOwn Permission = "links:updateOwn"
	PermLinksDeleteOwn Permission = "links:deleteOwn"
	PermLinksBulk      Permission = "links:bulk"
	PermLinksImport    Permission = "links:import"

	PermTagsManage    Permission = "tags:manage"
	PermDomainsManage Permission = "domains:manage"
	PermAnalyticsView Permission = "analytics:view"
	PermUTMManage     Permission = "utm:manage"
)

// Grant lists compose upward: admin extends member, owner extends admin.
// The owner-only grants (workspace deletion, billing, role changes) are the
// deliberate exceptions that keep admin from being a full owner.
var (
	memberGrants = []Permission{
		PermLinksCreate,
		PermLinksUpdateOwn,
		PermLinksDeleteOwn,
		PermTagsManage,
		PermAnalyticsView,
		PermUTMManage,
	}

	adminGrants = compose(memberGrants, []Permission{
		PermWorkspaceUpdate,
		PermMembersInvite,
		PermMembersRemove,
		PermLinksUpdate,
		PermLinksDelete,
		PermLinksBulk,
		PermLinksImport,
		PermDomainsManage,
	})

	ownerGrants = compose(adminGrants, []Permission{
		PermWorkspaceDelete,
		PermWorkspaceBilling,
		PermMembersChangeRole,
	})
)

// rolePermissions is the policy table: process-wide, read-only after init,
// safe for unsynchronized concurrent reads. There is no mutation path;
// changing policy means changing this file.
var rolePermissions = map[Role]map[Permission]bool{
	RoleOwner:  toSet(ownerGrants),
	RoleAdmin:  toSet(adminGrants),
	RoleMember: toSet(memberGrants),
}

func compose(sets ...[]Permission) []Permission {
	var out []Permission
	seen := map[Permission]bool{}
	for _, set := range sets {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func toSet(perms []Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// denialMessages maps each token to the user-facing message shown when the
// token is denied. Messages are safe to surface verbatim.
var denialMessages = map[Permission]string{
	PermWorkspaceUpdate:   "You don't have permission to update workspace settings",
	PermWorkspaceDelete:   "Only workspace owners can delete workspaces",
	PermWorkspaceBilling:  "Only workspace owners can manage billing",
	PermMembersInvite:     "You don't have permission to invite members",
	PermMembersRemove:     "You don't have permission to remove members",
	PermMembersChangeRole: "Only workspace owners can change member roles",
	PermLinksCreate:       "You don't have permission to create links",
	PermLinksUpdate:       "You don't have permission to update links in this workspace",
	PermLinksDelete:       "You don't have permission to delete links in this workspace",
	PermLinksUpdateOwn:    "You can only update links you created",
	PermLinksDeleteOwn:    "You can only delete links you created",
	PermLinksBulk:         "You don't have permission to perform bulk operations",
	PermLinksImport:       "You don't have permission to import links",
	PermTagsManage:        "You don't have permission to manage tags",
	PermDomainsManage:     "You don't have permission to manage custom domains",
	PermAnalyticsView:     "You don't have permission to view analytics",
	PermUTMManage:         "You don't have permission to manage UTM templates",
}

// genericDenial is returned for tokens the message table does not know.
// New tokens deny with this fallback until a specific message is added.
const genericDenial = "Insufficient permissions"

// ErrorMessage returns the user-facing denial message for p.
func ErrorMessage(p Permission) string {
	if msg, ok := denialMessages[p]; ok {
		return msg
	}
	return genericDenial
}
