// Governing: SPEC-0003 REQ "Workspace Roles", ADR-0011
package permissions

// Role is a workspace-scoped role. Every membership carries exactly one.
type Role string

const (
	// RoleNone is the zero value: no membership, no permissions. It is
	// never stored; it only appears in evaluator contexts.
	RoleNone Role = ""

	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// IsValid reports whether r is one of the assignable roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// roleImplies is the privilege order as an explicit lookup table:
// owner ≥ admin ≥ member. This ordering is about rank only — the
// permission sets in permission.go are defined independently and are
// NOT derived from it.
var roleImplies = map[Role]map[Role]bool{
	RoleOwner:  {RoleOwner: true, RoleAdmin: true, RoleMember: true},
	RoleAdmin:  {RoleAdmin: true, RoleMember: true},
	RoleMember: {RoleMember: true},
}

// AtLeast reports whether r carries at least the rank of other.
// Unknown roles rank below everything.
func (r Role) AtLeast(other Role) bool {
	return roleImplies[r][other]
}
