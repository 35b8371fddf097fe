// Governing: SPEC-0003 REQ "Client Capability Evaluation", ADR-0012
package permissions

// State is the lifecycle of an Evaluator:
//
//	Uninitialized → Loading → Resolved | NoAccess
//
// Resolved and NoAccess are terminal until the next SetLoading, which
// restarts the cycle (workspace switch, session change).
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateResolved
	StateNoAccess
)

// Evaluator answers permission queries for UI gating. It is advisory only:
// it mirrors the policy table over already-loaded workspace context and is
// never an enforcement point — the server guard re-checks everything.
//
// Every predicate is deny-by-default: outside Resolved they all return
// false, so a gate can never flash privileged UI while membership data is
// still loading. Callers distinguish "loading" from "no access" via
// IsLoading, not via the predicate results.
//
// An Evaluator is not safe for concurrent use; construct one per request
// or render pass.
type Evaluator struct {
	state State
	ctx   Context

	// snap memoizes the Snapshot for the current (role, userID,
	// workspaceID); any transition drops it.
	snap *Snapshot
}

// NewEvaluator returns an Evaluator in the Uninitialized state.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// State returns the current lifecycle state.
func (e *Evaluator) State() State { return e.state }

// SetLoading marks membership data as in flight. It also restarts the
// cycle from a terminal state.
func (e *Evaluator) SetLoading() {
	e.state = StateLoading
	e.ctx = Context{}
	e.snap = nil
}

// Resolve installs the membership context. A context without a valid role
// resolves to NoAccess instead.
func (e *Evaluator) Resolve(ctx Context) {
	if !ctx.Role.IsValid() {
		e.SetNoAccess()
		return
	}
	e.state = StateResolved
	e.ctx = ctx
	e.snap = nil
}

// SetNoAccess records that no workspace is selected or the user has no
// membership in it. Predicates stay false and IsLoading is false.
func (e *Evaluator) SetNoAccess() {
	e.state = StateNoAccess
	e.ctx = Context{}
	e.snap = nil
}

// IsLoading reports whether membership data is still being fetched.
func (e *Evaluator) IsLoading() bool { return e.state == StateLoading }

// Role returns the resolved role, or RoleNone outside Resolved.
func (e *Evaluator) Role() Role { return e.ctx.Role }

// HasPermission reports whether the resolved role holds p. False in every
// non-Resolved state.
func (e *Evaluator) HasPermission(p Permission) bool {
	return e.state == StateResolved && HasPermission(e.ctx, p)
}

// HasAnyPermission is the OR form of HasPermission.
func (e *Evaluator) HasAnyPermission(perms ...Permission) bool {
	return e.state == StateResolved && HasAnyPermission(e.ctx, perms...)
}

// HasAllPermissions is the AND form of HasPermission.
func (e *Evaluator) HasAllPermissions(perms ...Permission) bool {
	return e.state == StateResolved && HasAllPermissions(e.ctx, perms...)
}

// IsOwner reports whether the resolved role is owner.
func (e *Evaluator) IsOwner() bool {
	return e.state == StateResolved && e.ctx.Role == RoleOwner
}

// IsAdmin reports whether the resolved role is admin or owner. The role
// helpers are cumulative even though the permission sets are not strictly
// nested.
func (e *Evaluator) IsAdmin() bool {
	return e.state == StateResolved && e.ctx.Role.AtLeast(RoleAdmin)
}

// IsMember reports whether the resolved role is member, admin, or owner.
func (e *Evaluator) IsMember() bool {
	return e.state == StateResolved && e.ctx.Role.AtLeast(RoleMember)
}

// CanRemoveMember applies the pairwise removal rule for the resolved role.
func (e *Evaluator) CanRemoveMember(target Role) bool {
	return e.state == StateResolved && CanRemoveMember(e.ctx.Role, target)
}

// CanChangeRole applies the pairwise role-change rule for the resolved role.
func (e *Evaluator) CanChangeRole(target Role) bool {
	return e.state == StateResolved && CanChangeRole(e.ctx.Role, target)
}

// CanUpdateLink applies the ownership rule for the resolved user against a
// link created by createdBy.
func (e *Evaluator) CanUpdateLink(createdBy string) bool {
	return e.state == StateResolved && CanUpdateLink(e.ctx.Role, createdBy, e.ctx.UserID)
}

// CanDeleteLink applies the ownership rule for link deletion.
func (e *Evaluator) CanDeleteLink(createdBy string) bool {
	return e.state == StateResolved && CanDeleteLink(e.ctx.Role, createdBy, e.ctx.UserID)
}

// Snapshot is the capability object the dashboard consumes. It carries the
// full predicate surface as data so the UI never re-implements policy.
type Snapshot struct {
	Role      Role `json:"role"`
	IsLoading bool `json:"isLoading"`

	IsOwner  bool `json:"isOwner"`
	IsAdmin  bool `json:"isAdmin"`
	IsMember bool `json:"isMember"`

	CanManageWorkspace       bool `json:"canManageWorkspace"`
	CanInviteMembers         bool `json:"canInviteMembers"`
	CanPerformBulkOperations bool `json:"canPerformBulkOperations"`

	Permissions map[Permission]bool `json:"permissions"`
}

// Snapshot returns the capability object for the current state, memoized
// until the next transition. The returned Permissions map is the caller's
// to keep: it is copied out of the memo so mutating it cannot corrupt
// later snapshots.
func (e *Evaluator) Snapshot() Snapshot {
	if e.snap == nil {
		snap := Snapshot{
			Role:        e.Role(),
			IsLoading:   e.IsLoading(),
			IsOwner:     e.IsOwner(),
			IsAdmin:     e.IsAdmin(),
			IsMember:    e.IsMember(),
			Permissions: make(map[Permission]bool, len(denialMessages)),
		}
		if e.state == StateResolved {
			snap.CanManageWorkspace = CanManageWorkspace(e.ctx.Role)
			snap.CanInviteMembers = CanInviteMembers(e.ctx.Role)
			snap.CanPerformBulkOperations = CanPerformBulkOperations(e.ctx.Role)
		}
		for p := range denialMessages {
			snap.Permissions[p] = e.HasPermission(p)
		}
		e.snap = &snap
	}

	out := *e.snap
	out.Permissions = make(map[Permission]bool, len(e.snap.Permissions))
	for p, v := range e.snap.Permissions {
		out.Permissions[p] = v
	}
	return out
}
