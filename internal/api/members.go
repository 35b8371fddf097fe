// Governing: SPEC-0004 REQ "Member Management Relations", SPEC-0005 REQ "Member Resource", ADR-0008
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/permissions"
	"github.com/linkdeck/linkdeck/internal/store"
)

// membersAPIHandler provides REST handlers for workspace membership.
type membersAPIHandler struct {
	guard       *authz.Guard
	memberships *store.MembershipStore
	users       *store.UserStore
}

// registerMemberRoutes registers member management routes on r.
func registerMemberRoutes(r chi.Router, guard *authz.Guard, ms *store.MembershipStore, us *store.UserStore) {
	h := &membersAPIHandler{guard: guard, memberships: ms, users: us}
	r.Get("/workspaces/{id}/members", h.List)
	r.Post("/workspaces/{id}/members", h.Invite)
	r.Patch("/workspaces/{id}/members/{uid}", h.UpdateRole)
	r.Delete("/workspaces/{id}/members/{uid}", h.Remove)
}

// List returns the members of a workspace. Any member may list.
// GET /api/v1/workspaces/{id}/members
//
// @Summary      List members
// @Tags         Members
// @Produce      json
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  MemberListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/members [get]
func (h *membersAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	if _, err := h.guard.RequireWorkspaceAccess(r.Context(), user.ID, wsID); err != nil {
		writeGuardError(w, err)
		return
	}

	members, err := h.memberships.ListByWorkspace(r.Context(), wsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := MemberListResponse{Members: make([]MemberResponse, 0, len(members))}
	for _, m := range members {
		resp.Members = append(resp.Members, MemberResponse{
			UserID:      m.UserID,
			Email:       m.Email,
			DisplayName: m.DisplayName,
			Role:        m.Role,
			JoinedAt:    m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Invite adds an existing user to the workspace by email. Requires
// members:invite. New members join as "member" or "admin"; a workspace
// gains owners only at creation.
// POST /api/v1/workspaces/{id}/members
//
// @Summary      Invite a member
// @Tags         Members
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Workspace ID"
// @Param        body  body      InviteMemberRequest  true  "User to invite"
// @Success      201   {object}  MemberResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/members [post]
func (h *membersAPIHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	if _, err := h.guard.RequirePermission(r.Context(), user.ID, wsID, permissions.PermMembersInvite); err != nil {
		writeGuardError(w, err)
		return
	}

	var req InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required", "BAD_REQUEST")
		return
	}
	role := req.Role
	if role == "" {
		role = string(permissions.RoleMember)
	}
	if role != string(permissions.RoleMember) && role != string(permissions.RoleAdmin) {
		writeError(w, http.StatusBadRequest, "role must be member or admin", "INVALID_ROLE")
		return
	}

	invitee, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	m, err := h.memberships.Add(r.Context(), invitee.ID, wsID, role)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateMember) {
			writeError(w, http.StatusConflict, "user is already a member", "DUPLICATE_MEMBER")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, MemberResponse{
		UserID:      m.UserID,
		Email:       invitee.Email,
		DisplayName: invitee.DisplayName,
		Role:        m.Role,
		JoinedAt:    m.CreatedAt,
	})
}

// UpdateRole changes a member's role. Owners only, and never on another owner.
// PATCH /api/v1/workspaces/{id}/members/{uid}
//
// @Summary      Change a member's role
// @Tags         Members
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Workspace ID"
// @Param        uid   path      string                   true  "Target user ID"
// @Param        body  body      UpdateMemberRoleRequest  true  "New role"
// @Success      200   {object}  MemberResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/members/{uid} [patch]
func (h *membersAPIHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "uid")

	var req UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.Role != string(permissions.RoleMember) && req.Role != string(permissions.RoleAdmin) {
		writeError(w, http.StatusBadRequest, "role must be member or admin", "INVALID_ROLE")
		return
	}

	if _, err := h.guard.RequireMemberManagementPermission(r.Context(), user.ID, wsID, targetID, authz.ActionChangeRole); err != nil {
		writeGuardError(w, err)
		return
	}

	m, err := h.memberships.UpdateRole(r.Context(), targetID, wsID, req.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, MemberResponse{
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.CreatedAt,
	})
}

// Remove removes a member from the workspace, subject to the pairwise
// removal rules (admins cannot remove admins or owners).
// DELETE /api/v1/workspaces/{id}/members/{uid}
//
// @Summary      Remove a member
// @Tags         Members
// @Produce      json
// @Param        id   path  string  true  "Workspace ID"
// @Param        uid  path  string  true  "Target user ID"
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/members/{uid} [delete]
func (h *membersAPIHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "uid")

	if _, err := h.guard.RequireMemberManagementPermission(r.Context(), user.ID, wsID, targetID, authz.ActionRemove); err != nil {
		writeGuardError(w, err)
		return
	}

	if err := h.memberships.Remove(r.Context(), targetID, wsID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
