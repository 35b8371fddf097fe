// Governing: SPEC-0004 REQ "Server Permission Guard", SPEC-0005 REQ "Workspace Resource", ADR-0008
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/links"
	"github.com/linkdeck/linkdeck/internal/permissions"
	"github.com/linkdeck/linkdeck/internal/store"
)

// workspacesAPIHandler provides REST handlers for workspace management.
type workspacesAPIHandler struct {
	guard       *authz.Guard
	workspaces  *store.WorkspaceStore
	memberships *store.MembershipStore
}

// registerWorkspaceRoutes registers workspace routes on r.
func registerWorkspaceRoutes(r chi.Router, guard *authz.Guard, ws *store.WorkspaceStore, ms *store.MembershipStore) {
	h := &workspacesAPIHandler{guard: guard, workspaces: ws, memberships: ms}
	r.Get("/workspaces", h.List)
	r.Post("/workspaces", h.Create)
	r.Get("/workspaces/{id}", h.Get)
	r.Patch("/workspaces/{id}", h.Update)
	r.Delete("/workspaces/{id}", h.Delete)
	r.Get("/workspaces/{id}/permissions", h.Permissions)
}

// List returns the workspaces the caller belongs to.
// GET /api/v1/workspaces
//
// @Summary      List workspaces
// @Description  Returns the workspaces the caller is a member of.
// @Tags         Workspaces
// @Produce      json
// @Success      200  {object}  WorkspaceListResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces [get]
func (h *workspacesAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wss, err := h.workspaces.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := WorkspaceListResponse{Workspaces: make([]WorkspaceResponse, 0, len(wss))}
	for _, ws := range wss {
		resp.Workspaces = append(resp.Workspaces, toWorkspaceResponse(ws, ""))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create creates a workspace with the caller as its owner.
// POST /api/v1/workspaces
//
// @Summary      Create a workspace
// @Description  Creates a workspace. The caller becomes its owner.
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Param        body  body      CreateWorkspaceRequest  true  "Workspace to create"
// @Success      201   {object}  WorkspaceResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces [post]
func (h *workspacesAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
		return
	}
	if err := links.ValidateSlug(req.Slug); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_SLUG")
		return
	}

	ws, err := h.workspaces.Create(r.Context(), req.Slug, req.Name, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			writeError(w, http.StatusConflict, "slug already exists", "SLUG_CONFLICT")
			return
		}
		log.Printf("api: create workspace %q: %v", req.Slug, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, toWorkspaceResponse(ws, string(permissions.RoleOwner)))
}

// Get returns a single workspace. Members only.
// GET /api/v1/workspaces/{id}
//
// @Summary      Get a workspace
// @Tags         Workspaces
// @Produce      json
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  WorkspaceResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id} [get]
func (h *workspacesAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	access, err := h.guard.RequireWorkspaceAccess(r.Context(), user.ID, wsID)
	if err != nil {
		writeGuardError(w, err)
		return
	}

	ws, err := h.workspaces.GetByID(r.Context(), wsID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, toWorkspaceResponse(ws, string(access.Role)))
}

// Update renames a workspace. Requires workspace:update.
// PATCH /api/v1/workspaces/{id}
//
// @Summary      Update a workspace
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Workspace ID"
// @Param        body  body      UpdateWorkspaceRequest  true  "Fields to update"
// @Success      200   {object}  WorkspaceResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id} [patch]
func (h *workspacesAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	pctx, err := h.guard.RequirePermission(r.Context(), user.ID, wsID, permissions.PermWorkspaceUpdate)
	if err != nil {
		writeGuardError(w, err)
		return
	}

	var req UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
		return
	}

	ws, err := h.workspaces.Update(r.Context(), wsID, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, toWorkspaceResponse(ws, string(pctx.Role)))
}

// Delete soft-deletes a workspace. Owners only.
// DELETE /api/v1/workspaces/{id}
//
// @Summary      Delete a workspace
// @Description  Soft-deletes a workspace. Only the workspace owner may delete.
// @Tags         Workspaces
// @Produce      json
// @Param        id   path  string  true  "Workspace ID"
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id} [delete]
func (h *workspacesAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	if _, err := h.guard.RequireOwnerRole(r.Context(), user.ID, wsID); err != nil {
		writeGuardError(w, err)
		return
	}

	if err := h.workspaces.SoftDelete(r.Context(), wsID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Permissions returns the caller's resolved permission snapshot for a
// workspace. Non-members get a resolved no-access snapshot rather than
// an error, so clients can render their gated UI from one shape.
// GET /api/v1/workspaces/{id}/permissions
//
// @Summary      Get permission snapshot
// @Description  Returns the caller's role and per-permission booleans for the workspace.
// @Tags         Workspaces
// @Produce      json
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  permissions.Snapshot
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/permissions [get]
func (h *workspacesAPIHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	ev := permissions.NewEvaluator()
	ev.SetLoading()

	m, err := h.guard.GetMembership(r.Context(), user.ID, wsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	if m == nil {
		ev.SetNoAccess()
	} else {
		ev.Resolve(permissions.Context{
			Role:        permissions.Role(m.Role),
			UserID:      user.ID,
			WorkspaceID: wsID,
		})
	}

	writeJSON(w, http.StatusOK, ev.Snapshot())
}

func toWorkspaceResponse(ws *store.Workspace, role string) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        ws.ID,
		Slug:      ws.Slug,
		Name:      ws.Name,
		Role:      role,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
}
