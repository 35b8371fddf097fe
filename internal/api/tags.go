// Governing: SPEC-0005 REQ "Tag Resource", ADR-0008
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/permissions"
	"github.com/linkdeck/linkdeck/internal/store"
)

// tagsAPIHandler provides REST handlers for workspace tags.
type tagsAPIHandler struct {
	guard *authz.Guard
	tags  *store.TagStore
}

// registerTagRoutes registers tag routes on r.
func registerTagRoutes(r chi.Router, guard *authz.Guard, ts *store.TagStore) {
	h := &tagsAPIHandler{guard: guard, tags: ts}
	r.Get("/workspaces/{id}/tags", h.List)
	r.Post("/workspaces/{id}/tags", h.Create)
}

// List returns the tags in a workspace. Any member may list.
// GET /api/v1/workspaces/{id}/tags
//
// @Summary      List tags
// @Tags         Tags
// @Produce      json
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  TagListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/tags [get]
func (h *tagsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
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

	tags, err := h.tags.ListByWorkspace(r.Context(), wsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := TagListResponse{Tags: make([]TagResponse, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, TagResponse{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create upserts a tag by name. Requires tags:manage.
// POST /api/v1/workspaces/{id}/tags
//
// @Summary      Create a tag
// @Tags         Tags
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Workspace ID"
// @Param        body  body      CreateTagRequest  true  "Tag to create"
// @Success      201   {object}  TagResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/tags [post]
func (h *tagsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	if _, err := h.guard.RequirePermission(r.Context(), user.ID, wsID, permissions.PermTagsManage); err != nil {
		writeGuardError(w, err)
		return
	}

	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
		return
	}

	tag, err := h.tags.Upsert(r.Context(), wsID, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, TagResponse{ID: tag.ID, Name: tag.Name})
}
