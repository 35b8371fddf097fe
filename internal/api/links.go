// Governing: SPEC-0004 REQ "Link Ownership Rules", SPEC-0005 REQ "Links Collection", REQ "Link Resource", ADR-0008
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

// linksAPIHandler provides REST handlers for link management.
type linksAPIHandler struct {
	guard *authz.Guard
	links *store.LinkStore
	tags  *store.TagStore
}

// registerLinkRoutes registers link routes on r.
func registerLinkRoutes(r chi.Router, guard *authz.Guard, ls *store.LinkStore, ts *store.TagStore) {
	h := &linksAPIHandler{guard: guard, links: ls, tags: ts}
	r.Get("/workspaces/{id}/links", h.List)
	r.Post("/workspaces/{id}/links", h.Create)
	r.Post("/workspaces/{id}/links/bulk-delete", h.BulkDelete)
	r.Get("/workspaces/{id}/links/{lid}", h.Get)
	r.Put("/workspaces/{id}/links/{lid}", h.Update)
	r.Delete("/workspaces/{id}/links/{lid}", h.Delete)
}

// List returns the links in a workspace. Any member may list.
// GET /api/v1/workspaces/{id}/links
//
// @Summary      List links
// @Tags         Links
// @Produce      json
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  LinkListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/links [get]
func (h *linksAPIHandler) List(w http.ResponseWriter, r *http.Request) {
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

	lks, err := h.links.ListByWorkspace(r.Context(), wsID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := LinkListResponse{Links: make([]LinkResponse, 0, len(lks))}
	for _, l := range lks {
		lr, err := h.toLinkResponse(r, l)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}
		resp.Links = append(resp.Links, lr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create creates a new link with the caller recorded as its creator.
// Requires links:create.
// POST /api/v1/workspaces/{id}/links
//
// @Summary      Create a link
// @Tags         Links
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Workspace ID"
// @Param        body  body      CreateLinkRequest  true  "Link to create"
// @Success      201   {object}  LinkResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/links [post]
func (h *linksAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	if _, err := h.guard.RequirePermission(r.Context(), user.ID, wsID, permissions.PermLinksCreate); err != nil {
		writeGuardError(w, err)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required", "BAD_REQUEST")
		return
	}
	if err := links.ValidateSlug(req.Slug); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_SLUG")
		return
	}

	link, err := h.links.Create(r.Context(), wsID, req.Slug, req.URL, req.Title, req.Description, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			writeError(w, http.StatusConflict, "slug already exists", "SLUG_CONFLICT")
			return
		}
		log.Printf("api: create link %q: %v", req.Slug, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if len(req.Tags) > 0 {
		if err := h.tags.SetLinkTags(r.Context(), wsID, link.ID, req.Tags); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}
	}

	lr, err := h.toLinkResponse(r, link)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusCreated, lr)
}

// Get returns a single link. Any member may read.
// GET /api/v1/workspaces/{id}/links/{lid}
//
// @Summary      Get a link
// @Tags         Links
// @Produce      json
// @Param        id   path      string  true  "Workspace ID"
// @Param        lid  path      string  true  "Link ID"
// @Success      200  {object}  LinkResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/links/{lid} [get]
func (h *linksAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	link, err := h.links.GetByWorkspaceAndID(r.Context(), wsID, chi.URLParam(r, "lid"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	lr, err := h.toLinkResponse(r, link)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, lr)
}

// Update modifies a link's url, title, description, and tags. Slug is
// immutable. Admins and owners may edit any link; members only their own.
// PUT /api/v1/workspaces/{id}/links/{lid}
//
// @Summary      Update a link
// @Tags         Links
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Workspace ID"
// @Param        lid   path      string             true  "Link ID"
// @Param        body  body      UpdateLinkRequest  true  "Fields to update"
// @Success      200   {object}  LinkResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/links/{lid} [put]
func (h *linksAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	la, err := h.guard.RequireLinkOwnership(r.Context(), user.ID, chi.URLParam(r, "lid"), wsID)
	if err != nil {
		writeGuardError(w, err)
		return
	}
	if !la.CanUpdate {
		writeError(w, http.StatusForbidden, permissions.ErrorMessage(permissions.PermLinksUpdateOwn), "FORBIDDEN")
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required", "BAD_REQUEST")
		return
	}

	updated, err := h.links.Update(r.Context(), la.Link.ID, req.URL, req.Title, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if err := h.tags.SetLinkTags(r.Context(), wsID, la.Link.ID, req.Tags); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	lr, err := h.toLinkResponse(r, updated)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, lr)
}

// Delete removes a link. Same capability rule as Update.
// DELETE /api/v1/workspaces/{id}/links/{lid}
//
// @Summary      Delete a link
// @Tags         Links
// @Produce      json
// @Param        id   path  string  true  "Workspace ID"
// @Param        lid  path  string  true  "Link ID"
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/links/{lid} [delete]
func (h *linksAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	la, err := h.guard.RequireLinkOwnership(r.Context(), user.ID, chi.URLParam(r, "lid"), wsID)
	if err != nil {
		writeGuardError(w, err)
		return
	}
	if !la.CanDelete {
		writeError(w, http.StatusForbidden, permissions.ErrorMessage(permissions.PermLinksDeleteOwn), "FORBIDDEN")
		return
	}

	if err := h.links.Delete(r.Context(), la.Link.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete removes multiple links at once. Requires links:bulk, so
// members cannot use it even on their own links.
// POST /api/v1/workspaces/{id}/links/bulk-delete
//
// @Summary      Bulk delete links
// @Tags         Links
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Workspace ID"
// @Param        body  body      BulkDeleteRequest  true  "Link IDs to delete"
// @Success      200   {object}  BulkDeleteResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /workspaces/{id}/links/bulk-delete [post]
func (h *linksAPIHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	wsID := chi.URLParam(r, "id")
	if _, err := h.guard.RequirePermission(r.Context(), user.ID, wsID, permissions.PermLinksBulk); err != nil {
		writeGuardError(w, err)
		return
	}

	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required", "BAD_REQUEST")
		return
	}

	deleted, err := h.links.BulkDelete(r.Context(), wsID, req.IDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, BulkDeleteResponse{Deleted: deleted})
}

func (h *linksAPIHandler) toLinkResponse(r *http.Request, l *store.Link) (LinkResponse, error) {
	tags, err := h.tags.ListLinkTags(r.Context(), l.ID)
	if err != nil {
		return LinkResponse{}, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return LinkResponse{
		ID:          l.ID,
		WorkspaceID: l.WorkspaceID,
		Slug:        l.Slug,
		URL:         l.URL,
		Title:       l.Title,
		Description: l.Description,
		CreatedBy:   l.Creator(),
		Tags:        names,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}
