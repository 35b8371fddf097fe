// Governing: SPEC-0001 REQ "Short Link Resolution", ADR-0001
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/metrics"
	"github.com/linkdeck/linkdeck/internal/store"
)

// ResolveHandler handles short link slug resolution and redirection.
type ResolveHandler struct {
	workspaces *store.WorkspaceStore
	links      *store.LinkStore
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(ws *store.WorkspaceStore, ls *store.LinkStore) *ResolveHandler {
	return &ResolveHandler{workspaces: ws, links: ls}
}

// Resolve looks up /{workspace}/{slug} and redirects to the target URL.
// Soft-deleted workspaces resolve nothing; their links 404 along with them.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	wsSlug := chi.URLParam(r, "workspace")
	slug := chi.URLParam(r, "slug")

	ws, err := h.workspaces.GetBySlug(r.Context(), wsSlug)
	if err != nil {
		h.notFound(w, r, start)
		return
	}

	link, err := h.links.GetBySlug(r.Context(), ws.ID, slug)
	if err != nil {
		h.notFound(w, r, start)
		return
	}

	metrics.RedirectsTotal.WithLabelValues(strconv.Itoa(http.StatusFound)).Inc()
	metrics.RedirectDuration.Observe(time.Since(start).Seconds())
	http.Redirect(w, r, link.URL, http.StatusFound)
}

func (h *ResolveHandler) notFound(w http.ResponseWriter, r *http.Request, start time.Time) {
	metrics.RedirectsTotal.WithLabelValues(strconv.Itoa(http.StatusNotFound)).Inc()
	metrics.RedirectDuration.Observe(time.Since(start).Seconds())
	http.NotFound(w, r)
}
