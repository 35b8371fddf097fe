// Governing: SPEC-0001 REQ "Session Authentication", ADR-0003
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/store"
)

// HomeHandler serves the post-login landing at /. The dashboard proper is
// an external app; this endpoint tells a logged-in browser who it is and
// which workspaces it can enter.
type HomeHandler struct {
	workspaces *store.WorkspaceStore
}

func NewHomeHandler(ws *store.WorkspaceStore) *HomeHandler {
	return &HomeHandler{workspaces: ws}
}

type homeWorkspace struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type homeResponse struct {
	UserID      string          `json:"user_id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
	Workspaces  []homeWorkspace `json:"workspaces"`
}

// Index renders the landing payload. Runs behind RequireAuth, so the user
// is always present in context here.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	list, err := h.workspaces.ListForUser(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := homeResponse{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Workspaces:  make([]homeWorkspace, 0, len(list)),
	}
	for _, ws := range list {
		resp.Workspaces = append(resp.Workspaces, homeWorkspace{ID: ws.ID, Slug: ws.Slug, Name: ws.Name})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
