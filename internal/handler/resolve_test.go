package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/testutil"
)

type resolveTestEnv struct {
	ws     *store.WorkspaceStore
	ls     *store.LinkStore
	rh     *ResolveHandler
	userID string
}

// newResolveTestEnv sets up stores and a ResolveHandler backed by an
// in-memory SQLite database with all migrations applied.
func newResolveTestEnv(t *testing.T) *resolveTestEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	ws := store.NewWorkspaceStore(db)
	ls := store.NewLinkStore(db)
	us := store.NewUserStore(db)

	u, _, err := us.Upsert(context.Background(), "test", "sub1", "test@example.com", "Test")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rh := NewResolveHandler(ws, ls)
	return &resolveTestEnv{ws: ws, ls: ls, rh: rh, userID: u.ID}
}

// seedWorkspace creates a workspace owned by the test user.
func (e *resolveTestEnv) seedWorkspace(t *testing.T, slug string) *store.Workspace {
	t.Helper()
	ws, err := e.ws.Create(context.Background(), slug, slug, e.userID)
	if err != nil {
		t.Fatalf("seed workspace %q: %v", slug, err)
	}
	return ws
}

// seedLink creates a link with the given slug and URL in a workspace.
func (e *resolveTestEnv) seedLink(t *testing.T, workspaceID, slug, url string) {
	t.Helper()
	_, err := e.ls.Create(context.Background(), workspaceID, slug, url, "", "", e.userID)
	if err != nil {
		t.Fatalf("seed link %q: %v", slug, err)
	}
}

// resolve builds a chi-routed request and records the response.
func (e *resolveTestEnv) resolve(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/{workspace}/{slug}", e.rh.Resolve)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolve_Redirect(t *testing.T) {
	env := newResolveTestEnv(t)
	ws := env.seedWorkspace(t, "acme")
	env.seedLink(t, ws.ID, "docs", "https://docs.example.com")

	w := env.resolve(t, "/acme/docs")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	loc := w.Header().Get("Location")
	if loc != "https://docs.example.com" {
		t.Errorf("Location = %q, want %q", loc, "https://docs.example.com")
	}
}

func TestResolve_UnknownWorkspace_404(t *testing.T) {
	env := newResolveTestEnv(t)

	w := env.resolve(t, "/nope/docs")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestResolve_UnknownSlug_404(t *testing.T) {
	env := newResolveTestEnv(t)
	env.seedWorkspace(t, "acme")

	w := env.resolve(t, "/acme/nonexistent")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestResolve_SameSlugDifferentWorkspaces(t *testing.T) {
	env := newResolveTestEnv(t)
	acme := env.seedWorkspace(t, "acme")
	beta := env.seedWorkspace(t, "beta")
	env.seedLink(t, acme.ID, "docs", "https://acme.example.com")
	env.seedLink(t, beta.ID, "docs", "https://beta.example.com")

	w := env.resolve(t, "/beta/docs")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	loc := w.Header().Get("Location")
	if loc != "https://beta.example.com" {
		t.Errorf("Location = %q, want %q", loc, "https://beta.example.com")
	}
}

func TestResolve_DeletedWorkspace_404(t *testing.T) {
	env := newResolveTestEnv(t)
	ws := env.seedWorkspace(t, "acme")
	env.seedLink(t, ws.ID, "docs", "https://docs.example.com")

	if err := env.ws.SoftDelete(context.Background(), ws.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	w := env.resolve(t, "/acme/docs")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
