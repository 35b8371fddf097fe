package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/testutil"
)

type routerTestEnv struct {
	router   http.Handler
	sessions *scs.SessionManager
	ws       *store.WorkspaceStore
	userID   string
}

// newRouterTestEnv assembles the full router against an in-memory DB with
// one user who owns one workspace.
func newRouterTestEnv(t *testing.T) *routerTestEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	us := store.NewUserStore(db)
	ws := store.NewWorkspaceStore(db)
	ms := store.NewMembershipStore(db)
	ls := store.NewLinkStore(db)
	tags := store.NewTagStore(db)
	tokens := auth.NewSQLTokenStore(db)
	sm := auth.NewSessionManager(db, "sqlite3", time.Hour, false)

	u, _, err := us.Upsert(context.Background(), "test", "sub1", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := ws.Create(context.Background(), "personal", "Personal", u.ID); err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	router := NewRouter(Deps{
		SessionManager:  sm,
		AuthHandlers:    auth.NewHandlers(nil, sm, us, ws, false),
		AuthMiddleware:  auth.NewMiddleware(sm, us),
		Guard:           authz.NewGuard(ms, ls),
		WorkspaceStore:  ws,
		MembershipStore: ms,
		LinkStore:       ls,
		TagStore:        tags,
		UserStore:       us,
		TokenStore:      tokens,
	})

	return &routerTestEnv{router: router, sessions: sm, ws: ws, userID: u.ID}
}

// login opens a session for the user and returns the cookie to replay.
func (e *routerTestEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	h := e.sessions.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.sessions.Put(r.Context(), auth.SessionUserIDKey, e.userID)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/callback", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login wrote no session cookie")
	}
	return cookies[0]
}

func TestHome_Unauthenticated_RedirectsToLogin(t *testing.T) {
	env := newRouterTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/auth/login") {
		t.Errorf("redirect location = %q, want /auth/login...", loc)
	}
}

func TestHome_SessionShowsUserAndWorkspaces(t *testing.T) {
	env := newRouterTestEnv(t)
	cookie := env.login(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body struct {
		UserID     string `json:"user_id"`
		Email      string `json:"email"`
		Workspaces []struct {
			Slug string `json:"slug"`
		} `json:"workspaces"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.UserID != env.userID || body.Email != "alice@example.com" {
		t.Errorf("user = %s/%s, want %s/alice@example.com", body.UserID, body.Email, env.userID)
	}
	if len(body.Workspaces) != 1 || body.Workspaces[0].Slug != "personal" {
		t.Errorf("workspaces = %+v, want [personal]", body.Workspaces)
	}
}

// A fresh login has no API token yet; the session cookie alone must be
// enough to mint the first one, and the minted token must then work as a
// bearer credential.
func TestTokenBootstrap_SessionMintsFirstToken(t *testing.T) {
	env := newRouterTestEnv(t)
	cookie := env.login(t)

	req := httptest.NewRequest("POST", "/api/v1/tokens", strings.NewReader(`{"name":"cli"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create token status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if !strings.HasPrefix(created.Token, "ld_") {
		t.Fatalf("token = %q, want ld_ prefix", created.Token)
	}

	// The minted token authenticates on its own, no cookie attached.
	req = httptest.NewRequest("GET", "/api/v1/workspaces", nil)
	req.Header.Set("Authorization", "Bearer "+created.Token)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("bearer request status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestAPI_NoCredentials_Unauthorized(t *testing.T) {
	env := newRouterTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/workspaces", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
