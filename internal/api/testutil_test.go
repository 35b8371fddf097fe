package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/linkdeck/linkdeck/internal/api"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/linkdeck/linkdeck/internal/testutil"
)

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router          http.Handler
	WorkspaceStore  *store.WorkspaceStore
	MembershipStore *store.MembershipStore
	LinkStore       *store.LinkStore
	TagStore        *store.TagStore
	UserStore       *store.UserStore
	TokenStore      *auth.SQLTokenStore
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	ws := store.NewWorkspaceStore(db)
	ms := store.NewMembershipStore(db)
	ls := store.NewLinkStore(db)
	tags := store.NewTagStore(db)
	us := store.NewUserStore(db)
	ts := auth.NewSQLTokenStore(db)

	guard := authz.NewGuard(ms, ls)
	bearerMW := auth.NewBearerTokenMiddleware(ts, us, nil)

	deps := api.Deps{
		BearerAuth:      bearerMW,
		Guard:           guard,
		WorkspaceStore:  ws,
		MembershipStore: ms,
		LinkStore:       ls,
		TagStore:        tags,
		UserStore:       us,
		TokenStore:      ts,
	}

	router := api.NewAPIRouter(deps)
	return &testEnv{
		Router:          router,
		WorkspaceStore:  ws,
		MembershipStore: ms,
		LinkStore:       ls,
		TagStore:        tags,
		UserStore:       us,
		TokenStore:      ts,
	}
}

// seedUser creates a user and returns the user record.
func seedUser(t *testing.T, env *testEnv, email string) *store.User {
	t.Helper()
	u, _, err := env.UserStore.Upsert(context.Background(), "test", "sub-"+email, email, "Test User")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedWorkspace creates a workspace whose creator becomes its owner.
func seedWorkspace(t *testing.T, env *testEnv, slug, ownerID string) *store.Workspace {
	t.Helper()
	ws, err := env.WorkspaceStore.Create(context.Background(), slug, slug, ownerID)
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	return ws
}

// addMember adds an existing user to a workspace with the given role.
func addMember(t *testing.T, env *testEnv, userID, workspaceID, role string) {
	t.Helper()
	if _, err := env.MembershipStore.Add(context.Background(), userID, workspaceID, role); err != nil {
		t.Fatalf("add member: %v", err)
	}
}

// seedToken creates a real API token for a user and returns the plaintext Bearer value.
func seedToken(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	_, err = env.TokenStore.Create(context.Background(), userID, "test-token", hash, nil)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return plaintext
}

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
