// Governing: SPEC-0005 REQ "API Router Mounting", ADR-0008
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	BearerAuth      *auth.BearerTokenMiddleware
	Guard           *authz.Guard
	WorkspaceStore  *store.WorkspaceStore
	MembershipStore *store.MembershipStore
	LinkStore       *store.LinkStore
	TagStore        *store.TagStore
	UserStore       *store.UserStore
	TokenStore      auth.TokenStore
}

// NewAPIRouter creates a chi sub-router for /api/v1.
// All routes require Bearer token authentication and return application/json.
// Governing: SPEC-0005 REQ "API Router Mounting"
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	// All API responses are JSON.
	r.Use(jsonContentType)

	// Bearer token authentication on all API routes.
	r.Use(deps.BearerAuth.Authenticate)

	registerWorkspaceRoutes(r, deps.Guard, deps.WorkspaceStore, deps.MembershipStore)
	registerMemberRoutes(r, deps.Guard, deps.MembershipStore, deps.UserStore)
	registerLinkRoutes(r, deps.Guard, deps.LinkStore, deps.TagStore)
	registerTagRoutes(r, deps.Guard, deps.TagStore)
	registerTokenRoutes(r, deps.TokenStore)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
