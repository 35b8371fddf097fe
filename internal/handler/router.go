// Governing: SPEC-0001 REQ "Go HTTP Server", REQ "Short Link Resolution", ADR-0001
// Governing: SPEC-0005 REQ "API Router Mounting", ADR-0008
// Governing: SPEC-0007 REQ "Swagger UI Endpoint", ADR-0010
// Governing: SPEC-0008 REQ "Prometheus Metrics Endpoint", ADR-0014
package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/linkdeck/linkdeck/docs/swagger"
	"github.com/linkdeck/linkdeck/internal/api"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/store"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager  *scs.SessionManager
	AuthHandlers    *auth.Handlers
	AuthMiddleware  *auth.Middleware
	Guard           *authz.Guard
	WorkspaceStore  *store.WorkspaceStore
	MembershipStore *store.MembershipStore
	LinkStore       *store.LinkStore
	TagStore        *store.TagStore
	UserStore       *store.UserStore
	TokenStore      auth.TokenStore
}

// NewRouter assembles the full chi router with all middleware and routes.
// Named routes are registered before the workspace/slug catch-all, so
// reserved prefixes take precedence over redirects.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(deps.SessionManager.LoadAndSave)

	// Auth routes (no auth required)
	r.Get("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/callback", deps.AuthHandlers.Callback)
	r.Post("/auth/logout", deps.AuthHandlers.Logout)

	// Post-login landing — the OIDC callback redirects here. Session-only;
	// unauthenticated browsers are bounced to /auth/login.
	home := NewHomeHandler(deps.WorkspaceStore)
	r.With(deps.AuthMiddleware.RequireAuth).Get("/", home.Index)

	// Prometheus scrape endpoint.
	// Governing: SPEC-0008 REQ "Prometheus Metrics Endpoint"
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI — no auth required; MUST be before the slug catch-all.
	// Governing: SPEC-0007 REQ "Swagger UI Endpoint"
	r.Get("/api/docs/*", httpSwagger.WrapHandler)

	// API sub-router at /api/v1 — must be before the slug catch-all.
	// Governing: SPEC-0005 REQ "API Router Mounting"
	bearerMiddleware := auth.NewBearerTokenMiddleware(deps.TokenStore, deps.UserStore, deps.AuthMiddleware)
	apiRouter := api.NewAPIRouter(api.Deps{
		BearerAuth:      bearerMiddleware,
		Guard:           deps.Guard,
		WorkspaceStore:  deps.WorkspaceStore,
		MembershipStore: deps.MembershipStore,
		LinkStore:       deps.LinkStore,
		TagStore:        deps.TagStore,
		UserStore:       deps.UserStore,
		TokenStore:      deps.TokenStore,
	})
	r.Mount("/api/v1", apiRouter)

	// Slug resolver -- catch-all, must be last. Redirects are public;
	// no session or token is required to follow a short link.
	// Governing: SPEC-0001 REQ "Short Link Resolution"
	resolver := NewResolveHandler(deps.WorkspaceStore, deps.LinkStore)
	r.Get("/{workspace}/{slug}", resolver.Resolve)

	return r
}
