// Governing: SPEC-0006 REQ "Bearer Token Middleware", ADR-0009
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/linkdeck/linkdeck/internal/store"
)

// BearerTokenMiddleware authenticates API requests. A Bearer token is the
// primary credential; when no Authorization header is present it falls
// back to the browser session, so a freshly logged-in user can call the
// API (and mint their first token) before any token exists.
type BearerTokenMiddleware struct {
	tokens  TokenStore
	users   *store.UserStore
	session *Middleware
}

// NewBearerTokenMiddleware creates a new BearerTokenMiddleware. session
// may be nil, which disables the cookie fallback (token-only auth).
func NewBearerTokenMiddleware(ts TokenStore, us *store.UserStore, session *Middleware) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{tokens: ts, users: us, session: session}
}

// Authenticate is an http.Handler middleware that extracts and validates a Bearer token.
// WHEN valid: injects the token owner's *store.User into context and fires an async last_used_at update.
// WHEN no Authorization header: falls back to the session cookie.
// WHEN invalid/missing/expired/revoked: returns 401 with {"error": "unauthorized"}.
func (m *BearerTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			// No token presented at all — try the session. A request
			// that DOES present a token never falls back: a bad token
			// is rejected outright.
			if m.session != nil {
				if user := m.session.SessionUser(r); user != nil {
					ctx := context.WithValue(r.Context(), UserContextKey, user)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			writeUnauthorized(w)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeUnauthorized(w)
			return
		}
		plaintext := strings.TrimPrefix(authHeader, "Bearer ")
		if plaintext == "" {
			writeUnauthorized(w)
			return
		}

		hash := HashToken(plaintext)
		rec, err := m.tokens.GetByHash(r.Context(), hash)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		if rec.RevokedAt.Valid {
			writeUnauthorized(w)
			return
		}

		if rec.ExpiresAt.Valid && rec.ExpiresAt.Time.Before(time.Now()) {
			writeUnauthorized(w)
			return
		}

		user, err := m.users.GetByID(r.Context(), rec.UserID)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		// Update last_used_at asynchronously to avoid write overhead on every read.
		// Governing: ADR-0009 (async last_used_at)
		go m.tokens.UpdateLastUsed(context.Background(), rec.ID)

		// Inject user into context using the same key as session-based auth.
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeUnauthorized writes a 401 JSON response with {"error": "unauthorized"}.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
