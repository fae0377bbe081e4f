/*
middleware.go - Session authentication and role enforcement

PURPOSE:
  Bearer-token authentication for API routes. The session middleware
  verifies the JWT, loads the claims into the request context, and
  rejects missing/expired/tampered tokens with 401. RequireAdmin gates
  the admin surface on the role claim with 403.

SEE ALSO:
  - auth/session.go: Token minting and verification
  - server.go: Where these are mounted
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/payquick/wage-engine/auth"
)

type contextKey string

const claimsKey contextKey = "session-claims"

// claimsFrom returns the verified session claims for the request.
func claimsFrom(r *http.Request) (auth.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(auth.Claims)
	return claims, ok
}

// RequireSession verifies the Authorization bearer token and stores the
// claims in the request context.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims, err := h.Signer.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid session", err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose session lacks the admin role.
// Must be mounted inside RequireSession.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok || claims.Role != auth.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
