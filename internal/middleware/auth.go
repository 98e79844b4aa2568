package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"groovetree/backend/internal/auth"
)

type contextKey int

const claimsKey contextKey = iota

// ClaimsFromContext returns the session claims attached by the auth
// middleware, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func extractClaims(r *http.Request) *auth.Claims {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := auth.ValidateToken(cookie.Value)
	if err != nil {
		// Expired or tampered tokens are treated the same as no token,
		// so callers cannot distinguish the two cases.
		return nil
	}
	return claims
}

// OptionalAuth resolves the session cookie when present. Anonymous and
// invalid-token requests proceed without claims; handlers decide what an
// anonymous caller may see.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := extractClaims(r); claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests that carry no valid session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := extractClaims(r)
		if claims == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
