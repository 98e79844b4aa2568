package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"groovetree/backend/internal/auth"
)

func sessionRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/page/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	return req
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, ""))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran with an invalid token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, "not-a-jwt"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthPassesValidSession(t *testing.T) {
	token, err := auth.GenerateToken("user-42", "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *auth.Claims
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, token))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got == nil {
		t.Fatal("claims missing from request context")
	}
	if got.UserID != "user-42" {
		t.Errorf("UserID = %q, want user-42", got.UserID)
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	called := false
	handler := OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			t.Errorf("anonymous request carries claims for %q", claims.UserID)
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, ""))

	if !called {
		t.Error("handler was not invoked")
	}
}

func TestOptionalAuthResolvesSession(t *testing.T) {
	token, err := auth.GenerateToken("user-7", "bea@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *auth.Claims
	handler := OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, token))

	if got == nil {
		t.Fatal("claims missing from request context")
	}
	if got.Email != "bea@example.com" {
		t.Errorf("Email = %q, want bea@example.com", got.Email)
	}
}
