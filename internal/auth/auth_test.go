package auth

import (
	"net/http/httptest"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword accepted the wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-123", "joao@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Email != "joao@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "joao@example.com")
	}
	if claims.Issuer != "groovetree" {
		t.Errorf("Issuer = %q, want groovetree", claims.Issuer)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := ValidateToken(tok); err == nil {
			t.Errorf("ValidateToken(%q) succeeded, want error", tok)
		}
	}
}

func TestSessionCookieLifecycle(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", false)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookie || c.Value != "tok" {
		t.Errorf("cookie = %s=%s, want %s=tok", c.Name, c.Value, SessionCookie)
	}
	if !c.HttpOnly {
		t.Error("session cookie must be http-only")
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	c = rec.Result().Cookies()[0]
	if c.Value != "" {
		t.Errorf("cleared cookie still has value %q", c.Value)
	}
}

func TestGenerateSecureTokenUnique(t *testing.T) {
	a, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken: %v", err)
	}
	b, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken: %v", err)
	}
	if a == b {
		t.Error("two generated tokens are identical")
	}
}
