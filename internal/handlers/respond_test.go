package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, 404, "Page not found")

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Page not found" {
		t.Errorf("error = %q, want %q", body["error"], "Page not found")
	}
}

func TestValidateRequest(t *testing.T) {
	type registerShape struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	if msg, ok := validateRequest(registerShape{Email: "ana@example.com", Password: "longenough"}); !ok {
		t.Errorf("valid request rejected: %q", msg)
	}

	msg, ok := validateRequest(registerShape{Email: "not-an-email", Password: "short"})
	if ok {
		t.Fatal("invalid request accepted")
	}
	if !strings.Contains(msg, "Email") || !strings.Contains(msg, "Password") {
		t.Errorf("message %q does not name the offending fields", msg)
	}
}
