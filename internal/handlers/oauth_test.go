package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"groovetree/backend/internal/config"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"login", ModeLogin, true},
		{"signup", ModeSignup, true},
		{"", "", false},
		{"Login", "", false},
		{"delete", "", false},
	}

	for _, tt := range tests {
		got, ok := parseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseMode(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func callbackRequest(nonce, state string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/oauth/google/callback?"+url.Values{
		"state": {state},
		"code":  {"abc"},
	}.Encode(), nil)
	if nonce != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: nonce})
	}
	return req
}

func TestVerifyState(t *testing.T) {
	h := NewOAuthHandler(nil, &config.Config{})

	tests := []struct {
		name  string
		nonce string
		state string
		want  Mode
		ok    bool
	}{
		{"login round trip", "n0nce", "n0nce.login", ModeLogin, true},
		{"signup round trip", "n0nce", "n0nce.signup", ModeSignup, true},
		{"missing cookie", "", "n0nce.login", "", false},
		{"nonce mismatch", "other", "n0nce.login", "", false},
		{"no separator", "n0nce", "n0nce", "", false},
		{"bad mode", "n0nce", "n0nce.admin", "", false},
		{"empty state", "n0nce", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.verifyState(callbackRequest(tt.nonce, tt.state))
			if got != tt.want || ok != tt.ok {
				t.Errorf("verifyState = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
