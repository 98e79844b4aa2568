package handlers

import "testing"

func TestPeriodInterval(t *testing.T) {
	tests := []struct {
		period string
		want   string
		ok     bool
	}{
		{"7d", "7 days", true},
		{"30d", "30 days", true},
		{"", "30 days", true},
		{"90d", "90 days", true},
		{"all", "", true},
		{"365d", "", false},
		{"7", "", false},
	}

	for _, tt := range tests {
		got, ok := periodInterval(tt.period)
		if got != tt.want || ok != tt.ok {
			t.Errorf("periodInterval(%q) = (%q, %v), want (%q, %v)", tt.period, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSharePlatforms(t *testing.T) {
	for _, p := range []string{"copy", "twitter", "facebook", "whatsapp", "linkedin"} {
		if !sharePlatforms[p] {
			t.Errorf("platform %q should be accepted", p)
		}
	}
	for _, p := range []string{"", "myspace", "Copy"} {
		if sharePlatforms[p] {
			t.Errorf("platform %q should be rejected", p)
		}
	}
}
