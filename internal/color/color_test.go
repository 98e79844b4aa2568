package color

import "testing"

func TestIsLight(t *testing.T) {
	tests := []struct {
		hex  string
		want bool
	}{
		{"#FFFFFF", true},
		{"#000000", false},
		{"#aa9d9d", false}, // luminance ~0.42
		{"#ffff00", true},  // yellow is bright
		{"#0000ff", false}, // pure blue carries little luminance
		{"FFFFFF", true},   // hash optional
		{"#fff", true},     // 3-digit form
		{"#000", false},
		{"  #ffffff  ", true}, // surrounding whitespace tolerated
		{"", false},           // absent color defaults to dark
		{"#12", false},        // too short
		{"#1234567", false},   // too long
		{"#zzzzzz", false},    // not hex
		{"not a color", false},
	}

	for _, tt := range tests {
		if got := IsLight(tt.hex); got != tt.want {
			t.Errorf("IsLight(%q) = %v, want %v", tt.hex, got, tt.want)
		}
	}
}
