package handlers

import "testing"

func TestSlugPattern(t *testing.T) {
	valid := []string{
		"dj-luna",
		"abc",
		"band-123",
		"000",
		"thirty-characters-long-slug-yy",
	}
	for _, s := range valid {
		if !slugPattern.MatchString(s) {
			t.Errorf("slug %q should be valid", s)
		}
	}

	invalid := []string{
		"",
		"ab",
		"-leading",
		"trailing-",
		"UPPER",
		"has space",
		"has.dot",
		"thirty-one-characters-long-slug",
	}
	for _, s := range invalid {
		if slugPattern.MatchString(s) {
			t.Errorf("slug %q should be invalid", s)
		}
	}
}

func TestReservedSlugs(t *testing.T) {
	for _, s := range []string{"me", "api", "dashboard", "uploads"} {
		if !reservedSlugs[s] {
			t.Errorf("slug %q should be reserved", s)
		}
	}
	if reservedSlugs["dj-luna"] {
		t.Error("ordinary slug flagged as reserved")
	}
}
