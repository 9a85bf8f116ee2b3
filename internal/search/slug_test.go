package search

import (
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		parts    []string
		expected string
	}{
		{[]string{"My Website", "Home"}, "my-website-home"},
		{[]string{"LinkedIn Profile", "LinkedIn"}, "linkedin-profile-linkedin"},
		{[]string{"Café au lait"}, "cafe-au-lait"},
		{[]string{"naïve", "Résumé"}, "naive-resume"},
		{[]string{"  Leading", "trailing  "}, "leading-trailing"},
		{[]string{"API v2.0 (beta)"}, "api-v2-0-beta"},
		{[]string{"Straße"}, "stra-e"},
		{[]string{"日本語"}, ""},
		{[]string{"!!!"}, ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := Slug(tt.parts...); got != tt.expected {
			t.Errorf("Slug(%q) = %q, expected %q", tt.parts, got, tt.expected)
		}
	}
}

func TestSlug_Truncates(t *testing.T) {
	got := Slug(strings.Repeat("word ", 40))
	if len(got) > maxSlugLen {
		t.Errorf("Expected at most %d chars, got %d (%q)", maxSlugLen, len(got), got)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Expected no trailing hyphen, got %q", got)
	}
}
