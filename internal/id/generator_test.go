package id

import (
	"strings"
	"testing"
)

func TestGenerate_Prefix(t *testing.T) {
	got := Generate(Button)
	if !strings.HasPrefix(got, "b_") {
		t.Errorf("Expected b_ prefix, got %q", got)
	}
	if len(got) <= len("b_") {
		t.Errorf("Expected non-empty id body, got %q", got)
	}
}
