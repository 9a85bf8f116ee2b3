package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/version"
)

// TestButton returns a button with sensible test defaults.
func TestButton(id, label string) model.Button {
	return model.Button{
		ID:    id,
		Label: label,
		URL:   "https://example.com/" + id,
	}
}

// TestCard returns a card with the given buttons.
func TestCard(id, title string, buttons ...model.Button) model.Card {
	if buttons == nil {
		buttons = []model.Button{}
	}
	return model.Card{
		ID:      id,
		Title:   title,
		Buttons: buttons,
	}
}

// TestCollection returns a three-card collection that exercises search:
// mixed case, a description-only match and a non-ASCII title.
func TestCollection() model.Collection {
	return model.NewCollection([]model.Card{
		TestCard("1", "My Website", TestButton("b_1", "Home"), TestButton("b_2", "Contact")),
		{ID: "2", Title: "Work", Description: "Portfolio website", Buttons: []model.Button{TestButton("b_3", "Portfolio")}},
		TestCard("3", "Straße Café"),
	})
}

// WriteSeedFile writes a seed fixture into a temp dir and returns its path.
// The schema line is added unless content already has one.
func WriteSeedFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seed.toml")
	full := content
	if !strings.Contains(content, "qrcard_schema") {
		full = "qrcard_schema = \"" + version.CurrentSeedSchema() + "\"\n\n" + content
	}
	if err := os.WriteFile(path, []byte(full), 0644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}
