package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qcerr "github.com/amterp/qrcard/internal/errors"
	"github.com/amterp/qrcard/internal/version"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write seed: %v", err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeed(t, `
qrcard_schema = "seed/1"

[[cards]]
id = "5"
title = "Work"
description = "Day job"

[[cards.buttons]]
label = "Site"
url = "https://work.example.com"
scan_count = 4

[[cards]]
title = "Personal"
`)

	c, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}

	if c.Len() != 2 {
		t.Fatalf("Expected 2 cards, got %d", c.Len())
	}
	if c.Cards[0].ID != "5" || c.Cards[1].ID != "6" {
		t.Errorf("Unexpected ids %q, %q", c.Cards[0].ID, c.Cards[1].ID)
	}
	if c.NextID != 7 {
		t.Errorf("Expected NextID 7, got %d", c.NextID)
	}

	b := c.Cards[0].Buttons[0]
	if !strings.HasPrefix(b.ID, "b_") {
		t.Errorf("Expected generated button id, got %q", b.ID)
	}
	if b.ScanCount != 4 {
		t.Errorf("Expected scan count 4, got %d", b.ScanCount)
	}
	if c.Cards[1].Buttons == nil {
		t.Errorf("Expected non-nil buttons slice")
	}
}

func TestLoadSeed_MissingSchema(t *testing.T) {
	path := writeSeed(t, "[[cards]]\ntitle = \"x\"\n")

	_, err := LoadSeed(path)
	var sv *version.SchemaVersionError
	if !errors.As(err, &sv) {
		t.Errorf("Expected schema version error, got %v", err)
	}
}

func TestLoadSeed_DuplicateIDs(t *testing.T) {
	path := writeSeed(t, `
qrcard_schema = "seed/1"
[[cards]]
id = "1"
title = "a"
[[cards]]
id = "1"
title = "b"
`)

	if _, err := LoadSeed(path); !qcerr.IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestLoadSeed_EmptyTitle(t *testing.T) {
	path := writeSeed(t, "qrcard_schema = \"seed/1\"\n[[cards]]\nid = \"1\"\n")

	if _, err := LoadSeed(path); !qcerr.IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestLoadSeed_EmptyButtonFields(t *testing.T) {
	tests := []struct {
		name   string
		button string
		field  string
	}{
		{"empty label", "label = \"\"\nurl = \"https://example.com\"\n", "seed button label"},
		{"blank label", "label = \"   \"\nurl = \"https://example.com\"\n", "seed button label"},
		{"empty url", "label = \"Home\"\nurl = \"\"\n", "seed button url"},
		{"missing url", "label = \"Home\"\n", "seed button url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSeed(t, "qrcard_schema = \"seed/1\"\n[[cards]]\nid = \"1\"\ntitle = \"Site\"\n[[cards.buttons]]\n"+tt.button)

			_, err := LoadSeed(path)
			var ve *qcerr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
}

func TestLoadSeed_DuplicateButtonIDs(t *testing.T) {
	path := writeSeed(t, `
qrcard_schema = "seed/1"
[[cards]]
id = "1"
title = "Site"
[[cards.buttons]]
id = "b_home"
label = "Home"
url = "https://example.com"
[[cards.buttons]]
id = "b_home"
label = "Contact"
url = "https://example.com/contact"
`)

	if _, err := LoadSeed(path); !qcerr.IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestLoadSeed_TrimsButtonFields(t *testing.T) {
	path := writeSeed(t, `
qrcard_schema = "seed/1"
[[cards]]
title = "Site"
[[cards.buttons]]
id = "b_home"
label = "  Home "
url = " https://example.com  "
[[cards.buttons]]
label = "Contact"
url = "https://example.com/contact"
`)

	c, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	buttons := c.Cards[0].Buttons
	if buttons[0].ID != "b_home" || buttons[0].Label != "Home" || buttons[0].URL != "https://example.com" {
		t.Errorf("Unexpected first button %+v", buttons[0])
	}
	if buttons[1].ID == "" || buttons[1].ID == "b_home" {
		t.Errorf("Expected a fresh id for the second button, got %q", buttons[1].ID)
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
