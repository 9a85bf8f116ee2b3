package version

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSeedVersion(t *testing.T) {
	tests := []struct {
		schema  string
		want    int
		wantErr bool
	}{
		{"seed/1", 1, false},
		{"seed/12", 12, false},
		{"seed/0", 0, true},
		{"seed/x", 0, true},
		{"config/1", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			got, err := ParseSeedVersion(tt.schema)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSeedVersion(%q) error = %v, wantErr %v", tt.schema, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSeedVersion(%q) = %d, want %d", tt.schema, got, tt.want)
			}
		})
	}
}

func TestCurrentSchemas(t *testing.T) {
	if CurrentConfigSchema() != "config/1" {
		t.Errorf("Unexpected config schema %q", CurrentConfigSchema())
	}
	if CurrentSeedSchema() != "seed/1" {
		t.Errorf("Unexpected seed schema %q", CurrentSeedSchema())
	}
	if CurrentSnapshotSchema() != "snapshot/1" {
		t.Errorf("Unexpected snapshot schema %q", CurrentSnapshotSchema())
	}
}

func TestMinQrcardVersionCompleteness(t *testing.T) {
	for _, schema := range []string{CurrentConfigSchema(), CurrentSeedSchema(), CurrentSnapshotSchema()} {
		if _, ok := MinQrcardVersion[schema]; !ok {
			t.Errorf("MinQrcardVersion missing entry for %q", schema)
		}
	}
}

func TestCheckSeedSchema(t *testing.T) {
	if err := CheckSeedSchema("seed.toml", "seed/1"); err != nil {
		t.Errorf("Expected current schema to pass, got %v", err)
	}

	err := CheckSeedSchema("seed.toml", "")
	var sv *SchemaVersionError
	if !errors.As(err, &sv) || sv.Found != "missing" {
		t.Errorf("Expected missing schema error, got %v", err)
	}

	err = CheckSeedSchema("seed.toml", "seed/9")
	if !errors.As(err, &sv) || sv.MinRequired != "a newer version" {
		t.Errorf("Expected upgrade hint, got %v", err)
	}
	if !strings.Contains(err.Error(), "requires qrcard") {
		t.Errorf("Expected upgrade message, got %q", err.Error())
	}
}
