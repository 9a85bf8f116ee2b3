package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current schema versions - bump these when making breaking changes.
//
// CHECKLIST when bumping a version:
//  1. Update the constant below
//  2. Add entry to MinQrcardVersion map (tested by TestMinQrcardVersionCompleteness)
//  3. Teach the matching loader to read the previous version
const (
	CurrentConfigVersion   = 1
	CurrentSeedVersion     = 1
	CurrentSnapshotVersion = 1
)

// Schema type prefixes for config, seed and exported snapshot files.
const (
	ConfigSchemaPrefix   = "config/"
	SeedSchemaPrefix     = "seed/"
	SnapshotSchemaPrefix = "snapshot/"
)

// MinQrcardVersion maps schema identifiers to the minimum qrcard version required.
// Used to provide helpful upgrade messages when encountering newer schemas.
var MinQrcardVersion = map[string]string{
	"config/1":   "0.1.0",
	"seed/1":     "0.1.0",
	"snapshot/1": "0.1.0",
}

// FormatConfigSchema creates a config schema string from a version number.
// Example: FormatConfigSchema(1) returns "config/1"
func FormatConfigSchema(v int) string {
	return fmt.Sprintf("%s%d", ConfigSchemaPrefix, v)
}

// FormatSeedSchema creates a seed schema string from a version number.
func FormatSeedSchema(v int) string {
	return fmt.Sprintf("%s%d", SeedSchemaPrefix, v)
}

// FormatSnapshotSchema creates a snapshot schema string from a version number.
func FormatSnapshotSchema(v int) string {
	return fmt.Sprintf("%s%d", SnapshotSchemaPrefix, v)
}

// ParseConfigVersion extracts the version number from a config schema string.
// Returns an error if the format is invalid.
func ParseConfigVersion(schema string) (int, error) {
	return parseSchemaVersion(schema, ConfigSchemaPrefix, "config")
}

// ParseSeedVersion extracts the version number from a seed schema string.
func ParseSeedVersion(schema string) (int, error) {
	return parseSchemaVersion(schema, SeedSchemaPrefix, "seed")
}

func parseSchemaVersion(schema, prefix, schemaType string) (int, error) {
	if !strings.HasPrefix(schema, prefix) {
		return 0, fmt.Errorf("invalid %s schema format: %q (expected %sN)", schemaType, schema, prefix)
	}
	versionStr := strings.TrimPrefix(schema, prefix)
	v, err := strconv.Atoi(versionStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s schema version: %q", schemaType, versionStr)
	}
	if v < 1 {
		return 0, fmt.Errorf("invalid %s schema version: %d (must be >= 1)", schemaType, v)
	}
	return v, nil
}

// CurrentConfigSchema returns the current config schema string.
func CurrentConfigSchema() string {
	return FormatConfigSchema(CurrentConfigVersion)
}

// CurrentSeedSchema returns the current seed schema string.
func CurrentSeedSchema() string {
	return FormatSeedSchema(CurrentSeedVersion)
}

// CurrentSnapshotSchema returns the current snapshot schema string.
func CurrentSnapshotSchema() string {
	return FormatSnapshotSchema(CurrentSnapshotVersion)
}
