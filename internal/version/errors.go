package version

import (
	"fmt"
)

// SchemaVersionError indicates a schema version problem while reading a file.
type SchemaVersionError struct {
	FileType    string // "config", "seed"
	FilePath    string // Path to the problematic file
	Found       string // What was found (e.g., "missing", "seed/2")
	Expected    string // What was expected (e.g., "seed/1")
	MinRequired string // Minimum qrcard version required (if upgrade needed)
}

func (e *SchemaVersionError) Error() string {
	if e.MinRequired != "" {
		return fmt.Sprintf(
			"%s schema version %s requires qrcard >= %s (file: %s, supports up to: %s)",
			e.FileType, e.Found, e.MinRequired, e.FilePath, e.Expected,
		)
	}
	if e.Found == "missing" {
		return fmt.Sprintf(
			"%s has no schema version (file: %s). Add qrcard_schema = %q.",
			e.FileType, e.FilePath, e.Expected,
		)
	}
	return fmt.Sprintf(
		"%s has invalid schema version: found %s, expected %s (file: %s)",
		e.FileType, e.Found, e.Expected, e.FilePath,
	)
}

// CheckConfigSchema validates the schema string of a config file.
func CheckConfigSchema(path, found string) error {
	return checkSchema("config", path, found, CurrentConfigSchema(), ParseConfigVersion, CurrentConfigVersion)
}

// CheckSeedSchema validates the schema string of a seed file.
func CheckSeedSchema(path, found string) error {
	return checkSchema("seed", path, found, CurrentSeedSchema(), ParseSeedVersion, CurrentSeedVersion)
}

func checkSchema(fileType, path, found, expected string, parse func(string) (int, error), current int) error {
	if found == "" {
		return &SchemaVersionError{FileType: fileType, FilePath: path, Found: "missing", Expected: expected}
	}
	if found == expected {
		return nil
	}

	e := &SchemaVersionError{FileType: fileType, FilePath: path, Found: found, Expected: expected}
	v, err := parse(found)
	if err != nil {
		return e
	}
	// If the found version is newer, look up the min required qrcard version
	if v > current {
		if minVersion, ok := MinQrcardVersion[found]; ok {
			e.MinRequired = minVersion
		} else {
			e.MinRequired = "a newer version"
		}
	}
	return e
}
