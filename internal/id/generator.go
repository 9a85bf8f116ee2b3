package id

import (
	"time"

	fid "github.com/amterp/flexid"
)

// Kind prefixes distinguish id types at a glance.
type Kind string

const (
	Button Kind = "b_"
)

var generator *fid.Generator

func init() {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	config := fid.NewConfig().
		WithEpoch(epoch).
		WithTickSize(10 * time.Millisecond).
		WithNumRandomChars(3)

	generator = fid.MustNewGenerator(config)
}

// Generate returns a new unique ID of the given kind.
func Generate(kind Kind) string {
	return string(kind) + generator.MustGenerate()
}
