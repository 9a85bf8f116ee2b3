package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	qcerr "github.com/amterp/qrcard/internal/errors"
	"github.com/amterp/qrcard/internal/id"
	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/version"
)

// seedFile is the on-disk layout of a seed fixture.
type seedFile struct {
	QrcardSchema string       `toml:"qrcard_schema"`
	Cards        []model.Card `toml:"cards"`
}

// LoadSeed reads a TOML seed fixture. Cards without an id are numbered after
// the highest numeric id in the file; buttons without an id get a generated one.
// Duplicate ids and empty titles, labels or URLs are rejected.
// The file is only ever read, never written back.
func LoadSeed(path string) (model.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Collection{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f seedFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return model.Collection{}, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := version.CheckSeedSchema(path, f.QrcardSchema); err != nil {
		return model.Collection{}, err
	}

	return buildSeed(f.Cards)
}

func buildSeed(cards []model.Card) (model.Collection, error) {
	var explicit []model.Card
	taken := make(map[string]bool, len(cards))
	for _, c := range cards {
		if strings.TrimSpace(c.Title) == "" {
			return model.Collection{}, qcerr.InvalidField("seed card title", "cannot be empty")
		}
		if c.ID == "" {
			continue
		}
		if taken[c.ID] {
			return model.Collection{}, qcerr.InvalidField("seed card id", fmt.Sprintf("duplicate id %q", c.ID))
		}
		taken[c.ID] = true
		explicit = append(explicit, c)
	}

	next := model.NewCollection(explicit).NextID
	for i := range cards {
		c := &cards[i]
		if c.ID == "" {
			for taken[strconv.Itoa(next)] {
				next++
			}
			c.ID = strconv.Itoa(next)
			taken[c.ID] = true
			next++
		}

		used := make(map[string]bool, len(c.Buttons))
		for j := range c.Buttons {
			b := &c.Buttons[j]
			b.Label = strings.TrimSpace(b.Label)
			b.URL = strings.TrimSpace(b.URL)
			if b.Label == "" {
				return model.Collection{}, qcerr.InvalidField("seed button label", fmt.Sprintf("cannot be empty (card %s)", c.ID))
			}
			if b.URL == "" {
				return model.Collection{}, qcerr.InvalidField("seed button url", fmt.Sprintf("cannot be empty (card %s)", c.ID))
			}
			if b.ID == "" {
				continue
			}
			if used[b.ID] {
				return model.Collection{}, qcerr.InvalidField("seed button id", fmt.Sprintf("duplicate id %q on card %s", b.ID, c.ID))
			}
			used[b.ID] = true
		}
		for j := range c.Buttons {
			b := &c.Buttons[j]
			for b.ID == "" {
				if generated := id.Generate(id.Button); !used[generated] {
					b.ID = generated
				}
			}
			used[b.ID] = true
			if b.ScanCount < 0 {
				b.ScanCount = 0
			}
		}
		if c.Buttons == nil {
			c.Buttons = []model.Button{}
		}
	}

	return model.NewCollection(cards), nil
}
