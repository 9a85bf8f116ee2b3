package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/version"
)

// cardJson is a card for CLI JSON output. Buttons carry their index, which
// the positional commands and API endpoints address.
//
// SYNC WARNING: This struct must stay in sync with model.Card fields.
// If you add fields to model.Card, add them here too. See TestCardJsonFieldSync.
type cardJson struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Image       string       `json:"image,omitempty"`
	Buttons     []buttonJson `json:"buttons"`
	TotalScans  int          `json:"total_scans"`
}

type buttonJson struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Label     string `json:"label"`
	URL       string `json:"url"`
	ScanCount int    `json:"scan_count"`
}

func cardToJson(c model.Card) cardJson {
	out := cardJson{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Image:       c.Image,
		Buttons:     make([]buttonJson, len(c.Buttons)),
	}
	for i, b := range c.Buttons {
		out.Buttons[i] = buttonJson{Index: i, ID: b.ID, Label: b.Label, URL: b.URL, ScanCount: b.ScanCount}
		out.TotalScans += b.ScanCount
	}
	return out
}

// CardOutput wraps a single card for JSON output.
type CardOutput struct {
	Card cardJson `json:"card"`
}

// NewCardOutput creates a CardOutput from a model.Card.
func NewCardOutput(card model.Card) CardOutput {
	return CardOutput{Card: cardToJson(card)}
}

// ListOutput wraps a list of cards for JSON output.
type ListOutput struct {
	Query string     `json:"query,omitempty"`
	Cards []cardJson `json:"cards"`
}

// NewListOutput creates a ListOutput from a slice of model.Card.
// Always returns an empty array (not null) when there are no cards.
func NewListOutput(query string, cards []model.Card) ListOutput {
	result := make([]cardJson, 0, len(cards))
	for _, c := range cards {
		result = append(result, cardToJson(c))
	}
	return ListOutput{Query: query, Cards: result}
}

// SnapshotOutput is a complete, schema-stamped copy of a collection.
// It is written to stdout only and never read back.
type SnapshotOutput struct {
	Schema string       `json:"qrcard_schema"`
	NextID int          `json:"next_id"`
	Cards  []model.Card `json:"cards"`
}

// NewSnapshotOutput creates a SnapshotOutput from a collection.
func NewSnapshotOutput(c model.Collection) SnapshotOutput {
	cards := c.Cards
	if cards == nil {
		cards = []model.Card{}
	}
	return SnapshotOutput{
		Schema: version.CurrentSnapshotSchema(),
		NextID: c.NextID,
		Cards:  cards,
	}
}

// printJson marshals the value as indented JSON and prints it to stdout.
func printJson(v any) error {
	return fprintJson(os.Stdout, v)
}

func fprintJson(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}
