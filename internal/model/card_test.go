package model

import (
	"encoding/json"
	"sort"
	"testing"

	qcerr "github.com/amterp/qrcard/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestSeed(t *testing.T) {
	c := Seed()

	if c.Len() != 2 {
		t.Fatalf("Expected 2 seed cards, got %d", c.Len())
	}
	if c.Cards[0].Title != "My Website" || len(c.Cards[0].Buttons) != 2 {
		t.Errorf("Unexpected first card: %+v", c.Cards[0])
	}
	if c.Cards[1].Title != "LinkedIn Profile" || len(c.Cards[1].Buttons) != 1 {
		t.Errorf("Unexpected second card: %+v", c.Cards[1])
	}
	if c.NextID != 3 {
		t.Errorf("Expected NextID 3, got %d", c.NextID)
	}
}

func TestScenario_AddThenDeleteButton(t *testing.T) {
	c := Seed()

	c, id := c.AddCard("New", "", "")
	if c.Len() != 3 {
		t.Fatalf("Expected 3 cards, got %d", c.Len())
	}
	if id != "3" || c.Cards[2].ID != "3" {
		t.Errorf("Expected third card id 3, got %q", c.Cards[2].ID)
	}
	if len(c.Cards[2].Buttons) != 0 {
		t.Errorf("Expected no buttons on new card, got %d", len(c.Cards[2].Buttons))
	}

	formerSecond := c.Cards[0].Buttons[1]
	c, err := c.DeleteButton("1", 0)
	if err != nil {
		t.Fatalf("DeleteButton failed: %v", err)
	}
	if len(c.Cards[0].Buttons) != 1 {
		t.Fatalf("Expected 1 button, got %d", len(c.Cards[0].Buttons))
	}
	if c.Cards[0].Buttons[0] != formerSecond {
		t.Errorf("Expected former index 1 button at index 0, got %+v", c.Cards[0].Buttons[0])
	}
}

func TestAddCard_IDNotReusedAfterDelete(t *testing.T) {
	c := Seed()
	c = c.DeleteCard("1")

	c, id := c.AddCard("T", "", "")

	if id == "2" {
		t.Fatalf("Generated id collides with existing card")
	}
	seen := make(map[string]bool)
	for _, card := range c.Cards {
		if seen[card.ID] {
			t.Errorf("Duplicate card id %q", card.ID)
		}
		seen[card.ID] = true
	}
	if last := c.Cards[c.Len()-1]; last.Title != "T" || last.ID != id {
		t.Errorf("Expected appended card T/%s, got %+v", id, last)
	}
}

func TestAddCard_SkipsTakenIDs(t *testing.T) {
	c := Collection{Cards: []Card{{ID: "1"}, {ID: "2"}}, NextID: 2}

	c, id := c.AddCard("T", "", "")

	if id != "3" {
		t.Errorf("Expected id 3, got %q", id)
	}
	if c.NextID != 4 {
		t.Errorf("Expected NextID 4, got %d", c.NextID)
	}
}

func TestNoOps_UnknownCard(t *testing.T) {
	before := Seed()

	tests := []struct {
		name string
		op   func(Collection) (Collection, error)
	}{
		{"EditCard", func(c Collection) (Collection, error) {
			return c.EditCard("missing", CardFields{Title: strPtr("x")}), nil
		}},
		{"DeleteCard", func(c Collection) (Collection, error) { return c.DeleteCard("missing"), nil }},
		{"ReplaceCard", func(c Collection) (Collection, error) { return c.ReplaceCard(Card{ID: "missing"}), nil }},
		{"MoveCard", func(c Collection) (Collection, error) { return c.MoveCard("missing", 1), nil }},
		{"AddButton", func(c Collection) (Collection, error) {
			return c.AddButton("missing", Button{ID: "b_x", Label: "x", URL: "u"})
		}},
		{"EditButton", func(c Collection) (Collection, error) {
			return c.EditButton("missing", 0, ButtonFields{Label: strPtr("x")})
		}},
		{"DeleteButton", func(c Collection) (Collection, error) { return c.DeleteButton("missing", 0) }},
		{"IncrementScanCount", func(c Collection) (Collection, error) { return c.IncrementScanCount("missing", 0) }},
		{"ReorderButtons", func(c Collection) (Collection, error) { return c.ReorderButtons("missing", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, err := tt.op(before)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !after.Equal(before) {
				t.Errorf("Expected unchanged collection")
			}
		})
	}
}

func TestOps_DoNotMutateReceiver(t *testing.T) {
	before := Seed()
	snapshot := before.Clone()

	_ = before.EditCard("1", CardFields{Title: strPtr("changed")})
	_ = before.DeleteCard("1")
	_ = before.MoveCard("1", 1)
	_, _ = before.EditButton("1", 0, ButtonFields{URL: strPtr("changed")})
	_, _ = before.DeleteButton("1", 0)
	_, _ = before.MoveButton("1", 0, 1)
	_, _ = before.IncrementScanCount("1", 0)
	_, _ = before.ReorderButtons("1", []string{"b_seed2", "b_seed1"})

	if !before.Equal(snapshot) {
		t.Errorf("Receiver was mutated")
	}
}

func TestEditCard_PartialFields(t *testing.T) {
	c := Seed().EditCard("1", CardFields{Description: strPtr("desc"), Image: strPtr("file:///me.png")})

	card, _ := c.FindCard("1")
	if card.Title != "My Website" {
		t.Errorf("Title should be unchanged, got %q", card.Title)
	}
	if card.Description != "desc" || card.Image != "file:///me.png" {
		t.Errorf("Fields not applied: %+v", card)
	}
}

func TestReplaceCard_KeepsPosition(t *testing.T) {
	c := Seed().ReplaceCard(Card{ID: "1", Title: "Replaced"})

	if c.Cards[0].Title != "Replaced" || len(c.Cards[0].Buttons) != 0 {
		t.Errorf("Expected replaced card at index 0, got %+v", c.Cards[0])
	}
}

func TestDeleteCard_ShrinksByOne(t *testing.T) {
	before := Seed()
	after := before.DeleteCard("1")

	if after.Len() != before.Len()-1 {
		t.Errorf("Expected %d cards, got %d", before.Len()-1, after.Len())
	}
	if _, ok := after.FindCard("1"); ok {
		t.Errorf("Deleted card still present")
	}
	if after.ButtonIndex("1", "b_seed1") != -1 {
		t.Errorf("Deleted card's buttons still addressable")
	}
}

func TestReorderCards_Permutation(t *testing.T) {
	c, _ := Seed().AddCard("Third", "", "")

	out, err := c.ReorderCards([]string{"3", "1", "2"})
	if err != nil {
		t.Fatalf("ReorderCards failed: %v", err)
	}

	got := []string{out.Cards[0].ID, out.Cards[1].ID, out.Cards[2].ID}
	if got[0] != "3" || got[1] != "1" || got[2] != "2" {
		t.Errorf("Unexpected order %v", got)
	}
	assertSameCards(t, c, out)
}

func TestReorderCards_Invalid(t *testing.T) {
	c := Seed()

	tests := []struct {
		name  string
		order []string
	}{
		{"missing entry", []string{"1"}},
		{"extra entry", []string{"1", "2", "3"}},
		{"duplicate", []string{"1", "1"}},
		{"unknown", []string{"1", "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ReorderCards(tt.order)
			if !qcerr.IsInvalidPermutation(err) {
				t.Errorf("Expected invalid permutation error, got %v", err)
			}
		})
	}
}

func TestMoveCard(t *testing.T) {
	c := Seed()

	down := c.MoveCard("1", 1)
	if down.Cards[0].ID != "2" || down.Cards[1].ID != "1" {
		t.Errorf("Move down failed: %s, %s", down.Cards[0].ID, down.Cards[1].ID)
	}

	// Moving the first card up is a no-op
	up := c.MoveCard("1", -1)
	if !up.Equal(c) {
		t.Errorf("Moving first card up should be a no-op")
	}
}

func TestButtonIndexErrors(t *testing.T) {
	c := Seed()

	ops := map[string]func() error{
		"EditButton": func() error {
			_, err := c.EditButton("1", 5, ButtonFields{Label: strPtr("x")})
			return err
		},
		"DeleteButton": func() error {
			_, err := c.DeleteButton("1", -1)
			return err
		},
		"MoveButton": func() error {
			_, err := c.MoveButton("2", 1, -1)
			return err
		},
		"IncrementScanCount": func() error {
			_, err := c.IncrementScanCount("2", 1)
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !qcerr.IsIndexOutOfRange(err) {
				t.Errorf("Expected index out of range, got %v", err)
			}
		})
	}
}

func TestAddButton_Validation(t *testing.T) {
	c := Seed()

	if _, err := c.AddButton("1", Button{Label: "x", URL: "u"}); !qcerr.IsValidationError(err) {
		t.Errorf("Expected validation error for empty id, got %v", err)
	}
	if _, err := c.AddButton("1", Button{ID: "b_seed1", Label: "x", URL: "u"}); !qcerr.IsValidationError(err) {
		t.Errorf("Expected validation error for duplicate id, got %v", err)
	}

	out, err := c.AddButton("2", Button{ID: "b_new", Label: "GitHub", URL: "https://github.com/me"})
	if err != nil {
		t.Fatalf("AddButton failed: %v", err)
	}
	buttons := out.Cards[1].Buttons
	if len(buttons) != 2 || buttons[1].Label != "GitHub" {
		t.Errorf("Expected GitHub appended, got %+v", buttons)
	}
}

func TestEditButton(t *testing.T) {
	c, err := Seed().EditButton("1", 1, ButtonFields{URL: strPtr("https://example.com/contact")})
	if err != nil {
		t.Fatalf("EditButton failed: %v", err)
	}

	b := c.Cards[0].Buttons[1]
	if b.Label != "Contact" || b.URL != "https://example.com/contact" || b.ID != "b_seed2" {
		t.Errorf("Unexpected button after edit: %+v", b)
	}
}

func TestReorderButtons(t *testing.T) {
	c := Seed()

	out, err := c.ReorderButtons("1", []string{"b_seed2", "b_seed1"})
	if err != nil {
		t.Fatalf("ReorderButtons failed: %v", err)
	}
	if out.Cards[0].Buttons[0].Label != "Contact" {
		t.Errorf("Expected Contact first, got %s", out.Cards[0].Buttons[0].Label)
	}

	if _, err := c.ReorderButtons("1", []string{"b_seed2", "b_seed2"}); !qcerr.IsInvalidPermutation(err) {
		t.Errorf("Expected invalid permutation error, got %v", err)
	}
}

func TestMoveButton(t *testing.T) {
	out, err := Seed().MoveButton("1", 1, -1)
	if err != nil {
		t.Fatalf("MoveButton failed: %v", err)
	}
	if out.ButtonIndex("1", "b_seed2") != 0 {
		t.Errorf("Expected Contact at index 0")
	}

	edge, err := out.MoveButton("1", 1, 1)
	if err != nil {
		t.Fatalf("MoveButton at edge failed: %v", err)
	}
	if !edge.Equal(out) {
		t.Errorf("Moving last button down should be a no-op")
	}
}

func TestIncrementScanCount_Monotonic(t *testing.T) {
	c := Seed()
	const k = 5

	for i := 0; i < k; i++ {
		var err error
		c, err = c.IncrementScanCount("2", 0)
		if err != nil {
			t.Fatalf("IncrementScanCount failed: %v", err)
		}
	}

	if got := c.Cards[1].Buttons[0].ScanCount; got != k {
		t.Errorf("Expected scan count %d, got %d", k, got)
	}
	if got := c.Cards[0].Buttons[0].ScanCount; got != 0 {
		t.Errorf("Other buttons should be untouched, got %d", got)
	}
}

func TestButtonJSON_AbsentScanCount(t *testing.T) {
	var b Button
	if err := json.Unmarshal([]byte(`{"id":"b_1","label":"Home","url":"https://x"}`), &b); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if b.ScanCount != 0 {
		t.Errorf("Expected absent scan count to be 0, got %d", b.ScanCount)
	}
}

func TestNewCollection_CounterAfterHighestID(t *testing.T) {
	c := NewCollection([]Card{{ID: "7"}, {ID: "work"}})

	if c.NextID != 8 {
		t.Errorf("Expected NextID 8, got %d", c.NextID)
	}
}

// assertSameCards checks two collections hold the same multiset of cards.
func assertSameCards(t *testing.T, a, b Collection) {
	t.Helper()
	ids := func(c Collection) []string {
		out := make([]string, len(c.Cards))
		for i, card := range c.Cards {
			out[i] = card.ID
		}
		sort.Strings(out)
		return out
	}
	x, y := ids(a), ids(b)
	if len(x) != len(y) {
		t.Fatalf("Card count changed: %d vs %d", len(x), len(y))
	}
	for i := range x {
		if x[i] != y[i] {
			t.Errorf("Card sets differ: %v vs %v", x, y)
			return
		}
	}
}
