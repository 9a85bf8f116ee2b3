package model

import (
	"fmt"
	"strconv"

	qcerr "github.com/amterp/qrcard/internal/errors"
)

// Every transition below is pure: the receiver is never modified and the
// returned collection shares no slices with it. Id-based lookups that miss
// are no-ops and return an unchanged copy; bad positional indices and bad
// reorder payloads return an error and the zero Collection.

// AddCard appends a new card with the next id from the counter.
// Returns the new collection and the assigned id.
func (c Collection) AddCard(title, description, image string) (Collection, string) {
	out := c.Clone()
	if out.NextID < 1 {
		out.NextID = len(out.Cards) + 1
	}

	// Skip ids that are already taken (e.g. a hand-written seed with a stale counter)
	id := strconv.Itoa(out.NextID)
	for out.cardIndex(id) >= 0 {
		out.NextID++
		id = strconv.Itoa(out.NextID)
	}
	out.NextID++

	out.Cards = append(out.Cards, Card{
		ID:          id,
		Title:       title,
		Description: description,
		Image:       image,
		Buttons:     []Button{},
	})
	return out, id
}

// EditCard applies the non-nil fields to the matching card.
func (c Collection) EditCard(cardID string, fields CardFields) Collection {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out
	}
	if fields.Title != nil {
		out.Cards[i].Title = *fields.Title
	}
	if fields.Description != nil {
		out.Cards[i].Description = *fields.Description
	}
	if fields.Image != nil {
		out.Cards[i].Image = *fields.Image
	}
	return out
}

// ReplaceCard swaps the card with the same id for the given one, keeping
// its position.
func (c Collection) ReplaceCard(card Card) Collection {
	out := c.Clone()
	if i := out.cardIndex(card.ID); i >= 0 {
		out.Cards[i] = card.clone()
	}
	return out
}

// DeleteCard removes the card and all of its buttons.
func (c Collection) DeleteCard(cardID string) Collection {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out
	}
	out.Cards = append(out.Cards[:i], out.Cards[i+1:]...)
	return out
}

// ReorderCards rearranges cards to match order, which must list every
// current card id exactly once.
func (c Collection) ReorderCards(order []string) (Collection, error) {
	current := make([]string, len(c.Cards))
	for i, card := range c.Cards {
		current[i] = card.ID
	}
	if err := checkPermutation("cards", current, order); err != nil {
		return Collection{}, err
	}

	out := Collection{Cards: make([]Card, 0, len(order)), NextID: c.NextID}
	for _, id := range order {
		out.Cards = append(out.Cards, c.Cards[c.cardIndex(id)].clone())
	}
	return out, nil
}

// MoveCard swaps a card with its neighbour. Negative delta moves it up,
// positive moves it down. Moving past either end is a no-op.
func (c Collection) MoveCard(cardID string, delta int) Collection {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out
	}
	j := i + sign(delta)
	if j < 0 || j >= len(out.Cards) || j == i {
		return out
	}
	out.Cards[i], out.Cards[j] = out.Cards[j], out.Cards[i]
	return out
}

// AddButton appends a button to the matching card.
// The button id must be non-empty and unique within the card.
func (c Collection) AddButton(cardID string, button Button) (Collection, error) {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out, nil
	}
	if button.ID == "" {
		return Collection{}, qcerr.InvalidField("button id", "cannot be empty")
	}
	for _, b := range out.Cards[i].Buttons {
		if b.ID == button.ID {
			return Collection{}, qcerr.InvalidField("button id", fmt.Sprintf("%q already used on card %s", button.ID, cardID))
		}
	}
	if button.ScanCount < 0 {
		button.ScanCount = 0
	}
	out.Cards[i].Buttons = append(out.Cards[i].Buttons, button)
	return out, nil
}

// EditButton applies the non-nil fields to the button at index.
func (c Collection) EditButton(cardID string, index int, fields ButtonFields) (Collection, error) {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out, nil
	}
	if err := out.Cards[i].checkIndex(index); err != nil {
		return Collection{}, err
	}
	btn := &out.Cards[i].Buttons[index]
	if fields.Label != nil {
		btn.Label = *fields.Label
	}
	if fields.URL != nil {
		btn.URL = *fields.URL
	}
	return out, nil
}

// DeleteButton removes the button at index. Later buttons shift down by one.
func (c Collection) DeleteButton(cardID string, index int) (Collection, error) {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out, nil
	}
	if err := out.Cards[i].checkIndex(index); err != nil {
		return Collection{}, err
	}
	buttons := out.Cards[i].Buttons
	out.Cards[i].Buttons = append(buttons[:index], buttons[index+1:]...)
	return out, nil
}

// ReorderButtons rearranges a card's buttons to match order, which must
// list every current button id of that card exactly once.
func (c Collection) ReorderButtons(cardID string, order []string) (Collection, error) {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out, nil
	}

	card := out.Cards[i]
	current := make([]string, len(card.Buttons))
	byID := make(map[string]Button, len(card.Buttons))
	for j, b := range card.Buttons {
		current[j] = b.ID
		byID[b.ID] = b
	}
	if err := checkPermutation("buttons", current, order); err != nil {
		return Collection{}, err
	}

	reordered := make([]Button, 0, len(order))
	for _, id := range order {
		reordered = append(reordered, byID[id])
	}
	out.Cards[i].Buttons = reordered
	return out, nil
}

// MoveButton swaps the button at index with its neighbour.
func (c Collection) MoveButton(cardID string, index, delta int) (Collection, error) {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out, nil
	}
	if err := out.Cards[i].checkIndex(index); err != nil {
		return Collection{}, err
	}
	buttons := out.Cards[i].Buttons
	j := index + sign(delta)
	if j < 0 || j >= len(buttons) || j == index {
		return out, nil
	}
	buttons[index], buttons[j] = buttons[j], buttons[index]
	return out, nil
}

// IncrementScanCount bumps the scan count of the button at index by one.
func (c Collection) IncrementScanCount(cardID string, index int) (Collection, error) {
	out := c.Clone()
	i := out.cardIndex(cardID)
	if i < 0 {
		return out, nil
	}
	if err := out.Cards[i].checkIndex(index); err != nil {
		return Collection{}, err
	}
	out.Cards[i].Buttons[index].ScanCount++
	return out, nil
}

func (c Card) checkIndex(index int) error {
	if index < 0 || index >= len(c.Buttons) {
		return qcerr.IndexOutOfRange(c.ID, index, len(c.Buttons))
	}
	return nil
}

// checkPermutation verifies order contains exactly the ids in current.
func checkPermutation(resource string, current, order []string) error {
	if len(order) != len(current) {
		return qcerr.InvalidPermutation(resource, fmt.Sprintf("expected %d entries, got %d", len(current), len(order)))
	}

	remaining := make(map[string]int, len(current))
	for _, id := range current {
		remaining[id]++
	}
	for _, id := range order {
		n, ok := remaining[id]
		if !ok {
			return qcerr.InvalidPermutation(resource, fmt.Sprintf("unknown id %q", id))
		}
		if n == 0 {
			return qcerr.InvalidPermutation(resource, fmt.Sprintf("duplicate id %q", id))
		}
		remaining[id] = n - 1
	}
	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
