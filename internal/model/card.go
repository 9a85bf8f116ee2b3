package model

import "strconv"

// Card is a named collection of link buttons.
// Schema changes require a version bump, see internal/version/version.go.
type Card struct {
	ID          string   `json:"id" toml:"id"`
	Title       string   `json:"title" toml:"title"`
	Description string   `json:"description,omitempty" toml:"description,omitempty"`
	Image       string   `json:"image,omitempty" toml:"image,omitempty"` // Opaque URI/handle; empty when unset
	Buttons     []Button `json:"buttons" toml:"buttons"`
}

// Button is a labeled URL entry owned by exactly one card.
// Its position in Card.Buttons is the display and scan order.
type Button struct {
	ID        string `json:"id" toml:"id"`
	Label     string `json:"label" toml:"label"`
	URL       string `json:"url" toml:"url"`
	ScanCount int    `json:"scan_count,omitempty" toml:"scan_count,omitempty"`
}

// Collection is one immutable snapshot of every card.
//
// NextID is the card id counter. It only ever grows, so an id freed by a
// delete is never handed out again.
type Collection struct {
	Cards  []Card `json:"cards" toml:"cards"`
	NextID int    `json:"next_id" toml:"next_id"`
}

// CardFields is a partial card update. Nil means "don't change".
type CardFields struct {
	Title       *string
	Description *string
	Image       *string // Pointer to "" clears the image
}

// ButtonFields is a partial button update. Nil means "don't change".
type ButtonFields struct {
	Label *string
	URL   *string
}

// NewCollection builds a collection from cards, starting the id counter
// after the highest numeric card id present.
func NewCollection(cards []Card) Collection {
	next := len(cards) + 1
	for _, c := range cards {
		if n, err := strconv.Atoi(c.ID); err == nil && n >= next {
			next = n + 1
		}
	}
	return Collection{Cards: cloneCards(cards), NextID: next}
}

// Len returns the number of cards.
func (c Collection) Len() int {
	return len(c.Cards)
}

// FindCard returns the card with the given id.
func (c Collection) FindCard(cardID string) (Card, bool) {
	if i := c.cardIndex(cardID); i >= 0 {
		return c.Cards[i].clone(), true
	}
	return Card{}, false
}

// ButtonIndex resolves a stable button id to its current position.
// Returns -1 if the card or button doesn't exist.
func (c Collection) ButtonIndex(cardID, buttonID string) int {
	i := c.cardIndex(cardID)
	if i < 0 {
		return -1
	}
	for j, b := range c.Cards[i].Buttons {
		if b.ID == buttonID {
			return j
		}
	}
	return -1
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	return Collection{Cards: cloneCards(c.Cards), NextID: c.NextID}
}

// Equal reports structural equality, including card and button order.
func (c Collection) Equal(other Collection) bool {
	if c.NextID != other.NextID || len(c.Cards) != len(other.Cards) {
		return false
	}
	for i := range c.Cards {
		if !c.Cards[i].Equal(other.Cards[i]) {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two cards.
func (c Card) Equal(other Card) bool {
	if c.ID != other.ID || c.Title != other.Title || c.Description != other.Description ||
		c.Image != other.Image || len(c.Buttons) != len(other.Buttons) {
		return false
	}
	for i := range c.Buttons {
		if c.Buttons[i] != other.Buttons[i] {
			return false
		}
	}
	return true
}

// HasImage returns true if an image handle is attached.
func (c Card) HasImage() bool {
	return c.Image != ""
}

func (c Collection) cardIndex(cardID string) int {
	for i, card := range c.Cards {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}

func (c Card) clone() Card {
	out := c
	out.Buttons = make([]Button, len(c.Buttons))
	copy(out.Buttons, c.Buttons)
	return out
}

func cloneCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = c.clone()
	}
	return out
}
