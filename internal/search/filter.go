package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/amterp/qrcard/internal/model"
)

// ButtonMatch is a filtered button together with its position in the
// unfiltered list, which positional operations still address.
type ButtonMatch struct {
	Index  int
	Button model.Button
}

// FilterCards returns the cards whose title or description contains query,
// ignoring case. Order is preserved. An empty query matches everything.
func FilterCards(cards []model.Card, query string) []model.Card {
	m := newMatcher(query)
	result := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if m.matches(c.Title) || m.matches(c.Description) {
			result = append(result, c)
		}
	}
	return result
}

// FilterButtons returns the buttons whose label contains query, ignoring case.
func FilterButtons(buttons []model.Button, query string) []ButtonMatch {
	m := newMatcher(query)
	result := make([]ButtonMatch, 0, len(buttons))
	for i, b := range buttons {
		if m.matches(b.Label) {
			result = append(result, ButtonMatch{Index: i, Button: b})
		}
	}
	return result
}

// Fold normalizes s for case-insensitive comparison.
// "Straße" and "STRASSE" fold to the same string.
func Fold(s string) string {
	return folder.String(norm.NFC.String(s))
}

var folder = cases.Fold()

type matcher struct {
	query string
}

func newMatcher(query string) matcher {
	return matcher{query: Fold(query)}
}

func (m matcher) matches(s string) bool {
	if m.query == "" {
		return true
	}
	if s == "" {
		return false
	}
	return strings.Contains(Fold(s), m.query)
}
