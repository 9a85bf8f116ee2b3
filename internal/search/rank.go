package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/amterp/qrcard/internal/model"
)

// cardSource implements fuzzy.Source over card titles.
type cardSource []model.Card

func (s cardSource) String(i int) string {
	return Fold(s[i].Title)
}

func (s cardSource) Len() int {
	return len(s)
}

// RankCards orders cards by fuzzy match quality of their title against
// query, best first. Cards that don't match at all are dropped.
// Unlike FilterCards the result is not a subsequence of the input.
func RankCards(cards []model.Card, query string) []model.Card {
	if query == "" {
		out := make([]model.Card, len(cards))
		copy(out, cards)
		return out
	}

	matches := fuzzy.FindFrom(Fold(query), cardSource(cards))
	result := make([]model.Card, len(matches))
	for i, match := range matches {
		result[i] = cards[match.Index]
	}
	return result
}
