package search

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// maxSlugLen keeps generated file names readable.
const maxSlugLen = 60

// Slug turns the parts into one lowercase ASCII stem suitable for a file
// name, e.g. ("Café", "Home") becomes "cafe-home". Accents are
// stripped, every other run of non-alphanumerics becomes a single hyphen.
// Returns "" when nothing usable is left.
func Slug(parts ...string) string {
	s := strings.ToLower(strings.Join(parts, " "))
	s = stripMarks(s)
	s = strings.Trim(nonAlphanumeric.ReplaceAllString(s, "-"), "-")

	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}

// stripMarks decomposes s and drops the combining marks, so "é" becomes "e".
func stripMarks(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
