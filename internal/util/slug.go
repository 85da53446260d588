// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// foldDiacritics decomposes accented characters and strips the combining
// marks, so "café" becomes "cafe" before slug normalization.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSlug converts user input to a canonical slug.
// The slug is the source of truth for tag and category identity.
//
// Normalization rules:
//  1. Fold diacritics to their base letters
//  2. Trim whitespace and lowercase
//  3. Replace spaces and underscores with dashes
//  4. Remove non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes
//  6. Trim leading/trailing dashes
//
// Examples:
//
//	"Slow Burn"     → "slow-burn"
//	"slow_burn"     → "slow-burn"
//	"Café Culture"  → "cafe-culture"
//	"  multi   word " → "multi-word"
//	"--leading--"   → "leading"
func NormalizeSlug(input string) string {
	// 1. Fold diacritics; on transform failure fall back to the raw input.
	if folded, _, err := transform.String(foldDiacritics, input); err == nil {
		input = folded
	}

	// 2. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 3. Replace word separators (spaces, underscores, slashes) with dashes
	s = wordSeparatorRe.ReplaceAllString(s, "-")

	// 4. Remove non-alphanumeric (except dashes)
	s = nonAlphanumericRe.ReplaceAllString(s, "")

	// 5. Collapse multiple dashes
	s = multipleDashRe.ReplaceAllString(s, "-")

	// 6. Trim leading/trailing dashes
	s = strings.Trim(s, "-")

	return s
}

// SlugWithLimit normalizes a slug and truncates it to maxLen runes,
// never leaving a trailing dash.
func SlugWithLimit(input string, maxLen int) string {
	s := NormalizeSlug(input)
	if maxLen > 0 {
		s = strings.TrimRight(Truncate(s, maxLen), "-")
	}
	return s
}
