// Package taxonomy finds near-duplicate tags by slug edit distance and
// proposes merge clusters.
package taxonomy

import (
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/util"
)

// NormalizeTerm reduces a tag slug or name to bare lowercase
// alphanumerics so that "AI Tools" and "ai-tools" compare equal.
func NormalizeTerm(s string) string {
	return strings.ReplaceAll(util.NormalizeSlug(s), "-", "")
}

// Levenshtein computes the edit distance between two strings, by rune.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity maps edit distance to [0, 1]: identical strings score 1,
// wholly different strings score 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}
