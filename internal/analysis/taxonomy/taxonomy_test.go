package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func tag(id int, slug string, posts int) domain.Tag {
	return domain.Tag{TermID: id, Nicename: slug, Name: slug, PostCount: posts}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"color", "colour", 1},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
		{"café", "cafe", 1}, // rune level, not byte level
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "seo", "seo", 1},
		{"both empty", "", "", 1},
		{"spelling variant", "color", "colour", 1 - 1.0/6},
		{"short prefix pair", "ai", "ai-tools", 0.25},
		{"disjoint", "go", "zx", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestFindSimilarPairs(t *testing.T) {
	tags := []domain.Tag{
		tag(1, "color", 5),
		tag(2, "colour", 2),
		tag(3, "ai", 10),
		tag(4, "ai-tools", 3),
		tag(5, "golang", 7),
	}

	pairs := FindSimilarPairs(tags, DefaultThreshold)

	// "ai"/"ai-tools" scores 0.25 and must stay out at the default
	// threshold; only the spelling variant makes the cut.
	assert.Len(t, pairs, 1)
	assert.Equal(t, "color", pairs[0].A)
	assert.Equal(t, "colour", pairs[0].B)
	assert.InDelta(t, 1-1.0/6, pairs[0].Similarity, 1e-9)
}

func TestFindSimilarPairsStrongestFirst(t *testing.T) {
	tags := []domain.Tag{
		tag(1, "recipes", 1),
		tag(2, "recipe", 1),
		tag(3, "recipies", 1),
	}

	pairs := FindSimilarPairs(tags, 0.7)

	assert.Len(t, pairs, 3)
	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, pairs[i-1].Similarity, pairs[i].Similarity)
	}
}

func TestBuildClusters(t *testing.T) {
	tags := []domain.Tag{
		tag(1, "color", 2),
		tag(2, "colour", 8),
		tag(3, "colors", 1),
		tag(4, "travel", 5),
		tag(5, "golang", 4),
	}

	clusters := BuildClusters(tags, DefaultThreshold)

	// One cluster seeded by the highest post count member. "colors" is
	// too far from the seed "colour" at this threshold and stays a
	// singleton, and singletons never surface.
	assert.Len(t, clusters, 1)
	c := clusters[0]
	assert.Equal(t, "colour", c.Master)
	assert.Equal(t, []string{"colour", "color"}, c.Members)
	assert.Equal(t, 10, c.TotalPosts)
}

func TestBuildClustersIdempotentAfterMerge(t *testing.T) {
	merged := []domain.Tag{
		tag(2, "colour", 11),
		tag(4, "travel", 5),
		tag(5, "golang", 4),
	}

	assert.Empty(t, BuildClusters(merged, DefaultThreshold))
}

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AI Tools", "aitools"},
		{"ai-tools", "aitools"},
		{"Café", "cafe"},
		{"C++", "c"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTerm(tt.in); got != tt.want {
			t.Errorf("NormalizeTerm(%q) = %q, want %q", tt.in, tt.want, got)
		}
	}
}

func TestCasingAndPunctuationVariantsCluster(t *testing.T) {
	// "AI Tools" has no nicename, so its slug falls back to the display
	// name. It must still match "ai-tools" exactly.
	tags := []domain.Tag{
		{TermID: 1, Name: "AI Tools", PostCount: 2},
		tag(2, "ai-tools", 6),
		tag(3, "golang", 4),
	}

	pairs := FindSimilarPairs(tags, DefaultThreshold)
	assert.Len(t, pairs, 1)
	assert.InDelta(t, 1.0, pairs[0].Similarity, 1e-9)

	clusters := BuildClusters(tags, DefaultThreshold)
	assert.Len(t, clusters, 1)
	assert.Equal(t, "ai-tools", clusters[0].Master)
	assert.ElementsMatch(t, []string{"ai-tools", "AI Tools"}, clusters[0].Members)
	assert.Equal(t, 8, clusters[0].TotalPosts)
}

func TestPunctuationOnlyTagsIgnored(t *testing.T) {
	tags := []domain.Tag{
		{TermID: 1, Name: "!!!", PostCount: 1},
		{TermID: 2, Name: "???", PostCount: 1},
	}

	assert.Empty(t, FindSimilarPairs(tags, DefaultThreshold))
	assert.Empty(t, BuildClusters(tags, DefaultThreshold))
}

func TestBuildClustersGreedyClaiming(t *testing.T) {
	// "recipe" is claimed by the biggest seed and cannot seed its own
	// cluster afterwards.
	tags := []domain.Tag{
		tag(1, "recipes", 9),
		tag(2, "recipe", 3),
		tag(3, "recipies", 1),
	}

	clusters := BuildClusters(tags, 0.7)

	assert.Len(t, clusters, 1)
	assert.Equal(t, "recipes", clusters[0].Master)
	assert.ElementsMatch(t, []string{"recipes", "recipe", "recipies"}, clusters[0].Members)
}
