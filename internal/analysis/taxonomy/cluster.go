package taxonomy

import (
	"sort"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// DefaultThreshold is the similarity above which two tag slugs are
// considered near-duplicates. Tuned so "color"/"colour" cluster while
// short unrelated slugs like "ai"/"ai-tools" do not.
const DefaultThreshold = 0.8

// SimilarPair is one tag pair above the similarity threshold.
type SimilarPair struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Similarity float64 `json:"similarity"`
}

// Cluster is a proposed merge group. Master is the member with the
// highest post count; the rest are merge candidates.
type Cluster struct {
	Master     string   `json:"master"`
	Members    []string `json:"members"` // includes master, post count order
	TotalPosts int      `json:"total_posts"`
}

// FindSimilarPairs lists every tag slug pair at or above threshold,
// strongest first. Slugs are compared in normalized form, so casing,
// spacing and punctuation differences do not mask a duplicate.
func FindSimilarPairs(tags []domain.Tag, threshold float64) []SimilarPair {
	slugs := sortedSlugs(tags)

	var pairs []SimilarPair
	for i := 0; i < len(slugs); i++ {
		normA := NormalizeTerm(slugs[i])
		if normA == "" {
			continue
		}
		for j := i + 1; j < len(slugs); j++ {
			normB := NormalizeTerm(slugs[j])
			if normB == "" {
				continue
			}
			if sim := Similarity(normA, normB); sim >= threshold {
				pairs = append(pairs, SimilarPair{A: slugs[i], B: slugs[j], Similarity: sim})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// BuildClusters groups near-duplicate tags in one greedy pass.
//
// Tags are visited in descending post count order. Each unclaimed tag
// seeds a cluster and claims every remaining unclaimed tag within the
// threshold of the seed. Because seeds are visited by post count, the
// seed is each cluster's master. Only clusters with two or more members
// are returned, so a deduplicated tag set yields nothing and the
// operation is idempotent after a merge.
func BuildClusters(tags []domain.Tag, threshold float64) []Cluster {
	ordered := make([]domain.Tag, len(tags))
	copy(ordered, tags)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].PostCount != ordered[j].PostCount {
			return ordered[i].PostCount > ordered[j].PostCount
		}
		return ordered[i].Slug() < ordered[j].Slug()
	})

	claimed := make(map[string]bool, len(ordered))
	var clusters []Cluster

	for i := range ordered {
		seed := &ordered[i]
		seedSlug := seed.Slug()
		seedNorm := NormalizeTerm(seedSlug)
		if seedNorm == "" || claimed[seedSlug] {
			continue
		}
		claimed[seedSlug] = true

		cluster := Cluster{
			Master:     seedSlug,
			Members:    []string{seedSlug},
			TotalPosts: seed.PostCount,
		}

		for j := i + 1; j < len(ordered); j++ {
			candidate := &ordered[j]
			slug := candidate.Slug()
			norm := NormalizeTerm(slug)
			if norm == "" || claimed[slug] {
				continue
			}
			if Similarity(seedNorm, norm) >= threshold {
				claimed[slug] = true
				cluster.Members = append(cluster.Members, slug)
				cluster.TotalPosts += candidate.PostCount
			}
		}

		if len(cluster.Members) > 1 {
			clusters = append(clusters, cluster)
		}
	}

	return clusters
}

func sortedSlugs(tags []domain.Tag) []string {
	slugs := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for i := range tags {
		slug := tags[i].Slug()
		if slug != "" && !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)
	return slugs
}
