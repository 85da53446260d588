package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func link(source, target int) domain.InternalLink {
	return domain.InternalLink{SourcePostID: source, TargetPostID: target}
}

func TestBuildInsights(t *testing.T) {
	posts := []domain.Post{
		{PostID: 1, Title: "Hub"},
		{PostID: 2, Title: "Spoke A"},
		{PostID: 3, Title: "Spoke B"},
		{PostID: 4, Title: "Orphan", PostName: "orphan"},
	}
	links := []domain.InternalLink{
		link(1, 2),
		link(1, 3),
		link(2, 1),
		link(3, 0), // unresolved outbound
	}

	ins := BuildInsights(posts, links)

	assert.Equal(t, 4, ins.TotalPosts)
	assert.Equal(t, 4, ins.TotalLinks)
	assert.Equal(t, 3, ins.ResolvedLinks)
	assert.Equal(t, 1, ins.UnresolvedLinks)
	assert.InDelta(t, 1.0, ins.AverageOutbound, 1e-9)
	assert.InDelta(t, 0.75, ins.AverageInbound, 1e-9)

	// Post 3 links out even though the link is unresolved, so only
	// post 4 is an orphan.
	assert.Len(t, ins.Orphans, 1)
	assert.Equal(t, 4, ins.Orphans[0].PostID)
	assert.Equal(t, "orphan", ins.Orphans[0].Slug)

	assert.Equal(t, []RankedPost{
		{PostID: 1, Title: "Hub", Count: 1},
		{PostID: 2, Title: "Spoke A", Count: 1},
		{PostID: 3, Title: "Spoke B", Count: 1},
	}, ins.TopInbound)
	assert.Equal(t, []RankedPost{
		{PostID: 1, Title: "Hub", Count: 2},
		{PostID: 2, Title: "Spoke A", Count: 1},
		{PostID: 3, Title: "Spoke B", Count: 1},
	}, ins.TopOutbound)
}

func TestBuildInsightsEmpty(t *testing.T) {
	ins := BuildInsights(nil, nil)

	assert.Zero(t, ins.TotalPosts)
	assert.Zero(t, ins.AverageOutbound)
	assert.Empty(t, ins.Orphans)
	assert.Empty(t, ins.TopInbound)
}

func TestRankCapsAtTen(t *testing.T) {
	var posts []domain.Post
	counts := make(map[int]int)
	for id := 1; id <= 15; id++ {
		posts = append(posts, domain.Post{PostID: id})
		counts[id] = id % 4 // mixed counts including zeroes
	}

	ranked := rank(posts, counts)

	assert.Len(t, ranked, 10)
	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		if cur.Count > prev.Count {
			t.Fatalf("ranking not sorted: %v before %v", prev, cur)
		}
		if cur.Count == prev.Count && cur.PostID < prev.PostID {
			t.Fatalf("tie not broken by post ID: %v before %v", prev, cur)
		}
	}
	for _, r := range ranked {
		assert.Positive(t, r.Count)
	}
}

func TestBuildData(t *testing.T) {
	posts := []domain.Post{
		{PostID: 1, Title: "One", PostName: "one", CategorySlugs: []string{"news", "extra"}},
		{PostID: 2, Title: "Two"},
	}
	links := []domain.InternalLink{
		link(1, 2),
		link(2, 0),  // unresolved, no edge
		link(1, 99), // target not in dataset, no edge
	}

	data := BuildData(posts, links)

	assert.Equal(t, []Edge{{Source: 1, Target: 2}}, data.Edges)
	assert.Len(t, data.Nodes, 2)
	assert.Equal(t, "news", data.Nodes[0].Group)
	assert.Equal(t, "one", data.Nodes[0].Slug)
	assert.Equal(t, 0, data.Nodes[0].Inbound)
	assert.Equal(t, "uncategorized", data.Nodes[1].Group)
	assert.Equal(t, 1, data.Nodes[1].Inbound)

	// Dropped edges still count toward fan-out: post 1 links out twice,
	// post 2 once.
	assert.Equal(t, 2, data.Nodes[0].Outbound)
	assert.Equal(t, 1, data.Nodes[1].Outbound)
}

func TestBuildDataNodeValue(t *testing.T) {
	short := "<p>just a handful of words</p>"
	long := "<p>" + repeatWords("word", 450) + "</p>"

	posts := []domain.Post{
		{PostID: 1, Title: "Short", ContentEncoded: short},
		{PostID: 2, Title: "Long", ContentEncoded: long},
		{PostID: 3, Title: "Empty"},
	}

	data := BuildData(posts, nil)

	assert.Equal(t, 5, data.Nodes[0].WordCount)
	assert.Equal(t, 1, data.Nodes[0].Value)
	assert.Equal(t, 450, data.Nodes[1].WordCount)
	assert.Equal(t, 3, data.Nodes[1].Value) // ceil(450/200)
	assert.Equal(t, 0, data.Nodes[2].WordCount)
	assert.Equal(t, 1, data.Nodes[2].Value) // floor of 1
}

func repeatWords(w string, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = w
	}
	return strings.Join(out, " ")
}
