// Package graph derives link graph insights and visualization data from
// the stored internal link edges.
package graph

import (
	"sort"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// PostRef identifies a post in a report.
type PostRef struct {
	PostID int    `json:"post_id"`
	Title  string `json:"title"`
	Slug   string `json:"slug,omitempty"`
}

// RankedPost is a post with a link count, for top-N listings.
type RankedPost struct {
	PostID int    `json:"post_id"`
	Title  string `json:"title"`
	Count  int    `json:"count"`
}

// Insights summarizes the internal link structure of the site.
type Insights struct {
	TotalPosts      int     `json:"total_posts"`
	TotalLinks      int     `json:"total_links"`
	ResolvedLinks   int     `json:"resolved_links"`
	UnresolvedLinks int     `json:"unresolved_links"`
	AverageOutbound float64 `json:"average_outbound"`
	AverageInbound  float64 `json:"average_inbound"`

	// Orphans have no resolved inbound links and no outbound internal
	// links at all. They are unreachable through site navigation.
	Orphans []PostRef `json:"orphans"`

	TopInbound  []RankedPost `json:"top_inbound"`
	TopOutbound []RankedPost `json:"top_outbound"`
}

const topN = 10

// BuildInsights computes link statistics over all posts.
//
// Outbound counts include unresolved internal links (the post does link
// out, the target just didn't match). Inbound counts only resolved
// links, since an unresolved edge has no destination to credit.
func BuildInsights(posts []domain.Post, links []domain.InternalLink) *Insights {
	inbound := make(map[int]int)
	outbound := make(map[int]int)

	ins := &Insights{
		TotalPosts: len(posts),
		TotalLinks: len(links),
	}

	for i := range links {
		l := &links[i]
		outbound[l.SourcePostID]++
		if l.Resolved() {
			inbound[l.TargetPostID]++
			ins.ResolvedLinks++
		} else {
			ins.UnresolvedLinks++
		}
	}

	if len(posts) > 0 {
		ins.AverageOutbound = float64(len(links)) / float64(len(posts))
		ins.AverageInbound = float64(ins.ResolvedLinks) / float64(len(posts))
	}

	for i := range posts {
		p := &posts[i]
		if inbound[p.PostID] == 0 && outbound[p.PostID] == 0 {
			ins.Orphans = append(ins.Orphans, PostRef{
				PostID: p.PostID,
				Title:  p.Title,
				Slug:   p.PostName,
			})
		}
	}

	ins.TopInbound = rank(posts, inbound)
	ins.TopOutbound = rank(posts, outbound)

	return ins
}

// rank returns the top posts by count, ties broken by post ID for a
// stable report.
func rank(posts []domain.Post, counts map[int]int) []RankedPost {
	ranked := make([]RankedPost, 0, len(counts))
	for i := range posts {
		p := &posts[i]
		if c := counts[p.PostID]; c > 0 {
			ranked = append(ranked, RankedPost{PostID: p.PostID, Title: p.Title, Count: c})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].PostID < ranked[j].PostID
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Node is one post in the visualization graph. Value scales the node
// with the post's length, one unit per 200 words, at least 1.
type Node struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug,omitempty"`
	Group     string `json:"group"`
	Value     int    `json:"value"`
	Inbound   int    `json:"inbound"`
	Outbound  int    `json:"outbound"`
	WordCount int    `json:"word_count"`
}

// Edge is one resolved internal link.
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Data is the node/edge set for graph visualization.
type Data struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ungrouped is the node group for posts without a category.
const ungrouped = "uncategorized"

// wordsPerValueUnit converts a post's word count into node size.
const wordsPerValueUnit = 200

// BuildData assembles the visualization graph. Nodes are grouped by
// their first category slug; edges carry only resolved links whose
// endpoints both exist. Inbound/outbound tallies count every link with
// a known endpoint, so a post linking to unresolved targets still shows
// its fan-out.
func BuildData(posts []domain.Post, links []domain.InternalLink) *Data {
	known := make(map[int]bool, len(posts))
	inbound := make(map[int]int)
	outbound := make(map[int]int)
	for i := range posts {
		known[posts[i].PostID] = true
	}

	data := &Data{}
	for i := range links {
		l := &links[i]
		if known[l.SourcePostID] {
			outbound[l.SourcePostID]++
		}
		if l.Resolved() && known[l.TargetPostID] {
			inbound[l.TargetPostID]++
		}
		if !l.Resolved() || !known[l.SourcePostID] || !known[l.TargetPostID] {
			continue
		}
		data.Edges = append(data.Edges, Edge{Source: l.SourcePostID, Target: l.TargetPostID})
	}

	for i := range posts {
		p := &posts[i]
		group := ungrouped
		if len(p.CategorySlugs) > 0 {
			group = p.CategorySlugs[0]
		}
		words := len(strings.Fields(content.StripHTML(p.Body())))
		value := (words + wordsPerValueUnit - 1) / wordsPerValueUnit
		if value < 1 {
			value = 1
		}
		data.Nodes = append(data.Nodes, Node{
			ID:        p.PostID,
			Title:     p.Title,
			Slug:      p.PostName,
			Group:     group,
			Value:     value,
			Inbound:   inbound[p.PostID],
			Outbound:  outbound[p.PostID],
			WordCount: words,
		})
	}

	return data
}
