package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Query describes one search request.
type Query struct {
	Text     string // free text over title, body, excerpt, creator
	PostType string // exact filter, empty for all
	Status   string // exact filter, empty for all
	Category string // category slug filter
	Tag      string // tag slug filter
	Page     int    // 1-based
	PageSize int
}

// Hit is one matching post.
type Hit struct {
	PostID    int                 `json:"post_id"`
	Title     string              `json:"title"`
	Slug      string              `json:"slug,omitempty"`
	Score     float64             `json:"score"`
	Fragments map[string][]string `json:"fragments,omitempty"`
}

// Results is a page of search hits.
type Results struct {
	Hits     []Hit  `json:"hits"`
	Total    uint64 `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// titleBoost weights title matches over body matches.
	titleBoost = 2.0
)

// Search executes a query against the index.
func (s *Index) Search(ctx context.Context, q Query) (*Results, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), q.PageSize, (q.Page-1)*q.PageSize, false)
	req.Fields = []string{"title", "slug"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("body")

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	results := &Results{
		Total:    res.Total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}

	for _, hit := range res.Hits {
		postID, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		h := Hit{
			PostID: postID,
			Score:  hit.Score,
		}
		if title, ok := hit.Fields["title"].(string); ok {
			h.Title = title
		}
		if slug, ok := hit.Fields["slug"].(string); ok {
			h.Slug = slug
		}
		if len(hit.Fragments) > 0 {
			h.Fragments = hit.Fragments
		}
		results.Hits = append(results.Hits, h)
	}

	return results, nil
}

// buildQuery assembles the Bleve query: free text as a disjunction over
// the text fields with boosted titles, exact filters as conjuncts.
func buildQuery(q Query) query.Query {
	var conjuncts []query.Query

	if q.Text != "" {
		title := bleve.NewMatchQuery(q.Text)
		title.SetField("title")
		title.SetBoost(titleBoost)

		body := bleve.NewMatchQuery(q.Text)
		body.SetField("body")

		excerpt := bleve.NewMatchQuery(q.Text)
		excerpt.SetField("excerpt")

		creator := bleve.NewMatchQuery(q.Text)
		creator.SetField("creator")

		// Fuzzy pass catches typos the exact match misses.
		fuzzy := bleve.NewMatchQuery(q.Text)
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)

		conjuncts = append(conjuncts, bleve.NewDisjunctionQuery(title, body, excerpt, creator, fuzzy))
	}

	for field, value := range map[string]string{
		"post_type":  q.PostType,
		"status":     q.Status,
		"categories": q.Category,
		"tags":       q.Tag,
	} {
		if value == "" {
			continue
		}
		term := bleve.NewTermQuery(value)
		term.SetField(field)
		conjuncts = append(conjuncts, term)
	}

	if len(conjuncts) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(conjuncts...)
}
