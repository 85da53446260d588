// Package search provides full-text search over imported posts using
// Bleve, with category and tag filtering.
package search

import (
	"strconv"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// Document is the indexed form of one post. Bodies are indexed as
// stripped plain text; markup would pollute term frequencies.
type Document struct {
	ID         string   `json:"id"` // post ID as string, Bleve keys are strings
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Slug       string   `json:"slug,omitempty"`
	PostType   string   `json:"post_type"`
	Status     string   `json:"status"`
	Creator    string   `json:"creator,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Published  int64    `json:"published,omitempty"` // Unix millis
}

// FromPost builds the search document for a post.
func FromPost(p *domain.Post) *Document {
	doc := &Document{
		ID:         strconv.Itoa(p.PostID),
		Title:      p.Title,
		Body:       content.StripHTML(p.Body()),
		Excerpt:    content.StripHTML(p.Excerpt),
		Slug:       p.PostName,
		PostType:   p.PostType,
		Status:     p.Status,
		Creator:    p.Creator,
		Categories: p.CategorySlugs,
		Tags:       p.TagSlugs,
	}
	if p.PostDate != nil {
		doc.Published = p.PostDate.UnixMilli()
	}
	return doc
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":        d.ID,
		"title":     d.Title,
		"body":      d.Body,
		"post_type": d.PostType,
		"status":    d.Status,
	}

	if d.Excerpt != "" {
		m["excerpt"] = d.Excerpt
	}
	if d.Slug != "" {
		m["slug"] = d.Slug
	}
	if d.Creator != "" {
		m["creator"] = d.Creator
	}
	if len(d.Categories) > 0 {
		m["categories"] = d.Categories
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Published != 0 {
		m["published"] = d.Published
	}

	return m
}
