// Package domain contains the core entities for an imported WordPress site.
package domain

import "time"

// Post types as they appear in a WXR export.
const (
	PostTypePost       = "post"
	PostTypePage       = "page"
	PostTypeAttachment = "attachment"
)

// StatusPublish is the WordPress status for published content.
const StatusPublish = "publish"

// Post represents a content item (post or page) from a WXR export.
// PostID is the source-stable WordPress ID and serves as identity.
type Post struct {
	PostID            int        `json:"post_id"`
	Title             string     `json:"title"`
	Link              string     `json:"link,omitempty"` // Original absolute URL
	PostType          string     `json:"post_type"`
	Status            string     `json:"status"`
	PostDate          *time.Time `json:"post_date,omitempty"`
	PostName          string     `json:"post_name"` // Slug; should be unique but not enforced
	Creator           string     `json:"creator,omitempty"`
	ContentEncoded    string     `json:"content_encoded,omitempty"`
	CleanedHTMLSource string     `json:"cleaned_html_source,omitempty"` // Live copy after cleanup passes
	Excerpt           string     `json:"excerpt,omitempty"`
	Markdown          string     `json:"markdown,omitempty"` // Derived cache, may be empty
	CategorySlugs     []string   `json:"category_slugs,omitempty"`
	TagSlugs          []string   `json:"tag_slugs,omitempty"`
}

// Body returns the HTML body, preferring the cleaned copy when cleanup
// has run and falling back to the raw imported content.
func (p *Post) Body() string {
	if p.CleanedHTMLSource != "" {
		return p.CleanedHTMLSource
	}
	return p.ContentEncoded
}

// Published reports whether the post is publicly published.
func (p *Post) Published() bool {
	return p.Status == StatusPublish
}

// HasTag reports whether the post's tag membership contains the slug.
func (p *Post) HasTag(slug string) bool {
	for _, s := range p.TagSlugs {
		if s == slug {
			return true
		}
	}
	return false
}
