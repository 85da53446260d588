// Package blogcms maps imported WordPress records onto the BlogCMS
// content model and drives both file exports and remote API imports.
package blogcms

import (
	"strconv"
	"strings"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/analysis/seo"
	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/util"
)

// BlogCMS column limits. Values longer than these are truncated, never
// rejected.
const (
	TitleMax     = 200
	SlugMax      = 250
	MetaTitleMax = 60
	MetaDescMax  = 160
	KeywordsMax  = 255
	TagSlugMax   = 50
	CategoryMax  = 100
	AltTextMax   = 125
	ExcerptMax   = 500
)

// Post statuses in BlogCMS.
const (
	StatusPublished = "published"
	StatusScheduled = "scheduled"
	StatusDraft     = "draft"
)

// thumbnailMetaKey is the WordPress meta key holding the featured image
// attachment ID. altMetaKey holds the alt text on the attachment itself.
const (
	thumbnailMetaKey = "_thumbnail_id"
	altMetaKey       = "_wp_attachment_image_alt"
)

// SEO meta key fallback chains, one provider family after another.
var (
	metaTitleKeys    = []string{"_yoast_wpseo_title", "_rank_math_title", "_aioseo_title"}
	metaDescKeys     = []string{"_yoast_wpseo_metadesc", "_rank_math_description", "_aioseo_description"}
	metaKeywordsKeys = []string{"_yoast_wpseo_focuskw", "_rank_math_focus_keyword"}
)

// Post is one BlogCMS post record.
type Post struct {
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Content          string     `json:"content"`
	ContentMarkdown  string     `json:"content_markdown,omitempty"`
	Excerpt          string     `json:"excerpt,omitempty"`
	Status           string     `json:"status"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	ScheduledFor     *time.Time `json:"scheduled_for,omitempty"`
	AuthorID         string     `json:"author_id,omitempty"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	FeaturedImageAlt string     `json:"featured_image_alt,omitempty"`
	MetaTitle        string     `json:"meta_title,omitempty"`
	MetaDescription  string     `json:"meta_description,omitempty"`
	MetaKeywords     string     `json:"meta_keywords,omitempty"`
	Categories       []string   `json:"categories,omitempty"` // category names
	Tags             []string   `json:"tags,omitempty"`       // tag slugs

	SourcePostID int `json:"source_post_id"`
}

// Category is one BlogCMS category record.
type Category struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	ParentSlug string `json:"parent_slug,omitempty"`
}

// Tag is one BlogCMS tag record.
type Tag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Dataset is the full input a mapping run needs.
type Dataset struct {
	Posts       []domain.Post
	Categories  []domain.Category
	Tags        []domain.Tag
	Attachments []domain.Attachment
	MetaByPost  map[int]map[string]string
	AuthorID    string
	Now         time.Time // zero means time.Now()
}

// Export is the mapped BlogCMS dataset.
type Export struct {
	Posts      []Post
	Categories []Category
	Tags       []Tag
}

// Map converts the imported dataset to BlogCMS records, applying column
// limits and deriving status from post date.
func Map(ds Dataset) *Export {
	now := ds.Now
	if now.IsZero() {
		now = time.Now()
	}

	attByID := make(map[int]*domain.Attachment, len(ds.Attachments))
	for i := range ds.Attachments {
		attByID[ds.Attachments[i].PostID] = &ds.Attachments[i]
	}

	catNameBySlug := make(map[string]string, len(ds.Categories))
	out := &Export{}
	for i := range ds.Categories {
		c := &ds.Categories[i]
		name := util.Truncate(c.Name, CategoryMax)
		catNameBySlug[c.Nicename] = name
		out.Categories = append(out.Categories, Category{
			Name:       name,
			Slug:       util.SlugWithLimit(c.Nicename, SlugMax),
			ParentSlug: c.Parent,
		})
	}

	for i := range ds.Tags {
		t := &ds.Tags[i]
		out.Tags = append(out.Tags, Tag{
			Name: util.Truncate(t.Name, CategoryMax),
			Slug: util.SlugWithLimit(t.Slug(), TagSlugMax),
		})
	}

	for i := range ds.Posts {
		out.Posts = append(out.Posts, mapPost(&ds.Posts[i], ds, attByID, catNameBySlug, now))
	}

	return out
}

func mapPost(src *domain.Post, ds Dataset, attByID map[int]*domain.Attachment, catNameBySlug map[string]string, now time.Time) Post {
	body := src.Body()

	post := Post{
		Title:           util.Truncate(src.Title, TitleMax),
		Slug:            util.SlugWithLimit(src.PostName, SlugMax),
		Content:         body,
		ContentMarkdown: markdownFor(src),
		Excerpt:         util.Truncate(util.CollapseWhitespace(content.StripHTML(src.Excerpt)), ExcerptMax),
		AuthorID:        ds.AuthorID,
		SourcePostID:    src.PostID,
	}
	if post.Slug == "" {
		post.Slug = util.SlugWithLimit(src.Title, SlugMax)
	}

	// Status: published in the past stays published, published in the
	// future becomes scheduled. Unpublished posts land as drafts but keep
	// their intended date as the schedule.
	switch {
	case src.Published() && src.PostDate != nil && src.PostDate.After(now):
		post.Status = StatusScheduled
		post.ScheduledFor = src.PostDate
	case src.Published():
		post.Status = StatusPublished
		post.PublishedAt = src.PostDate
	default:
		post.Status = StatusDraft
		post.ScheduledFor = src.PostDate
	}

	meta := ds.MetaByPost[src.PostID]
	post.MetaTitle = util.Truncate(firstMeta(meta, metaTitleKeys, src.Title), MetaTitleMax)
	post.MetaDescription = util.Truncate(firstMeta(meta, metaDescKeys, post.Excerpt, post.ContentMarkdown), MetaDescMax)
	post.MetaKeywords = util.Truncate(firstMeta(meta, metaKeywordsKeys), KeywordsMax)

	if meta != nil {
		if thumbID, err := strconv.Atoi(meta[thumbnailMetaKey]); err == nil {
			if att := attByID[thumbID]; att != nil {
				post.FeaturedImageURL = att.URL
				if alt := ds.MetaByPost[att.PostID][altMetaKey]; alt != "" {
					post.FeaturedImageAlt = util.Truncate(alt, AltTextMax)
				}
			}
		}
	}

	for _, slug := range src.CategorySlugs {
		name := catNameBySlug[slug]
		if name == "" {
			name = util.Truncate(slug, CategoryMax)
		}
		post.Categories = append(post.Categories, name)
	}
	for _, slug := range src.TagSlugs {
		post.Tags = append(post.Tags, util.SlugWithLimit(slug, TagSlugMax))
	}

	return post
}

// firstMeta walks a key chain for the first non-blank provider value,
// template tokens stripped, then falls back through the extra values.
func firstMeta(meta map[string]string, keys []string, fallbacks ...string) string {
	for _, key := range keys {
		if v := seo.StripTemplateTokens(meta[key]); v != "" {
			return v
		}
	}
	for _, v := range fallbacks {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// markdownFor prefers the cached derived markdown and converts on the
// fly when the cache is cold.
func markdownFor(src *domain.Post) string {
	if src.Markdown != "" {
		return src.Markdown
	}
	return content.ToMarkdown(src.Body())
}
