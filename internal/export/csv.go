// Package export writes migration bundles: CSV files, a JSON dump, a
// markdown tree, and a SQLite database ready for BlogCMS ingestion.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/analysis/manifest"
	"github.com/pressmapapp/pressmap-server/internal/analysis/qa"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/export/blogcms"
)

// listSeparator joins multi-valued CSV cells (categories, tags).
// CSV quoting handles commas inside values; the pipe keeps the cell
// itself splittable.
const listSeparator = "|"

var postHeader = []string{
	"title", "slug", "content", "content_markdown", "excerpt", "status",
	"published_at", "scheduled_for", "author_id",
	"featured_image_url", "featured_image_alt",
	"meta_title", "meta_description", "meta_keywords",
	"categories", "tags", "source_post_id",
}

// WritePostsCSV streams the mapped posts as CSV.
func WritePostsCSV(w io.Writer, posts []blogcms.Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(postHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range posts {
		p := &posts[i]
		record := []string{
			p.Title,
			p.Slug,
			p.Content,
			p.ContentMarkdown,
			p.Excerpt,
			p.Status,
			formatTime(p.PublishedAt),
			formatTime(p.ScheduledFor),
			p.AuthorID,
			p.FeaturedImageURL,
			p.FeaturedImageAlt,
			p.MetaTitle,
			p.MetaDescription,
			p.MetaKeywords,
			strings.Join(p.Categories, listSeparator),
			strings.Join(p.Tags, listSeparator),
			strconv.Itoa(p.SourcePostID),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write post %q: %w", p.Slug, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCategoriesCSV streams the mapped categories as CSV.
func WriteCategoriesCSV(w io.Writer, categories []blogcms.Category) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "slug", "parent_slug"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range categories {
		if err := cw.Write([]string{c.Name, c.Slug, c.ParentSlug}); err != nil {
			return fmt.Errorf("write category %q: %w", c.Slug, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTagsCSV streams the mapped tags as CSV.
func WriteTagsCSV(w io.Writer, tags []blogcms.Tag) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "slug"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range tags {
		if err := cw.Write([]string{t.Name, t.Slug}); err != nil {
			return fmt.Errorf("write tag %q: %w", t.Slug, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLinkMapCSV streams the internal link edges as CSV, one row per
// anchor, resolved or not.
func WriteLinkMapCSV(w io.Writer, links []domain.InternalLink) error {
	cw := csv.NewWriter(w)
	header := []string{
		"source_post_id", "source_title", "anchor_text", "href",
		"target_post_id", "target_title", "target_slug", "resolved",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range links {
		l := &links[i]
		targetID := ""
		if l.Resolved() {
			targetID = strconv.Itoa(l.TargetPostID)
		}
		record := []string{
			strconv.Itoa(l.SourcePostID),
			l.SourcePostTitle,
			l.AnchorText,
			l.Href,
			targetID,
			l.TargetPostTitle,
			l.TargetPostName,
			strconv.FormatBool(l.Resolved()),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write link row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteQACSV streams the QA findings as CSV, one row per flagged post
// with its issues aggregated into a single cell.
func WriteQACSV(w io.Writer, report *qa.Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"post_id", "title", "slug", "severity", "issues",
		"word_count", "link_count", "image_count", "heading_count",
		"shortcodes", "gutenberg_comments",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range report.Posts {
		p := &report.Posts[i]
		messages := make([]string, len(p.Issues))
		for j, issue := range p.Issues {
			messages[j] = issue.Message
		}
		record := []string{
			strconv.Itoa(p.PostID),
			p.Title,
			p.Slug,
			string(p.Severity),
			strings.Join(messages, "; "),
			strconv.Itoa(p.WordCount),
			strconv.Itoa(p.LinkCount),
			strconv.Itoa(p.ImageCount),
			strconv.Itoa(p.HeadingCount),
			strconv.FormatBool(p.HasShortcodes),
			strconv.FormatBool(p.HasBlockComments),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write qa row for post %d: %w", p.PostID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMediaManifestCSV streams the media reference manifest as CSV.
func WriteMediaManifestCSV(w io.Writer, report *manifest.Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"url", "filename", "status", "type", "used_in_post_ids",
		"matched_attachment_id", "matched_attachment_url",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range report.Entries {
		e := &report.Entries[i]
		status := "missing"
		attachmentID := ""
		if e.Matched {
			status = "matched"
			attachmentID = strconv.Itoa(e.AttachmentID)
		}
		postIDs := make([]string, len(e.UsedInPosts))
		for j, id := range e.UsedInPosts {
			postIDs[j] = strconv.Itoa(id)
		}
		record := []string{
			e.URL,
			e.Filename,
			status,
			e.Kind,
			strings.Join(postIDs, listSeparator),
			attachmentID,
			e.AttachmentURL,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write media row %q: %w", e.URL, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
