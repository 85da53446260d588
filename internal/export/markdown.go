package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/export/blogcms"
)

// WriteMarkdownPost writes one post as a markdown document with YAML
// front matter, the shape static site generators ingest directly.
func WriteMarkdownPost(w io.Writer, post *blogcms.Post) error {
	var b strings.Builder
	b.WriteString("---\n")
	writeFrontMatter(&b, "title", post.Title)
	writeFrontMatter(&b, "slug", post.Slug)
	writeFrontMatter(&b, "status", post.Status)
	if post.PublishedAt != nil {
		writeFrontMatter(&b, "date", post.PublishedAt.Format(time.RFC3339))
	}
	if post.ScheduledFor != nil {
		writeFrontMatter(&b, "scheduled_for", post.ScheduledFor.Format(time.RFC3339))
	}
	if post.MetaDescription != "" {
		writeFrontMatter(&b, "description", post.MetaDescription)
	}
	if post.FeaturedImageURL != "" {
		writeFrontMatter(&b, "image", post.FeaturedImageURL)
	}
	if post.FeaturedImageAlt != "" {
		writeFrontMatter(&b, "image_alt", post.FeaturedImageAlt)
	}
	writeFrontMatterList(&b, "categories", post.Categories)
	writeFrontMatterList(&b, "tags", post.Tags)
	b.WriteString("---\n\n")

	body := post.ContentMarkdown
	if body == "" {
		body = post.Content
	}
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFrontMatter(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s: %s\n", key, yamlQuote(value))
}

func writeFrontMatterList(b *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", key)
	for _, v := range values {
		fmt.Fprintf(b, "  - %s\n", yamlQuote(v))
	}
}

// yamlQuote double-quotes a scalar, escaping what YAML requires.
// Everything gets quoted; guessing which scalars are safe bare is how
// front matter corruption happens.
func yamlQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
