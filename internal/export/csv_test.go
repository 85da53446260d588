package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressmapapp/pressmap-server/internal/analysis/manifest"
	"github.com/pressmapapp/pressmap-server/internal/analysis/qa"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/export/blogcms"
)

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWritePostsCSV(t *testing.T) {
	published := time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC)
	posts := []blogcms.Post{
		{
			Title:           `A "quoted" title, with a comma`,
			Slug:            "quoted-title",
			Content:         "<p>body</p>",
			ContentMarkdown: "body",
			Status:          blogcms.StatusPublished,
			PublishedAt:     &published,
			AuthorID:        "author-1",
			Categories:      []string{"News", "Tech"},
			Tags:            []string{"go", "wordpress"},
			SourcePostID:    101,
		},
		{
			Title:        "Draft",
			Slug:         "draft",
			Status:       blogcms.StatusDraft,
			SourcePostID: 102,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePostsCSV(&buf, posts))

	rows := readAll(t, &buf)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Len(t, header, 17)
	assert.Equal(t, "title", header[0])
	assert.Equal(t, "source_post_id", header[16])

	first := rows[1]
	assert.Equal(t, `A "quoted" title, with a comma`, first[0])
	assert.Equal(t, "2023-06-15T09:30:00Z", first[6])
	assert.Equal(t, "", first[7]) // no scheduled_for
	assert.Equal(t, "News|Tech", first[14])
	assert.Equal(t, "go|wordpress", first[15])
	assert.Equal(t, "101", first[16])

	second := rows[2]
	assert.Equal(t, "", second[6]) // nil published_at renders empty
	assert.Equal(t, "", second[14])
}

func TestWriteCategoriesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategoriesCSV(&buf, []blogcms.Category{
		{Name: "News", Slug: "news"},
		{Name: "Sub", Slug: "sub", ParentSlug: "news"},
	}))

	rows := readAll(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "slug", "parent_slug"}, rows[0])
	assert.Equal(t, []string{"Sub", "sub", "news"}, rows[2])
}

func TestWriteTagsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTagsCSV(&buf, []blogcms.Tag{{Name: "Go", Slug: "go"}}))

	rows := readAll(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Go", "go"}, rows[1])
}

func TestWriteLinkMapCSV(t *testing.T) {
	links := []domain.InternalLink{
		{
			SourcePostID: 1, SourcePostTitle: "Alpha",
			AnchorText: "see beta", Href: "/beta/",
			TargetPostID: 2, TargetPostTitle: "Beta", TargetPostName: "beta",
		},
		{
			SourcePostID: 1, SourcePostTitle: "Alpha",
			AnchorText: "dead", Href: "/gone/",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLinkMapCSV(&buf, links))

	rows := readAll(t, &buf)
	require.Len(t, rows, 3)

	resolved := rows[1]
	assert.Equal(t, "2", resolved[4])
	assert.Equal(t, "true", resolved[7])

	// Unresolved links leave the target ID cell empty rather than "0".
	unresolved := rows[2]
	assert.Equal(t, "", unresolved[4])
	assert.Equal(t, "false", unresolved[7])
	assert.Equal(t, "/gone/", unresolved[3])
}

func TestWriteQACSV(t *testing.T) {
	report := &qa.Report{
		TotalChecked: 3,
		Posts: []qa.PostReport{
			{
				PostID: 7, Title: "Messy", Slug: "messy", Severity: qa.SeverityHigh,
				Issues: []qa.Issue{
					{Code: "script-tag", Message: "body contains a script tag", Severity: qa.SeverityHigh},
					{Code: "thin-content", Message: "only 42 words of content", Severity: qa.SeverityMedium},
				},
				WordCount: 42, LinkCount: 3, ImageCount: 1, HeadingCount: 2,
				HasShortcodes: true, HasBlockComments: false,
			},
			{
				PostID: 9, Title: "Untitled", Severity: qa.SeverityHigh,
				Issues: []qa.Issue{
					{Code: "missing-title", Message: "missing or too-short title", Severity: qa.SeverityHigh},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteQACSV(&buf, report))

	rows := readAll(t, &buf)
	// One row per flagged post, issues aggregated.
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"post_id", "title", "slug", "severity", "issues",
		"word_count", "link_count", "image_count", "heading_count",
		"shortcodes", "gutenberg_comments",
	}, rows[0])
	assert.Equal(t, []string{
		"7", "Messy", "messy", "high",
		"body contains a script tag; only 42 words of content",
		"42", "3", "1", "2", "true", "false",
	}, rows[1])
	assert.Equal(t, "missing or too-short title", rows[2][4])
	assert.Equal(t, "0", rows[2][5])
}

func TestWriteMediaManifestCSV(t *testing.T) {
	report := &manifest.Report{
		Entries: []manifest.Entry{
			{
				URL: "https://example.com/uploads/hero.jpg", Kind: "image",
				Filename: "hero.jpg", References: 3, PostCount: 2,
				UsedInPosts: []int{4, 11}, AttachmentID: 55,
				AttachmentURL: "https://example.com/uploads/hero.jpg", Matched: true,
			},
			{
				URL: "https://cdn.example.net/lost.png", Kind: "image",
				Filename: "lost.png", References: 1, PostCount: 1,
				UsedInPosts: []int{4},
			},
		},
		TotalRefs: 4,
		Matched:   1,
		Unmatched: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMediaManifestCSV(&buf, report))

	rows := readAll(t, &buf)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"url", "filename", "status", "type", "used_in_post_ids",
		"matched_attachment_id", "matched_attachment_url",
	}, rows[0])

	matched := rows[1]
	assert.Equal(t, "https://example.com/uploads/hero.jpg", matched[0])
	assert.Equal(t, "hero.jpg", matched[1])
	assert.Equal(t, "matched", matched[2])
	assert.Equal(t, "image", matched[3])
	assert.Equal(t, "4|11", matched[4])
	assert.Equal(t, "55", matched[5])
	assert.Equal(t, "https://example.com/uploads/hero.jpg", matched[6])

	// Unmatched entries report missing with blank attachment cells.
	unmatched := rows[2]
	assert.Equal(t, "missing", unmatched[2])
	assert.Equal(t, "", unmatched[5])
	assert.Equal(t, "", unmatched[6])
}

func TestWriteMarkdownPost(t *testing.T) {
	published := time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC)
	post := &blogcms.Post{
		Title:           `He said "go"`,
		Slug:            "he-said-go",
		Status:          blogcms.StatusPublished,
		PublishedAt:     &published,
		MetaDescription: "line one\nline two",
		Categories:      []string{"News"},
		Tags:            []string{"go"},
		ContentMarkdown: "# Heading\n\nBody text.",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdownPost(&buf, post))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.Contains(t, out, `title: "He said \"go\""`)
	assert.Contains(t, out, `date: "2023-06-15T09:30:00Z"`)
	assert.Contains(t, out, `description: "line one\nline two"`)
	assert.Contains(t, out, "categories:\n  - \"News\"\n")
	assert.Contains(t, out, "tags:\n  - \"go\"\n")
	assert.True(t, strings.HasSuffix(out, "# Heading\n\nBody text.\n"))
	assert.NotContains(t, out, "scheduled_for")
}

func TestWriteMarkdownPostFallsBackToHTML(t *testing.T) {
	post := &blogcms.Post{
		Title:   "No Markdown",
		Slug:    "no-markdown",
		Status:  blogcms.StatusDraft,
		Content: "<p>html body</p>",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdownPost(&buf, post))

	assert.Contains(t, buf.String(), "<p>html body</p>\n")
}
