package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func post(id int, title string) domain.Post {
	return domain.Post{PostID: id, PostType: domain.PostTypePost, Title: title, PostName: "p"}
}

func normalize(posts []domain.Post, meta map[int]map[string]string) *Report {
	return Normalize(posts, meta, content.NewExtractor())
}

func TestNormalizeProviderPriority(t *testing.T) {
	posts := []domain.Post{post(1, "Mixed Providers")}
	meta := map[int]map[string]string{
		1: {
			"_yoast_wpseo_title":   "Yoast Title",
			"_aioseop_title":       "AIOSEO Title",
			"_aioseop_description": "AIOSEO description",
			"_aioseop_keywords":    "one, two",
		},
	}

	report := normalize(posts, meta)

	seo := report.Entries[0].SEO
	assert.Equal(t, "Yoast Title", seo.Title)
	assert.Equal(t, "AIOSEO description", seo.Description)
	assert.Equal(t, []string{"one", "two"}, seo.FocusKeywords)
	assert.Equal(t, SourceYoast, seo.Source)
	assert.True(t, seo.MetaPresence.Title)
	assert.True(t, seo.MetaPresence.Description)
	assert.True(t, seo.MetaPresence.FocusKeyword)
	assert.True(t, report.PluginUsage.Yoast)
	assert.True(t, report.PluginUsage.AIOSEOLegacy)
}

func TestNormalizeTemplateTokensStripped(t *testing.T) {
	posts := []domain.Post{post(1, "Post")}
	meta := map[int]map[string]string{
		1: {"_yoast_wpseo_title": "My Post %%sep%% My Site"},
	}

	report := normalize(posts, meta)

	assert.Equal(t, "My Post My Site", report.Entries[0].SEO.Title)
	assert.Equal(t, SourceYoast, report.Entries[0].SEO.Source)
}

func TestNormalizeDescriptionFallback(t *testing.T) {
	longBody := "<p>" + strings.Repeat("word ", 60) + "</p>"

	posts := []domain.Post{
		{PostID: 1, PostType: domain.PostTypePost, Title: "With Excerpt", Excerpt: "<p>Hand written excerpt.</p>", ContentEncoded: longBody},
		{PostID: 2, PostType: domain.PostTypePost, Title: "Body Only", ContentEncoded: longBody},
	}

	report := normalize(posts, nil)

	assert.Equal(t, "Hand written excerpt.", report.Entries[0].SEO.Description)
	assert.False(t, report.Entries[0].SEO.MetaPresence.Description)

	body := report.Entries[1].SEO.Description
	assert.LessOrEqual(t, len(body), 160)
	assert.True(t, strings.HasPrefix(body, "word word"))
	assert.Equal(t, SourceFallback, report.Entries[1].SEO.Source)
}

func TestNormalizeTitleFallsBackToUntitled(t *testing.T) {
	report := normalize([]domain.Post{{PostID: 1, PostType: domain.PostTypePost}}, nil)
	assert.Equal(t, "Untitled", report.Entries[0].SEO.Title)
	assert.Equal(t, SourceFallback, report.Entries[0].SEO.Source)
}

func TestNormalizeRobots(t *testing.T) {
	tests := []struct {
		name       string
		meta       map[string]string
		wantIndex  bool
		wantFollow bool
	}{
		{"yoast noindex one", map[string]string{"_yoast_wpseo_meta-robots-noindex": "1"}, false, true},
		{"aioseo noindex true", map[string]string{"_aioseop_noindex": "TRUE"}, false, true},
		{"yoast nofollow", map[string]string{"_yoast_wpseo_meta-robots-nofollow": "yes"}, true, false},
		{"zero is indexable", map[string]string{"_yoast_wpseo_meta-robots-noindex": "0"}, true, true},
		{"absent", nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := normalize([]domain.Post{post(1, "P")}, map[int]map[string]string{1: tt.meta})
			robots := report.Entries[0].SEO.Robots
			assert.Equal(t, tt.wantIndex, robots.Index)
			assert.Equal(t, tt.wantFollow, robots.Follow)
		})
	}
}

func TestNormalizeSocialAndSitemap(t *testing.T) {
	meta := map[int]map[string]string{
		1: {
			"_yoast_wpseo_opengraph-title":      "OG Title",
			"_aioseop_opengraph_settings_image": "https://example.com/og.jpg",
			"_yoast_wpseo_twitter-title":        "Tw Title",
			"_yoast_wpseo_sitemap-prio":         "0.8",
			"_yoast_wpseo_sitemap-changefreq":   "weekly",
			"_yoast_wpseo_content_score":        "30",
		},
	}

	report := normalize([]domain.Post{post(1, "P")}, meta)

	seo := report.Entries[0].SEO
	assert.Equal(t, "OG Title", seo.OpenGraph.Title)
	assert.Equal(t, "https://example.com/og.jpg", seo.OpenGraph.Image)
	assert.Equal(t, "Tw Title", seo.Twitter.Title)
	assert.Equal(t, "0.8", seo.Sitemap.Priority)
	assert.Equal(t, "weekly", seo.Sitemap.ChangeFreq)
	assert.True(t, seo.MetaPresence.OpenGraphImage)
	assert.True(t, seo.MetaPresence.TwitterTitle)
	if assert.NotNil(t, seo.ReadabilityScore) {
		assert.Equal(t, 30, *seo.ReadabilityScore)
	}
}

func TestNormalizeSchemaCount(t *testing.T) {
	posts := []domain.Post{{
		PostID: 1, PostType: domain.PostTypePost, Title: "P",
		ContentEncoded: `<p>Body</p><script type="application/ld+json">{"@type":"Article"}</script>`,
	}}

	report := normalize(posts, nil)

	assert.Equal(t, 1, report.Entries[0].SEO.SchemaCount)
}

func TestNormalizeSkipsPages(t *testing.T) {
	posts := []domain.Post{
		{PostID: 1, PostType: domain.PostTypePage, Title: "About"},
		post(2, "A Post"),
	}

	report := normalize(posts, nil)

	assert.Len(t, report.Entries, 1)
	assert.Equal(t, 2, report.Entries[0].PostID)
}

func TestNormalizeAIOSEOWarnings(t *testing.T) {
	t.Run("v4 residue without legacy values", func(t *testing.T) {
		meta := map[int]map[string]string{1: {"_aioseo_title": "residue"}}
		report := normalize([]domain.Post{post(1, "P")}, meta)

		assert.True(t, report.PluginUsage.AIOSEO)
		assert.False(t, report.PluginUsage.AIOSEOLegacy)
		assert.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "v4")
	})

	t.Run("legacy keys with low coverage", func(t *testing.T) {
		var posts []domain.Post
		for id := 1; id <= 10; id++ {
			posts = append(posts, post(id, "P"))
		}
		meta := map[int]map[string]string{1: {"_aioseop_title": "only one"}}

		report := normalize(posts, meta)

		assert.True(t, report.PluginUsage.AIOSEOLegacy)
		assert.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "coverage is low")
	})
}

func TestBuildAuditReport(t *testing.T) {
	score := 30
	report := &Report{Entries: []Entry{
		{PostID: 1, SEO: Normalized{
			MetaPresence: MetaPresence{Title: true, Description: true, Canonical: true, FocusKeyword: true, OpenGraphImage: true, TwitterTitle: true},
			Robots:       Robots{Index: true, Follow: true},
			SchemaCount:  2,
		}},
		{PostID: 2, SEO: Normalized{
			Robots:           Robots{Index: false, Follow: true},
			ReadabilityScore: &score,
		}},
	}}

	audit := BuildAuditReport(report)

	assert.Equal(t, 2, audit.Summary.Total)
	assert.Equal(t, 1, audit.Summary.MissingTitle)
	assert.Equal(t, 1, audit.Summary.MissingDescription)
	assert.Equal(t, 1, audit.Summary.MissingCanonical)
	assert.Equal(t, 1, audit.Summary.MissingOpenGraphImage)
	assert.Equal(t, 1, audit.Summary.MissingTwitterTitle)
	assert.Equal(t, 1, audit.Summary.MissingFocusKeyword)
	assert.Equal(t, 1, audit.Summary.NoIndexCount)
	assert.Equal(t, 1, audit.Summary.LowReadability)
	assert.Equal(t, 1, audit.Summary.SchemaMissing)
	assert.Equal(t, 2, audit.Lists.MissingTitle[0].PostID)
	assert.Equal(t, 2, audit.Lists.NoIndex[0].PostID)
}

func TestQuickAudit(t *testing.T) {
	longBody := "<p>" + strings.Repeat("word ", 150) + "</p>"
	posts := []domain.Post{
		{PostID: 1, PostType: domain.PostTypePost, Title: "Fine Title", PostName: "fine",
			Excerpt: "An excerpt long enough to count.", ContentEncoded: longBody},
		{PostID: 2, PostType: domain.PostTypePost, Title: "AB", PostName: "dupe", ContentEncoded: "<p>short</p>"},
		{PostID: 3, PostType: domain.PostTypePost, Title: "Other", PostName: "DUPE", ContentEncoded: longBody},
		{PostID: 4, PostType: domain.PostTypePage, Title: "", PostName: ""},
	}

	summary := QuickAudit(posts)

	assert.Equal(t, 3, summary.TotalPosts)
	assert.Equal(t, 1, summary.MissingTitles)
	assert.Equal(t, 2, summary.MissingExcerpts)
	assert.Equal(t, 1, summary.ShortContent)
	assert.Equal(t, 1, summary.DuplicateSlugs)
}
