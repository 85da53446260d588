package seo

import (
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// lowReadabilityThreshold is the Yoast content score under which a post
// counts as hard to read. Posts without a score are not flagged.
const lowReadabilityThreshold = 60

// AuditSummary counts the gaps across all normalized entries.
type AuditSummary struct {
	Total                 int `json:"total"`
	MissingTitle          int `json:"missing_title"`
	MissingDescription    int `json:"missing_description"`
	MissingCanonical      int `json:"missing_canonical"`
	MissingOpenGraphImage int `json:"missing_open_graph_image"`
	MissingTwitterTitle   int `json:"missing_twitter_title"`
	MissingFocusKeyword   int `json:"missing_focus_keyword"`
	NoIndexCount          int `json:"no_index_count"`
	LowReadability        int `json:"low_readability"`
	SchemaMissing         int `json:"schema_missing"`
}

// AuditLists holds the entries behind each summary count.
type AuditLists struct {
	MissingTitle          []Entry `json:"missing_title"`
	MissingDescription    []Entry `json:"missing_description"`
	MissingCanonical      []Entry `json:"missing_canonical"`
	MissingOpenGraphImage []Entry `json:"missing_open_graph_image"`
	MissingTwitterTitle   []Entry `json:"missing_twitter_title"`
	MissingFocusKeyword   []Entry `json:"missing_focus_keyword"`
	NoIndex               []Entry `json:"no_index"`
	LowReadability        []Entry `json:"low_readability"`
	SchemaMissing         []Entry `json:"schema_missing"`
}

// AuditReport groups normalized entries by the gap they exhibit.
type AuditReport struct {
	Summary AuditSummary `json:"summary"`
	Lists   AuditLists   `json:"lists"`
}

// BuildAuditReport sifts a normalization report into per-gap lists.
func BuildAuditReport(report *Report) *AuditReport {
	audit := &AuditReport{Summary: AuditSummary{Total: len(report.Entries)}}

	for _, entry := range report.Entries {
		seo := entry.SEO
		if !seo.MetaPresence.Title {
			audit.Lists.MissingTitle = append(audit.Lists.MissingTitle, entry)
		}
		if !seo.MetaPresence.Description {
			audit.Lists.MissingDescription = append(audit.Lists.MissingDescription, entry)
		}
		if !seo.MetaPresence.Canonical {
			audit.Lists.MissingCanonical = append(audit.Lists.MissingCanonical, entry)
		}
		if !seo.MetaPresence.OpenGraphImage {
			audit.Lists.MissingOpenGraphImage = append(audit.Lists.MissingOpenGraphImage, entry)
		}
		if !seo.MetaPresence.TwitterTitle {
			audit.Lists.MissingTwitterTitle = append(audit.Lists.MissingTwitterTitle, entry)
		}
		if !seo.MetaPresence.FocusKeyword {
			audit.Lists.MissingFocusKeyword = append(audit.Lists.MissingFocusKeyword, entry)
		}
		if !seo.Robots.Index {
			audit.Lists.NoIndex = append(audit.Lists.NoIndex, entry)
		}
		if seo.ReadabilityScore != nil && *seo.ReadabilityScore < lowReadabilityThreshold {
			audit.Lists.LowReadability = append(audit.Lists.LowReadability, entry)
		}
		if seo.SchemaCount == 0 {
			audit.Lists.SchemaMissing = append(audit.Lists.SchemaMissing, entry)
		}
	}

	audit.Summary.MissingTitle = len(audit.Lists.MissingTitle)
	audit.Summary.MissingDescription = len(audit.Lists.MissingDescription)
	audit.Summary.MissingCanonical = len(audit.Lists.MissingCanonical)
	audit.Summary.MissingOpenGraphImage = len(audit.Lists.MissingOpenGraphImage)
	audit.Summary.MissingTwitterTitle = len(audit.Lists.MissingTwitterTitle)
	audit.Summary.MissingFocusKeyword = len(audit.Lists.MissingFocusKeyword)
	audit.Summary.NoIndexCount = len(audit.Lists.NoIndex)
	audit.Summary.LowReadability = len(audit.Lists.LowReadability)
	audit.Summary.SchemaMissing = len(audit.Lists.SchemaMissing)

	return audit
}

// QuickSummary is a fast pre-normalization pass over raw posts.
type QuickSummary struct {
	TotalPosts      int `json:"total_posts"`
	MissingTitles   int `json:"missing_titles"`
	MissingExcerpts int `json:"missing_excerpts"`
	ShortContent    int `json:"short_content"`
	DuplicateSlugs  int `json:"duplicate_slugs"`
}

// Quick-audit thresholds.
const (
	quickMinTitleLen   = 3
	quickMinExcerptLen = 20
	quickMinWords      = 120
)

// QuickAudit scans posts of type "post" for the most common SEO gaps
// without consulting plugin meta.
func QuickAudit(posts []domain.Post) *QuickSummary {
	summary := &QuickSummary{}
	slugCounts := make(map[string]int)

	for i := range posts {
		post := &posts[i]
		if post.PostType != domain.PostTypePost {
			continue
		}
		summary.TotalPosts++

		if len(strings.TrimSpace(post.Title)) < quickMinTitleLen {
			summary.MissingTitles++
		}
		if len(strings.TrimSpace(post.Excerpt)) < quickMinExcerptLen {
			summary.MissingExcerpts++
		}
		if len(strings.Fields(content.StripHTML(post.Body()))) < quickMinWords {
			summary.ShortContent++
		}
		if slug := strings.ToLower(strings.TrimSpace(post.PostName)); slug != "" {
			slugCounts[slug]++
		}
	}

	for _, n := range slugCounts {
		if n > 1 {
			summary.DuplicateSlugs++
		}
	}

	return summary
}
