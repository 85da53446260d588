// Package qa audits post content for migration hazards: missing or
// malformed metadata, thin or empty bodies, and leftover WordPress
// artifacts.
package qa

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// Severity of a content issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue is one finding on one post.
type Issue struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// PostReport carries all findings for one post plus the body metrics
// the rules were evaluated against. Severity is the worst issue found.
type PostReport struct {
	PostID           int      `json:"post_id"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug,omitempty"`
	Severity         Severity `json:"severity"`
	Issues           []Issue  `json:"issues"`
	WordCount        int      `json:"word_count"`
	LinkCount        int      `json:"link_count"`
	ImageCount       int      `json:"image_count"`
	HeadingCount     int      `json:"heading_count"`
	HasShortcodes    bool     `json:"has_shortcodes"`
	HasBlockComments bool     `json:"has_block_comments"`
}

// Report is the QA result over all posts. Posts without findings are
// omitted from Posts but counted in TotalChecked.
type Report struct {
	TotalChecked int          `json:"total_checked"`
	Flagged      int          `json:"flagged"`
	HighCount    int          `json:"high_count"`
	MediumCount  int          `json:"medium_count"`
	LowCount     int          `json:"low_count"`
	Posts        []PostReport `json:"posts"`
}

var (
	linkRe         = regexp.MustCompile(`(?i)<a\s[^>]*href=`)
	imageRe        = regexp.MustCompile(`(?i)<img\s[^>]*src=`)
	headingRe      = regexp.MustCompile(`(?i)<h[1-6][^>]*>`)
	shortcodeRe    = regexp.MustCompile(`\[[^\]]+\]`)
	blockCommentRe = regexp.MustCompile(`(?i)<!--\s*/?wp:`)
	inlineStyleRe  = regexp.MustCompile(`(?i)style\s*=\s*["']`)
	scriptRe       = regexp.MustCompile(`(?i)<script`)
	slugRe         = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Rule thresholds.
const (
	minTitleLen   = 3
	minExcerptLen = 20
	minWordCount  = 120
	maxLinkCount  = 80
	maxImageCount = 40
)

// Analyze audits every post of type "post". Pages and attachments are
// skipped.
func Analyze(posts []domain.Post) *Report {
	report := &Report{}

	for i := range posts {
		post := &posts[i]
		if post.PostType != domain.PostTypePost {
			continue
		}
		report.TotalChecked++

		pr := auditPost(post)
		if len(pr.Issues) == 0 {
			continue
		}

		report.Flagged++
		switch pr.Severity {
		case SeverityHigh:
			report.HighCount++
		case SeverityMedium:
			report.MediumCount++
		case SeverityLow:
			report.LowCount++
		}
		report.Posts = append(report.Posts, pr)
	}

	return report
}

func auditPost(post *domain.Post) PostReport {
	body := content.DecodeEntities(post.Body())
	text := content.StripHTML(body)

	pr := PostReport{
		PostID:           post.PostID,
		Title:            post.Title,
		Slug:             post.PostName,
		Severity:         SeverityLow,
		WordCount:        countWords(text),
		LinkCount:        len(linkRe.FindAllStringIndex(body, -1)),
		ImageCount:       len(imageRe.FindAllStringIndex(body, -1)),
		HeadingCount:     len(headingRe.FindAllStringIndex(body, -1)),
		HasShortcodes:    shortcodeRe.MatchString(body),
		HasBlockComments: blockCommentRe.MatchString(body),
	}

	add := func(code, msg string, sev Severity) {
		pr.Issues = append(pr.Issues, Issue{Code: code, Message: msg, Severity: sev})
		pr.Severity = escalate(pr.Severity, sev)
	}

	if len(strings.TrimSpace(post.Title)) < minTitleLen {
		add("missing-title", "missing or too-short title", SeverityHigh)
	}

	switch {
	case post.PostName == "":
		add("missing-slug", "missing slug", SeverityHigh)
	case !slugRe.MatchString(post.PostName):
		add("invalid-slug", "slug contains characters outside a-z, 0-9 and dashes", SeverityMedium)
	}

	switch {
	case pr.WordCount == 0:
		add("empty-content", "empty content", SeverityHigh)
	case pr.WordCount < minWordCount:
		add("thin-content", fmt.Sprintf("only %d words of content", pr.WordCount), SeverityMedium)
	}

	if len(strings.TrimSpace(post.Excerpt)) < minExcerptLen {
		add("missing-excerpt", "missing or too-short excerpt", SeverityMedium)
	}

	if pr.HeadingCount == 0 {
		add("no-headings", "body has no headings", SeverityMedium)
	}

	if pr.LinkCount > maxLinkCount {
		add("excessive-links", fmt.Sprintf("%d links in body", pr.LinkCount), SeverityHigh)
	}

	if pr.ImageCount > maxImageCount {
		add("heavy-images", fmt.Sprintf("%d images in body", pr.ImageCount), SeverityMedium)
	}

	if pr.HasShortcodes {
		add("shortcodes", "body contains shortcodes that will render as literal text", SeverityLow)
	}

	if pr.HasBlockComments {
		add("block-comments", "body contains Gutenberg block comments", SeverityLow)
	}

	if inlineStyleRe.MatchString(body) {
		add("inline-styles", "body uses inline style attributes", SeverityLow)
	}

	if scriptRe.MatchString(body) {
		add("script-tag", "body contains a <script> tag", SeverityHigh)
	}

	return pr
}

// escalate never downgrades an already-assigned severity.
func escalate(current, next Severity) Severity {
	if current == SeverityHigh || next == SeverityHigh {
		return SeverityHigh
	}
	if current == SeverityMedium || next == SeverityMedium {
		return SeverityMedium
	}
	return SeverityLow
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
