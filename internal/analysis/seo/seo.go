// Package seo normalizes SEO plugin metadata from post meta rows into
// one provider-independent record per post.
//
// Yoast SEO is the primary provider and All in One SEO the secondary.
// A post with neither falls back to the post title and body text.
package seo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/util"
)

// Meta keys written by Yoast SEO.
const (
	yoastTitle        = "_yoast_wpseo_title"
	yoastDesc         = "_yoast_wpseo_metadesc"
	yoastFocusKW      = "_yoast_wpseo_focuskw"
	yoastCanonical    = "_yoast_wpseo_canonical"
	yoastNoindex      = "_yoast_wpseo_meta-robots-noindex"
	yoastNofollow     = "_yoast_wpseo_meta-robots-nofollow"
	yoastOGTitle      = "_yoast_wpseo_opengraph-title"
	yoastOGImage      = "_yoast_wpseo_opengraph-image"
	yoastTwTitle      = "_yoast_wpseo_twitter-title"
	yoastTwImage      = "_yoast_wpseo_twitter-image"
	yoastContentScore = "_yoast_wpseo_content_score"
	yoastSitemapPrio  = "_yoast_wpseo_sitemap-prio"
	yoastSitemapFreq  = "_yoast_wpseo_sitemap-changefreq"
)

// Meta keys written by All in One SEO v3 and earlier. v4 moved its data
// out of post meta entirely and only leaves _aioseo_-prefixed residue.
const (
	aioseoTitle     = "_aioseop_title"
	aioseoDesc      = "_aioseop_description"
	aioseoKeywords  = "_aioseop_keywords"
	aioseoCanonical = "_aioseop_custom_link"
	aioseoNoindex   = "_aioseop_noindex"
	aioseoOGTitle   = "_aioseop_opengraph_settings_title"
	aioseoOGImage   = "_aioseop_opengraph_settings_image"
	aioseoTwTitle   = "_aioseop_twitter_settings_title"
	aioseoTwImage   = "_aioseop_twitter_settings_image"
)

const (
	yoastPrefix        = "_yoast_wpseo_"
	aioseoV4Prefix     = "_aioseo_"
	aioseoLegacyPrefix = "_aioseop_"
)

// Source identifies which provider supplied a post's record.
type Source string

const (
	SourceYoast    Source = "yoast"
	SourceAIOSEO   Source = "aioseo"
	SourceFallback Source = "fallback"
)

// descriptionFallbackLen is how much stripped body text stands in for a
// missing meta description.
const descriptionFallbackLen = 160

// Robots holds the effective indexing directives.
type Robots struct {
	Index  bool `json:"index"`
	Follow bool `json:"follow"`
}

// OpenGraph holds the social sharing overrides.
type OpenGraph struct {
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

// Twitter holds the Twitter card overrides.
type Twitter struct {
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

// Sitemap holds per-post sitemap hints.
type Sitemap struct {
	Priority   string `json:"priority,omitempty"`
	ChangeFreq string `json:"changefreq,omitempty"`
}

// MetaPresence flags which fields a plugin actually supplied, as
// opposed to fallback values derived from the post itself.
type MetaPresence struct {
	Title          bool `json:"title"`
	Description    bool `json:"description"`
	Canonical      bool `json:"canonical"`
	FocusKeyword   bool `json:"focus_keyword"`
	OpenGraphImage bool `json:"open_graph_image"`
	TwitterTitle   bool `json:"twitter_title"`
}

// Normalized is the provider-independent SEO record for one post.
type Normalized struct {
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	FocusKeywords    []string     `json:"focus_keywords,omitempty"`
	Canonical        string       `json:"canonical,omitempty"`
	Robots           Robots       `json:"robots"`
	OpenGraph        OpenGraph    `json:"open_graph"`
	Twitter          Twitter      `json:"twitter"`
	Sitemap          Sitemap      `json:"sitemap"`
	ReadabilityScore *int         `json:"readability_score,omitempty"`
	SchemaCount      int          `json:"schema_count"`
	MetaPresence     MetaPresence `json:"meta_presence"`
	Source           Source       `json:"source"`
}

// Entry pairs a post with its normalized record.
type Entry struct {
	PostID int        `json:"post_id"`
	Title  string     `json:"title"`
	Slug   string     `json:"slug,omitempty"`
	SEO    Normalized `json:"seo"`
}

// PluginUsage reports which SEO plugins left traces in post meta.
type PluginUsage struct {
	Yoast        bool `json:"yoast"`
	AIOSEO       bool `json:"aioseo"`
	AIOSEOLegacy bool `json:"aioseo_legacy"`
}

// Report is the full normalization output.
type Report struct {
	Entries     []Entry     `json:"entries"`
	PluginUsage PluginUsage `json:"plugin_usage"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// lowCoverageThreshold triggers a warning when legacy AIOSEO keys exist
// but cover few posts, which usually means a partial plugin migration.
const lowCoverageThreshold = 0.2

// templateTokenRe matches provider replacement tokens like %%title%% or
// %%sep%% that have no value outside WordPress.
var templateTokenRe = regexp.MustCompile(`%%[^%]+%%`)

// StripTemplateTokens removes provider template tokens and collapses
// the whitespace they leave behind.
func StripTemplateTokens(s string) string {
	return util.CollapseWhitespace(templateTokenRe.ReplaceAllString(s, " "))
}

// Normalize builds one record per post of type "post" from the meta
// index. The extractor counts embedded JSON-LD schemas per body.
func Normalize(posts []domain.Post, metaByPost map[int]map[string]string, extractor content.Extractor) *Report {
	report := &Report{}
	aioseoHits := 0

	for i := range posts {
		post := &posts[i]
		if post.PostType != domain.PostTypePost {
			continue
		}
		meta := metaByPost[post.PostID]

		detectPlugins(meta, &report.PluginUsage)

		entry := Entry{
			PostID: post.PostID,
			Title:  post.Title,
			Slug:   post.PostName,
			SEO:    normalizePost(post, meta, extractor),
		}
		if entry.SEO.Source == SourceAIOSEO {
			aioseoHits++
		}
		report.Entries = append(report.Entries, entry)
	}

	usage := report.PluginUsage
	if usage.AIOSEO && usage.AIOSEOLegacy && len(report.Entries) > 0 {
		coverage := float64(aioseoHits) / float64(len(report.Entries))
		if coverage < lowCoverageThreshold {
			report.Warnings = append(report.Warnings,
				"All in One SEO detected but its meta coverage is low; most posts carry no AIOSEO values")
		}
	}
	if usage.AIOSEO && !usage.AIOSEOLegacy {
		report.Warnings = append(report.Warnings,
			"All in One SEO v4 detected; v4 stores its values outside post meta and the XML export may omit them")
	}

	return report
}

func detectPlugins(meta map[string]string, usage *PluginUsage) {
	for key := range meta {
		switch {
		case strings.HasPrefix(key, yoastPrefix):
			usage.Yoast = true
		case strings.HasPrefix(key, aioseoLegacyPrefix):
			usage.AIOSEO = true
			usage.AIOSEOLegacy = true
		case strings.HasPrefix(key, aioseoV4Prefix):
			usage.AIOSEO = true
		}
	}
}

func normalizePost(post *domain.Post, meta map[string]string, extractor content.Extractor) Normalized {
	yTitle, aTitle := meta[yoastTitle], meta[aioseoTitle]
	yDesc, aDesc := meta[yoastDesc], meta[aioseoDesc]
	yFocus, aKeywords := meta[yoastFocusKW], meta[aioseoKeywords]
	canonical := firstNonBlank(meta[yoastCanonical], meta[aioseoCanonical])

	n := Normalized{
		Title:       StripTemplateTokens(firstNonBlank(yTitle, aTitle, post.Title, "Untitled")),
		Description: StripTemplateTokens(firstNonBlank(yDesc, aDesc)),
		Canonical:   strings.TrimSpace(canonical),
		Robots: Robots{
			Index:  !(truthyFlag(meta[yoastNoindex]) || truthyFlag(meta[aioseoNoindex])),
			Follow: !truthyFlag(meta[yoastNofollow]),
		},
		OpenGraph: OpenGraph{
			Title: firstNonBlank(meta[yoastOGTitle], meta[aioseoOGTitle]),
			Image: firstNonBlank(meta[yoastOGImage], meta[aioseoOGImage]),
		},
		Twitter: Twitter{
			Title: firstNonBlank(meta[yoastTwTitle], meta[aioseoTwTitle]),
			Image: firstNonBlank(meta[yoastTwImage], meta[aioseoTwImage]),
		},
		Sitemap: Sitemap{
			Priority:   strings.TrimSpace(meta[yoastSitemapPrio]),
			ChangeFreq: strings.TrimSpace(meta[yoastSitemapFreq]),
		},
		SchemaCount: len(extractor.JSONLD(post.Body())),
		MetaPresence: MetaPresence{
			Title:          firstNonBlank(yTitle, aTitle) != "",
			Description:    firstNonBlank(yDesc, aDesc) != "",
			Canonical:      canonical != "",
			FocusKeyword:   firstNonBlank(yFocus, aKeywords) != "",
			OpenGraphImage: firstNonBlank(meta[yoastOGImage], meta[aioseoOGImage]) != "",
			TwitterTitle:   firstNonBlank(meta[yoastTwTitle], meta[aioseoTwTitle]) != "",
		},
	}

	if n.Description == "" {
		n.Description = descriptionFallback(post)
	}
	n.FocusKeywords = splitKeywords(firstNonBlank(yFocus, aKeywords))

	if score, err := strconv.Atoi(strings.TrimSpace(meta[yoastContentScore])); err == nil {
		n.ReadabilityScore = &score
	}

	switch {
	case strings.TrimSpace(yTitle) != "" || strings.TrimSpace(yDesc) != "" || strings.TrimSpace(yFocus) != "":
		n.Source = SourceYoast
	case hasLegacyAIOSEO(meta):
		n.Source = SourceAIOSEO
	default:
		n.Source = SourceFallback
	}

	return n
}

func hasLegacyAIOSEO(meta map[string]string) bool {
	for _, key := range []string{aioseoTitle, aioseoDesc, aioseoKeywords, aioseoCanonical, aioseoNoindex} {
		if strings.TrimSpace(meta[key]) != "" {
			return true
		}
	}
	return false
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// descriptionFallback derives a description from the excerpt, or the
// leading stripped body text.
func descriptionFallback(post *domain.Post) string {
	if excerpt := util.CollapseWhitespace(content.StripHTML(post.Excerpt)); excerpt != "" {
		return util.Truncate(excerpt, descriptionFallbackLen)
	}
	body := util.CollapseWhitespace(content.StripHTML(post.Body()))
	return util.Truncate(body, descriptionFallbackLen)
}

// truthyFlag reads WordPress meta booleans, stored as "1", "true", or "yes".
func truthyFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
