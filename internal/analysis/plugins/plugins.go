// Package plugins detects which WordPress plugins left traces in post
// meta, by matching meta keys against a static rule table.
package plugins

import (
	"sort"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// rule maps a meta key prefix to a plugin. Rules are a fixed ordered
// table; order determines report order and which rule claims a key if
// prefixes ever overlap.
type rule struct {
	Name   string
	Slug   string
	Prefix string
}

var rules = []rule{
	{"Yoast SEO", "yoast", "_yoast_wpseo_"},
	{"Rank Math", "rank-math", "rank_math_"},
	{"All in One SEO", "aioseo", "_aioseop_"},
	{"All in One SEO v4", "aioseo-v4", "_aioseo_"},
	{"Elementor", "elementor", "_elementor_"},
	{"Divi Builder", "divi", "_et_pb_"},
	{"WPBakery Page Builder", "wpbakery", "_wpb_"},
	{"Beaver Builder", "beaver-builder", "_fl_builder_"},
	{"Advanced Custom Fields", "acf", "_acf_"},
	{"WooCommerce", "woocommerce", "_wc_"},
	{"Jetpack", "jetpack", "_jetpack_"},
	{"WPML", "wpml", "_wpml_"},
}

// maxSampleKeys caps how many distinct keys each detection reports.
const maxSampleKeys = 6

// Detection is one plugin found in the meta rows.
type Detection struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Prefix        string   `json:"prefix"`
	PostsAffected int      `json:"posts_affected"`
	KeyCount      int      `json:"key_count"` // distinct matching keys
	SampleKeys    []string `json:"sample_keys,omitempty"`
}

// Report is the full detection result.
type Report struct {
	Detections    []Detection `json:"detections"`
	TotalMetaKeys int         `json:"total_meta_keys"` // distinct keys seen
	UnmatchedKeys int         `json:"unmatched_keys"`  // distinct keys no rule claimed
}

// Detect scans all meta rows against the rule table.
func Detect(meta []domain.PostMeta) *Report {
	type bucket struct {
		keys  map[string]bool
		posts map[int]bool
	}

	buckets := make(map[string]*bucket, len(rules))
	allKeys := make(map[string]bool)
	matchedKeys := make(map[string]bool)

	for _, row := range meta {
		allKeys[row.MetaKey] = true
		for _, r := range rules {
			if !strings.HasPrefix(row.MetaKey, r.Prefix) {
				continue
			}
			b := buckets[r.Slug]
			if b == nil {
				b = &bucket{keys: make(map[string]bool), posts: make(map[int]bool)}
				buckets[r.Slug] = b
			}
			b.keys[row.MetaKey] = true
			b.posts[row.PostID] = true
			matchedKeys[row.MetaKey] = true
			break
		}
	}

	report := &Report{
		TotalMetaKeys: len(allKeys),
		UnmatchedKeys: len(allKeys) - len(matchedKeys),
	}

	for _, r := range rules {
		b := buckets[r.Slug]
		if b == nil {
			continue
		}

		samples := make([]string, 0, len(b.keys))
		for key := range b.keys {
			samples = append(samples, key)
		}
		sort.Strings(samples)
		if len(samples) > maxSampleKeys {
			samples = samples[:maxSampleKeys]
		}

		report.Detections = append(report.Detections, Detection{
			Name:          r.Name,
			Slug:          r.Slug,
			Prefix:        r.Prefix,
			PostsAffected: len(b.posts),
			KeyCount:      len(b.keys),
			SampleKeys:    samples,
		})
	}

	// Heaviest plugins first. Stable so equal counts keep rule table
	// order.
	sort.SliceStable(report.Detections, func(i, j int) bool {
		return report.Detections[i].KeyCount > report.Detections[j].KeyCount
	})

	return report
}
