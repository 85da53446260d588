// Package links builds the internal and external link graph from post
// bodies. Classification needs the site URL from the import; target
// resolution matches URL slugs and query IDs against known posts.
package links

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// Kind classifies a normalized URL relative to the imported site.
type Kind int

const (
	KindSkipped  Kind = iota // non-navigational scheme or empty
	KindInternal             // same host or relative path
	KindExternal
)

// Normalize canonicalizes an href for classification: trims whitespace
// and drops the fragment. Everything else is preserved, since the query
// string may carry the post ID.
func Normalize(href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	return href
}

// skippedSchemes are anchors that never navigate to a page.
var skippedSchemes = []string{"mailto:", "tel:", "javascript:", "data:", "sms:"}

// Classify buckets a normalized href relative to siteHost.
// A leading www. on either side is ignored when comparing hosts.
func Classify(href, siteHost string) Kind {
	if href == "" {
		return KindSkipped
	}

	lower := strings.ToLower(href)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return KindSkipped
		}
	}

	// Relative path on the same site. "//host/path" is protocol-relative,
	// not a path.
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return KindInternal
	}

	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		// Unparseable or schemeless relative reference; treat as internal
		// so target resolution gets a chance at it.
		return KindInternal
	}

	if hostsEqual(u.Host, siteHost) {
		return KindInternal
	}
	return KindExternal
}

func hostsEqual(a, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a != "" && a == b
}

// queryIDKeys are query parameters WordPress uses to address a post by ID.
var queryIDKeys = []string{"p", "page_id", "post", "post_id"}

// Resolver matches internal URLs to posts by slug segment or query ID.
type Resolver struct {
	bySlug map[string]*domain.Post
	byID   map[int]*domain.Post
}

// NewResolver indexes posts for target resolution.
// Duplicate slugs resolve to the last post seen.
func NewResolver(posts []domain.Post) *Resolver {
	r := &Resolver{
		bySlug: make(map[string]*domain.Post, len(posts)),
		byID:   make(map[int]*domain.Post, len(posts)),
	}
	for i := range posts {
		p := &posts[i]
		if p.PostName != "" {
			r.bySlug[p.PostName] = p
		}
		r.byID[p.PostID] = p
	}
	return r
}

// Resolve finds the post an internal URL points at, or nil.
//
// Resolution order:
//  1. Query-string post ID (?p=, ?page_id=, ?post=, ?post_id=)
//  2. Last non-empty path segment matched against post slugs
func (r *Resolver) Resolve(href string) *domain.Post {
	u, err := url.Parse(href)
	if err != nil {
		return nil
	}

	if u.RawQuery != "" {
		q := u.Query()
		for _, key := range queryIDKeys {
			if v := q.Get(key); v != "" {
				if id, err := strconv.Atoi(v); err == nil {
					if p, ok := r.byID[id]; ok {
						return p
					}
				}
			}
		}
	}

	if slug := lastSegment(u.Path); slug != "" {
		if p, ok := r.bySlug[slug]; ok {
			return p
		}
	}

	return nil
}

// lastSegment returns the final non-empty path segment, ignoring
// trailing slashes from pretty permalinks.
func lastSegment(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// ScanStats summarizes one link graph build.
type ScanStats struct {
	PostsScanned       int      `json:"posts_scanned"`
	AnchorsSeen        int      `json:"anchors_seen"`
	InternalLinks      int      `json:"internal_links"`
	ExternalLinks      int      `json:"external_links"`
	UnresolvedInternal int      `json:"unresolved_internal"`
	Skipped            int      `json:"skipped"`
	SampleInternal     []string `json:"sample_internal,omitempty"`
	SampleExternal     []string `json:"sample_external,omitempty"`
	SampleUnresolved   []string `json:"sample_unresolved,omitempty"`
}

const maxSamples = 5

func sample(list []string, href string) []string {
	if len(list) >= maxSamples {
		return list
	}
	return append(list, href)
}

// Result is the output of one link graph build.
type Result struct {
	Internal []domain.InternalLink
	External []domain.ExternalLink
	Stats    ScanStats
}

// Build extracts and classifies every anchor of every post.
// siteURL is the imported site's base URL; an empty siteURL makes every
// absolute link external.
func Build(posts []domain.Post, siteURL string, extractor content.Extractor) *Result {
	siteHost := ""
	if u, err := url.Parse(siteURL); err == nil {
		siteHost = u.Host
	}

	resolver := NewResolver(posts)
	res := &Result{}

	for i := range posts {
		post := &posts[i]
		body := post.Body()
		if body == "" {
			continue
		}
		res.Stats.PostsScanned++

		for _, anchor := range extractor.Anchors(body) {
			res.Stats.AnchorsSeen++
			href := Normalize(anchor.Href)

			switch Classify(href, siteHost) {
			case KindSkipped:
				res.Stats.Skipped++

			case KindInternal:
				link := domain.InternalLink{
					SourcePostID:    post.PostID,
					SourcePostTitle: post.Title,
					AnchorText:      anchor.Text,
					Href:            href,
				}
				if target := resolver.Resolve(href); target != nil {
					link.TargetPostID = target.PostID
					link.TargetPostTitle = target.Title
					link.TargetPostName = target.PostName
					link.TargetPostStatus = target.Status
				} else {
					res.Stats.UnresolvedInternal++
					res.Stats.SampleUnresolved = sample(res.Stats.SampleUnresolved, href)
				}
				res.Internal = append(res.Internal, link)
				res.Stats.InternalLinks++
				res.Stats.SampleInternal = sample(res.Stats.SampleInternal, href)

			case KindExternal:
				res.External = append(res.External, domain.ExternalLink{
					SourcePostID:    post.PostID,
					SourcePostTitle: post.Title,
					URL:             href,
					AnchorText:      anchor.Text,
				})
				res.Stats.ExternalLinks++
				res.Stats.SampleExternal = sample(res.Stats.SampleExternal, href)
			}
		}
	}

	return res
}
