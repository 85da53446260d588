package content

import (
	"net/url"
	"regexp"
	"strings"
)

// CleanupOptions selects which cleanup passes run over a post body.
type CleanupOptions struct {
	RemoveUTMParameters bool
	EnforceHTTPS        bool
	RemoveInlineStyles  bool
	StripEmptyTags      bool
}

// DefaultCleanupOptions enables every pass.
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		RemoveUTMParameters: true,
		EnforceHTTPS:        true,
		RemoveInlineStyles:  true,
		StripEmptyTags:      true,
	}
}

// CleanupResult reports what one Cleanup call changed.
type CleanupResult struct {
	HTML          string `json:"-"`
	URLsRewritten int    `json:"urls_rewritten"`
	StylesRemoved int    `json:"styles_removed"`
	TagsStripped  int    `json:"tags_stripped"`
	Changed       bool   `json:"changed"`
}

// Cleanup applies the selected passes to a post body and reports what
// changed. The input is never mutated on error paths; a pass that
// cannot parse a URL leaves it alone.
func Cleanup(body string, opts CleanupOptions) CleanupResult {
	res := CleanupResult{HTML: body}
	if body == "" {
		return res
	}

	if opts.RemoveUTMParameters || opts.EnforceHTTPS {
		res.HTML, res.URLsRewritten = rewriteAttributeURLs(res.HTML, opts)
	}
	if opts.RemoveInlineStyles {
		res.HTML, res.StylesRemoved = removeInlineStyles(res.HTML)
	}
	if opts.StripEmptyTags {
		res.HTML, res.TagsStripped = stripEmptyTags(res.HTML)
	}

	res.Changed = res.HTML != body
	return res
}

// urlAttrRe matches href and src attribute values with either quote style.
var urlAttrRe = regexp.MustCompile(`(?i)(href|src)=(["'])([^"']+)(["'])`)

// rewriteAttributeURLs strips utm_* tracking parameters and upgrades
// http links, returning the count of URLs actually changed.
func rewriteAttributeURLs(body string, opts CleanupOptions) (string, int) {
	rewritten := 0
	out := urlAttrRe.ReplaceAllStringFunc(body, func(match string) string {
		m := urlAttrRe.FindStringSubmatch(match)
		cleaned, changed := rewriteURL(m[3], opts)
		if !changed {
			return match
		}
		rewritten++
		return m[1] + "=" + m[2] + cleaned + m[4]
	})
	return out, rewritten
}

func rewriteURL(raw string, opts CleanupOptions) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, false
	}

	changed := false

	if opts.RemoveUTMParameters && u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if strings.HasPrefix(strings.ToLower(key), "utm_") {
				q.Del(key)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	if opts.EnforceHTTPS && u.Scheme == "http" {
		u.Scheme = "https"
		changed = true
	}

	if !changed {
		return raw, false
	}
	return u.String(), true
}

var inlineStyleRe = regexp.MustCompile(`(?i)\s+style=("[^"]*"|'[^']*')`)

func removeInlineStyles(body string) (string, int) {
	removed := 0
	out := inlineStyleRe.ReplaceAllStringFunc(body, func(string) string {
		removed++
		return ""
	})
	return out, removed
}

// emptyTagRe matches p/div/span elements whose content is only
// whitespace, non-breaking spaces, or bare line breaks.
var emptyTagRe = regexp.MustCompile(`(?i)<(p|div|span)(\s[^>]*)?>(\s|&nbsp;|<br\s*/?>)*</(p|div|span)>`)

// stripEmptyTags removes empty wrapper elements, looping so that
// wrappers emptied by an inner removal go too.
func stripEmptyTags(body string) (string, int) {
	stripped := 0
	for {
		out := emptyTagRe.ReplaceAllStringFunc(body, func(match string) string {
			m := emptyTagRe.FindStringSubmatch(match)
			// Mismatched open/close pairs are left for the browser to sort out.
			if !strings.EqualFold(m[1], m[4]) {
				return match
			}
			stripped++
			return ""
		})
		if out == body {
			return out, stripped
		}
		body = out
	}
}
