// Package content provides HTML inspection and transformation for
// imported post bodies: anchor and image extraction, tag stripping,
// Gutenberg block parsing, markdown conversion, and cleanup passes.
package content

import (
	stdhtml "html"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|img|ul|ol|li|h[1-6]|blockquote|figure)[\s>/]`)

// ContainsHTML checks if a string appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// DecodeEntities unescapes HTML entities, but only when the body looks
// double-encoded (contains an escaped tag opener). Some exporters store
// the post body entity-encoded; decoding a normal body would corrupt
// literal entities the author wrote.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&lt;") {
		return s
	}
	return stdhtml.UnescapeString(s)
}

// ToMarkdown converts HTML content to Markdown.
// If the input doesn't contain HTML, it's returned unchanged.
func ToMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		// If conversion fails, return the original string
		return s
	}

	return strings.TrimSpace(markdown)
}

var stripTagRe = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all markup and returns collapsed plain text.
// Uses the HTML tokenizer, with a regex fallback for input the
// tokenizer cannot make sense of.
func StripHTML(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	tokenized := false

loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.TextToken:
			tokenized = true
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tokenized = true
			b.WriteByte(' ')
		}
	}

	text := b.String()
	if !tokenized {
		text = stdhtml.UnescapeString(stripTagRe.ReplaceAllString(s, " "))
	}

	return strings.Join(strings.Fields(text), " ")
}
