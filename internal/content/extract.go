package content

import (
	"encoding/json/v2"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is one <a> element found in a post body.
type Anchor struct {
	Href string
	Text string
}

// Image is one <img> element found in a post body.
type Image struct {
	Src    string
	Srcset string
	Alt    string
}

// Schema is one embedded JSON-LD payload. Parsed is nil when the
// payload is not valid JSON; the raw text is kept either way.
type Schema struct {
	Raw    string `json:"raw"`
	Parsed any    `json:"parsed,omitempty"`
}

// Extractor pulls structure out of raw post HTML.
type Extractor interface {
	Anchors(html string) []Anchor
	Images(html string) []Image
	JSONLD(html string) []Schema
}

// NewExtractor returns the default extractor: a DOM-based parser with a
// regex fallback for bodies the parser rejects outright.
func NewExtractor() Extractor {
	return &domExtractor{fallback: &regexExtractor{}}
}

// domExtractor parses the body with goquery. Post bodies are fragments,
// not documents; goquery wraps them in html/body for us.
type domExtractor struct {
	fallback *regexExtractor
}

func (e *domExtractor) Anchors(body string) []Anchor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(DecodeEntities(body)))
	if err != nil {
		return e.fallback.Anchors(body)
	}

	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		anchors = append(anchors, Anchor{
			Href: href,
			Text: strings.Join(strings.Fields(sel.Text()), " "),
		})
	})
	return anchors
}

func (e *domExtractor) Images(body string) []Image {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(DecodeEntities(body)))
	if err != nil {
		return e.fallback.Images(body)
	}

	var images []Image
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		srcset, _ := sel.Attr("srcset")
		alt, _ := sel.Attr("alt")
		if src == "" && srcset == "" {
			return
		}
		images = append(images, Image{Src: src, Srcset: srcset, Alt: alt})
	})
	return images
}

func (e *domExtractor) JSONLD(body string) []Schema {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var schemas []Schema
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		schema := Schema{Raw: text}
		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err == nil {
			schema.Parsed = parsed
		}
		schemas = append(schemas, schema)
	})
	return schemas
}

// regexExtractor is the last-ditch path for markup the DOM parser
// cannot read. It only sees well-formed attribute quoting.
type regexExtractor struct{}

var (
	anchorRe = regexp.MustCompile(`(?is)<a\s[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	imgRe    = regexp.MustCompile(`(?is)<img\s[^>]*>`)
	attrRe   = regexp.MustCompile(`(?i)(src|srcset|alt)=["']([^"']*)["']`)
)

func (e *regexExtractor) Anchors(body string) []Anchor {
	var anchors []Anchor
	for _, m := range anchorRe.FindAllStringSubmatch(DecodeEntities(body), -1) {
		anchors = append(anchors, Anchor{
			Href: strings.TrimSpace(m[1]),
			Text: StripHTML(m[2]),
		})
	}
	return anchors
}

func (e *regexExtractor) Images(body string) []Image {
	var images []Image
	for _, tag := range imgRe.FindAllString(DecodeEntities(body), -1) {
		var img Image
		for _, attr := range attrRe.FindAllStringSubmatch(tag, -1) {
			switch strings.ToLower(attr[1]) {
			case "src":
				img.Src = attr[2]
			case "srcset":
				img.Srcset = attr[2]
			case "alt":
				img.Alt = attr[2]
			}
		}
		if img.Src != "" || img.Srcset != "" {
			images = append(images, img)
		}
	}
	return images
}

func (e *regexExtractor) JSONLD(string) []Schema { return nil }
