package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractorAnchors(t *testing.T) {
	e := NewExtractor()

	body := `<p>Read <a href="https://example.com/a">the first post</a> and
	<a href="/relative/path">a relative one</a>.</p>
	<a href="">empty href is skipped</a>
	<a name="no-href">no href at all</a>`

	anchors := e.Anchors(body)

	assert.Len(t, anchors, 2)
	assert.Equal(t, "https://example.com/a", anchors[0].Href)
	assert.Equal(t, "the first post", anchors[0].Text)
	assert.Equal(t, "/relative/path", anchors[1].Href)
	assert.Equal(t, "a relative one", anchors[1].Text)
}

func TestExtractorAnchorsDoubleEncoded(t *testing.T) {
	e := NewExtractor()

	body := `&lt;p&gt;See &lt;a href="https://example.com/enc"&gt;encoded link&lt;/a&gt;&lt;/p&gt;`

	anchors := e.Anchors(body)

	assert.Len(t, anchors, 1)
	assert.Equal(t, "https://example.com/enc", anchors[0].Href)
	assert.Equal(t, "encoded link", anchors[0].Text)
}

func TestExtractorImages(t *testing.T) {
	e := NewExtractor()

	body := `<figure>
	<img src="https://example.com/photo.jpg" srcset="https://example.com/photo-300.jpg 300w" alt="A photo">
	<img alt="no source at all">
	<img srcset="https://example.com/only-srcset.jpg 1x">
	</figure>`

	images := e.Images(body)

	assert.Len(t, images, 2)
	assert.Equal(t, "https://example.com/photo.jpg", images[0].Src)
	assert.Equal(t, "https://example.com/photo-300.jpg 300w", images[0].Srcset)
	assert.Equal(t, "A photo", images[0].Alt)
	assert.Equal(t, "", images[1].Src)
	assert.Equal(t, "https://example.com/only-srcset.jpg 1x", images[1].Srcset)
}

func TestExtractorJSONLD(t *testing.T) {
	e := NewExtractor()

	body := `<p>intro</p>
	<script type="application/ld+json">{"@type":"Article","headline":"One"}</script>
	<script type="text/javascript">var notLD = 1;</script>
	<script type="application/ld+json">not valid json</script>
	<script type="application/ld+json">  </script>`

	schemas := e.JSONLD(body)

	assert.Len(t, schemas, 2)
	assert.Equal(t, `{"@type":"Article","headline":"One"}`, schemas[0].Raw)
	parsed, ok := schemas[0].Parsed.(map[string]any)
	if assert.True(t, ok) {
		assert.Equal(t, "Article", parsed["@type"])
	}

	// Unparseable payloads keep the raw text only.
	assert.Equal(t, "not valid json", schemas[1].Raw)
	assert.Nil(t, schemas[1].Parsed)
}

func TestRegexExtractorFallback(t *testing.T) {
	e := &regexExtractor{}

	anchors := e.Anchors(`before <a href="https://example.com/x" class="btn">Click <b>here</b></a> after`)
	assert.Len(t, anchors, 1)
	assert.Equal(t, "https://example.com/x", anchors[0].Href)
	assert.Equal(t, "Click here", anchors[0].Text)

	images := e.Images(`<img class="wp-image" src="/uploads/pic.png" alt="Pic">`)
	assert.Len(t, images, 1)
	assert.Equal(t, "/uploads/pic.png", images[0].Src)
	assert.Equal(t, "Pic", images[0].Alt)

	assert.Nil(t, e.JSONLD("<script></script>"))
}
