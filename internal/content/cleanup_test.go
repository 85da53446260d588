package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupRemovesUTMParameters(t *testing.T) {
	body := `<a href="https://example.com/post?utm_source=feed&utm_medium=rss&id=7">link</a>`

	res := Cleanup(body, CleanupOptions{RemoveUTMParameters: true})

	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.URLsRewritten)
	assert.NotContains(t, res.HTML, "utm_source")
	assert.NotContains(t, res.HTML, "utm_medium")
	assert.Contains(t, res.HTML, "id=7")
}

func TestCleanupEnforcesHTTPS(t *testing.T) {
	body := `<img src="http://example.com/pic.jpg"> <a href="https://example.com/x">ok</a>`

	res := Cleanup(body, CleanupOptions{EnforceHTTPS: true})

	assert.Equal(t, 1, res.URLsRewritten)
	assert.Contains(t, res.HTML, `src="https://example.com/pic.jpg"`)
	assert.Contains(t, res.HTML, `href="https://example.com/x"`)
}

func TestCleanupRemovesInlineStyles(t *testing.T) {
	body := `<p style="color: red; font-size: 30px">loud</p><div style='margin:0'>tight</div>`

	res := Cleanup(body, CleanupOptions{RemoveInlineStyles: true})

	assert.Equal(t, 2, res.StylesRemoved)
	assert.NotContains(t, res.HTML, "style=")
	assert.Contains(t, res.HTML, "<p>loud</p>")
}

func TestCleanupStripsEmptyTags(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
		stripped int
	}{
		{
			name:     "empty paragraph",
			body:     "<p>keep</p><p></p><p>also keep</p>",
			expected: "<p>keep</p><p>also keep</p>",
			stripped: 1,
		},
		{
			name:     "nbsp only",
			body:     "<p>&nbsp;</p>",
			expected: "",
			stripped: 1,
		},
		{
			name:     "bare line breaks",
			body:     "<div><br/><br></div>",
			expected: "",
			stripped: 1,
		},
		{
			name:     "nested wrappers emptied by inner removal",
			body:     "<div><p>&nbsp;</p></div>",
			expected: "",
			stripped: 2,
		},
		{
			name:     "content survives",
			body:     "<span>word</span>",
			expected: "<span>word</span>",
			stripped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Cleanup(tt.body, CleanupOptions{StripEmptyTags: true})
			assert.Equal(t, tt.expected, res.HTML)
			assert.Equal(t, tt.stripped, res.TagsStripped)
		})
	}
}

func TestCleanupUnparseableURLLeftAlone(t *testing.T) {
	body := `<a href="http://%zz-not-a-url">bad</a>`

	res := Cleanup(body, DefaultCleanupOptions())

	assert.Equal(t, 0, res.URLsRewritten)
	assert.Contains(t, res.HTML, "http://%zz-not-a-url")
}

func TestCleanupNoChange(t *testing.T) {
	body := `<p>Nothing to do <a href="https://example.com/clean">here</a>.</p>`

	res := Cleanup(body, DefaultCleanupOptions())

	assert.False(t, res.Changed)
	assert.Equal(t, body, res.HTML)
}

func TestCleanupAllPassesTogether(t *testing.T) {
	body := `<p style="color:blue">Read <a href="http://example.com/a?utm_campaign=x">this</a></p><p></p>`

	res := Cleanup(body, DefaultCleanupOptions())

	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.URLsRewritten)
	assert.Equal(t, 1, res.StylesRemoved)
	assert.Equal(t, 1, res.TagsStripped)
	assert.True(t, strings.Contains(res.HTML, "https://example.com/a"))
	assert.NotContains(t, res.HTML, "utm_campaign")
}
