package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "plain text",
			input:    "Just a plain sentence about nothing.",
			expected: false,
		},
		{
			name:     "paragraph tag",
			input:    "<p>Hello world</p>",
			expected: true,
		},
		{
			name:     "self closing break",
			input:    "line one<br/>line two",
			expected: true,
		},
		{
			name:     "uppercase tag",
			input:    "<P>Shouting</P>",
			expected: true,
		},
		{
			name:     "heading",
			input:    "<h2>Section</h2>",
			expected: true,
		},
		{
			name:     "angle brackets without tag",
			input:    "3 < 5 and 5 > 3",
			expected: false,
		},
		{
			name:     "empty string",
			input:    "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsHTML(tt.input))
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "double encoded body",
			input:    "&lt;p&gt;Hello &amp; welcome&lt;/p&gt;",
			expected: "<p>Hello & welcome</p>",
		},
		{
			name:     "normal body left alone",
			input:    "<p>Fish &amp; chips</p>",
			expected: "<p>Fish &amp; chips</p>",
		},
		{
			name:     "no entities",
			input:    "plain text",
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeEntities(tt.input))
		})
	}
}

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bold paragraph",
			input:    "<p>This is <strong>bold</strong> text</p>",
			expected: "This is **bold** text",
		},
		{
			name:     "link",
			input:    `<p>Visit <a href="https://example.com">our site</a> today</p>`,
			expected: "Visit [our site](https://example.com) today",
		},
		{
			name:     "plain text unchanged",
			input:    "No markup here",
			expected: "No markup here",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToMarkdown(tt.input))
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "nested elements",
			input:    "<div><p>First <em>emphasized</em> bit</p><p>Second bit</p></div>",
			expected: "First emphasized bit Second bit",
		},
		{
			name:     "collapses whitespace",
			input:    "<p>spaced    out\n\n\twords</p>",
			expected: "spaced out words",
		},
		{
			name:     "plain text",
			input:    "already plain",
			expected: "already plain",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripHTML(tt.input))
		})
	}
}
