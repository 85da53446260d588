package util

import "testing"

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Basic cases
		{"simple", "simple"},
		{"Slow Burn", "slow-burn"},
		{"slow_burn", "slow-burn"},
		{"UPPERCASE", "uppercase"},
		// Separators
		{"  multi   word ", "multi-word"},
		{"a/b/c", "a-b-c"},
		{"mixed_and spaced", "mixed-and-spaced"},
		// Diacritics
		{"Café Culture", "cafe-culture"},
		{"über-tag", "uber-tag"},
		// Punctuation stripped
		{"what's new?", "whats-new"},
		{"50% off!", "50-off"},
		// Dash collapsing and trimming
		{"--leading--", "leading"},
		{"a---b", "a-b"},
		// Edge cases
		{"", ""},
		{"---", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeSlug(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSlugWithLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"under limit", "short", 50, "short"},
		{"exact limit", "abcde", 5, "abcde"},
		{"truncated", "abcdefghij", 5, "abcde"},
		{"no trailing dash after cut", "long-tag-name", 9, "long-tag"},
		{"zero limit keeps all", "anything-goes", 0, "anything-goes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SlugWithLimit(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("SlugWithLimit(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello"},
		{"multibyte runes counted once", "héllo wörld", 7, "héllo w"},
		{"zero keeps all", "hello", 0, "hello"},
		{"negative keeps all", "hello", -1, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Truncate(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a  b", "a b"},
		{"  padded  ", "padded"},
		{"line\nbreaks\tand tabs", "line breaks and tabs"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := CollapseWhitespace(tt.input); got != tt.expected {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "third", "fourth"); got != "third" {
		t.Errorf("FirstNonEmpty = %q, want %q", got, "third")
	}
	if got := FirstNonEmpty("", "  "); got != "" {
		t.Errorf("FirstNonEmpty = %q, want empty", got)
	}
}
