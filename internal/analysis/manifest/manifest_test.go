package manifest

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func TestParseSrcset(t *testing.T) {
	tests := []struct {
		name   string
		srcset string
		want   []string
	}{
		{
			name:   "widths",
			srcset: "/a-300.jpg 300w, /a-600.jpg 600w",
			want:   []string{"/a-300.jpg", "/a-600.jpg"},
		},
		{
			name:   "density",
			srcset: "/b.jpg 1x,/b@2x.jpg 2x",
			want:   []string{"/b.jpg", "/b@2x.jpg"},
		},
		{
			name:   "bare url",
			srcset: "/c.jpg",
			want:   []string{"/c.jpg"},
		},
		{
			name:   "empty",
			srcset: "   ",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSrcset(tt.srcset); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSrcset(%q) = %v, want %v", tt.srcset, got, tt.want)
			}
		})
	}
}

func TestIsMediaURL(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://example.com/files/report.pdf", true},
		{"/uploads/2023/06/photo.JPG", true},
		{"https://example.com/track.mp3?download=1", true},
		{"https://example.com/about/", false},
		{"/just-a-post", false},
		{"mailto:x@example.com", false},
	}

	for _, tt := range tests {
		if got := isMediaURL(tt.href); got != tt.want {
			t.Errorf("isMediaURL(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	posts := []domain.Post{
		{
			PostID: 1,
			ContentEncoded: `<img src="https://example.com/uploads/hero.jpg" srcset="https://example.com/uploads/hero-300.jpg 300w">
				<a href="https://example.com/files/guide.pdf">the guide</a>
				<a href="/another-post/">not media</a>`,
		},
		{
			PostID:         2,
			ContentEncoded: `<img src="https://example.com/uploads/hero.jpg"><img src="https://cdn.example.net/lost.png">`,
		},
	}
	attachments := []domain.Attachment{
		{PostID: 100, URL: "https://example.com/uploads/hero.jpg"},
		// Different host than the reference, matched by filename.
		{PostID: 101, URL: "https://media.example.com/files/guide.pdf"},
	}

	report := Build(posts, attachments, content.NewExtractor())

	assert.Equal(t, 5, report.TotalRefs)
	assert.Len(t, report.Entries, 4)
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 2, report.Unmatched)

	byURL := make(map[string]Entry, len(report.Entries))
	for _, e := range report.Entries {
		byURL[e.URL] = e
	}

	hero := byURL["https://example.com/uploads/hero.jpg"]
	assert.True(t, hero.Matched)
	assert.Equal(t, 100, hero.AttachmentID)
	assert.Equal(t, "https://example.com/uploads/hero.jpg", hero.AttachmentURL)
	assert.Equal(t, 2, hero.References)
	assert.Equal(t, 2, hero.PostCount)
	assert.Equal(t, []int{1, 2}, hero.UsedInPosts)
	assert.Equal(t, KindImage, hero.Kind)
	assert.Equal(t, "hero.jpg", hero.Filename)

	// The srcset candidate is its own entry and matches nothing.
	variant := byURL["https://example.com/uploads/hero-300.jpg"]
	assert.False(t, variant.Matched)
	assert.Equal(t, 1, variant.References)

	// Filename matches report the attachment's own URL, not the
	// reference that found it.
	guide := byURL["https://example.com/files/guide.pdf"]
	assert.True(t, guide.Matched)
	assert.Equal(t, 101, guide.AttachmentID)
	assert.Equal(t, "https://media.example.com/files/guide.pdf", guide.AttachmentURL)
	assert.Equal(t, KindLink, guide.Kind)

	lost := byURL["https://cdn.example.net/lost.png"]
	assert.False(t, lost.Matched)
	assert.Empty(t, lost.AttachmentURL)
	assert.Equal(t, []int{2}, lost.UsedInPosts)

	// Entries come back URL sorted.
	for i := 1; i < len(report.Entries); i++ {
		assert.Less(t, report.Entries[i-1].URL, report.Entries[i].URL)
	}
}
