package links

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"trims whitespace", "  https://example.com/a  ", "https://example.com/a"},
		{"drops fragment", "https://example.com/a#section-2", "https://example.com/a"},
		{"keeps query", "https://example.com/?p=42", "https://example.com/?p=42"},
		{"fragment only", "#top", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.href); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	const siteHost = "example.com"

	tests := []struct {
		name string
		href string
		want Kind
	}{
		{"empty is skipped", "", KindSkipped},
		{"mailto is skipped", "mailto:hi@example.com", KindSkipped},
		{"tel is skipped", "tel:+123456", KindSkipped},
		{"javascript is skipped", "javascript:void(0)", KindSkipped},
		{"relative path is internal", "/2023/06/my-post/", KindInternal},
		{"same host is internal", "https://example.com/my-post/", KindInternal},
		{"www variant is internal", "https://www.example.com/my-post/", KindInternal},
		{"other host is external", "https://other.org/page", KindExternal},
		{"protocol relative other host", "//cdn.other.org/x.js", KindExternal},
		{"schemeless reference is internal", "my-post/", KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.href, siteHost); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestResolver(t *testing.T) {
	posts := []domain.Post{
		{PostID: 1, PostName: "first-post", Title: "First"},
		{PostID: 2, PostName: "second-post", Title: "Second"},
	}
	r := NewResolver(posts)

	tests := []struct {
		name   string
		href   string
		wantID int // 0 means unresolved
	}{
		{"pretty permalink slug", "https://example.com/2023/06/first-post/", 1},
		{"trailing slash ignored", "/second-post/", 2},
		{"query post id", "https://example.com/?p=2", 2},
		{"query page_id", "/?page_id=1", 1},
		{"unknown slug", "/no-such-post/", 0},
		{"unknown id", "/?p=99", 0},
		{"category archive", "/category/news/", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.href)
			if tt.wantID == 0 {
				if got != nil {
					t.Errorf("Resolve(%q) = post %d, want nil", tt.href, got.PostID)
				}
				return
			}
			if got == nil || got.PostID != tt.wantID {
				t.Errorf("Resolve(%q) = %v, want post %d", tt.href, got, tt.wantID)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	posts := []domain.Post{
		{
			PostID: 1, PostName: "alpha", Title: "Alpha", Status: "publish",
			ContentEncoded: `<p>See <a href="/beta/">beta</a> and
				<a href="https://other.org/ref">a reference</a> and
				<a href="/gone-post/">a dead link</a> and
				<a href="mailto:x@example.com">mail me</a>.</p>`,
		},
		{
			PostID: 2, PostName: "beta", Title: "Beta", Status: "publish",
			ContentEncoded: `<p>Back to <a href="https://example.com/alpha/#intro">alpha</a></p>`,
		},
		{PostID: 3, PostName: "empty", Title: "Empty"},
	}

	res := Build(posts, "https://example.com", content.NewExtractor())

	assert.Equal(t, 2, res.Stats.PostsScanned)
	assert.Equal(t, 5, res.Stats.AnchorsSeen)
	assert.Equal(t, 3, res.Stats.InternalLinks)
	assert.Equal(t, 1, res.Stats.ExternalLinks)
	assert.Equal(t, 1, res.Stats.UnresolvedInternal)
	assert.Equal(t, 1, res.Stats.Skipped)

	assert.Len(t, res.Internal, 3)
	resolved := res.Internal[0]
	assert.Equal(t, 1, resolved.SourcePostID)
	assert.Equal(t, 2, resolved.TargetPostID)
	assert.Equal(t, "Beta", resolved.TargetPostTitle)
	assert.Equal(t, "beta", resolved.AnchorText)

	dead := res.Internal[1]
	assert.Equal(t, "/gone-post/", dead.Href)
	assert.Zero(t, dead.TargetPostID)

	// The fragment is normalized away before the link is stored.
	assert.Equal(t, "https://example.com/alpha/", res.Internal[2].Href)
	assert.Equal(t, 1, res.Internal[2].TargetPostID)

	assert.Len(t, res.External, 1)
	assert.Equal(t, "https://other.org/ref", res.External[0].URL)
	assert.Equal(t, "a reference", res.External[0].AnchorText)

	assert.Equal(t, []string{"https://other.org/ref"}, res.Stats.SampleExternal)
	assert.Equal(t, []string{"/gone-post/"}, res.Stats.SampleUnresolved)
}
