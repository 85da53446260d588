package wxr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

const fixtureWXR = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:excerpt="http://wordpress.org/export/1.2/excerpt/"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Example Blog</title>
	<link>https://example.com</link>
	<description>Just an example</description>
	<language>en-US</language>
	<wp:wxr_version>1.2</wp:wxr_version>
	<wp:base_site_url>https://example.com</wp:base_site_url>
	<wp:author>
		<wp:author_id>1</wp:author_id>
		<wp:author_login>alex</wp:author_login>
		<wp:author_email>alex@example.com</wp:author_email>
		<wp:author_display_name><![CDATA[Alex Writer]]></wp:author_display_name>
	</wp:author>
	<wp:category>
		<wp:term_id>10</wp:term_id>
		<wp:category_nicename>news</wp:category_nicename>
		<wp:category_parent></wp:category_parent>
		<wp:cat_name><![CDATA[News]]></wp:cat_name>
	</wp:category>
	<wp:tag>
		<wp:term_id>20</wp:term_id>
		<wp:tag_slug>golang</wp:tag_slug>
		<wp:tag_name><![CDATA[Golang]]></wp:tag_name>
	</wp:tag>
	<item>
		<title>Hello World</title>
		<link>https://example.com/hello-world/</link>
		<dc:creator><![CDATA[alex]]></dc:creator>
		<content:encoded><![CDATA[<p>Welcome to the blog.</p>]]></content:encoded>
		<excerpt:encoded><![CDATA[A short intro]]></excerpt:encoded>
		<wp:post_id>101</wp:post_id>
		<wp:post_date>2023-06-15 09:30:00</wp:post_date>
		<wp:post_name>hello-world</wp:post_name>
		<wp:status>publish</wp:status>
		<wp:post_type>post</wp:post_type>
		<category domain="category" nicename="news"><![CDATA[News]]></category>
		<category domain="category" nicename="news"><![CDATA[News]]></category>
		<category domain="post_tag" nicename="golang"><![CDATA[Golang]]></category>
		<category domain="post_tag" nicename="surprise-tag"><![CDATA[Surprise Tag]]></category>
		<wp:postmeta>
			<wp:meta_key>_yoast_wpseo_title</wp:meta_key>
			<wp:meta_value><![CDATA[Hello World Meta]]></wp:meta_value>
		</wp:postmeta>
		<wp:comment>
			<wp:comment_id>7</wp:comment_id>
			<wp:comment_author><![CDATA[Reader]]></wp:comment_author>
			<wp:comment_date>2023-06-16 10:00:00</wp:comment_date>
			<wp:comment_content><![CDATA[Nice post]]></wp:comment_content>
			<wp:comment_approved>1</wp:comment_approved>
		</wp:comment>
	</item>
	<item>
		<title>A draft with no date</title>
		<wp:post_id>102</wp:post_id>
		<wp:post_date>0000-00-00 00:00:00</wp:post_date>
		<wp:status>draft</wp:status>
		<wp:post_type>post</wp:post_type>
	</item>
	<item>
		<title>hero.jpg</title>
		<guid>https://example.com/uploads/hero.jpg</guid>
		<wp:post_id>103</wp:post_id>
		<wp:post_type>attachment</wp:post_type>
		<wp:post_parent>101</wp:post_parent>
		<wp:attachment_url>https://example.com/uploads/2023/06/hero.jpg</wp:attachment_url>
	</item>
	<item>
		<title>Hello World (revision)</title>
		<wp:post_id>104</wp:post_id>
		<wp:post_type>revision</wp:post_type>
	</item>
	<item>
		<title>About menu entry</title>
		<wp:post_id>105</wp:post_id>
		<wp:post_type>nav_menu_item</wp:post_type>
	</item>
</channel>
</rss>`

func TestParseAndMap(t *testing.T) {
	doc, err := Parse(strings.NewReader(fixtureWXR))
	require.NoError(t, err)

	assert.Equal(t, "1.2", doc.Channel.WXRVersion)
	assert.Equal(t, "Example Blog", doc.Channel.Title)
	require.Len(t, doc.Channel.Items, 5)

	mapped := Map(doc)

	// Site info only keeps the populated channel fields.
	siteKeys := make(map[string]string)
	for _, s := range mapped.Site {
		siteKeys[s.Key] = s.Value
	}
	assert.Equal(t, "https://example.com", siteKeys["base_site_url"])
	assert.Equal(t, "1.2", siteKeys["wxr_version"])
	_, hasPubDate := siteKeys["pubDate"]
	assert.False(t, hasPubDate)

	require.Len(t, mapped.Authors, 1)
	assert.Equal(t, "Alex Writer", mapped.Authors[0].DisplayName)

	require.Len(t, mapped.Posts, 2)
	post := mapped.Posts[0]
	assert.Equal(t, 101, post.PostID)
	assert.Equal(t, "hello-world", post.PostName)
	assert.Equal(t, "alex", post.Creator)
	assert.Equal(t, "<p>Welcome to the blog.</p>", post.ContentEncoded)
	require.NotNil(t, post.PostDate)
	assert.Equal(t, "2023-06-15 09:30:00", post.PostDate.Format("2006-01-02 15:04:05"))
	// The duplicate category reference collapses to one slug.
	assert.Equal(t, []string{"news"}, post.CategorySlugs)
	assert.Equal(t, []string{"golang", "surprise-tag"}, post.TagSlugs)

	// The zero sentinel date maps to no date at all.
	assert.Nil(t, mapped.Posts[1].PostDate)

	require.Len(t, mapped.Attachments, 1)
	att := mapped.Attachments[0]
	assert.Equal(t, "https://example.com/uploads/2023/06/hero.jpg", att.URL)
	assert.Equal(t, 101, att.ParentID)
	assert.Equal(t, "image/jpeg", att.MimeType)

	require.Len(t, mapped.Categories, 1)
	assert.Equal(t, 1, mapped.Categories[0].PostCount)

	// "surprise-tag" never appeared in the channel header and gets
	// synthesized from the item reference.
	require.Len(t, mapped.Tags, 2)
	assert.Equal(t, "golang", mapped.Tags[0].Nicename)
	assert.Equal(t, 1, mapped.Tags[0].PostCount)
	assert.Equal(t, "surprise-tag", mapped.Tags[1].Nicename)
	assert.Equal(t, "Surprise Tag", mapped.Tags[1].Name)
	assert.Zero(t, mapped.Tags[1].TermID)

	require.Len(t, mapped.Meta, 1)
	assert.Equal(t, domain.PostMeta{
		PostID:    101,
		MetaKey:   "_yoast_wpseo_title",
		MetaValue: "Hello World Meta",
	}, mapped.Meta[0])

	require.Len(t, mapped.Comments, 1)
	assert.Equal(t, "Reader", mapped.Comments[0].Author)
	assert.Equal(t, 101, mapped.Comments[0].PostID)

	assert.Equal(t, map[string]int{"revision": 1, "nav_menu_item": 1}, mapped.SkippedTypes)
}

func TestParseOldNamespace(t *testing.T) {
	old := strings.ReplaceAll(fixtureWXR, "wordpress.org/export/1.2/", "wordpress.org/export/1.1/")

	doc, err := Parse(strings.NewReader(old))
	require.NoError(t, err)

	assert.Equal(t, "1.2", doc.Channel.WXRVersion)
	assert.Len(t, doc.Channel.Items, 5)
	assert.Equal(t, 101, doc.Channel.Items[0].PostID)
}

func TestParseRejectsNonWXR(t *testing.T) {
	_, err := Parse(strings.NewReader(`<?xml version="1.0"?><html><body>not an export</body></html>`))
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantNil bool
	}{
		{"normal", "2023-06-15 09:30:00", false},
		{"zero sentinel", "0000-00-00 00:00:00", true},
		{"empty", "", true},
		{"garbage", "not a date", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTime(tt.input)
			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.input, got.Format("2006-01-02 15:04:05"))
			}
		})
	}
}
