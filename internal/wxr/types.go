// Package wxr parses WordPress eXtended RSS (WXR) exports and maps them
// into domain records.
package wxr

// XML namespace URIs used by WXR documents. Older exports declare the
// 1.0 or 1.1 wp namespaces; Parse rewrites those to 1.2 before decoding
// so one set of struct tags covers every version.
const (
	nsWP      = "http://wordpress.org/export/1.2/"
	nsExcerpt = "http://wordpress.org/export/1.2/excerpt/"
	nsContent = "http://purl.org/rss/1.0/modules/content/"
	nsDC      = "http://purl.org/dc/elements/1.1/"
)

// Document is the decoded root of a WXR file.
type Document struct {
	Channel Channel `xml:"channel"`
}

// Channel is the RSS channel carrying site metadata and all items.
type Channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Language    string `xml:"language"`

	WXRVersion  string `xml:"http://wordpress.org/export/1.2/ wxr_version"`
	BaseSiteURL string `xml:"http://wordpress.org/export/1.2/ base_site_url"`
	BaseBlogURL string `xml:"http://wordpress.org/export/1.2/ base_blog_url"`

	Authors    []AuthorXML   `xml:"http://wordpress.org/export/1.2/ author"`
	Categories []CategoryXML `xml:"http://wordpress.org/export/1.2/ category"`
	Tags       []TagXML      `xml:"http://wordpress.org/export/1.2/ tag"`
	Items      []Item        `xml:"item"`
}

// AuthorXML is a wp:author channel record.
type AuthorXML struct {
	ID          int    `xml:"http://wordpress.org/export/1.2/ author_id"`
	Login       string `xml:"http://wordpress.org/export/1.2/ author_login"`
	Email       string `xml:"http://wordpress.org/export/1.2/ author_email"`
	DisplayName string `xml:"http://wordpress.org/export/1.2/ author_display_name"`
	FirstName   string `xml:"http://wordpress.org/export/1.2/ author_first_name"`
	LastName    string `xml:"http://wordpress.org/export/1.2/ author_last_name"`
}

// CategoryXML is a wp:category channel record.
type CategoryXML struct {
	TermID      int    `xml:"http://wordpress.org/export/1.2/ term_id"`
	Nicename    string `xml:"http://wordpress.org/export/1.2/ category_nicename"`
	Parent      string `xml:"http://wordpress.org/export/1.2/ category_parent"`
	Name        string `xml:"http://wordpress.org/export/1.2/ cat_name"`
	Description string `xml:"http://wordpress.org/export/1.2/ category_description"`
}

// TagXML is a wp:tag channel record.
type TagXML struct {
	TermID      int    `xml:"http://wordpress.org/export/1.2/ term_id"`
	Slug        string `xml:"http://wordpress.org/export/1.2/ tag_slug"`
	Name        string `xml:"http://wordpress.org/export/1.2/ tag_name"`
	Description string `xml:"http://wordpress.org/export/1.2/ tag_description"`
}

// Item is one RSS item: a post, page, attachment, or custom post type.
type Item struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Creator string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	GUID    string `xml:"guid"`

	Content string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Excerpt string `xml:"http://wordpress.org/export/1.2/excerpt/ encoded"`

	PostID        int    `xml:"http://wordpress.org/export/1.2/ post_id"`
	PostDate      string `xml:"http://wordpress.org/export/1.2/ post_date"`
	PostDateGMT   string `xml:"http://wordpress.org/export/1.2/ post_date_gmt"`
	PostName      string `xml:"http://wordpress.org/export/1.2/ post_name"`
	Status        string `xml:"http://wordpress.org/export/1.2/ status"`
	PostParent    int    `xml:"http://wordpress.org/export/1.2/ post_parent"`
	MenuOrder     int    `xml:"http://wordpress.org/export/1.2/ menu_order"`
	PostType      string `xml:"http://wordpress.org/export/1.2/ post_type"`
	IsSticky      int    `xml:"http://wordpress.org/export/1.2/ is_sticky"`
	AttachmentURL string `xml:"http://wordpress.org/export/1.2/ attachment_url"`

	Categories []ItemCategory `xml:"category"`
	Meta       []MetaXML      `xml:"http://wordpress.org/export/1.2/ postmeta"`
	Comments   []CommentXML   `xml:"http://wordpress.org/export/1.2/ comment"`
}

// ItemCategory is an item-level term reference. Domain distinguishes
// categories from tags.
type ItemCategory struct {
	Domain   string `xml:"domain,attr"`
	Nicename string `xml:"nicename,attr"`
	Name     string `xml:",chardata"`
}

// MetaXML is a wp:postmeta row.
type MetaXML struct {
	Key   string `xml:"http://wordpress.org/export/1.2/ meta_key"`
	Value string `xml:"http://wordpress.org/export/1.2/ meta_value"`
}

// CommentXML is a wp:comment row.
type CommentXML struct {
	ID          int    `xml:"http://wordpress.org/export/1.2/ comment_id"`
	Author      string `xml:"http://wordpress.org/export/1.2/ comment_author"`
	AuthorEmail string `xml:"http://wordpress.org/export/1.2/ comment_author_email"`
	AuthorURL   string `xml:"http://wordpress.org/export/1.2/ comment_author_url"`
	AuthorIP    string `xml:"http://wordpress.org/export/1.2/ comment_author_IP"`
	Date        string `xml:"http://wordpress.org/export/1.2/ comment_date"`
	DateGMT     string `xml:"http://wordpress.org/export/1.2/ comment_date_gmt"`
	Content     string `xml:"http://wordpress.org/export/1.2/ comment_content"`
	Approved    string `xml:"http://wordpress.org/export/1.2/ comment_approved"`
	Type        string `xml:"http://wordpress.org/export/1.2/ comment_type"`
	Parent      int    `xml:"http://wordpress.org/export/1.2/ comment_parent"`
	UserID      int    `xml:"http://wordpress.org/export/1.2/ comment_user_id"`
}
