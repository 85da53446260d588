package domain

// InternalLink is a derived edge from one post to another post on the same
// site. TargetPostID == 0 means an internal URL was detected but no matching
// post resolved, which is a valid state rather than an error.
type InternalLink struct {
	SourcePostID     int    `json:"source_post_id"`
	TargetPostID     int    `json:"target_post_id"`
	AnchorText       string `json:"anchor_text,omitempty"`
	Href             string `json:"href,omitempty"`
	SourcePostTitle  string `json:"source_post_title,omitempty"`
	TargetPostTitle  string `json:"target_post_title,omitempty"`
	TargetPostName   string `json:"target_post_name,omitempty"`
	TargetPostStatus string `json:"target_post_status,omitempty"`
}

// Resolved reports whether the link's target was matched to a known post.
func (l *InternalLink) Resolved() bool {
	return l.TargetPostID != 0
}

// ExternalLink is a derived reference to a URL off-site. No target
// resolution is attempted.
type ExternalLink struct {
	SourcePostID    int    `json:"source_post_id"`
	SourcePostTitle string `json:"source_post_title,omitempty"`
	URL             string `json:"url"`
	AnchorText      string `json:"anchor_text,omitempty"`
}
