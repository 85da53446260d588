package domain

import "time"

// Comment is a reader comment attached to a post.
type Comment struct {
	CommentID   int        `json:"comment_id"`
	PostID      int        `json:"post_id"`
	Author      string     `json:"author,omitempty"`
	AuthorEmail string     `json:"author_email,omitempty"`
	AuthorURL   string     `json:"author_url,omitempty"`
	AuthorIP    string     `json:"author_ip,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	DateGMT     *time.Time `json:"date_gmt,omitempty"`
	Content     string     `json:"content,omitempty"`
	Approved    string     `json:"approved,omitempty"`
	Type        string     `json:"type,omitempty"`
	Parent      int        `json:"parent,omitempty"`
	UserID      int        `json:"user_id,omitempty"`
}
