package domain

// Author is a WXR wp:author record.
type Author struct {
	AuthorID    int    `json:"author_id"`
	Login       string `json:"login"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
}
