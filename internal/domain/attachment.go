package domain

// Attachment represents a media item from a WXR export.
// PostID doubles as the attachment's own identity and the WordPress media ID.
type Attachment struct {
	PostID      int    `json:"post_id"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url"`
	MimeType    string `json:"mime_type,omitempty"`
	PostName    string `json:"post_name,omitempty"`
	GUID        string `json:"guid,omitempty"`
	ParentID    int    `json:"parent_id,omitempty"` // Owning post, 0 if unattached
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`

	// BlurHash is a derived compact placeholder for image attachments.
	// Empty until media analysis has run.
	BlurHash string `json:"blur_hash,omitempty"`
}

// Filename returns the last path segment of the attachment URL.
func (a *Attachment) Filename() string {
	url := a.URL
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			return url[i+1:]
		}
	}
	return url
}
