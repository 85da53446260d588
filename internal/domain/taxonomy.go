package domain

// Category is a hierarchical taxonomy term.
type Category struct {
	TermID      int    `json:"term_id"`
	Nicename    string `json:"nicename"` // Slug, source of truth for membership
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parent      string `json:"parent,omitempty"` // Parent category nicename, empty for roots

	// PostCount is a derived statistic recomputed from actual post membership.
	// It is not authoritative and must be rebuilt after any membership mutation.
	PostCount int `json:"post_count"`
}

// Tag is a flat taxonomy term.
type Tag struct {
	TermID      int    `json:"term_id"`
	Nicename    string `json:"nicename"` // Slug, source of truth for membership
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// PostCount is derived, see Category.PostCount.
	PostCount int `json:"post_count"`
}

// Slug returns the tag's canonical identifier, falling back to the
// display name when the export omitted a nicename.
func (t *Tag) Slug() string {
	if t.Nicename != "" {
		return t.Nicename
	}
	return t.Name
}
