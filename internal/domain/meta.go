package domain

// PostMeta is one (post, key, value) row from the export.
// (PostID, MetaKey) is NOT unique: many rows may share a post and key, and
// downstream last-seen-by-key lookup means duplicate keys silently shadow.
type PostMeta struct {
	PostID    int    `json:"post_id"`
	MetaKey   string `json:"meta_key"`
	MetaValue string `json:"meta_value"`
}

// SiteInfo is one key/value pair from the export channel header
// (title, description, link).
type SiteInfo struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MetaIndex builds a per-post lookup of the last-seen value for every meta
// key. Duplicate keys shadow earlier rows, matching WordPress behavior of
// reading the most recent row.
func MetaIndex(meta []PostMeta) map[int]map[string]string {
	byPost := make(map[int]map[string]string)
	for _, m := range meta {
		bucket := byPost[m.PostID]
		if bucket == nil {
			bucket = make(map[string]string)
			byPost[m.PostID] = bucket
		}
		bucket[m.MetaKey] = m.MetaValue
	}
	return byPost
}
