// Package manifest inventories every media reference in post bodies and
// matches each against the imported attachments, so missing files are
// known before migration.
package manifest

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// Reference kinds.
const (
	KindImage = "image" // <img> src or srcset candidate
	KindLink  = "link"  // <a> href pointing at a media file
)

// mediaExtensions are file extensions that make a plain link a media
// reference.
var mediaExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".avif": true,
	".pdf": true, ".zip": true,
	".mp3": true, ".m4a": true, ".wav": true,
	".mp4": true, ".mov": true, ".webm": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
}

// Entry is one distinct media URL referenced by post content.
type Entry struct {
	URL           string `json:"url"`
	Kind          string `json:"kind"`
	Filename      string `json:"filename,omitempty"`
	References    int    `json:"references"` // total occurrences
	PostCount     int    `json:"post_count"` // distinct referencing posts
	UsedInPosts   []int  `json:"used_in_post_ids,omitempty"`
	AttachmentID  int    `json:"matched_attachment_id,omitempty"`
	AttachmentURL string `json:"matched_attachment_url,omitempty"`
	Matched       bool   `json:"matched"`
}

// Report is the full media manifest.
type Report struct {
	Entries   []Entry `json:"entries"`
	TotalRefs int     `json:"total_refs"`
	Matched   int     `json:"matched"`
	Unmatched int     `json:"unmatched"`
}

// Build scans every post body for image and media link references and
// matches them against attachments by exact URL, then by filename.
func Build(posts []domain.Post, attachments []domain.Attachment, extractor content.Extractor) *Report {
	byURL := make(map[string]*domain.Attachment, len(attachments))
	byFilename := make(map[string]*domain.Attachment, len(attachments))
	for i := range attachments {
		a := &attachments[i]
		if a.URL != "" {
			byURL[a.URL] = a
		}
		if name := a.Filename(); name != "" {
			byFilename[name] = a
		}
	}

	type seen struct {
		entry Entry
		posts map[int]bool
	}
	index := make(map[string]*seen)

	record := func(rawURL, kind string, postID int) {
		rawURL = strings.TrimSpace(rawURL)
		if rawURL == "" {
			return
		}
		s := index[rawURL]
		if s == nil {
			s = &seen{
				entry: Entry{URL: rawURL, Kind: kind, Filename: filenameOf(rawURL)},
				posts: make(map[int]bool),
			}
			index[rawURL] = s
		}
		s.entry.References++
		s.posts[postID] = true
	}

	for i := range posts {
		post := &posts[i]
		body := post.Body()
		if body == "" {
			continue
		}

		for _, img := range extractor.Images(body) {
			if img.Src != "" {
				record(img.Src, KindImage, post.PostID)
			}
			for _, candidate := range parseSrcset(img.Srcset) {
				record(candidate, KindImage, post.PostID)
			}
		}

		for _, anchor := range extractor.Anchors(body) {
			if isMediaURL(anchor.Href) {
				record(anchor.Href, KindLink, post.PostID)
			}
		}
	}

	report := &Report{}
	for _, s := range index {
		entry := s.entry
		entry.PostCount = len(s.posts)
		entry.UsedInPosts = make([]int, 0, len(s.posts))
		for id := range s.posts {
			entry.UsedInPosts = append(entry.UsedInPosts, id)
		}
		sort.Ints(entry.UsedInPosts)

		if a, ok := byURL[entry.URL]; ok {
			entry.AttachmentID = a.PostID
			entry.AttachmentURL = a.URL
			entry.Matched = true
		} else if a, ok := byFilename[entry.Filename]; ok && entry.Filename != "" {
			entry.AttachmentID = a.PostID
			entry.AttachmentURL = a.URL
			entry.Matched = true
		}

		if entry.Matched {
			report.Matched++
		} else {
			report.Unmatched++
		}
		report.TotalRefs += entry.References
		report.Entries = append(report.Entries, entry)
	}

	sort.Slice(report.Entries, func(i, j int) bool {
		return report.Entries[i].URL < report.Entries[j].URL
	})

	return report
}

// parseSrcset splits a srcset attribute into its candidate URLs,
// dropping the width/density descriptors.
func parseSrcset(srcset string) []string {
	if strings.TrimSpace(srcset) == "" {
		return nil
	}
	var urls []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

// isMediaURL reports whether a link points at a media file by extension.
func isMediaURL(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return mediaExtensions[strings.ToLower(path.Ext(u.Path))]
}

// filenameOf returns the last path segment of a URL, query stripped.
func filenameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
