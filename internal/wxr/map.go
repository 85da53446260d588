package wxr

import (
	"mime"
	"path"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// Mapped is the full set of domain records extracted from one WXR document.
type Mapped struct {
	Site        []domain.SiteInfo
	Authors     []domain.Author
	Categories  []domain.Category
	Tags        []domain.Tag
	Posts       []domain.Post
	Attachments []domain.Attachment
	Comments    []domain.Comment
	Meta        []domain.PostMeta

	// SkippedTypes counts items whose post type is neither post, page,
	// nor attachment (revisions, nav menu items, custom types).
	SkippedTypes map[string]int
}

// Map converts a decoded WXR document into domain records.
//
// Term post counts are derived from actual item membership rather than
// trusted from the export. Terms referenced by items but absent from the
// channel header are synthesized so membership never dangles.
func Map(doc *Document) *Mapped {
	ch := doc.Channel

	out := &Mapped{
		Site:         mapSiteInfo(ch),
		SkippedTypes: make(map[string]int),
	}

	for _, a := range ch.Authors {
		out.Authors = append(out.Authors, domain.Author{
			AuthorID:    a.ID,
			Login:       a.Login,
			Email:       a.Email,
			DisplayName: a.DisplayName,
			FirstName:   a.FirstName,
			LastName:    a.LastName,
		})
	}

	// Index maps hold slice positions, not pointers, because the term
	// slices grow while synthesizing missing terms.
	catBySlug := make(map[string]int)
	for _, c := range ch.Categories {
		catBySlug[c.Nicename] = len(out.Categories)
		out.Categories = append(out.Categories, domain.Category{
			TermID:      c.TermID,
			Nicename:    c.Nicename,
			Name:        c.Name,
			Description: c.Description,
			Parent:      c.Parent,
		})
	}

	tagBySlug := make(map[string]int)
	for _, t := range ch.Tags {
		tagBySlug[t.Slug] = len(out.Tags)
		out.Tags = append(out.Tags, domain.Tag{
			TermID:      t.TermID,
			Nicename:    t.Slug,
			Name:        t.Name,
			Description: t.Description,
		})
	}

	for i := range ch.Items {
		item := &ch.Items[i]

		out.Meta = append(out.Meta, mapMeta(item)...)
		out.Comments = append(out.Comments, mapComments(item)...)

		switch item.PostType {
		case domain.PostTypePost, domain.PostTypePage:
			post := mapPost(item)
			for _, slug := range post.CategorySlugs {
				idx := ensureCategory(out, catBySlug, slug, item)
				out.Categories[idx].PostCount++
			}
			for _, slug := range post.TagSlugs {
				idx := ensureTag(out, tagBySlug, slug, item)
				out.Tags[idx].PostCount++
			}
			out.Posts = append(out.Posts, post)

		case domain.PostTypeAttachment:
			out.Attachments = append(out.Attachments, mapAttachment(item))

		default:
			out.SkippedTypes[item.PostType]++
		}
	}

	return out
}

func mapSiteInfo(ch Channel) []domain.SiteInfo {
	pairs := [][2]string{
		{"title", ch.Title},
		{"link", ch.Link},
		{"description", ch.Description},
		{"pubDate", ch.PubDate},
		{"language", ch.Language},
		{"wxr_version", ch.WXRVersion},
		{"base_site_url", ch.BaseSiteURL},
		{"base_blog_url", ch.BaseBlogURL},
	}

	var site []domain.SiteInfo
	for _, p := range pairs {
		if p[1] != "" {
			site = append(site, domain.SiteInfo{Key: p[0], Value: p[1]})
		}
	}
	return site
}

func mapPost(item *Item) domain.Post {
	post := domain.Post{
		PostID:         item.PostID,
		Title:          item.Title,
		Link:           item.Link,
		PostType:       item.PostType,
		Status:         item.Status,
		PostDate:       parseTime(item.PostDate),
		PostName:       item.PostName,
		Creator:        item.Creator,
		ContentEncoded: item.Content,
		Excerpt:        item.Excerpt,
	}

	for _, c := range item.Categories {
		slug := termSlug(c)
		if slug == "" {
			continue
		}
		switch c.Domain {
		case "category":
			post.CategorySlugs = appendUnique(post.CategorySlugs, slug)
		case "post_tag":
			post.TagSlugs = appendUnique(post.TagSlugs, slug)
		}
	}

	return post
}

func mapAttachment(item *Item) domain.Attachment {
	url := item.AttachmentURL
	if url == "" {
		url = item.GUID
	}
	return domain.Attachment{
		PostID:      item.PostID,
		Title:       item.Title,
		URL:         url,
		MimeType:    mime.TypeByExtension(path.Ext(url)),
		PostName:    item.PostName,
		GUID:        item.GUID,
		ParentID:    item.PostParent,
		Description: item.Excerpt,
		Content:     item.Content,
	}
}

func mapMeta(item *Item) []domain.PostMeta {
	var rows []domain.PostMeta
	for _, m := range item.Meta {
		if m.Key == "" {
			continue
		}
		rows = append(rows, domain.PostMeta{
			PostID:    item.PostID,
			MetaKey:   m.Key,
			MetaValue: m.Value,
		})
	}
	return rows
}

func mapComments(item *Item) []domain.Comment {
	var comments []domain.Comment
	for _, c := range item.Comments {
		comments = append(comments, domain.Comment{
			CommentID:   c.ID,
			PostID:      item.PostID,
			Author:      c.Author,
			AuthorEmail: c.AuthorEmail,
			AuthorURL:   c.AuthorURL,
			AuthorIP:    c.AuthorIP,
			Date:        parseTime(c.Date),
			DateGMT:     parseTime(c.DateGMT),
			Content:     c.Content,
			Approved:    c.Approved,
			Type:        c.Type,
			Parent:      c.Parent,
			UserID:      c.UserID,
		})
	}
	return comments
}

// ensureCategory returns the index of the category for slug,
// synthesizing one when the channel header omitted it.
func ensureCategory(out *Mapped, bySlug map[string]int, slug string, item *Item) int {
	if idx, ok := bySlug[slug]; ok {
		return idx
	}
	idx := len(out.Categories)
	out.Categories = append(out.Categories, domain.Category{
		Nicename: slug,
		Name:     termName(item, "category", slug),
	})
	bySlug[slug] = idx
	return idx
}

// ensureTag returns the index of the tag for slug, synthesizing one
// when the channel header omitted it.
func ensureTag(out *Mapped, bySlug map[string]int, slug string, item *Item) int {
	if idx, ok := bySlug[slug]; ok {
		return idx
	}
	idx := len(out.Tags)
	out.Tags = append(out.Tags, domain.Tag{
		Nicename: slug,
		Name:     termName(item, "post_tag", slug),
	})
	bySlug[slug] = idx
	return idx
}

// termSlug resolves an item term reference to a slug, preferring the
// nicename attribute and falling back to the display text.
func termSlug(c ItemCategory) string {
	if c.Nicename != "" {
		return c.Nicename
	}
	return strings.TrimSpace(c.Name)
}

// termName finds the display name the item used for a term slug.
func termName(item *Item, domainAttr, slug string) string {
	for _, c := range item.Categories {
		if c.Domain == domainAttr && termSlug(c) == slug {
			if name := strings.TrimSpace(c.Name); name != "" {
				return name
			}
		}
	}
	return slug
}

func appendUnique(slugs []string, slug string) []string {
	for _, s := range slugs {
		if s == slug {
			return slugs
		}
	}
	return append(slugs, slug)
}
