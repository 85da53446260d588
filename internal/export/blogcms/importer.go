package blogcms

import (
	"context"
	"log/slog"

	"github.com/pressmapapp/pressmap-server/internal/errors"
)

// maxParentPasses bounds the category creation loop. A well-formed
// hierarchy finishes in depth passes; a parent cycle would otherwise
// spin forever.
const maxParentPasses = 10

// ItemError records one record the remote API rejected.
type ItemError struct {
	Kind  string `json:"kind"` // "category", "tag", "post"
	Key   string `json:"key"`  // slug of the rejected record
	Error string `json:"error"`
}

// Result summarizes one remote import run.
type Result struct {
	CategoriesCreated int         `json:"categories_created"`
	TagsCreated       int         `json:"tags_created"`
	PostsCreated      int         `json:"posts_created"`
	Errors            []ItemError `json:"errors,omitempty"`
}

// Importer pushes a mapped export into BlogCMS in dependency order:
// categories (parents before children), then tags, then posts.
type Importer struct {
	client *Client
	logger *slog.Logger
}

// NewImporter creates a remote importer.
func NewImporter(client *Client, logger *slog.Logger) *Importer {
	return &Importer{client: client, logger: logger}
}

// Run executes the import. Individual record failures are collected and
// the run continues; an authentication failure aborts immediately since
// every following call would fail the same way.
func (imp *Importer) Run(ctx context.Context, export *Export) (*Result, error) {
	res := &Result{}

	if err := imp.importCategories(ctx, export.Categories, res); err != nil {
		return res, err
	}

	for _, tag := range export.Tags {
		if _, err := imp.client.CreateTag(ctx, tag); err != nil {
			if abortable(err) {
				return res, err
			}
			res.Errors = append(res.Errors, ItemError{Kind: "tag", Key: tag.Slug, Error: err.Error()})
			continue
		}
		res.TagsCreated++
	}

	for _, post := range export.Posts {
		if _, err := imp.client.CreatePost(ctx, post); err != nil {
			if abortable(err) {
				return res, err
			}
			res.Errors = append(res.Errors, ItemError{Kind: "post", Key: post.Slug, Error: err.Error()})
			continue
		}
		res.PostsCreated++
	}

	imp.logger.Info("remote import finished",
		"categories", res.CategoriesCreated,
		"tags", res.TagsCreated,
		"posts", res.PostsCreated,
		"errors", len(res.Errors),
	)

	return res, nil
}

// importCategories creates categories in passes so parents exist before
// their children.
func (imp *Importer) importCategories(ctx context.Context, categories []Category, res *Result) error {
	done := make(map[string]bool, len(categories))
	pending := make([]Category, len(categories))
	copy(pending, categories)

	for pass := 0; pass < maxParentPasses && len(pending) > 0; pass++ {
		var deferred []Category
		progressed := false

		for _, cat := range pending {
			if cat.ParentSlug != "" && !done[cat.ParentSlug] {
				deferred = append(deferred, cat)
				continue
			}

			if _, err := imp.client.CreateCategory(ctx, cat); err != nil {
				if abortable(err) {
					return err
				}
				res.Errors = append(res.Errors, ItemError{Kind: "category", Key: cat.Slug, Error: err.Error()})
				// Children of a failed parent still get a chance: the
				// slug counts as handled so they import as roots remotely.
			} else {
				res.CategoriesCreated++
			}
			done[cat.Slug] = true
			progressed = true
		}

		if !progressed {
			break
		}
		pending = deferred
	}

	// Whatever is left has a missing or cyclic parent chain.
	for _, cat := range pending {
		res.Errors = append(res.Errors, ItemError{
			Kind:  "category",
			Key:   cat.Slug,
			Error: "parent category " + cat.ParentSlug + " could not be created",
		})
	}

	return nil
}

// abortable reports whether an error makes the whole run pointless.
func abortable(err error) bool {
	return errors.Is(err, errors.ErrUnauthorized) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
