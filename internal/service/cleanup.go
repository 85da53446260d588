package service

import (
	"context"
	"log/slog"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// CleanupService applies content cleanup passes to stored post bodies.
type CleanupService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCleanupService creates the cleanup service.
func NewCleanupService(st *store.Store, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		store:  st,
		logger: logger,
	}
}

// CleanupSummary aggregates one cleanup run across all posts.
type CleanupSummary struct {
	PostsScanned  int `json:"posts_scanned"`
	PostsChanged  int `json:"posts_changed"`
	URLsRewritten int `json:"urls_rewritten"`
	StylesRemoved int `json:"styles_removed"`
	TagsStripped  int `json:"tags_stripped"`
}

// Run applies the enabled cleanup passes to every post body. Cleanup
// rewrites the working copy; the raw imported content is kept so a
// re-import is never needed to recover it. Changed posts drop their
// markdown cache, which is re-derived lazily on export.
func (s *CleanupService) Run(ctx context.Context, opts content.CleanupOptions) (*CleanupSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}

	summary := &CleanupSummary{}
	for _, post := range posts {
		body := post.Body()
		if body == "" {
			continue
		}
		summary.PostsScanned++

		res := content.Cleanup(body, opts)
		summary.URLsRewritten += res.URLsRewritten
		summary.StylesRemoved += res.StylesRemoved
		summary.TagsStripped += res.TagsStripped
		if !res.Changed {
			continue
		}

		post.CleanedHTMLSource = res.HTML
		post.Markdown = ""
		if err := s.store.Posts.Put(ctx, post); err != nil {
			return nil, err
		}
		summary.PostsChanged++
	}

	if summary.PostsChanged > 0 {
		if _, err := s.store.BumpContentVersion(ctx); err != nil {
			return nil, err
		}
	}

	writeAudit(ctx, s.store, s.logger, domain.AuditActionCleanup, "", summary.PostsChanged)
	s.logger.Info("cleanup complete",
		"scanned", summary.PostsScanned,
		"changed", summary.PostsChanged,
		"urls", summary.URLsRewritten,
	)
	return summary, nil
}
