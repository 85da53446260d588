package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pressmapapp/pressmap-server/internal/analysis/links"
	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// LinkService owns the derived link graph. The graph is rebuilt lazily:
// readers call Ensure, which rebuilds only when the stored links are stale
// relative to the content version.
type LinkService struct {
	store     *store.Store
	extractor content.Extractor
	logger    *slog.Logger

	mu        sync.Mutex
	lastStats *links.ScanStats
}

// NewLinkService creates the link service.
func NewLinkService(st *store.Store, extractor content.Extractor, logger *slog.Logger) *LinkService {
	return &LinkService{
		store:     st,
		extractor: extractor,
		logger:    logger,
	}
}

// Ensure rebuilds the link graph if the post set changed since the last
// build. The mutex also serializes concurrent readers so only one of them
// pays for the rebuild.
func (s *LinkService) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.ContentVersion(ctx)
	if err != nil {
		return err
	}
	derived, err := s.store.DerivedVersion(ctx, store.DerivedLinks)
	if err != nil {
		return err
	}
	if derived == current {
		return nil
	}
	return s.rebuild(ctx, current)
}

// Rebuild unconditionally recomputes the link graph.
func (s *LinkService) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.ContentVersion(ctx)
	if err != nil {
		return err
	}
	return s.rebuild(ctx, current)
}

func (s *LinkService) rebuild(ctx context.Context, version uint64) error {
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return err
	}

	result := links.Build(deref(posts), s.store.SiteURL(ctx), s.extractor)

	if err := clearAndInsert(ctx, s.store.InternalLinks, result.Internal); err != nil {
		return err
	}
	if err := clearAndInsert(ctx, s.store.ExternalLinks, result.External); err != nil {
		return err
	}
	if err := s.store.SetDerivedVersion(ctx, store.DerivedLinks, version); err != nil {
		return err
	}

	s.lastStats = &result.Stats
	writeAudit(ctx, s.store, s.logger, domain.AuditActionLinkRebuild, "", len(result.Internal)+len(result.External))
	s.logger.Info("link graph rebuilt",
		"posts", result.Stats.PostsScanned,
		"internal", result.Stats.InternalLinks,
		"external", result.Stats.ExternalLinks,
		"unresolved", result.Stats.UnresolvedInternal,
	)
	return nil
}

// Stats returns the scan statistics of the most recent rebuild in this
// process, or nil when no rebuild has run yet.
func (s *LinkService) Stats() *links.ScanStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStats
}

// Internal returns the stored internal links, rebuilding first if stale.
func (s *LinkService) Internal(ctx context.Context) ([]domain.InternalLink, error) {
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}
	stored, err := s.store.InternalLinks.All(ctx)
	if err != nil {
		return nil, err
	}
	return deref(stored), nil
}

// External returns the stored external links, rebuilding first if stale.
func (s *LinkService) External(ctx context.Context) ([]domain.ExternalLink, error) {
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}
	stored, err := s.store.ExternalLinks.All(ctx)
	if err != nil {
		return nil, err
	}
	return deref(stored), nil
}
