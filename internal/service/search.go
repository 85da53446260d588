package service

import (
	"context"
	"log/slog"

	"github.com/pressmapapp/pressmap-server/internal/search"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// SearchService maintains the full-text index over imported posts.
type SearchService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates the search service.
func NewSearchService(st *store.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  st,
		index:  index,
		logger: logger,
	}
}

// Reindex drops the index and rebuilds it from the current post set.
func (s *SearchService) Reindex(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.index.Rebuild(); err != nil {
		return err
	}

	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return err
	}

	docs := make([]*search.Document, 0, len(posts))
	for _, post := range posts {
		docs = append(docs, search.FromPost(post))
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return err
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}

// Query runs a search against the index.
func (s *SearchService) Query(ctx context.Context, q search.Query) (*search.Results, error) {
	return s.index.Search(ctx, q)
}

// DocumentCount reports how many posts the index currently holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
