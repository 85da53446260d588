package service

import (
	"context"
	"log/slog"

	"github.com/pressmapapp/pressmap-server/internal/analysis/graph"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// GraphService derives graph-level views over the internal link set.
type GraphService struct {
	store  *store.Store
	links  *LinkService
	logger *slog.Logger
}

// NewGraphService creates the graph service.
func NewGraphService(st *store.Store, links *LinkService, logger *slog.Logger) *GraphService {
	return &GraphService{
		store:  st,
		links:  links,
		logger: logger,
	}
}

// Insights computes aggregate link statistics: orphans, averages, and
// top-ranked posts by inbound and outbound count.
func (s *GraphService) Insights(ctx context.Context) (*graph.Insights, error) {
	internal, err := s.links.Internal(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}
	return graph.BuildInsights(deref(posts), internal), nil
}

// Data builds the node/edge graph for visualization. Edges cover only
// resolved links whose endpoints both exist.
func (s *GraphService) Data(ctx context.Context) (*graph.Data, error) {
	internal, err := s.links.Internal(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}
	return graph.BuildData(deref(posts), internal), nil
}
