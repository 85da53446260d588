package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pressmapapp/pressmap-server/internal/config"
	"github.com/pressmapapp/pressmap-server/internal/logger"
	"github.com/pressmapapp/pressmap-server/internal/search"
	"github.com/pressmapapp/pressmap-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the full-text search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// TriggerSearchReindexIfNeeded repopulates the index in the background when
// it is empty but the store holds posts. This happens after a mapping
// version bump rebuilds the index on startup.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()

	docs, err := indexHandle.DocumentCount()
	if err != nil {
		log.Warn("Failed to read search index size", "error", err)
		return
	}
	posts, err := storeHandle.Posts.Count(ctx)
	if err != nil {
		log.Warn("Failed to count posts for reindex check", "error", err)
		return
	}
	if docs > 0 || posts == 0 {
		return
	}

	log.Info("Search index empty, reindexing", "posts", posts)
	go func() {
		if err := searchService.Reindex(ctx); err != nil {
			log.Error("Background reindex failed", "error", err)
		}
	}()
}
