package di

import (
	"github.com/samber/do/v2"

	"github.com/pressmapapp/pressmap-server/internal/backup"
	"github.com/pressmapapp/pressmap-server/internal/config"
	"github.com/pressmapapp/pressmap-server/internal/di/providers"
	"github.com/pressmapapp/pressmap-server/internal/logger"
	"github.com/pressmapapp/pressmap-server/internal/service"
)

// Bootstrap eagerly initializes every provider so startup failures surface
// immediately instead of on first request.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Business services
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.LinkService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)
	_ = do.MustInvoke[*service.GraphService](injector)
	_ = do.MustInvoke[*service.AnalysisService](injector)
	_ = do.MustInvoke[*service.TaxonomyService](injector)
	_ = do.MustInvoke[*service.CleanupService](injector)
	_ = do.MustInvoke[*service.ExportService](injector)
	_ = do.MustInvoke[*service.MediaService](injector)
	_ = do.MustInvoke[*service.PostService](injector)

	// Workers
	_ = do.MustInvoke[*providers.InboxWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if the index was rebuilt on startup
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
