package providers

import (
	"github.com/samber/do/v2"

	"github.com/pressmapapp/pressmap-server/internal/backup"
	"github.com/pressmapapp/pressmap-server/internal/config"
	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/export"
	"github.com/pressmapapp/pressmap-server/internal/logger"
	"github.com/pressmapapp/pressmap-server/internal/media"
	"github.com/pressmapapp/pressmap-server/internal/service"
)

// ProvideExtractor provides the HTML link and image extractor.
func ProvideExtractor(i do.Injector) (content.Extractor, error) {
	return content.NewExtractor(), nil
}

// ProvideLinkService provides the link graph service.
func ProvideLinkService(i do.Injector) (*service.LinkService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	extractor := do.MustInvoke[content.Extractor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLinkService(storeHandle.Store, extractor, log.Logger), nil
}

// ProvideImportService provides the WXR import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	linkService := do.MustInvoke[*service.LinkService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, searchService, linkService, cfg.Import.WorkerTimeout, log.Logger), nil
}

// ProvideGraphService provides the link graph analysis service.
func ProvideGraphService(i do.Injector) (*service.GraphService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	linkService := do.MustInvoke[*service.LinkService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGraphService(storeHandle.Store, linkService, log.Logger), nil
}

// ProvideAnalysisService provides the report analysis service.
func ProvideAnalysisService(i do.Injector) (*service.AnalysisService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	extractor := do.MustInvoke[content.Extractor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalysisService(storeHandle.Store, extractor, log.Logger), nil
}

// ProvideBackupService provides the dataset snapshot service.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(storeHandle.Store, cfg.SnapshotPath(), log.Logger), nil
}

// ProvideTaxonomyService provides the taxonomy service.
func ProvideTaxonomyService(i do.Injector) (*service.TaxonomyService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	snapshots := do.MustInvoke[*backup.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTaxonomyService(storeHandle.Store, snapshots, cfg.Analysis.TagSimilarityThreshold, log.Logger), nil
}

// ProvideCleanupService provides the content cleanup service.
func ProvideCleanupService(i do.Injector) (*service.CleanupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCleanupService(storeHandle.Store, log.Logger), nil
}

// ProvideExportService provides the export service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	linkService := do.MustInvoke[*service.LinkService](i)
	log := do.MustInvoke[*logger.Logger](i)

	writer := export.NewWriter(cfg.ExportPath(), log.Logger)

	return service.NewExportService(storeHandle.Store, linkService, writer, cfg.BlogCMS, log.Logger), nil
}

// ProvideMediaService provides the media analysis service.
func ProvideMediaService(i do.Injector) (*service.MediaService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	prober := media.NewProber(log.Logger)

	return service.NewMediaService(storeHandle.Store, prober, log.Logger), nil
}

// ProvidePostService provides the read-side post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(storeHandle.Store, log.Logger), nil
}
