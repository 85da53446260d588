package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pressmapapp/pressmap-server/internal/api"
	"github.com/pressmapapp/pressmap-server/internal/backup"
	"github.com/pressmapapp/pressmap-server/internal/config"
	"github.com/pressmapapp/pressmap-server/internal/logger"
	"github.com/pressmapapp/pressmap-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := api.Services{
		Imports:  do.MustInvoke[*service.ImportService](i),
		Posts:    do.MustInvoke[*service.PostService](i),
		Search:   do.MustInvoke[*service.SearchService](i),
		Links:    do.MustInvoke[*service.LinkService](i),
		Graphs:   do.MustInvoke[*service.GraphService](i),
		Analysis: do.MustInvoke[*service.AnalysisService](i),
		Taxonomy: do.MustInvoke[*service.TaxonomyService](i),
		Cleanup:  do.MustInvoke[*service.CleanupService](i),
		Exports:  do.MustInvoke[*service.ExportService](i),
		Media:    do.MustInvoke[*service.MediaService](i),

		Snapshots: do.MustInvoke[*backup.Service](i),
	}

	handler := api.NewServer(services, cfg.Import.MaxUploadBytes, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
