package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pressmapapp/pressmap-server/internal/config"
	"github.com/pressmapapp/pressmap-server/internal/inbox"
	"github.com/pressmapapp/pressmap-server/internal/logger"
	"github.com/pressmapapp/pressmap-server/internal/service"
)

// InboxWatcherHandle wraps the inbox watcher with its context for
// lifecycle management. A nil Watcher means the inbox is disabled.
type InboxWatcherHandle struct {
	*inbox.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Close()
}

// ProvideInboxWatcher provides the WXR inbox watcher. Disabled when no
// inbox path is configured.
func ProvideInboxWatcher(i do.Injector) (*InboxWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Import.InboxPath == "" {
		log.Info("Inbox watching disabled - no inbox path configured")
		return &InboxWatcherHandle{}, nil
	}

	importService := do.MustInvoke[*service.ImportService](i)

	watcher, err := inbox.New(cfg.Import.InboxPath, importService, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("Inbox watcher stopped", "error", err)
		}
	}()

	log.Info("Inbox watcher started", "path", cfg.Import.InboxPath)

	return &InboxWatcherHandle{Watcher: watcher, cancel: cancel}, nil
}
