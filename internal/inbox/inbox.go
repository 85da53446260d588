// Package inbox watches a drop directory for WXR files and feeds them to
// the import service.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pressmapapp/pressmap-server/internal/service"
)

// settleDelay is how long a file must stop growing before it is imported.
// Exports are often copied into the inbox over slow links; importing a
// half-written file fails the parse.
const settleDelay = 2 * time.Second

// Watcher monitors one flat directory for dropped WXR exports.
type Watcher struct {
	path    string
	imports *service.ImportService
	logger  *slog.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile
}

type pendingFile struct {
	size  int64
	timer *time.Timer
}

// New creates an inbox watcher for path. The directory is created when
// missing.
func New(path string, imports *service.ImportService, logger *slog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch inbox directory: %w", err)
	}

	return &Watcher{
		path:    path,
		imports: imports,
		logger:  logger,
		watcher: fsw,
		pending: make(map[string]*pendingFile),
	}, nil
}

// Start processes inbox events until the context is cancelled. Files
// already present at startup are imported first.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("inbox watcher started", "path", w.path)
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				w.track(ctx, event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox watcher error", "error", err)
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.pending = make(map[string]*pendingFile)
	w.mu.Unlock()
	return w.watcher.Close()
}

// sweep imports any WXR files already sitting in the inbox.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.path)
	if err != nil {
		w.logger.Error("inbox sweep failed", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := filepath.Join(w.path, entry.Name())
		if isWXRFile(name) {
			w.track(ctx, name)
		}
	}
}

// track (re)arms the settle timer for a file. Every write resets the
// timer so the import only fires once the file stops changing.
func (w *Watcher) track(ctx context.Context, path string) {
	if !isWXRFile(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.timer.Reset(settleDelay)
		return
	}

	p := &pendingFile{}
	p.timer = time.AfterFunc(settleDelay, func() {
		w.settle(ctx, path)
	})
	w.pending[path] = p
}

// settle checks that the file stopped growing, then imports it. A file
// still growing re-arms its timer.
func (w *Watcher) settle(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.forget(path)
		return
	}

	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	if info.Size() != p.size {
		p.size = info.Size()
		p.timer.Reset(settleDelay)
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	w.importFile(ctx, path)
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// importFile runs the import and moves the file out of the inbox so it is
// not re-imported on the next sweep.
func (w *Watcher) importFile(ctx context.Context, path string) {
	name := filepath.Base(path)
	w.logger.Info("importing inbox file", "file", name)

	f, err := os.Open(path)
	if err != nil {
		w.logger.Error("failed to open inbox file", "file", name, "error", err)
		return
	}

	job, err := w.imports.Run(ctx, f, name)
	f.Close()
	if err != nil {
		w.logger.Error("inbox import failed", "file", name, "error", err)
		w.moveAside(path, "failed")
		return
	}

	w.logger.Info("inbox import complete", "file", name, "job", job.ID, "posts", job.Posts)
	w.moveAside(path, "done")
}

// moveAside relocates a processed file into a status subdirectory.
func (w *Watcher) moveAside(path, status string) {
	dir := filepath.Join(w.path, status)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.logger.Error("failed to create status directory", "dir", dir, "error", err)
		return
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		w.logger.Error("failed to move processed file", "file", path, "error", err)
	}
}

func isWXRFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xml" || ext == ".wxr"
}
