// Package service provides the business logic layer: WXR imports,
// derived analyses, exports, and dataset maintenance.
package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/errors"
	"github.com/pressmapapp/pressmap-server/internal/id"
	"github.com/pressmapapp/pressmap-server/internal/store"
	"github.com/pressmapapp/pressmap-server/internal/wxr"
)

const (
	// markdownWorkers is the size of the derivation pool.
	markdownWorkers = 4

	defaultWorkerTimeout = 30 * time.Second
)

// ImportService ingests WXR exports: parse, map, persist, derive.
type ImportService struct {
	store         *store.Store
	search        *SearchService
	links         *LinkService
	logger        *slog.Logger
	workerTimeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewImportService creates the import service. workerTimeout bounds each
// per-post markdown derivation; zero uses the default.
func NewImportService(st *store.Store, search *SearchService, links *LinkService, workerTimeout time.Duration, logger *slog.Logger) *ImportService {
	if workerTimeout <= 0 {
		workerTimeout = defaultWorkerTimeout
	}
	return &ImportService{
		store:         st,
		search:        search,
		links:         links,
		logger:        logger,
		workerTimeout: workerTimeout,
	}
}

// Run imports one WXR document, replacing the current dataset.
// Only one import may run at a time; a second call returns a conflict.
func (s *ImportService) Run(ctx context.Context, r io.Reader, source string) (*domain.ImportJob, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, errors.Conflict("an import is already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	job := &domain.ImportJob{
		ID:        id.MustGenerate("job"),
		State:     domain.JobStateRunning,
		Source:    source,
		StartedAt: time.Now(),
	}
	if err := s.store.ImportJobs.Put(ctx, job); err != nil {
		return nil, err
	}

	mapped, err := s.ingest(ctx, r)
	if err != nil {
		s.failJob(ctx, job, err)
		return job, err
	}

	job.Posts = len(mapped.Posts)
	job.Attachments = len(mapped.Attachments)
	job.Comments = len(mapped.Comments)
	job.MetaRows = len(mapped.Meta)

	if err := s.derive(ctx); err != nil {
		s.failJob(ctx, job, err)
		return job, err
	}

	now := time.Now()
	job.State = domain.JobStateComplete
	job.FinishedAt = &now
	if err := s.store.ImportJobs.Put(ctx, job); err != nil {
		return job, err
	}

	writeAudit(ctx, s.store, s.logger, domain.AuditActionImport, source, job.Posts)
	s.logger.Info("import complete",
		"job", job.ID,
		"posts", job.Posts,
		"attachments", job.Attachments,
		"comments", job.Comments,
	)

	return job, nil
}

// ingest parses and persists the raw dataset. The previous dataset is
// replaced wholesale; a parse failure leaves it untouched. The input is
// buffered up front so a stalled parse can be retried.
func (s *ImportService) ingest(ctx context.Context, r io.Reader) (*wxr.Mapped, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	mapped, err := s.runWithWatchdog(ctx,
		func(progress func()) (*wxr.Mapped, error) {
			doc, err := wxr.Parse(&progressReader{r: bytes.NewReader(raw), report: progress})
			if err != nil {
				return nil, err
			}
			return wxr.Map(doc), nil
		},
		func() (*wxr.Mapped, error) {
			doc, err := wxr.Parse(bytes.NewReader(raw))
			if err != nil {
				return nil, err
			}
			return wxr.Map(doc), nil
		},
	)
	if err != nil {
		return nil, err
	}

	for skipped, count := range mapped.SkippedTypes {
		s.logger.Debug("skipped item type", "type", skipped, "count", count)
	}

	if err := s.replaceAll(ctx, mapped); err != nil {
		return nil, err
	}

	if _, err := s.store.BumpContentVersion(ctx); err != nil {
		return nil, err
	}
	return mapped, nil
}

// runWithWatchdog runs worker on its own goroutine and restarts a stall
// timer each time the worker reports progress. A worker that goes quiet
// for a full timeout window is abandoned and fallback runs on the
// calling goroutine instead.
func (s *ImportService) runWithWatchdog(ctx context.Context, worker func(progress func()) (*wxr.Mapped, error), fallback func() (*wxr.Mapped, error)) (*wxr.Mapped, error) {
	type result struct {
		mapped *wxr.Mapped
		err    error
	}

	progress := make(chan struct{}, 1)
	done := make(chan result, 1)
	go func() {
		mapped, err := worker(func() {
			select {
			case progress <- struct{}{}:
			default:
			}
		})
		done <- result{mapped, err}
	}()

	timer := time.NewTimer(s.workerTimeout)
	defer timer.Stop()

	for {
		select {
		case res := <-done:
			return res.mapped, res.err
		case <-progress:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(s.workerTimeout)
		case <-timer.C:
			s.logger.Warn("parse worker stalled, retrying synchronously", "timeout", s.workerTimeout)
			return fallback()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// progressReader pings the watchdog on every successful read.
type progressReader struct {
	r      io.Reader
	report func()
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.report()
	}
	return n, err
}

func (s *ImportService) replaceAll(ctx context.Context, mapped *wxr.Mapped) error {
	if err := clearAndInsert(ctx, s.store.SiteInfo, mapped.Site); err != nil {
		return err
	}
	if err := clearAndInsert(ctx, s.store.Authors, mapped.Authors); err != nil {
		return err
	}
	if err := clearAndInsert(ctx, s.store.Categories, mapped.Categories); err != nil {
		return err
	}
	if err := clearAndInsert(ctx, s.store.Tags, mapped.Tags); err != nil {
		return err
	}
	if err := clearAndInsert(ctx, s.store.Posts, mapped.Posts); err != nil {
		return err
	}
	if err := clearAndInsert(ctx, s.store.Attachments, mapped.Attachments); err != nil {
		return err
	}
	if err := clearAndInsert(ctx, s.store.Comments, mapped.Comments); err != nil {
		return err
	}
	return clearAndInsert(ctx, s.store.PostMeta, mapped.Meta)
}

func clearAndInsert[T any](ctx context.Context, e *store.Entity[T], items []T) error {
	if err := e.Clear(ctx); err != nil {
		return err
	}
	ptrs := make([]*T, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	return e.BulkInsert(ctx, ptrs)
}

// derive runs post-ingest derivations: markdown caches, the link graph,
// and the search index.
func (s *ImportService) derive(ctx context.Context) error {
	if err := s.deriveMarkdown(ctx); err != nil {
		return err
	}
	if err := s.links.Rebuild(ctx); err != nil {
		return err
	}
	return s.search.Reindex(ctx)
}

// deriveMarkdown converts every post body to markdown with a bounded
// worker pool. A post whose conversion exceeds the worker timeout keeps
// an empty markdown cache; exporters convert those lazily instead.
func (s *ImportService) deriveMarkdown(ctx context.Context) error {
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, markdownWorkers)
	var wg sync.WaitGroup

	for _, post := range posts {
		if post.Body() == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(p *domain.Post) {
			defer wg.Done()
			defer func() { <-sem }()
			p.Markdown = s.convertWithTimeout(ctx, p)
		}(post)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, post := range posts {
		if err := s.store.Posts.Put(ctx, post); err != nil {
			return err
		}
	}

	version, err := s.store.ContentVersion(ctx)
	if err != nil {
		return err
	}
	return s.store.SetDerivedVersion(ctx, store.DerivedMarkdown, version)
}

// convertWithTimeout runs one markdown conversion, abandoning it when
// the worker timeout expires. Pathological bodies (megabytes of nested
// markup) otherwise stall the whole import.
func (s *ImportService) convertWithTimeout(ctx context.Context, p *domain.Post) string {
	done := make(chan string, 1)
	go func() {
		done <- content.ToMarkdown(p.Body())
	}()

	select {
	case md := <-done:
		return md
	case <-time.After(s.workerTimeout):
		s.logger.Warn("markdown derivation timed out", "post_id", p.PostID, "timeout", s.workerTimeout)
		return ""
	case <-ctx.Done():
		return ""
	}
}

func (s *ImportService) failJob(ctx context.Context, job *domain.ImportJob, cause error) {
	now := time.Now()
	job.State = domain.JobStateFailed
	job.Error = cause.Error()
	job.FinishedAt = &now
	if err := s.store.ImportJobs.Put(ctx, job); err != nil {
		s.logger.Error("failed to record import failure", "job", job.ID, "error", err)
	}
}
