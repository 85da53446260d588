package service

import (
	"context"
	"log/slog"

	"github.com/pressmapapp/pressmap-server/internal/config"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/errors"
	"github.com/pressmapapp/pressmap-server/internal/export"
	"github.com/pressmapapp/pressmap-server/internal/export/blogcms"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// ExportService maps the imported dataset to BlogCMS records and delivers
// them as on-disk bundles or directly over the BlogCMS API.
type ExportService struct {
	store  *store.Store
	links  *LinkService
	writer *export.Writer
	cms    config.BlogCMSConfig
	logger *slog.Logger
}

// NewExportService creates the export service.
func NewExportService(st *store.Store, links *LinkService, writer *export.Writer, cms config.BlogCMSConfig, logger *slog.Logger) *ExportService {
	return &ExportService{
		store:  st,
		links:  links,
		writer: writer,
		cms:    cms,
		logger: logger,
	}
}

// BuildExport maps the full dataset through the BlogCMS column limits.
func (s *ExportService) BuildExport(ctx context.Context) (*blogcms.Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, errors.ExportFailed("no imported posts to export")
	}
	categories, err := s.store.Categories.All(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.store.Tags.All(ctx)
	if err != nil {
		return nil, err
	}
	attachments, err := s.store.Attachments.All(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := s.store.PostMeta.All(ctx)
	if err != nil {
		return nil, err
	}

	return blogcms.Map(blogcms.Dataset{
		Posts:       deref(posts),
		Categories:  deref(categories),
		Tags:        deref(tags),
		Attachments: deref(attachments),
		MetaByPost:  domain.MetaIndex(deref(meta)),
		AuthorID:    s.cms.AuthorID,
	}), nil
}

// WriteBundle builds the export and writes a full bundle directory: CSVs,
// JSON, a SQLite staging database, and a markdown tree.
func (s *ExportService) WriteBundle(ctx context.Context) (*export.Manifest, error) {
	exp, err := s.BuildExport(ctx)
	if err != nil {
		return nil, err
	}
	internal, err := s.links.Internal(ctx)
	if err != nil {
		return nil, err
	}

	manifest, err := s.writer.Write(ctx, exp, internal)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export bundle written", "id", manifest.ID, "dir", manifest.Dir, "posts", manifest.Posts)
	return manifest, nil
}

// RemoteImport pushes the export into a BlogCMS instance over its API.
// Categories go first so parent relationships resolve, then tags, then
// posts. Individual record failures are collected; authentication failures
// abort the run.
func (s *ExportService) RemoteImport(ctx context.Context) (*blogcms.Result, error) {
	if s.cms.BaseURL == "" {
		return nil, errors.Validation("BlogCMS base URL is not configured")
	}
	if s.cms.APIToken == "" {
		return nil, errors.Unauthorized("BlogCMS API token is not configured")
	}

	exp, err := s.BuildExport(ctx)
	if err != nil {
		return nil, err
	}

	client := blogcms.NewClient(s.cms.BaseURL, s.cms.APIToken, s.cms.RequestsPerSecond, s.logger)
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}

	result, err := blogcms.NewImporter(client, s.logger).Run(ctx, exp)
	if err != nil {
		return result, err
	}

	writeAudit(ctx, s.store, s.logger, domain.AuditActionRemoteImport, s.cms.BaseURL, result.PostsCreated)
	s.logger.Info("remote import finished",
		"categories", result.CategoriesCreated,
		"tags", result.TagsCreated,
		"posts", result.PostsCreated,
		"errors", len(result.Errors),
	)
	return result, nil
}
