package service

import (
	"context"
	"log/slog"

	"github.com/pressmapapp/pressmap-server/internal/analysis/manifest"
	"github.com/pressmapapp/pressmap-server/internal/analysis/plugins"
	"github.com/pressmapapp/pressmap-server/internal/analysis/qa"
	"github.com/pressmapapp/pressmap-server/internal/analysis/seo"
	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// AnalysisService runs the read-only analyses over the imported dataset.
// Each report is computed on demand from the stored records.
type AnalysisService struct {
	store     *store.Store
	extractor content.Extractor
	logger    *slog.Logger
}

// NewAnalysisService creates the analysis service.
func NewAnalysisService(st *store.Store, extractor content.Extractor, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		store:     st,
		extractor: extractor,
		logger:    logger,
	}
}

// SEO normalizes per-post SEO metadata across providers.
func (s *AnalysisService) SEO(ctx context.Context) (*seo.Report, error) {
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := s.store.PostMeta.All(ctx)
	if err != nil {
		return nil, err
	}
	return seo.Normalize(deref(posts), domain.MetaIndex(deref(meta)), s.extractor), nil
}

// SEOAuditReport groups the normalized records by gap and pairs them
// with the quick pre-normalization summary.
type SEOAuditReport struct {
	Audit *seo.AuditReport  `json:"audit"`
	Quick *seo.QuickSummary `json:"quick"`
}

// SEOAudit builds the gap analysis over the normalized SEO records.
func (s *AnalysisService) SEOAudit(ctx context.Context) (*SEOAuditReport, error) {
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}
	meta, err := s.store.PostMeta.All(ctx)
	if err != nil {
		return nil, err
	}
	report := seo.Normalize(deref(posts), domain.MetaIndex(deref(meta)), s.extractor)
	return &SEOAuditReport{
		Audit: seo.BuildAuditReport(report),
		Quick: seo.QuickAudit(deref(posts)),
	}, nil
}

// QA runs the content quality checks over every post.
func (s *AnalysisService) QA(ctx context.Context) (*qa.Report, error) {
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}
	return qa.Analyze(deref(posts)), nil
}

// Plugins detects WordPress plugin footprints from meta key prefixes.
func (s *AnalysisService) Plugins(ctx context.Context) (*plugins.Report, error) {
	meta, err := s.store.PostMeta.All(ctx)
	if err != nil {
		return nil, err
	}
	return plugins.Detect(deref(meta)), nil
}

// Manifest inventories every media URL referenced by post content and
// matches references against the attachment records.
func (s *AnalysisService) Manifest(ctx context.Context) (*manifest.Report, error) {
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}
	attachments, err := s.store.Attachments.All(ctx)
	if err != nil {
		return nil, err
	}
	return manifest.Build(deref(posts), deref(attachments), s.extractor), nil
}
