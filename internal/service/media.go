package service

import (
	"context"
	"log/slog"

	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/media"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// MediaService derives BlurHash placeholders for image attachments by
// fetching them from the source site.
type MediaService struct {
	store  *store.Store
	prober *media.Prober
	logger *slog.Logger
}

// NewMediaService creates the media service.
func NewMediaService(st *store.Store, prober *media.Prober, logger *slog.Logger) *MediaService {
	return &MediaService{
		store:  st,
		prober: prober,
		logger: logger,
	}
}

// MediaResult summarizes one analysis run.
type MediaResult struct {
	Probed  int `json:"probed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Analyze probes every image attachment that does not yet carry a
// BlurHash. Fetch failures are counted and skipped; the source site may
// be offline or individual media may have been deleted.
func (s *MediaService) Analyze(ctx context.Context) (*MediaResult, error) {
	attachments, err := s.store.Attachments.All(ctx)
	if err != nil {
		return nil, err
	}

	res := &MediaResult{}
	for _, att := range attachments {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if att.BlurHash != "" {
			res.Skipped++
			continue
		}

		hash, err := s.prober.Probe(ctx, att)
		if err != nil {
			s.logger.Debug("media probe failed", "attachment", att.PostID, "url", att.URL, "error", err)
			res.Failed++
			continue
		}
		if hash == "" {
			res.Skipped++
			continue
		}

		att.BlurHash = hash
		if err := s.store.Attachments.Put(ctx, att); err != nil {
			return res, err
		}
		res.Probed++
	}

	writeAudit(ctx, s.store, s.logger, domain.AuditActionMediaAnalysis, "", res.Probed)
	s.logger.Info("media analysis complete", "probed", res.Probed, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}
