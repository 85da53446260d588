package api

import (
	"net/http"

	"github.com/pressmapapp/pressmap-server/internal/export"
	"github.com/pressmapapp/pressmap-server/internal/http/response"
)

// handleLinkReport returns the stored link sets plus the scan statistics
// of the last rebuild.
func (s *Server) handleLinkReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	internal, err := s.links.Internal(ctx)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	external, err := s.links.External(ctx)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"internal": internal,
		"external": external,
		"stats":    s.links.Stats(),
	}, s.logger)
}

// handleLinkRebuild forces a link graph rebuild.
func (s *Server) handleLinkRebuild(w http.ResponseWriter, r *http.Request) {
	if err := s.links.Rebuild(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, s.links.Stats(), s.logger)
}

// handleGraphInsights returns aggregate link graph statistics.
func (s *Server) handleGraphInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.graphs.Insights(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, insights, s.logger)
}

// handleGraphData returns the node/edge graph for visualization.
func (s *Server) handleGraphData(w http.ResponseWriter, r *http.Request) {
	data, err := s.graphs.Data(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, data, s.logger)
}

// handleSEOReport returns normalized SEO metadata with plugin usage and
// warnings.
func (s *Server) handleSEOReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.SEO(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, report, s.logger)
}

// handleSEOAudit returns the gap analysis over the normalized records,
// the part worth reading before an export.
func (s *Server) handleSEOAudit(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.SEOAudit(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, report, s.logger)
}

// handleQAReport returns the content quality report.
func (s *Server) handleQAReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.QA(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, report, s.logger)
}

// handleQACSV streams the QA findings as CSV, one row per flagged post.
func (s *Server) handleQACSV(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.QA(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.CSVDownload(w, "qa_report.csv")
	if err := export.WriteQACSV(w, report); err != nil {
		s.logger.Error("CSV stream failed", "file", "qa_report.csv", "error", err)
	}
}

// handlePluginReport returns detected plugin footprints.
func (s *Server) handlePluginReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.Plugins(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, report, s.logger)
}

// handleTaxonomyPairs returns tag pairs above the similarity threshold.
func (s *Server) handleTaxonomyPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.taxonomy.SimilarPairs(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, pairs, s.logger)
}

// handleTaxonomyClusters returns similarity clusters of tags.
func (s *Server) handleTaxonomyClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.taxonomy.Clusters(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, clusters, s.logger)
}

// handleMediaManifest returns the media reference inventory.
func (s *Server) handleMediaManifest(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.Manifest(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, report, s.logger)
}

// handleMediaManifestCSV streams the media manifest as CSV.
func (s *Server) handleMediaManifestCSV(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.Manifest(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.CSVDownload(w, "media_manifest.csv")
	if err := export.WriteMediaManifestCSV(w, report); err != nil {
		s.logger.Error("CSV stream failed", "file", "media_manifest.csv", "error", err)
	}
}
