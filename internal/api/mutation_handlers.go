package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/http/response"
)

// TagMergeRequest folds tags into a surviving master tag.
type TagMergeRequest struct {
	Master string   `json:"master" validate:"required"`
	Merged []string `json:"merged" validate:"required,min=1"`
}

// handleTaxonomyMerge merges tags and retags affected posts.
func (s *Server) handleTaxonomyMerge(w http.ResponseWriter, r *http.Request) {
	var req TagMergeRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	result, err := s.taxonomy.Merge(r.Context(), req.Master, req.Merged)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// CleanupRequest selects which cleanup passes run. A missing field keeps
// the pass enabled.
type CleanupRequest struct {
	RemoveUTMParameters *bool `json:"remove_utm_parameters"`
	EnforceHTTPS        *bool `json:"enforce_https"`
	RemoveInlineStyles  *bool `json:"remove_inline_styles"`
	StripEmptyTags      *bool `json:"strip_empty_tags"`
}

// handleCleanup applies the content cleanup passes to every post.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	opts := content.DefaultCleanupOptions()

	if r.ContentLength != 0 {
		var req CleanupRequest
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
		if req.RemoveUTMParameters != nil {
			opts.RemoveUTMParameters = *req.RemoveUTMParameters
		}
		if req.EnforceHTTPS != nil {
			opts.EnforceHTTPS = *req.EnforceHTTPS
		}
		if req.RemoveInlineStyles != nil {
			opts.RemoveInlineStyles = *req.RemoveInlineStyles
		}
		if req.StripEmptyTags != nil {
			opts.StripEmptyTags = *req.StripEmptyTags
		}
	}

	summary, err := s.cleanup.Run(r.Context(), opts)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, summary, s.logger)
}

// handleMediaAnalyze probes image attachments for BlurHash placeholders.
func (s *Server) handleMediaAnalyze(w http.ResponseWriter, r *http.Request) {
	result, err := s.media.Analyze(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}
