package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pressmapapp/pressmap-server/internal/http/response"
)

// handleImport ingests a WXR export, replacing the current dataset. The
// body may be the raw XML or a multipart form with a "file" field.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, source, err := s.importBody(r)
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}
	defer body.Close()

	job, err := s.imports.Run(ctx, body, source)
	if err != nil {
		s.logger.Error("Import failed", "error", err, "source", source)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, job, s.logger)
}

// importBody extracts the WXR stream from the request, applying the
// upload size cap.
func (s *Server) importBody(r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return r.Body, "upload", nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	return file, header.Filename, nil
}

// handleListJobs returns every import job, most recent first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.posts.ListJobs(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, jobs, s.logger)
}

// handleGetJob returns one import job by ID.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		response.BadRequest(w, "Job ID is required", s.logger)
		return
	}

	job, err := s.posts.GetJob(r.Context(), jobID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, job, s.logger)
}
