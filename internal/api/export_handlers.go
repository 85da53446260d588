package api

import (
	"net/http"

	"github.com/pressmapapp/pressmap-server/internal/export"
	"github.com/pressmapapp/pressmap-server/internal/export/blogcms"
	"github.com/pressmapapp/pressmap-server/internal/http/response"
)

// handlePostsCSV streams the mapped posts as CSV.
func (s *Server) handlePostsCSV(w http.ResponseWriter, r *http.Request) {
	s.streamCSV(w, r, "posts.csv", func(w http.ResponseWriter, exp *blogcms.Export) error {
		return export.WritePostsCSV(w, exp.Posts)
	})
}

// handleCategoriesCSV streams the mapped categories as CSV.
func (s *Server) handleCategoriesCSV(w http.ResponseWriter, r *http.Request) {
	s.streamCSV(w, r, "categories.csv", func(w http.ResponseWriter, exp *blogcms.Export) error {
		return export.WriteCategoriesCSV(w, exp.Categories)
	})
}

// handleTagsCSV streams the mapped tags as CSV.
func (s *Server) handleTagsCSV(w http.ResponseWriter, r *http.Request) {
	s.streamCSV(w, r, "tags.csv", func(w http.ResponseWriter, exp *blogcms.Export) error {
		return export.WriteTagsCSV(w, exp.Tags)
	})
}

// streamCSV builds the export and streams one CSV file. Build errors map
// to JSON error responses; write errors after headers are sent can only
// be logged.
func (s *Server) streamCSV(w http.ResponseWriter, r *http.Request, filename string, write func(http.ResponseWriter, *blogcms.Export) error) {
	exp, err := s.exports.BuildExport(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.CSVDownload(w, filename)
	if err := write(w, exp); err != nil {
		s.logger.Error("CSV stream failed", "file", filename, "error", err)
	}
}

// handleLinkMapCSV streams the internal link map as CSV.
func (s *Server) handleLinkMapCSV(w http.ResponseWriter, r *http.Request) {
	links, err := s.links.Internal(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.CSVDownload(w, "link_map.csv")
	if err := export.WriteLinkMapCSV(w, links); err != nil {
		s.logger.Error("CSV stream failed", "file", "link_map.csv", "error", err)
	}
}

// handleExportBundle writes a full export bundle to disk and returns its
// manifest.
func (s *Server) handleExportBundle(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.exports.WriteBundle(r.Context())
	if err != nil {
		s.logger.Error("Bundle export failed", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, manifest, s.logger)
}

// handleRemoteImport pushes the export into the configured BlogCMS
// instance. Partial failures return the result alongside a 200; only a
// fully aborted run maps to an error status.
func (s *Server) handleRemoteImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.exports.RemoteImport(r.Context())
	if err != nil {
		if result != nil {
			s.logger.Error("Remote import aborted", "error", err,
				"posts_created", result.PostsCreated)
		}
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}
