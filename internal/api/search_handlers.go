package api

import (
	"net/http"

	"github.com/pressmapapp/pressmap-server/internal/http/response"
	"github.com/pressmapapp/pressmap-server/internal/search"
)

// handleSearch runs a full-text query over indexed posts.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := search.Query{
		Text:     params.Get("q"),
		PostType: params.Get("type"),
		Status:   params.Get("status"),
		Category: params.Get("category"),
		Tag:      params.Get("tag"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 0),
	}

	results, err := s.search.Query(r.Context(), q)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", q.Text)
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, results, s.logger)
}
