package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pressmapapp/pressmap-server/internal/content"
	"github.com/pressmapapp/pressmap-server/internal/http/response"
)

// handleGetSite returns the imported site summary.
func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	summary, err := s.posts.Summary(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, summary, s.logger)
}

// handleListPosts returns one page of posts.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 50)

	result, err := s.posts.ListPosts(r.Context(), page, pageSize)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// handleGetPost returns one post by its WordPress ID.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Post ID must be numeric", s.logger)
		return
	}

	post, err := s.posts.GetPost(r.Context(), postID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, post, s.logger)
}

// handleGetPostBlocks returns the post body parsed into its Gutenberg
// node stream.
func (s *Server) handleGetPostBlocks(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Post ID must be numeric", s.logger)
		return
	}

	post, err := s.posts.GetPost(r.Context(), postID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	nodes := content.ParseNodes(post.Body())
	response.Success(w, map[string]any{
		"post_id":      post.PostID,
		"is_gutenberg": content.IsGutenberg(post.Body()),
		"nodes":        nodes,
	}, s.logger)
}

// handleGetPostBySlug returns one post by slug.
func (s *Server) handleGetPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		response.BadRequest(w, "Slug is required", s.logger)
		return
	}

	post, err := s.posts.GetPostBySlug(r.Context(), slug)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, post, s.logger)
}

// handleListCategories returns every category.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.posts.Categories(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, categories, s.logger)
}

// handleListTags returns every tag.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.posts.Tags(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, tags, s.logger)
}

// handleAuditLog returns the audit log, most recent first.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.posts.AuditLog(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, entries, s.logger)
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
