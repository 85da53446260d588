// Package api provides the HTTP API server and handlers for PressMap.
package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pressmapapp/pressmap-server/internal/backup"
	"github.com/pressmapapp/pressmap-server/internal/http/response"
	"github.com/pressmapapp/pressmap-server/internal/ratelimit"
	"github.com/pressmapapp/pressmap-server/internal/service"
	"github.com/pressmapapp/pressmap-server/internal/validation"
)

// Rate limit for mutating routes, keyed per client IP. Imports and
// rebuilds are heavy; a small burst covers legitimate bursts from a UI.
const (
	mutationRPS   = 2
	mutationBurst = 5
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	imports   *service.ImportService
	posts     *service.PostService
	search    *service.SearchService
	links     *service.LinkService
	graphs    *service.GraphService
	analysis  *service.AnalysisService
	taxonomy  *service.TaxonomyService
	cleanup   *service.CleanupService
	exports   *service.ExportService
	media     *service.MediaService
	snapshots *backup.Service
	validator *validation.Validator

	maxUploadBytes int64
	limiter        *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// Services bundles the service dependencies of the server.
type Services struct {
	Imports  *service.ImportService
	Posts    *service.PostService
	Search   *service.SearchService
	Links    *service.LinkService
	Graphs   *service.GraphService
	Analysis *service.AnalysisService
	Taxonomy *service.TaxonomyService
	Cleanup  *service.CleanupService
	Exports  *service.ExportService
	Media    *service.MediaService

	Snapshots *backup.Service
}

// NewServer creates a new HTTP server with all routes configured.
// maxUploadBytes caps WXR upload size.
func NewServer(svc Services, maxUploadBytes int64, logger *slog.Logger) *Server {
	s := &Server{
		imports:        svc.Imports,
		posts:          svc.Posts,
		search:         svc.Search,
		links:          svc.Links,
		graphs:         svc.Graphs,
		analysis:       svc.Analysis,
		taxonomy:       svc.Taxonomy,
		cleanup:        svc.Cleanup,
		exports:        svc.Exports,
		media:          svc.Media,
		snapshots:      svc.Snapshots,
		validator:      validation.New(),
		maxUploadBytes: maxUploadBytes,
		limiter:        ratelimit.New(mutationRPS, mutationBurst),
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// limitMutations rejects state-changing requests beyond the per-client
// rate limit. RealIP runs earlier in the stack, so RemoteAddr already
// reflects the client address.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.Allow(host) {
			response.Error(w, http.StatusTooManyRequests, "too many requests", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/site", s.handleGetSite)

		// Imports.
		r.Route("/import", func(r chi.Router) {
			r.With(s.limitMutations).Post("/", s.handleImport)
			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{id}", s.handleGetJob)
		})

		// Imported records.
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.handleListPosts)
			r.Get("/{id}", s.handleGetPost)
			r.Get("/{id}/blocks", s.handleGetPostBlocks)
			r.Get("/slug/{slug}", s.handleGetPostBySlug)
		})
		r.Get("/categories", s.handleListCategories)
		r.Get("/tags", s.handleListTags)

		r.Get("/search", s.handleSearch)

		// Analysis reports.
		r.Route("/reports", func(r chi.Router) {
			r.Get("/links", s.handleLinkReport)
			r.Get("/graph/insights", s.handleGraphInsights)
			r.Get("/graph/data", s.handleGraphData)
			r.Get("/seo", s.handleSEOReport)
			r.Get("/seo/audit", s.handleSEOAudit)
			r.Get("/qa", s.handleQAReport)
			r.Get("/qa.csv", s.handleQACSV)
			r.Get("/plugins", s.handlePluginReport)
			r.Get("/taxonomy/pairs", s.handleTaxonomyPairs)
			r.Get("/taxonomy/clusters", s.handleTaxonomyClusters)
			r.Get("/media", s.handleMediaManifest)
			r.Get("/media.csv", s.handleMediaManifestCSV)
		})

		// Mutations, rate limited per client.
		r.Group(func(r chi.Router) {
			r.Use(s.limitMutations)
			r.Post("/links/rebuild", s.handleLinkRebuild)
			r.Post("/taxonomy/merge", s.handleTaxonomyMerge)
			r.Post("/cleanup", s.handleCleanup)
			r.Post("/media/analyze", s.handleMediaAnalyze)
		})

		// Exports.
		r.Route("/export", func(r chi.Router) {
			r.Get("/posts.csv", s.handlePostsCSV)
			r.Get("/categories.csv", s.handleCategoriesCSV)
			r.Get("/tags.csv", s.handleTagsCSV)
			r.Get("/link_map.csv", s.handleLinkMapCSV)
			r.With(s.limitMutations).Post("/bundle", s.handleExportBundle)
			r.With(s.limitMutations).Post("/remote", s.handleRemoteImport)
		})

		// Snapshots.
		r.Route("/snapshots", func(r chi.Router) {
			r.With(s.limitMutations).Post("/", s.handleCreateSnapshot)
			r.Get("/", s.handleListSnapshots)
			r.With(s.limitMutations).Post("/restore", s.handleRestoreSnapshot)
		})

		r.Get("/audit", s.handleAuditLog)
	})
}

// handleHealthCheck reports server health with per-component checks on
// the store and the search index. Any failing component degrades the
// overall status to 503.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{"store": "ok", "search": "ok"}
	healthy := true

	if err := s.posts.Ping(r.Context()); err != nil {
		components["store"] = err.Error()
		healthy = false
	}
	if _, err := s.search.DocumentCount(); err != nil {
		components["search"] = err.Error()
		healthy = false
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	response.JSON(w, code, map[string]any{
		"status":     status,
		"components": components,
	}, s.logger)
}
