package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/errors"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// PostService serves read access to the imported dataset.
type PostService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPostService creates the post service.
func NewPostService(st *store.Store, logger *slog.Logger) *PostService {
	return &PostService{
		store:  st,
		logger: logger,
	}
}

// PostPage is one page of posts plus the collection total.
type PostPage struct {
	Posts    []*domain.Post `json:"posts"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}

// ListPosts returns one page of posts in ID order.
func (s *PostService) ListPosts(ctx context.Context, page, pageSize int) (*PostPage, error) {
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	result, err := store.PageOf(ctx, s.store.Posts, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &PostPage{
		Posts:    result.Items,
		Total:    result.Total,
		Page:     result.PageNumber,
		PageSize: result.PageSize,
		HasMore:  result.HasMore,
	}, nil
}

// GetPost returns one post by its WordPress ID.
func (s *PostService) GetPost(ctx context.Context, postID int) (*domain.Post, error) {
	post, err := s.store.Posts.Get(ctx, store.NumKey(postID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("post %d", postID))
		}
		return nil, err
	}
	return post, nil
}

// GetPostBySlug returns one post by its slug. With duplicate slugs the
// last-written post wins, matching link resolution.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	post, err := s.store.Posts.GetByIndex(ctx, "slug", slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("post %q", slug))
		}
		return nil, err
	}
	return post, nil
}

// Categories returns every category ordered by term ID.
func (s *PostService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.Categories.All(ctx)
}

// Tags returns every tag ordered by term ID.
func (s *PostService) Tags(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.Tags.All(ctx)
}

// Ping verifies the backing store is reachable with a cheap read.
func (s *PostService) Ping(ctx context.Context) error {
	_, err := s.store.ContentVersion(ctx)
	return err
}

// SiteSummary describes the imported site and collection sizes.
type SiteSummary struct {
	Site        map[string]string `json:"site"`
	Posts       int               `json:"posts"`
	Attachments int               `json:"attachments"`
	Categories  int               `json:"categories"`
	Tags        int               `json:"tags"`
	Comments    int               `json:"comments"`
	MetaRows    int               `json:"meta_rows"`
}

// Summary returns the channel header pairs plus collection counts.
func (s *PostService) Summary(ctx context.Context) (*SiteSummary, error) {
	info, err := s.store.SiteInfo.All(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SiteSummary{Site: make(map[string]string, len(info))}
	for _, pair := range info {
		summary.Site[pair.Key] = pair.Value
	}

	counts := []struct {
		dest  *int
		count func(context.Context) (int, error)
	}{
		{&summary.Posts, s.store.Posts.Count},
		{&summary.Attachments, s.store.Attachments.Count},
		{&summary.Categories, s.store.Categories.Count},
		{&summary.Tags, s.store.Tags.Count},
		{&summary.Comments, s.store.Comments.Count},
		{&summary.MetaRows, s.store.PostMeta.Count},
	}
	for _, c := range counts {
		n, err := c.count(ctx)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}
	return summary, nil
}

// GetJob returns one import job by ID.
func (s *PostService) GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	job, err := s.store.ImportJobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("import job %q", jobID))
		}
		return nil, err
	}
	return job, nil
}

// ListJobs returns every import job, most recent first.
func (s *PostService) ListJobs(ctx context.Context) ([]*domain.ImportJob, error) {
	jobs, err := s.store.ImportJobs.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs, nil
}

// AuditLog returns every audit entry, most recent first.
func (s *PostService) AuditLog(ctx context.Context) ([]*domain.AuditEntry, error) {
	entries, err := s.store.AuditLog.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
