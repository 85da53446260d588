package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressmapapp/pressmap-server/internal/analysis/taxonomy"
	"github.com/pressmapapp/pressmap-server/internal/backup"
	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/errors"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// TaxonomyService analyzes and repairs the tag taxonomy: similarity
// reports and destructive tag merges.
type TaxonomyService struct {
	store     *store.Store
	snapshots *backup.Service
	threshold float64
	logger    *slog.Logger
}

// NewTaxonomyService creates the taxonomy service. threshold is the
// similarity cutoff for pair and cluster reports. snapshots may be nil,
// which disables the pre-merge safety snapshot.
func NewTaxonomyService(st *store.Store, snapshots *backup.Service, threshold float64, logger *slog.Logger) *TaxonomyService {
	if threshold <= 0 || threshold > 1 {
		threshold = taxonomy.DefaultThreshold
	}
	return &TaxonomyService{
		store:     st,
		snapshots: snapshots,
		threshold: threshold,
		logger:    logger,
	}
}

// SimilarPairs returns every tag pair at or above the similarity threshold.
func (s *TaxonomyService) SimilarPairs(ctx context.Context) ([]taxonomy.SimilarPair, error) {
	tags, err := s.store.Tags.All(ctx)
	if err != nil {
		return nil, err
	}
	return taxonomy.FindSimilarPairs(deref(tags), s.threshold), nil
}

// Clusters groups similar tags around the most-used member of each group.
func (s *TaxonomyService) Clusters(ctx context.Context) ([]taxonomy.Cluster, error) {
	tags, err := s.store.Tags.All(ctx)
	if err != nil {
		return nil, err
	}
	return taxonomy.BuildClusters(deref(tags), s.threshold), nil
}

// MergeResult summarizes one tag merge.
type MergeResult struct {
	Master        string   `json:"master"`
	Merged        []string `json:"merged"`
	PostsRetagged int      `json:"posts_retagged"`
	TagsDeleted   int      `json:"tags_deleted"`
}

// Merge folds the merged tags into the master tag: every post carrying a
// merged tag is retagged with the master, the merged tags are deleted, and
// post counts are rebuilt. The merge is destructive and not reversible
// short of re-importing.
func (s *TaxonomyService) Merge(ctx context.Context, master string, merged []string) (*MergeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if master == "" || len(merged) == 0 {
		return nil, errors.Validation("master and at least one merged tag are required")
	}

	if _, err := s.store.Tags.GetByIndex(ctx, "slug", master); err != nil {
		return nil, errors.NotFound(fmt.Sprintf("master tag %q", master))
	}

	mergedSet := make(map[string]bool, len(merged))
	mergedTags := make([]*domain.Tag, 0, len(merged))
	for _, slug := range merged {
		if slug == master {
			return nil, errors.Validation("master tag cannot be merged into itself")
		}
		if mergedSet[slug] {
			continue
		}
		tag, err := s.store.Tags.GetByIndex(ctx, "slug", slug)
		if err != nil {
			return nil, errors.NotFound(fmt.Sprintf("tag %q", slug))
		}
		mergedSet[slug] = true
		mergedTags = append(mergedTags, tag)
	}

	// Merges are destructive, snapshot first so a bad merge is recoverable.
	if s.snapshots != nil {
		if _, err := s.snapshots.Create(ctx, "pre-merge"); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "snapshot before merge failed")
		}
	}

	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return nil, err
	}

	retagged := 0
	for _, post := range posts {
		if !retag(post, master, mergedSet) {
			continue
		}
		if err := s.store.Posts.Put(ctx, post); err != nil {
			return nil, err
		}
		retagged++
	}

	for _, tag := range mergedTags {
		if err := s.store.Tags.Delete(ctx, store.NumKey(tag.TermID)); err != nil {
			return nil, err
		}
	}

	if err := s.RebuildCounts(ctx); err != nil {
		return nil, err
	}
	if _, err := s.store.BumpContentVersion(ctx); err != nil {
		return nil, err
	}

	res := &MergeResult{
		Master:        master,
		Merged:        merged,
		PostsRetagged: retagged,
		TagsDeleted:   len(mergedTags),
	}
	writeAudit(ctx, s.store, s.logger, domain.AuditActionTagMerge,
		fmt.Sprintf("%s <- %s", master, strings.Join(merged, ",")), retagged)
	s.logger.Info("tags merged", "master", master, "deleted", len(mergedTags), "retagged", retagged)
	return res, nil
}

// retag rewrites one post's tag membership, replacing merged slugs with the
// master slug without introducing duplicates. Reports whether the post
// changed.
func retag(post *domain.Post, master string, mergedSet map[string]bool) bool {
	hit := false
	out := post.TagSlugs[:0:0]
	seen := make(map[string]bool, len(post.TagSlugs))
	for _, slug := range post.TagSlugs {
		if mergedSet[slug] {
			hit = true
			slug = master
		}
		if seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
	}
	if !hit {
		return false
	}
	post.TagSlugs = out
	return true
}

// RebuildCounts recomputes tag and category post counts from actual post
// membership. Counts carried in the export are not trusted after any
// membership mutation.
func (s *TaxonomyService) RebuildCounts(ctx context.Context) error {
	posts, err := s.store.Posts.All(ctx)
	if err != nil {
		return err
	}

	tagCounts := make(map[string]int)
	catCounts := make(map[string]int)
	for _, post := range posts {
		for _, slug := range post.TagSlugs {
			tagCounts[slug]++
		}
		for _, slug := range post.CategorySlugs {
			catCounts[slug]++
		}
	}

	tags, err := s.store.Tags.All(ctx)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		count := tagCounts[tag.Slug()]
		if tag.PostCount == count {
			continue
		}
		tag.PostCount = count
		if err := s.store.Tags.Put(ctx, tag); err != nil {
			return err
		}
	}

	categories, err := s.store.Categories.All(ctx)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		count := catCounts[cat.Nicename]
		if cat.PostCount == count {
			continue
		}
		cat.PostCount = count
		if err := s.store.Categories.Put(ctx, cat); err != nil {
			return err
		}
	}
	return nil
}
