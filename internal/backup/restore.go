package backup

import (
	"archive/zip"
	"context"
	"encoding/json/v2"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// Restore replaces every imported collection with the snapshot contents.
// Derived data (links, markdown caches, search) is invalidated by bumping
// the content version; readers rebuild it lazily.
func (s *Service) Restore(ctx context.Context, path string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrSnapshotNotFound
	}

	manifest, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	if major(manifest.Version) != major(FormatVersion) {
		return nil, fmt.Errorf("%w: snapshot is v%s, supported is v%s", ErrVersionMismatch, manifest.Version, FormatVersion)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	if err := loadCollection(ctx, files, "posts.json", s.store.Posts); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, files, "attachments.json", s.store.Attachments); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, files, "categories.json", s.store.Categories); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, files, "tags.json", s.store.Tags); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, files, "authors.json", s.store.Authors); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, files, "comments.json", s.store.Comments); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, files, "post_meta.json", s.store.PostMeta); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, files, "site_info.json", s.store.SiteInfo); err != nil {
		return nil, err
	}

	if _, err := s.store.BumpContentVersion(ctx); err != nil {
		return nil, err
	}

	s.writeRestoreAudit(ctx, path, manifest.Counts.Posts)
	s.logger.Info("snapshot restored", "path", path, "posts", manifest.Counts.Posts)
	return manifest, nil
}

// loadCollection replaces one collection with a JSON array entry from the
// archive. A missing entry clears the collection, matching a snapshot
// taken when it was empty.
func loadCollection[T any](ctx context.Context, files map[string]*zip.File, name string, e *store.Entity[T]) error {
	if err := e.Clear(ctx); err != nil {
		return err
	}

	f, ok := files[name]
	if !ok {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	var items []*T
	if err := json.UnmarshalRead(rc, &items); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return e.BulkInsert(ctx, items)
}

func (s *Service) writeRestoreAudit(ctx context.Context, path string, posts int) {
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		Action:    domain.AuditActionRestore,
		Detail:    path,
		Affected:  posts,
		CreatedAt: time.Now(),
	}
	if err := s.store.AuditLog.Put(ctx, entry); err != nil {
		s.logger.Error("failed to write audit entry", "action", domain.AuditActionRestore, "error", err)
	}
}

func major(version string) string {
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}
