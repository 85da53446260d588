// Package backup provides dataset snapshot and restore for PressMap.
// Snapshots are zip archives of JSON collection dumps plus a manifest,
// taken before destructive operations so a bad merge or cleanup is
// recoverable without re-importing.
package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/store"
)

// FormatVersion is the snapshot format version. Increment major on breaking changes.
const FormatVersion = "1.0"

var (
	// ErrInvalidManifest indicates the manifest is missing or malformed.
	ErrInvalidManifest = errors.New("invalid or missing manifest")

	// ErrVersionMismatch indicates the snapshot version is not supported.
	ErrVersionMismatch = errors.New("snapshot version not supported")

	// ErrSnapshotNotFound indicates the requested snapshot does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Manifest describes snapshot contents and metadata.
type Manifest struct {
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Reason    string       `json:"reason,omitempty"`
	Counts    EntityCounts `json:"counts"`
}

// EntityCounts tracks entity counts for validation.
type EntityCounts struct {
	Posts       int `json:"posts"`
	Attachments int `json:"attachments"`
	Categories  int `json:"categories"`
	Tags        int `json:"tags"`
	Authors     int `json:"authors"`
	Comments    int `json:"comments"`
	PostMeta    int `json:"post_meta"`
}

// Result contains the outcome of a snapshot operation.
type Result struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Checksum string        `json:"checksum"`
	Counts   EntityCounts  `json:"counts"`
	Duration time.Duration `json:"duration"`
}

// Service creates, lists, and restores snapshots.
type Service struct {
	store  *store.Store
	dir    string
	logger *slog.Logger
}

// NewService creates a snapshot service writing into dir.
func NewService(st *store.Store, dir string, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		dir:    dir,
		logger: logger,
	}
}

// Create writes a snapshot of every imported collection. reason labels the
// snapshot in its manifest (for example "pre-merge").
func (s *Service) Create(ctx context.Context, reason string) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	outputPath := filepath.Join(s.dir, fmt.Sprintf("snapshot-%s.zip", time.Now().Format("2006-01-02-150405")))

	// Write to temp file, rename on success (atomic)
	tmpPath := outputPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmpPath) // Clean up on failure
	defer f.Close()

	// Tee to SHA-256 hasher
	hash := sha256.New()
	mw := io.MultiWriter(f, hash)
	zw := zip.NewWriter(mw)

	manifest := &Manifest{
		Version:   FormatVersion,
		CreatedAt: time.Now(),
		Reason:    reason,
	}
	counts := &manifest.Counts

	steps := []struct {
		name string
		fn   func(context.Context, *zip.Writer) (int, error)
		dest *int
	}{
		{"posts", dumpCollection(s.store.Posts, "posts.json"), &counts.Posts},
		{"attachments", dumpCollection(s.store.Attachments, "attachments.json"), &counts.Attachments},
		{"categories", dumpCollection(s.store.Categories, "categories.json"), &counts.Categories},
		{"tags", dumpCollection(s.store.Tags, "tags.json"), &counts.Tags},
		{"authors", dumpCollection(s.store.Authors, "authors.json"), &counts.Authors},
		{"comments", dumpCollection(s.store.Comments, "comments.json"), &counts.Comments},
		{"post_meta", dumpCollection(s.store.PostMeta, "post_meta.json"), &counts.PostMeta},
		{"site_info", dumpCollection(s.store.SiteInfo, "site_info.json"), nil},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := step.fn(ctx, zw)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", step.name, err)
		}
		if step.dest != nil {
			*step.dest = n
		}
	}

	if err := writeZipJSON(zw, "manifest.json", manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return nil, fmt.Errorf("finalize snapshot: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	result := &Result{
		Path:     outputPath,
		Size:     info.Size(),
		Checksum: hex.EncodeToString(hash.Sum(nil)),
		Counts:   manifest.Counts,
		Duration: time.Since(start),
	}
	s.logger.Info("snapshot complete",
		"path", result.Path,
		"size", result.Size,
		"posts", result.Counts.Posts,
		"duration", result.Duration,
	)
	return result, nil
}

// dumpCollection returns a step function writing one collection as a JSON
// array entry in the archive.
func dumpCollection[T any](e *store.Entity[T], name string) func(context.Context, *zip.Writer) (int, error) {
	return func(ctx context.Context, zw *zip.Writer) (int, error) {
		items, err := e.All(ctx)
		if err != nil {
			return 0, err
		}
		if err := writeZipJSON(zw, name, items); err != nil {
			return 0, err
		}
		return len(items), nil
	}
}

func writeZipJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	return json.MarshalWrite(w, v)
}

// Info describes one stored snapshot.
type Info struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Reason    string    `json:"reason,omitempty"`
}

// List returns stored snapshots, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var out []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		item := Info{
			Path:      path,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		}
		if m, err := readManifest(path); err == nil {
			item.CreatedAt = m.CreatedAt
			item.Reason = m.Reason
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func readManifest(path string) (*Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "manifest.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		var m Manifest
		if err := json.UnmarshalRead(rc, &m); err != nil {
			return nil, ErrInvalidManifest
		}
		return &m, nil
	}
	return nil, ErrInvalidManifest
}
