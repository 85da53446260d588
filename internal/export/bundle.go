package export

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/export/blogcms"
	"github.com/pressmapapp/pressmap-server/internal/id"
)

// Bundle file names inside an export directory.
const (
	filePosts      = "posts.csv"
	fileCategories = "categories.csv"
	fileTags       = "tags.csv"
	fileLinkMap    = "link_map.csv"
	fileJSONDump   = "export.json"
	fileSQLite     = "blogcms.db"
	dirMarkdown    = "markdown"
)

// Manifest describes one written bundle.
type Manifest struct {
	ID        string    `json:"id"`
	Dir       string    `json:"dir"`
	Files     []string  `json:"files"`
	Posts     int       `json:"posts"`
	CreatedAt time.Time `json:"created_at"`
}

// Writer writes export bundles under a base directory, one
// subdirectory per run.
type Writer struct {
	baseDir string
	logger  *slog.Logger
}

// NewWriter creates a bundle writer rooted at baseDir.
func NewWriter(baseDir string, logger *slog.Logger) *Writer {
	return &Writer{baseDir: baseDir, logger: logger}
}

// jsonDump is the shape of export.json: the mapped records plus the raw
// link edges for downstream tooling.
type jsonDump struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Posts       []blogcms.Post        `json:"posts"`
	Categories  []blogcms.Category    `json:"categories"`
	Tags        []blogcms.Tag         `json:"tags"`
	Links       []domain.InternalLink `json:"links,omitempty"`
}

// Write produces a complete bundle and returns its manifest.
func (w *Writer) Write(ctx context.Context, export *blogcms.Export, links []domain.InternalLink) (*Manifest, error) {
	bundleID := id.MustGenerate("exp")
	dir := filepath.Join(w.baseDir, bundleID)
	if err := os.MkdirAll(filepath.Join(dir, dirMarkdown), 0o750); err != nil {
		return nil, fmt.Errorf("create bundle directory: %w", err)
	}

	manifest := &Manifest{
		ID:        bundleID,
		Dir:       dir,
		Posts:     len(export.Posts),
		CreatedAt: time.Now(),
	}

	steps := []struct {
		name  string
		write func(string) error
	}{
		{filePosts, func(path string) error {
			return writeFile(path, func(f *os.File) error { return WritePostsCSV(f, export.Posts) })
		}},
		{fileCategories, func(path string) error {
			return writeFile(path, func(f *os.File) error { return WriteCategoriesCSV(f, export.Categories) })
		}},
		{fileTags, func(path string) error {
			return writeFile(path, func(f *os.File) error { return WriteTagsCSV(f, export.Tags) })
		}},
		{fileLinkMap, func(path string) error {
			return writeFile(path, func(f *os.File) error { return WriteLinkMapCSV(f, links) })
		}},
		{fileJSONDump, func(path string) error {
			dump := jsonDump{
				GeneratedAt: manifest.CreatedAt,
				Posts:       export.Posts,
				Categories:  export.Categories,
				Tags:        export.Tags,
				Links:       links,
			}
			return writeFile(path, func(f *os.File) error { return json.MarshalWrite(f, dump) })
		}},
		{fileSQLite, func(path string) error {
			return WriteSQLite(ctx, path, export)
		}},
	}

	for _, step := range steps {
		path := filepath.Join(dir, step.name)
		if err := step.write(path); err != nil {
			return nil, fmt.Errorf("write %s: %w", step.name, err)
		}
		manifest.Files = append(manifest.Files, step.name)
	}

	if err := w.writeMarkdownTree(dir, export.Posts, manifest); err != nil {
		return nil, err
	}

	w.logger.Info("export bundle written", "id", bundleID, "dir", dir, "posts", manifest.Posts)
	return manifest, nil
}

func (w *Writer) writeMarkdownTree(dir string, posts []blogcms.Post, manifest *Manifest) error {
	seen := make(map[string]int)
	for i := range posts {
		post := &posts[i]
		name := post.Slug
		if name == "" {
			name = fmt.Sprintf("post-%d", post.SourcePostID)
		}
		// Duplicate slugs get a numeric suffix rather than overwriting.
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s-%d", name, n+1)
		} else {
			seen[name] = 1
		}

		rel := filepath.Join(dirMarkdown, name+".md")
		err := writeFile(filepath.Join(dir, rel), func(f *os.File) error {
			return WriteMarkdownPost(f, post)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		manifest.Files = append(manifest.Files, rel)
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path) //#nosec G304 -- Bundle paths are derived from generated IDs
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
