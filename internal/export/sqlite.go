package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pressmapapp/pressmap-server/internal/export/blogcms"
)

// sqliteSchema mirrors the BlogCMS staging tables. The database is a
// throwaway artifact recreated on every export, so there is no
// migration story.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS categories (
	slug        TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	parent_slug TEXT
);

CREATE TABLE IF NOT EXISTS tags (
	slug TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	source_post_id     INTEGER PRIMARY KEY,
	title              TEXT NOT NULL,
	slug               TEXT NOT NULL,
	content            TEXT,
	content_markdown   TEXT,
	excerpt            TEXT,
	status             TEXT NOT NULL,
	published_at       TEXT,
	scheduled_for      TEXT,
	author_id          TEXT,
	featured_image_url TEXT,
	featured_image_alt TEXT,
	meta_title         TEXT,
	meta_description   TEXT,
	meta_keywords      TEXT,
	categories         TEXT,
	tags               TEXT
);
`

// WriteSQLite writes the mapped export to a fresh SQLite database at
// path, replacing whatever was there.
func WriteSQLite(ctx context.Context, path string, export *blogcms.Export) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"posts", "tags", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, c := range export.Categories {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO categories (slug, name, parent_slug) VALUES (?, ?, ?)",
			c.Slug, c.Name, nullable(c.ParentSlug))
		if err != nil {
			return fmt.Errorf("insert category %q: %w", c.Slug, err)
		}
	}

	for _, t := range export.Tags {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO tags (slug, name) VALUES (?, ?)",
			t.Slug, t.Name)
		if err != nil {
			return fmt.Errorf("insert tag %q: %w", t.Slug, err)
		}
	}

	for i := range export.Posts {
		p := &export.Posts[i]
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO posts (
				source_post_id, title, slug, content, content_markdown,
				excerpt, status, published_at, scheduled_for, author_id,
				featured_image_url, featured_image_alt, meta_title,
				meta_description, meta_keywords, categories, tags
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.SourcePostID, p.Title, p.Slug, p.Content, p.ContentMarkdown,
			p.Excerpt, p.Status, sqlTime(p.PublishedAt), sqlTime(p.ScheduledFor),
			nullable(p.AuthorID), nullable(p.FeaturedImageURL),
			nullable(p.FeaturedImageAlt),
			nullable(p.MetaTitle), nullable(p.MetaDescription),
			nullable(p.MetaKeywords),
			nullable(strings.Join(p.Categories, listSeparator)),
			nullable(strings.Join(p.Tags, listSeparator)),
		)
		if err != nil {
			return fmt.Errorf("insert post %q: %w", p.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func sqlTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
