// Package store persists imported WordPress entities and derived link data
// in an embedded Badger database. Every collection is a generic Entity with
// JSON values; secondary indexes cover slug lookups.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

// defaultPageSize is used when a caller asks for a page without a size.
const defaultPageSize = 100

// Store wraps a Badger database instance and exposes one Entity per
// collection.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Posts         *Entity[domain.Post]
	Attachments   *Entity[domain.Attachment]
	Categories    *Entity[domain.Category]
	Tags          *Entity[domain.Tag]
	Authors       *Entity[domain.Author]
	Comments      *Entity[domain.Comment]
	PostMeta      *Entity[domain.PostMeta]
	InternalLinks *Entity[domain.InternalLink]
	ExternalLinks *Entity[domain.ExternalLink]
	SiteInfo      *Entity[domain.SiteInfo]
	AuditLog      *Entity[domain.AuditEntry]
	ImportJobs    *Entity[domain.ImportJob]
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Badger's own logging is too chatty
	opts.SyncWrites = true // Survive crashes mid-import

	db, err := badger.Open(opts)
	if err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}
	s.initCollections()

	if logger != nil {
		logger.Info("document store opened", "path", path)
	}
	return s, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing document store")
	}
	return s.db.Close()
}

// NumKey renders a numeric WordPress ID as a fixed-width key so that key
// order matches numeric order during iteration.
func NumKey(id int) string {
	return fmt.Sprintf("%010d", id)
}

// SeqKey renders an ordinal position for collections without a natural
// unique ID (post meta rows, derived links).
func SeqKey(n int) string {
	return fmt.Sprintf("%012d", n)
}

// ParseNumKey inverts NumKey.
func ParseNumKey(key string) (int, error) {
	return strconv.Atoi(key)
}

// initCollections wires up every collection with its key function and
// secondary indexes.
func (s *Store) initCollections() {
	s.Posts = NewEntity(s, "post:", func(p *domain.Post) string {
		return NumKey(p.PostID)
	}).WithIndex("slug", func(p *domain.Post) []string {
		if p.PostName == "" {
			return nil
		}
		return []string{p.PostName}
	})

	s.Attachments = NewEntity(s, "attachment:", func(a *domain.Attachment) string {
		return NumKey(a.PostID)
	})

	s.Categories = NewEntity(s, "category:", func(c *domain.Category) string {
		return NumKey(c.TermID)
	}).WithIndex("slug", func(c *domain.Category) []string {
		if c.Nicename == "" {
			return nil
		}
		return []string{c.Nicename}
	})

	s.Tags = NewEntity(s, "tag:", func(t *domain.Tag) string {
		return NumKey(t.TermID)
	}).WithIndex("slug", func(t *domain.Tag) []string {
		if t.Nicename == "" {
			return nil
		}
		return []string{t.Nicename}
	})

	s.Authors = NewEntity(s, "author:", func(a *domain.Author) string {
		return NumKey(a.AuthorID)
	})

	s.Comments = NewEntity(s, "comment:", func(c *domain.Comment) string {
		return NumKey(c.CommentID)
	})

	// Meta rows and derived links have no natural unique identity; they are
	// only ever bulk-rebuilt and listed, so ordinal keys are assigned at
	// insert time by the services that own them.
	metaSeq := 0
	s.PostMeta = NewEntity(s, "postmeta:", func(_ *domain.PostMeta) string {
		metaSeq++
		return SeqKey(metaSeq)
	})

	internalSeq := 0
	s.InternalLinks = NewEntity(s, "ilink:", func(_ *domain.InternalLink) string {
		internalSeq++
		return SeqKey(internalSeq)
	})

	externalSeq := 0
	s.ExternalLinks = NewEntity(s, "elink:", func(_ *domain.ExternalLink) string {
		externalSeq++
		return SeqKey(externalSeq)
	})

	s.SiteInfo = NewEntity(s, "siteinfo:", func(si *domain.SiteInfo) string {
		return si.Key
	})

	s.AuditLog = NewEntity(s, "audit:", func(a *domain.AuditEntry) string {
		return a.ID
	})

	s.ImportJobs = NewEntity(s, "job:", func(j *domain.ImportJob) string {
		return j.ID
	})
}

// SiteURL returns the imported site's base URL, or "" when no import has
// run yet.
func (s *Store) SiteURL(ctx context.Context) string {
	info, err := s.SiteInfo.Get(ctx, "link")
	if err != nil {
		return ""
	}
	return info.Value
}

// Helper methods for raw keys (version counters and other bookkeeping).

// getRaw retrieves a value by key.
func (s *Store) getRaw(key []byte, dest any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// setRaw stores a value by key.
func (s *Store) setRaw(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
