package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD and bulk operations for one collection.
// Primary keys are derived from the record via keyFn so callers work with
// whole records rather than raw keys.
type Entity[T any] struct {
	store   *Store
	prefix  string
	keyFn   func(*T) string
	indexes []Index[T]
}

// Index defines a secondary index on an entity. Index writes are last-wins:
// two records producing the same index key silently shadow (WordPress slugs
// are expected to be unique but the export does not enforce it).
type Index[T any] struct {
	name   string
	keyGen func(*T) []string
}

// NewEntity creates a new Entity for type T under the given key prefix.
func NewEntity[T any](s *Store, prefix string, keyFn func(*T) string) *Entity[T] {
	return &Entity[T]{
		store:  s,
		prefix: prefix,
		keyFn:  keyFn,
	}
}

// WithIndex adds a secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

func (e *Entity[T]) dataKey(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte(e.prefix + "idx:" + name + ":" + value)
}

// writeIndexes sets all index keys for the entity inside txn.
func (e *Entity[T]) writeIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, key := range idx.keyGen(entity) {
			if key == "" {
				continue
			}
			if err := txn.Set(e.indexKey(idx.name, key), []byte(id)); err != nil {
				return fmt.Errorf("set index %s: %w", idx.name, err)
			}
		}
	}
	return nil
}

// dropIndexes deletes all index keys derived from entity inside txn.
func (e *Entity[T]) dropIndexes(txn *badger.Txn, entity *T) error {
	for _, idx := range e.indexes {
		for _, key := range idx.keyGen(entity) {
			if key == "" {
				continue
			}
			if err := txn.Delete(e.indexKey(idx.name, key)); err != nil {
				return fmt.Errorf("delete index %s: %w", idx.name, err)
			}
		}
	}
	return nil
}

// Put creates or replaces an entity. Index keys from a previous version of
// the record are cleaned up before the new ones are written.
func (e *Entity[T]) Put(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := e.keyFn(entity)
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		if old, err := e.readTxn(txn, id); err == nil {
			if err := e.dropIndexes(txn, old); err != nil {
				return err
			}
		}
		if err := txn.Set(e.dataKey(id), data); err != nil {
			return fmt.Errorf("set key: %w", err)
		}
		return e.writeIndexes(txn, id, entity)
	})
}

// readTxn fetches and unmarshals one record inside an open transaction.
func (e *Entity[T]) readTxn(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.dataKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	var entity T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entity)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return &entity, nil
}

// Get retrieves an entity by ID. Returns ErrNotFound if it does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.readTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetByIndex retrieves an entity through a secondary index.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return e.Get(ctx, id)
}

// Delete deletes an entity by ID. Idempotent: deleting a missing record is
// not an error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		entity, err := e.readTxn(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.dropIndexes(txn, entity); err != nil {
			return err
		}
		if err := txn.Delete(e.dataKey(id)); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		return nil
	})
}

// isDataKey reports whether the remainder after the prefix names a record
// (as opposed to an index or bookkeeping key).
func isDataKey(remainder string) bool {
	return !strings.HasPrefix(remainder, "idx:") && !strings.HasPrefix(remainder, "!")
}

// List returns an iterator over all records in key order.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				key := string(it.Item().Key())
				if !isDataKey(key[len(e.prefix):]) {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}
				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// All collects every record into a slice.
func (e *Entity[T]) All(ctx context.Context) ([]*T, error) {
	var out []*T
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Count returns the number of records in the collection. Values are not
// prefetched so this only touches keys.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
			key := string(it.Item().Key())
			if isDataKey(key[len(e.prefix):]) {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Page returns one page of records in key order. Pages are 1-based.
func (e *Entity[T]) Page(ctx context.Context, pageNumber, pageSize int) ([]*T, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	skip := (pageNumber - 1) * pageSize

	out := make([]*T, 0, pageSize)
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, entity)
		if len(out) == pageSize {
			break
		}
	}
	return out, nil
}

// Clear removes every record and index entry in the collection.
func (e *Entity[T]) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.db.DropPrefix([]byte(e.prefix))
}
