package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// bulkFlushSize is the number of records buffered before a WriteBatch flush
// during BulkInsert.
const bulkFlushSize = 1000

// BulkInsert writes records through a Badger WriteBatch. Far faster than
// per-record transactions during import, but the batch is NOT atomic: a
// failure partway through can leave a partially written collection, which
// callers must treat as rebuild-or-discard.
func (e *Entity[T]) BulkInsert(ctx context.Context, items []*T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	batch := e.store.db.NewWriteBatch()
	defer func() { batch.Cancel() }()

	pending := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		id := e.keyFn(item)
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal entity: %w", err)
		}
		if err := batch.Set(e.dataKey(id), data); err != nil {
			return fmt.Errorf("batch set: %w", err)
		}

		for _, idx := range e.indexes {
			for _, key := range idx.keyGen(item) {
				if key == "" {
					continue
				}
				if err := batch.Set(e.indexKey(idx.name, key), []byte(id)); err != nil {
					return fmt.Errorf("batch set index %s: %w", idx.name, err)
				}
			}
		}

		pending++
		if pending >= bulkFlushSize {
			if err := flushBatch(batch); err != nil {
				return err
			}
			batch = e.store.db.NewWriteBatch()
			pending = 0
		}
	}

	if pending > 0 {
		return flushBatch(batch)
	}
	return nil
}

func flushBatch(batch *badger.WriteBatch) error {
	if err := batch.Flush(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}
	return nil
}
