package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// loadAll reads every record under the given prefix, in key order.
func loadAll[T any](ctx context.Context, s *Store, prefix string) ([]T, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	var items []T
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix([]byte(prefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entity T
				if err := json.Unmarshal(val, &entity); err != nil {
					return fmt.Errorf("unmarshal record %q: %w", it.Item().Key(), err)
				}
				items = append(items, entity)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

// replaceAll clears the bucket and writes the snapshot in one transaction.
// Either the whole new snapshot lands or the old contents survive intact.
func replaceAll[T any](ctx context.Context, s *Store, prefix string, items []T, key func(*T) string) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}

	return db.Update(func(txn *badger.Txn) error {
		// Collect existing keys first; deleting while iterating is unsafe.
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Rewind(); it.ValidForPrefix([]byte(prefix)); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("clear bucket: %w", err)
			}
		}

		for i := range items {
			data, err := json.Marshal(&items[i])
			if err != nil {
				return fmt.Errorf("marshal record: %w", err)
			}
			k := prefix + key(&items[i])
			if err := txn.Set([]byte(k), data); err != nil {
				return fmt.Errorf("write record %q: %w", k, err)
			}
		}
		return nil
	})
}
