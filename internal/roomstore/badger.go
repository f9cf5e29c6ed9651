package roomstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"planningpoker/internal/room"
)

const badgerPrefix = "room:"

// BadgerStore keeps rooms in an embedded badger database under
// "room:{slug}" keys.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore { return &BadgerStore{db: db} }

// OpenBadger opens (or creates) a badger database in dir.
func OpenBadger(dir string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	return db, nil
}

func badgerKey(slug string) []byte { return []byte(badgerPrefix + slug) }

func (b *BadgerStore) Load(_ context.Context, slug string) (*room.Room, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(slug))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(slug, data)
}

func (b *BadgerStore) Save(_ context.Context, slug string, r *room.Room) error {
	if err := checkSlug(slug); err != nil {
		return err
	}
	data, err := encode(r)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(slug), data)
	})
}

func (b *BadgerStore) Delete(_ context.Context, slug string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(slug))
	})
}

func (b *BadgerStore) List(_ context.Context) ([]string, error) {
	var out []string
	prefix := []byte(badgerPrefix)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // slugs live in the keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			out = append(out, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return out, err
}
