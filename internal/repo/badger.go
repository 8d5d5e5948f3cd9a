package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// kvPrefix namespaces entries inside a shared badger database.
const kvPrefix = "kv:"

// BadgerKV is a KV on an embedded badger database.
type BadgerKV struct {
	db *badger.DB
}

// NewBadgerKV opens (or creates) a badger database in dir. An empty dir
// opens an in-memory database, which is what the tests use.
func NewBadgerKV(dir string) (*BadgerKV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("repo.NewBadgerKV: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

func (b *BadgerKV) Get(_ context.Context, key string) (string, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(kvPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("repo.BadgerKV.Get: %w", err)
	}
	return string(value), true, nil
}

func (b *BadgerKV) Set(_ context.Context, key, value string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(kvPrefix+key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("repo.BadgerKV.Set: %w", err)
	}
	return nil
}

// Close releases the database.
func (b *BadgerKV) Close() error {
	return b.db.Close()
}
