package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/ikkim/maison-backend/pkg/logger"
)

// BadgerStore keeps slots in an embedded badger database.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// OpenBadgerStore opens a badger database at path. An empty path opens an
// in-memory database.
func OpenBadgerStore(path, prefix string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Info("Badger store opened", map[string]interface{}{
		"path":      path,
		"in_memory": path == "",
	})
	return &BadgerStore{db: db, prefix: prefix}, nil
}

func (s *BadgerStore) key(slot string) []byte {
	return []byte(s.prefix + slot)
}

func (s *BadgerStore) Load(_ context.Context, slot string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(slot))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		logger.Error("Failed to load slot from badger", err, map[string]interface{}{
			"slot": slot,
		})
		return nil, err
	}
	return data, nil
}

func (s *BadgerStore) Save(_ context.Context, slot string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(slot), data)
	})
	if err != nil {
		logger.Error("Failed to save slot to badger", err, map[string]interface{}{
			"slot":  slot,
			"bytes": len(data),
		})
		return err
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, slot string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(slot))
	})
	if err != nil {
		logger.Error("Failed to delete slot from badger", err, map[string]interface{}{
			"slot": slot,
		})
		return err
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
