// Package badger persists draft history in an embedded Badger database
// through badgerhold.
package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

// DB owns the badgerhold store
type DB struct {
	store  *badgerhold.Store
	logger *zap.Logger
}

// Open opens (creating if needed) the database in dir and checks its
// schema version
func Open(dir string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	db := &DB{store: store, logger: logger}
	if err := db.ensureSchema(); err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Info("Badger database opened", zap.String("path", dir))
	return db, nil
}

// Store returns the underlying badgerhold store
func (db *DB) Store() *badgerhold.Store {
	return db.store
}

// Close closes the database
func (db *DB) Close() error {
	if db.store == nil {
		return nil
	}
	return db.store.Close()
}
