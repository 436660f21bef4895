package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

// SchemaVersion is the layout of the records written by this build
const SchemaVersion = 1

const schemaKey = "schema"

// schemaMeta records which layout wrote the store
type schemaMeta struct {
	Version   int
	AppliedAt time.Time
}

// ensureSchema stamps a fresh store with SchemaVersion and refuses a store
// written by a newer build, whose records this one cannot read safely.
func (db *DB) ensureSchema() error {
	var meta schemaMeta
	err := db.store.Get(schemaKey, &meta)
	switch {
	case errors.Is(err, badgerhold.ErrNotFound):
		meta = schemaMeta{Version: SchemaVersion, AppliedAt: time.Now().UTC()}
		if err := db.store.Insert(schemaKey, meta); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		db.logger.Info("Initialized draft store schema", zap.Int("version", SchemaVersion))
		return nil
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case meta.Version > SchemaVersion:
		return fmt.Errorf("draft store schema v%d is newer than supported v%d", meta.Version, SchemaVersion)
	}
	return nil
}

// StoredSchemaVersion returns the version recorded in the store
func (db *DB) StoredSchemaVersion() (int, error) {
	var meta schemaMeta
	if err := db.store.Get(schemaKey, &meta); err != nil {
		return 0, err
	}
	return meta.Version, nil
}
