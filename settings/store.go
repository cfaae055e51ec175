package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"ghostconf/kv"
)

// OpenStore opens the storage backend named by s.Storage. The returned close
// function is never nil.
func (s Settings) OpenStore() (kv.Store, func() error, error) {
	noop := func() error { return nil }
	switch s.Storage {
	case StorageMemory:
		return kv.NewMemoryStore(), noop, nil
	case StorageSQLite:
		if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data dir: %w", err)
		}
		db, err := kv.OpenSQLite(filepath.Join(s.DataDir, "ghostconf.db"))
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return kv.NewFileStore(s.DataDir), noop, nil
	}
}
