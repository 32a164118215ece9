package storage

import "fmt"

// Config carries backend-specific connection settings. Only the field for
// the selected kind is consulted.
type Config struct {
	SQLitePath  string
	PostgresDSN string
}

func NewStore(kind string, cfg Config) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
