package storage

import (
	"context"
	"fmt"
)

// Config selects and parameterizes a store backend.
type Config struct {
	Type    Type
	Path    string // json and sqlite backends
	ConnStr string // pg backend
}

// NewStore creates a Store for the configured backend.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case JSONFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("json store requires a file path")
		}
		return NewJSONFileStore(cfg.Path), nil

	case SQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a file path")
		}
		return NewSQLiteStore(cfg.Path)

	case PG:
		if cfg.ConnStr == "" {
			return nil, fmt.Errorf("pg store requires a connection string")
		}
		return NewPGStore(ctx, PGConfig{ConnStr: cfg.ConnStr})

	case InMem:
		return NewInMemStore(), nil

	default:
		return nil, fmt.Errorf(string(ErrUnsupportedStore), cfg.Type)
	}
}
