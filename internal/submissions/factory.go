package submissions

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by NewStore.
const (
	BackendAuto     = "auto"
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a store backend.
type Options struct {
	Backend      string
	DatabaseURL  string
	FilePath     string
	SQLitePath   string
	RetentionCap int
}

// NewStore builds the configured backend and reports which one was
// chosen. With BackendAuto (or an empty backend) the most durable
// configured option wins: postgres when a database URL is set, then
// file, then sqlite, then memory.
func NewStore(ctx context.Context, opts Options) (Store, string, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" || backend == BackendAuto {
		switch {
		case strings.TrimSpace(opts.DatabaseURL) != "":
			backend = BackendPostgres
		case strings.TrimSpace(opts.FilePath) != "":
			backend = BackendFile
		case strings.TrimSpace(opts.SQLitePath) != "":
			backend = BackendSQLite
		default:
			backend = BackendMemory
		}
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(opts.RetentionCap), BackendMemory, nil
	case BackendFile:
		store, err := NewFileStore(opts.FilePath, opts.RetentionCap)
		if err != nil {
			return nil, "", err
		}
		return store, BackendFile, nil
	case BackendSQLite:
		store, err := NewSQLiteStore(opts.SQLitePath, opts.RetentionCap)
		if err != nil {
			return nil, "", err
		}
		return store, BackendSQLite, nil
	case BackendPostgres:
		store, err := NewPostgresStore(ctx, opts.DatabaseURL, opts.RetentionCap)
		if err != nil {
			return nil, "", err
		}
		return store, BackendPostgres, nil
	default:
		return nil, "", fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
