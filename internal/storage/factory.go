package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/lostfound/internal/colors"
	"github.com/cristianoliveira/lostfound/internal/config"
	"github.com/cristianoliveira/lostfound/internal/storage/sqlite"
)

const (
	// BackendSQLite selects the SQLite snapshot table.
	BackendSQLite = "sqlite"
	// BackendFile selects one JSON file per key.
	BackendFile = "file"

	snapshotsDBFileName = "snapshots.db"
	snapshotsDirName    = "snapshots"
)

var (
	_ Gateway = (*FileGateway)(nil)
	_ Gateway = (*sqliteGateway)(nil)
)

// sqliteGateway maps the sqlite package's not-found error onto ErrNoSnapshot.
type sqliteGateway struct {
	*sqlite.Storage
}

func (g sqliteGateway) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := g.Storage.Load(ctx, key)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrNoSnapshot, err)
	}
	return data, err
}

// NewFromConfig creates a gateway from the storage_backend and state_dir settings.
func NewFromConfig() (Gateway, error) {
	config.Load()
	return NewForBackend(config.Get("storage_backend", BackendSQLite), StateDir())
}

// NewForBackend creates a gateway for the named backend under stateDir.
// A sqlite backend that cannot be opened falls back to files.
func NewForBackend(backend, stateDir string) (Gateway, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, fmt.Errorf("storage: state directory not configured")
	}
	if err := os.MkdirAll(stateDir, FileModeDir); err != nil {
		return nil, fmt.Errorf("storage: create state directory: %w", err)
	}

	fileDir := filepath.Join(stateDir, snapshotsDirName)
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		s, err := sqlite.NewStorage(filepath.Join(stateDir, snapshotsDBFileName))
		if err != nil {
			colors.Warning(fmt.Sprintf("failed to initialize sqlite backend, falling back to file: %v", err))
			return NewFileGateway(fileDir)
		}
		return sqliteGateway{Storage: s}, nil
	case BackendFile:
		return NewFileGateway(fileDir)
	default:
		colors.Warning(fmt.Sprintf("unknown storage backend '%s', falling back to sqlite", backend))
		return NewForBackend(BackendSQLite, stateDir)
	}
}

// StateDir returns the configured state directory.
func StateDir() string {
	if dir := os.Getenv("LOSTFOUND_STATE_DIR"); dir != "" {
		return dir
	}
	config.Load()
	return config.Get("state_dir", "")
}
