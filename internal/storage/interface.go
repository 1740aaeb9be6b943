// Package storage persists keyed snapshots of screen state between runs.
package storage

import (
	"context"
	"errors"
	"os"
)

// File permission constants
const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for snapshot files (rw-------)
	FileModeFile os.FileMode = 0600
)

// ErrNoSnapshot is returned by Load when nothing was saved under the key.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Gateway stores opaque blobs by key.
type Gateway interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
