package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileGateway stores each key as a JSON file in a directory.
type FileGateway struct {
	dir string
}

// NewFileGateway creates a gateway rooted at dir, creating it if needed.
func NewFileGateway(dir string) (*FileGateway, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("file storage: directory cannot be empty")
	}
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		return nil, fmt.Errorf("file storage: create directory: %w", err)
	}
	return &FileGateway{dir: dir}, nil
}

// Load implements Gateway.
func (g *FileGateway) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := g.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("file storage: load %s: %w", key, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("file storage: load %s: %w", key, err)
	}
	return data, nil
}

// Save implements Gateway. The file is replaced atomically under a
// directory lock so concurrent processes never see a partial write.
func (g *FileGateway) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := g.path(key)
	if err != nil {
		return err
	}
	return WithLock(path+".lock", func() error {
		tmp, err := os.CreateTemp(g.dir, filepath.Base(path)+".*.tmp")
		if err != nil {
			return fmt.Errorf("file storage: create temp file: %w", err)
		}
		tmpName := tmp.Name()
		defer os.Remove(tmpName)

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("file storage: write %s: %w", key, err)
		}
		if err := tmp.Chmod(FileModeFile); err != nil {
			tmp.Close()
			return fmt.Errorf("file storage: chmod %s: %w", key, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("file storage: close %s: %w", key, err)
		}
		if err := os.Rename(tmpName, path); err != nil {
			return fmt.Errorf("file storage: replace %s: %w", key, err)
		}
		return nil
	})
}

// Delete implements Gateway. Deleting a missing key is not an error.
func (g *FileGateway) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := g.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file storage: delete %s: %w", key, err)
	}
	return nil
}

// Close implements Gateway.
func (g *FileGateway) Close() error {
	return nil
}

func (g *FileGateway) path(key string) (string, error) {
	name := unsafeKeyChars.ReplaceAllString(strings.TrimSpace(key), "_")
	if name == "" || strings.Trim(name, ".") == "" {
		return "", fmt.Errorf("file storage: invalid key %q", key)
	}
	return filepath.Join(g.dir, name+".json"), nil
}
