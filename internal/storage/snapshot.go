package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// NotificationsKey holds the persisted notification list.
	NotificationsKey = "notification-storage"
	// FollowsKey holds the followed thread IDs.
	FollowsKey = "followed-threads"

	// SnapshotVersion is the current envelope version.
	SnapshotVersion = 1
)

// ErrVersionMismatch is returned when a stored envelope has another version.
var ErrVersionMismatch = errors.New("snapshot version mismatch")

type envelope[T any] struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Items   []T       `json:"items"`
}

// Snapshot reads and writes a list of T under one gateway key.
// Saves are serialized so concurrent writers never interleave.
type Snapshot[T any] struct {
	gateway Gateway
	key     string
	now     func() time.Time

	mu sync.Mutex
}

// NewSnapshot binds a snapshot to key on gateway.
func NewSnapshot[T any](gateway Gateway, key string) *Snapshot[T] {
	return &Snapshot[T]{gateway: gateway, key: key, now: time.Now}
}

// Key returns the gateway key.
func (s *Snapshot[T]) Key() string {
	return s.key
}

// Load returns the stored items. It returns ErrNoSnapshot when nothing
// has been saved yet.
func (s *Snapshot[T]) Load(ctx context.Context) ([]T, error) {
	data, err := s.gateway.Load(ctx, s.key)
	if err != nil {
		return nil, err
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("snapshot %s: decode: %w", s.key, err)
	}
	if env.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s: version %d: %w", s.key, env.Version, ErrVersionMismatch)
	}
	return env.Items, nil
}

// Save replaces the stored items.
func (s *Snapshot[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(envelope[T]{
		Version: SnapshotVersion,
		SavedAt: s.now().UTC(),
		Items:   items,
	})
	if err != nil {
		return fmt.Errorf("snapshot %s: encode: %w", s.key, err)
	}
	return s.gateway.Save(ctx, s.key, data)
}

// Clear removes the stored items.
func (s *Snapshot[T]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateway.Delete(ctx, s.key)
}
