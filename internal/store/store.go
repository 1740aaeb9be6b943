package store

import (
	"fmt"
	"sync"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

// Observer is called after every change with a copy of the held records.
type Observer[T domain.Record] func(items []T)

// Store is an ordered, deduplicated collection of records.
// It is safe for concurrent use.
type Store[T domain.Record] struct {
	mu        sync.RWMutex
	items     []T
	total     int
	epoch     uint64
	seeded    bool
	observers map[int]Observer[T]
	nextObs   int
}

// New creates an empty store with an unknown total.
func New[T domain.Record]() *Store[T] {
	return &Store[T]{
		total:     domain.UnknownTotal,
		observers: make(map[int]Observer[T]),
	}
}

// Replace merges a fresh first page. It resets the total and starts a new epoch.
func (s *Store[T]) Replace(items []T, total int) {
	s.mu.Lock()
	s.items = Merge(s.items, items, ReplaceFirstPage)
	s.total = total
	s.epoch++
	s.seeded = false
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)
}

// Append merges a later page. The total is left untouched.
func (s *Store[T]) Append(items []T) {
	s.mu.Lock()
	s.items = Merge(s.items, items, Append)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)
}

// Seed hydrates the store from a persisted snapshot. The seed behaves as
// page 0 and is overwritten by the first Replace.
func (s *Store[T]) Seed(items []T) {
	s.mu.Lock()
	s.items = Merge(nil, items, ReplaceFirstPage)
	s.seeded = true
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)
}

// ApplyMutation replaces the record with fn(record) in the same position.
// It returns domain.ErrNotFound if id is not held.
func (s *Store[T]) ApplyMutation(id int64, fn func(T) T) error {
	s.mu.Lock()
	pos := s.indexLocked(id)
	if pos < 0 {
		s.mu.Unlock()
		return fmt.Errorf("apply mutation to %d: %w", id, domain.ErrNotFound)
	}
	updated := fn(s.items[pos])
	if updated.RecordID() != id {
		s.mu.Unlock()
		return fmt.Errorf("apply mutation to %d: mutation changed id to %d", id, updated.RecordID())
	}
	s.items[pos] = updated
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)
	return nil
}

// ApplyAll replaces every record with fn(record) and returns the ids that changed.
func (s *Store[T]) ApplyAll(fn func(T) (T, bool)) []int64 {
	s.mu.Lock()
	var changed []int64
	for i, item := range s.items {
		updated, ok := fn(item)
		if !ok || updated.RecordID() != item.RecordID() {
			continue
		}
		s.items[i] = updated
		changed = append(changed, item.RecordID())
	}
	if len(changed) == 0 {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)
	return changed
}

// Evict removes the record and returns it with the index it held.
// It returns domain.ErrNotFound if id is not held.
func (s *Store[T]) Evict(id int64) (T, int, error) {
	var zero T
	s.mu.Lock()
	pos := s.indexLocked(id)
	if pos < 0 {
		s.mu.Unlock()
		return zero, -1, fmt.Errorf("evict %d: %w", id, domain.ErrNotFound)
	}
	removed := s.items[pos]
	s.items = append(s.items[:pos:pos], s.items[pos+1:]...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)
	return removed, pos, nil
}

// Restore reinserts record at index, clamped to the current length.
// It reports false and changes nothing if the id is already held.
func (s *Store[T]) Restore(index int, record T) bool {
	s.mu.Lock()
	if s.indexLocked(record.RecordID()) >= 0 {
		s.mu.Unlock()
		return false
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.items) {
		index = len(s.items)
	}
	items := make([]T, 0, len(s.items)+1)
	items = append(items, s.items[:index]...)
	items = append(items, record)
	items = append(items, s.items[index:]...)
	s.items = items
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snapshot)
	return true
}

// Items returns a copy of the held records in order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get returns the record with the given id.
func (s *Store[T]) Get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pos := s.indexLocked(id); pos >= 0 {
		return s.items[pos], true
	}
	var zero T
	return zero, false
}

// Len returns the number of held records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Total returns the total reported by the latest first page, or
// domain.UnknownTotal.
func (s *Store[T]) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Epoch returns the number of first-page replacements so far.
func (s *Store[T]) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Seeded reports whether the held records come from a snapshot rather than a fetch.
func (s *Store[T]) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

// OnChange registers an observer and returns a function that removes it.
func (s *Store[T]) OnChange(fn Observer[T]) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store[T]) indexLocked(id int64) int {
	for i, item := range s.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) snapshotLocked() []T {
	items := make([]T, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store[T]) notify(items []T) {
	s.mu.RLock()
	observers := make([]Observer[T], 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.RUnlock()
	for _, fn := range observers {
		fn(items)
	}
}
