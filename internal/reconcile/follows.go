package reconcile

import (
	"sort"
	"sync"
)

// Follows is the set of followed thread ids. It lives beside the record
// stores because follow state is not part of any fetched record.
type Follows struct {
	mu       sync.RWMutex
	ids      map[int64]bool
	onChange func(ids []int64)
}

// NewFollows creates a follow set seeded with ids.
func NewFollows(ids ...int64) *Follows {
	f := &Follows{ids: make(map[int64]bool, len(ids))}
	for _, id := range ids {
		f.ids[id] = true
	}
	return f
}

// IsFollowed reports whether threadID is followed.
func (f *Follows) IsFollowed(threadID int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ids[threadID]
}

// Set sets the follow flag and reports the previous value.
func (f *Follows) Set(threadID int64, followed bool) bool {
	f.mu.Lock()
	previous := f.ids[threadID]
	f.setLocked(threadID, followed)
	onChange := f.onChange
	ids := f.idsLocked()
	f.mu.Unlock()

	if onChange != nil && previous != followed {
		onChange(ids)
	}
	return previous
}

// Toggle flips the follow flag and returns the previous and new values.
func (f *Follows) Toggle(threadID int64) (previous, next bool) {
	f.mu.Lock()
	previous = f.ids[threadID]
	next = !previous
	f.setLocked(threadID, next)
	onChange := f.onChange
	ids := f.idsLocked()
	f.mu.Unlock()

	if onChange != nil {
		onChange(ids)
	}
	return previous, next
}

// CompareAndSet sets the flag to value only if it currently equals expected.
func (f *Follows) CompareAndSet(threadID int64, expected, value bool) bool {
	f.mu.Lock()
	if f.ids[threadID] != expected {
		f.mu.Unlock()
		return false
	}
	f.setLocked(threadID, value)
	onChange := f.onChange
	ids := f.idsLocked()
	f.mu.Unlock()

	if onChange != nil && expected != value {
		onChange(ids)
	}
	return true
}

// IDs returns the followed thread ids in ascending order.
func (f *Follows) IDs() []int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.idsLocked()
}

// OnChange registers the function called after the set changes.
func (f *Follows) OnChange(fn func(ids []int64)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

func (f *Follows) idsLocked() []int64 {
	ids := make([]int64, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *Follows) setLocked(threadID int64, followed bool) {
	if followed {
		f.ids[threadID] = true
	} else {
		delete(f.ids, threadID)
	}
}
