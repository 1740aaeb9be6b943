package reconcile

import (
	"sync"
	"time"
)

// Kind identifies the optimistic change a pending mutation applied.
type Kind int

const (
	KindMarkRead Kind = iota
	KindFollow
	KindUnfollow
	KindSoftDelete
	KindMarkAllRead
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindMarkRead:
		return "mark_read"
	case KindFollow:
		return "follow"
	case KindUnfollow:
		return "unfollow"
	case KindSoftDelete:
		return "soft_delete"
	case KindMarkAllRead:
		return "mark_all_read"
	default:
		return "unknown"
	}
}

// Status is the confirmation state of a pending mutation.
type Status int

const (
	// StatusPending means the remote confirmation has not resolved yet.
	StatusPending Status = iota
	// StatusConfirmed means the server accepted the change.
	StatusConfirmed
	// StatusFailed means the server rejected it and the local change was kept.
	StatusFailed
	// StatusRolledBack means the server rejected it and the local change was undone.
	StatusRolledBack
	// StatusSuperseded means a refresh replaced the store before rollback could apply.
	StatusSuperseded
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	case StatusRolledBack:
		return "rolled_back"
	case StatusSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Pending is one entry of the mutation log. Previous holds whatever is
// needed to undo the optimistic change.
type Pending[T any] struct {
	MutationID string
	Kind       Kind
	TargetID   int64
	// Previous is the record before the change (soft-delete, mark-read).
	Previous T
	// PreviousFollow is the follow flag before the change.
	PreviousFollow bool
	// Index is the position the record held before a soft-delete.
	Index int
	// Epoch is the store epoch when the change was applied.
	Epoch     uint64
	Status    Status
	Err       error
	CreatedAt time.Time
}

// Log records pending mutations until they resolve.
type Log[T any] struct {
	mu      sync.Mutex
	entries map[string]*Pending[T]
	order   []string
	// keep bounds how many resolved entries are retained.
	keep int
}

// NewLog creates a mutation log retaining up to keep resolved entries.
func NewLog[T any](keep int) *Log[T] {
	if keep < 0 {
		keep = 0
	}
	return &Log[T]{entries: make(map[string]*Pending[T]), keep: keep}
}

// Add records a new pending mutation.
func (l *Log[T]) Add(p Pending[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := p
	l.entries[p.MutationID] = &entry
	l.order = append(l.order, p.MutationID)
}

// Resolve sets the final status of a mutation.
func (l *Log[T]) Resolve(id string, status Status, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		return
	}
	entry.Status = status
	entry.Err = err
	l.pruneLocked()
}

// Get returns a copy of the mutation with the given id.
func (l *Log[T]) Get(id string) (Pending[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	if !ok {
		return Pending[T]{}, false
	}
	return *entry, true
}

// Outstanding returns the unresolved mutations, oldest first.
func (l *Log[T]) Outstanding() []Pending[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Pending[T]
	for _, id := range l.order {
		if entry := l.entries[id]; entry.Status == StatusPending {
			out = append(out, *entry)
		}
	}
	return out
}

// Entries returns every retained mutation, oldest first.
func (l *Log[T]) Entries() []Pending[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Pending[T], 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}

func (l *Log[T]) pruneLocked() {
	resolved := 0
	for _, id := range l.order {
		if l.entries[id].Status != StatusPending {
			resolved++
		}
	}
	if resolved <= l.keep {
		return
	}
	drop := resolved - l.keep
	kept := l.order[:0]
	for _, id := range l.order {
		if drop > 0 && l.entries[id].Status != StatusPending {
			delete(l.entries, id)
			drop--
			continue
		}
		kept = append(kept, id)
	}
	l.order = kept
}
