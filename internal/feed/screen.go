// Package feed exposes a list-backed screen to a UI: a store, a pager and
// a reconciler behind non-blocking operations and a state snapshot.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/logging"
	"github.com/cristianoliveira/lostfound/internal/pager"
	"github.com/cristianoliveira/lostfound/internal/reconcile"
	"github.com/cristianoliveira/lostfound/internal/search"
	"github.com/cristianoliveira/lostfound/internal/storage"
	"github.com/cristianoliveira/lostfound/internal/store"
)

// Item is a record a screen can list and search.
type Item interface {
	domain.Record
	search.Document
}

// ViewFunc derives the visible list from the store contents.
type ViewFunc[T Item] func(items []T, c domain.Criteria, now time.Time) []T

// Op names a screen operation.
type Op string

const (
	OpLoadFirst   Op = "load_first"
	OpLoadMore    Op = "load_more"
	OpRetry       Op = "retry"
	OpSetFilter   Op = "set_filter"
	OpMarkRead    Op = "mark_read"
	OpMarkAllRead Op = "mark_all_read"
	OpFollow      Op = "toggle_follow"
	OpDelete      Op = "soft_delete"
)

// Outcome is delivered once on the channel returned by each operation.
type Outcome struct {
	Op Op
	// Result is set by fetching operations.
	Result pager.Result
	// Refetched reports whether SetFilter went back to the server.
	Refetched bool
	// Followed is the follow flag after ToggleFollow.
	Followed bool
	// Count is the number of records MarkAllRead changed.
	Count int
	Err   error
}

// State is a point-in-time view of a screen.
type State[T Item] struct {
	// Items is the filtered view, not the raw store.
	Items          []T
	Loaded         int
	Total          int
	IsLoadingFirst bool
	IsLoadingMore  bool
	HasMore        bool
	// Err is the last fetch error; mutation errors go to the outcome channel.
	Err      error
	Criteria domain.Criteria
	Seeded   bool
}

// Screen wires one store, pager and reconciler together.
type Screen[T Item] struct {
	name       string
	store      *store.Store[T]
	pager      *pager.Pager[T]
	reconciler *reconcile.Reconciler[T]
	view       ViewFunc[T]
	search     search.Provider
	snapshot   *storage.Snapshot[T]
	canDelete  bool
	now        func() time.Time
	logger     logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	criteria domain.Criteria
	closed   bool

	updates     chan struct{}
	unsubscribe func()
	flusher     *flusher
}

// Option configures a Screen.
type Option[T Item] func(*Screen[T])

// WithName sets the name used in logs.
func WithName[T Item](name string) Option[T] {
	return func(s *Screen[T]) { s.name = name }
}

// WithView sets the client-side view derivation.
func WithView[T Item](view ViewFunc[T]) Option[T] {
	return func(s *Screen[T]) { s.view = view }
}

// WithSearch sets the provider matching Criteria.Query.
func WithSearch[T Item](p search.Provider) Option[T] {
	return func(s *Screen[T]) { s.search = p }
}

// WithSnapshot persists the store contents under the snapshot's key and
// enables Hydrate.
func WithSnapshot[T Item](snap *storage.Snapshot[T]) Option[T] {
	return func(s *Screen[T]) { s.snapshot = snap }
}

// WithoutDelete disables SoftDelete.
func WithoutDelete[T Item]() Option[T] {
	return func(s *Screen[T]) { s.canDelete = false }
}

// WithClock overrides the clock used for time-window views.
func WithClock[T Item](now func() time.Time) Option[T] {
	return func(s *Screen[T]) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the screen logger.
func WithLogger[T Item](l logging.Logger) Option[T] {
	return func(s *Screen[T]) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a screen. The pager and reconciler must share st.
func New[T Item](st *store.Store[T], p *pager.Pager[T], r *reconcile.Reconciler[T], opts ...Option[T]) *Screen[T] {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Screen[T]{
		name:       "screen",
		store:      st,
		pager:      p,
		reconciler: r,
		canDelete:  true,
		now:        time.Now,
		logger:     logging.Nop(),
		ctx:        ctx,
		cancel:     cancel,
		updates:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("screen", s.name)

	if s.snapshot != nil {
		snap := s.snapshot
		s.flusher = newFlusher(func(ctx context.Context) error {
			return snap.Save(ctx, st.Items())
		}, s.logger.With("key", snap.Key()))
	}
	s.unsubscribe = st.OnChange(func([]T) {
		if s.flusher != nil {
			s.flusher.Mark()
		}
		s.signal()
	})
	return s
}

// Name returns the screen name.
func (s *Screen[T]) Name() string {
	return s.name
}

// Store returns the backing store.
func (s *Screen[T]) Store() *store.Store[T] {
	return s.store
}

// Reconciler returns the screen's reconciler.
func (s *Screen[T]) Reconciler() *reconcile.Reconciler[T] {
	return s.reconciler
}

// Follows returns the follow set, or nil if the screen cannot follow.
func (s *Screen[T]) Follows() *reconcile.Follows {
	return s.reconciler.Follows()
}

// Criteria returns the active criteria.
func (s *Screen[T]) Criteria() domain.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Updates delivers a signal after any change to the screen state.
// Signals are coalesced; read State after each one.
func (s *Screen[T]) Updates() <-chan struct{} {
	return s.updates
}

// State returns a snapshot of the screen.
func (s *Screen[T]) State() State[T] {
	status := s.pager.Status()
	criteria := s.Criteria()
	return State[T]{
		Items:          s.derive(s.store.Items(), criteria),
		Loaded:         s.store.Len(),
		Total:          s.store.Total(),
		IsLoadingFirst: status.IsLoadingFirst(),
		IsLoadingMore:  status.IsLoadingMore(),
		HasMore:        status.HasMore,
		Err:            status.Err,
		Criteria:       criteria,
		Seeded:         s.store.Seeded(),
	}
}

// View returns the filtered list.
func (s *Screen[T]) View() []T {
	return s.derive(s.store.Items(), s.Criteria())
}

// ViewFor returns the loaded records as they would show under c, without
// changing the active criteria or fetching.
func (s *Screen[T]) ViewFor(c domain.Criteria) []T {
	return s.derive(s.store.Items(), c.Normalize())
}

func (s *Screen[T]) derive(items []T, c domain.Criteria) []T {
	if s.view != nil {
		items = s.view(items, c, s.now())
	}
	if s.search != nil && c.Query != "" {
		items = search.Filter(items, s.search, c.Query)
	}
	return items
}

// Hydrate seeds the store from the persisted snapshot. A missing snapshot
// is not an error. It must run before the first LoadFirst.
func (s *Screen[T]) Hydrate(ctx context.Context) error {
	if s.snapshot == nil {
		return nil
	}
	items, err := s.snapshot.Load(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: hydrate: %w", s.name, err)
	}
	s.store.Seed(items)
	s.logger.Debug("hydrated from snapshot", "items", len(items))
	return nil
}

// LoadFirst fetches the first page for c and replaces the store.
func (s *Screen[T]) LoadFirst(c domain.Criteria) <-chan Outcome {
	c = c.Normalize()
	s.setCriteria(c)
	return s.launch(OpLoadFirst, func(ctx context.Context) Outcome {
		res, err := s.pager.LoadFirst(ctx, c)
		return Outcome{Result: res, Err: err}
	})
}

// LoadMore fetches the next page. Calls made while a fetch is in flight
// are coalesced into it.
func (s *Screen[T]) LoadMore() <-chan Outcome {
	return s.launch(OpLoadMore, func(ctx context.Context) Outcome {
		res, err := s.pager.LoadMore(ctx)
		return Outcome{Result: res, Err: err}
	})
}

// Retry re-issues the failed fetch.
func (s *Screen[T]) Retry() <-chan Outcome {
	return s.launch(OpRetry, func(ctx context.Context) Outcome {
		res, err := s.pager.Retry(ctx)
		return Outcome{Result: res, Err: err}
	})
}

// SetFilter changes the criteria. Only a change to the server-side part
// triggers a first-page fetch; client-side refinements re-derive the view.
func (s *Screen[T]) SetFilter(c domain.Criteria) <-chan Outcome {
	c = c.Normalize()
	s.mu.Lock()
	previous := s.criteria
	s.criteria = c
	s.mu.Unlock()

	if c.ServerKey() == previous.ServerKey() && s.pager.Status().State != pager.Idle {
		s.signal()
		return done(Outcome{Op: OpSetFilter})
	}
	return s.launch(OpSetFilter, func(ctx context.Context) Outcome {
		res, err := s.pager.LoadFirst(ctx, c)
		return Outcome{Result: res, Refetched: true, Err: err}
	})
}

// MarkRead marks one record read.
func (s *Screen[T]) MarkRead(id int64) <-chan Outcome {
	return s.launch(OpMarkRead, func(ctx context.Context) Outcome {
		return Outcome{Err: s.reconciler.MarkRead(ctx, id)}
	})
}

// MarkAllRead marks every loaded record read.
func (s *Screen[T]) MarkAllRead() <-chan Outcome {
	return s.launch(OpMarkAllRead, func(ctx context.Context) Outcome {
		n, err := s.reconciler.MarkAllRead(ctx)
		return Outcome{Count: n, Err: err}
	})
}

// ToggleFollow flips the follow flag of a thread.
func (s *Screen[T]) ToggleFollow(threadID int64) <-chan Outcome {
	return s.launch(OpFollow, func(ctx context.Context) Outcome {
		followed, err := s.reconciler.ToggleFollow(ctx, threadID)
		return Outcome{Followed: followed, Err: err}
	})
}

// SoftDelete removes a record and confirms the delete remotely.
func (s *Screen[T]) SoftDelete(id int64) <-chan Outcome {
	if !s.canDelete {
		return done(Outcome{Op: OpDelete, Err: fmt.Errorf("soft delete: %w", domain.ErrUnsupported)})
	}
	return s.launch(OpDelete, func(ctx context.Context) Outcome {
		return Outcome{Err: s.reconciler.SoftDelete(ctx, id)}
	})
}

// Close discards in-flight work, waits for it to return and writes the
// final snapshot. Operations after Close fail with domain.ErrClosed.
func (s *Screen[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.pager.Close()
	s.cancel()
	s.wg.Wait()
	s.unsubscribe()
	if s.flusher != nil {
		s.flusher.Stop()
	}
	s.logger.Debug("screen closed")
}

func (s *Screen[T]) setCriteria(c domain.Criteria) {
	s.mu.Lock()
	s.criteria = c
	s.mu.Unlock()
}

// launch runs fn on its own goroutine bound to the screen context.
func (s *Screen[T]) launch(op Op, fn func(ctx context.Context) Outcome) <-chan Outcome {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return done(Outcome{Op: op, Err: fmt.Errorf("%s: %w", op, domain.ErrClosed)})
	}
	s.wg.Add(1)
	s.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		defer s.wg.Done()
		defer close(out)

		o := fn(s.ctx)
		o.Op = op
		if o.Err != nil && !errors.Is(o.Err, domain.ErrClosed) {
			s.logger.Warn("operation failed", "op", string(op), "error", o.Err)
		}
		s.signal()
		out <- o
	}()
	return out
}

func (s *Screen[T]) signal() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func done(o Outcome) <-chan Outcome {
	out := make(chan Outcome, 1)
	out <- o
	close(out)
	return out
}
