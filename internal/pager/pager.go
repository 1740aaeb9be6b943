// Package pager drives sequential page fetches for one list-backed screen
// and feeds the results into its record store.
package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/logging"
	"github.com/cristianoliveira/lostfound/internal/store"
)

const (
	// DefaultPageSize is the number of items requested per page.
	DefaultPageSize = 10
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 15 * time.Second
)

// State is the lifecycle state of a pager.
type State int

const (
	Idle State = iota
	LoadingFirst
	Ready
	LoadingMore
	Exhausted
	Error
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingFirst:
		return "loading_first"
	case Ready:
		return "ready"
	case LoadingMore:
		return "loading_more"
	case Exhausted:
		return "exhausted"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result reports what a load call did.
type Result int

const (
	// Loaded means a page was fetched and merged.
	Loaded Result = iota
	// AlreadyLoading means the call was coalesced into an in-flight fetch.
	AlreadyLoading
	// NoMoreData means there is nothing further to fetch.
	NoMoreData
	// Discarded means the fetch resolved after the pager was closed or superseded.
	Discarded
	// Failed means the fetch or its validation failed; the store is unchanged.
	Failed
	// NothingToRetry means Retry was called without a failed fetch.
	NothingToRetry
)

// String returns the string representation of the result.
func (r Result) String() string {
	switch r {
	case Loaded:
		return "loaded"
	case AlreadyLoading:
		return "already_loading"
	case NoMoreData:
		return "no_more_data"
	case Discarded:
		return "discarded"
	case Failed:
		return "failed"
	case NothingToRetry:
		return "nothing_to_retry"
	default:
		return "unknown"
	}
}

// Fetcher retrieves one page of records.
type Fetcher[T domain.Record] interface {
	FetchPage(ctx context.Context, page, limit int, filters map[string]string) (domain.Page[T], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T domain.Record] func(ctx context.Context, page, limit int, filters map[string]string) (domain.Page[T], error)

// FetchPage implements Fetcher.
func (f FetcherFunc[T]) FetchPage(ctx context.Context, page, limit int, filters map[string]string) (domain.Page[T], error) {
	return f(ctx, page, limit, filters)
}

// Status is a point-in-time view of the pager.
type Status struct {
	State    State
	HasMore  bool
	Err      error
	Pages    int
	Fetched  int
	Criteria domain.Criteria
}

// IsLoadingFirst reports whether the first page is being fetched.
func (s Status) IsLoadingFirst() bool { return s.State == LoadingFirst }

// IsLoadingMore reports whether a later page is being fetched.
func (s Status) IsLoadingMore() bool { return s.State == LoadingMore }

// Option configures a Pager.
type Option func(*options)

type options struct {
	pageSize int
	timeout  time.Duration
	logger   logging.Logger
	now      func() time.Time
}

// WithPageSize sets the number of items requested per page.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithTimeout sets the per-fetch timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used to resolve relative time windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type flight struct {
	done   chan struct{}
	gen    uint64
	key    string
	first  bool
	cancel context.CancelFunc
}

// Pager fetches pages in order and merges them into a store.
// At most one fetch is outstanding at a time.
type Pager[T domain.Record] struct {
	fetcher Fetcher[T]
	store   *store.Store[T]
	opts    options

	mu       sync.Mutex
	state    State
	criteria domain.Criteria
	key      string
	filters  map[string]string
	nextPage int
	pages    int
	fetched  int
	hasMore  bool
	err      error
	gen      uint64
	closed   bool
	inflight *flight
	// failedFirst records whether the last failed fetch was a first page.
	failedFirst bool
}

// New creates a pager feeding st from fetcher.
func New[T domain.Record](fetcher Fetcher[T], st *store.Store[T], opts ...Option) *Pager[T] {
	o := options{
		pageSize: DefaultPageSize,
		timeout:  DefaultTimeout,
		logger:   logging.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pager[T]{
		fetcher:  fetcher,
		store:    st,
		opts:     o,
		nextPage: 1,
	}
}

// PageSize returns the number of items requested per page.
func (p *Pager[T]) PageSize() int {
	return p.opts.pageSize
}

// Status returns the current status.
func (p *Pager[T]) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		State:    p.state,
		HasMore:  p.hasMore,
		Err:      p.err,
		Pages:    p.pages,
		Fetched:  p.fetched,
		Criteria: p.criteria,
	}
}

// LoadFirst fetches page 1 for criteria and replaces the store contents.
//
// A call with the same server-side criteria as an in-flight first-page
// fetch waits for it and returns AlreadyLoading. Any other in-flight fetch
// is superseded and its result discarded.
func (p *Pager[T]) LoadFirst(ctx context.Context, criteria domain.Criteria) (Result, error) {
	key := criteria.ServerKey()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Discarded, domain.ErrClosed
	}
	if f := p.inflight; f != nil {
		if f.first && f.key == key {
			p.criteria = criteria
			p.mu.Unlock()
			return p.wait(ctx, f)
		}
		p.opts.logger.Debug("superseding in-flight fetch", "key", f.key, "new_key", key)
		f.cancel()
		p.inflight = nil
	}

	p.criteria = criteria
	p.key = key
	p.filters = criteria.ServerParams(p.opts.now())
	p.state = LoadingFirst
	p.err = nil
	f := p.startLocked(ctx, true)
	filters := p.filters
	p.mu.Unlock()

	return p.run(ctx, f, 1, filters)
}

// LoadMore fetches the next page and appends it to the store.
func (p *Pager[T]) LoadMore(ctx context.Context) (Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Discarded, domain.ErrClosed
	}
	if f := p.inflight; f != nil {
		p.mu.Unlock()
		return p.wait(ctx, f)
	}
	if p.state != Ready || !p.hasMore {
		p.mu.Unlock()
		return NoMoreData, nil
	}
	return p.loadNextLocked(ctx)
}

// Retry re-issues the fetch that failed: the first page if that is what
// failed or nothing was loaded yet, the next page otherwise.
func (p *Pager[T]) Retry(ctx context.Context) (Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Discarded, domain.ErrClosed
	}
	if f := p.inflight; f != nil {
		p.mu.Unlock()
		return p.wait(ctx, f)
	}
	if p.state != Error {
		p.mu.Unlock()
		return NothingToRetry, nil
	}
	if p.failedFirst || p.pages == 0 {
		criteria := p.criteria
		p.mu.Unlock()
		return p.LoadFirst(ctx, criteria)
	}
	return p.loadNextLocked(ctx)
}

// Close marks the pager inactive. A fetch resolving afterwards is discarded.
func (p *Pager[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.gen++
	if p.inflight != nil {
		p.inflight.cancel()
		p.inflight = nil
	}
}

// loadNextLocked must be called with p.mu held; it releases it.
func (p *Pager[T]) loadNextLocked(ctx context.Context) (Result, error) {
	page := p.nextPage
	p.state = LoadingMore
	p.err = nil
	f := p.startLocked(ctx, false)
	filters := p.filters
	p.mu.Unlock()

	return p.run(ctx, f, page, filters)
}

func (p *Pager[T]) startLocked(ctx context.Context, first bool) *flight {
	p.gen++
	f := &flight{
		done:   make(chan struct{}),
		gen:    p.gen,
		key:    p.key,
		first:  first,
		cancel: func() {},
	}
	p.inflight = f
	return f
}

func (p *Pager[T]) wait(ctx context.Context, f *flight) (Result, error) {
	select {
	case <-f.done:
		return AlreadyLoading, nil
	case <-ctx.Done():
		return AlreadyLoading, ctx.Err()
	}
}

func (p *Pager[T]) run(ctx context.Context, f *flight, page int, filters map[string]string) (Result, error) {
	defer close(f.done)

	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if p.opts.timeout > 0 {
		var cancelTimeout context.CancelFunc
		fctx, cancelTimeout = context.WithTimeout(fctx, p.opts.timeout)
		defer cancelTimeout()
	}
	p.mu.Lock()
	if p.inflight == f {
		f.cancel = cancel
	}
	p.mu.Unlock()

	result, err := p.fetcher.FetchPage(fctx, page, p.opts.pageSize, filters)
	if err == nil {
		err = domain.ValidatePage(result)
	}
	if err != nil && errors.Is(fctx.Err(), context.DeadlineExceeded) {
		var netErr *domain.NetworkError
		if !errors.As(err, &netErr) || !netErr.Timeout {
			err = &domain.NetworkError{Op: "fetch page", Timeout: true, Err: err}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || f.gen != p.gen {
		p.opts.logger.Debug("discarding stale page", "page", page, "closed", p.closed)
		return Discarded, nil
	}
	p.inflight = nil

	if err != nil {
		p.state = Error
		p.err = err
		p.failedFirst = f.first
		var valErr *domain.ValidationError
		if errors.As(err, &valErr) {
			p.opts.logger.Error("dropping invalid page", "page", page, "error", err)
		} else {
			p.opts.logger.Warn("page fetch failed", "page", page, "error", err)
		}
		return Failed, fmt.Errorf("pager: load page %d: %w", page, err)
	}

	if f.first {
		p.store.Replace(result.Items, result.Total)
		p.fetched = len(result.Items)
		p.pages = 1
		p.nextPage = 2
	} else {
		p.store.Append(result.Items)
		p.fetched += len(result.Items)
		p.pages++
		p.nextPage++
	}

	p.hasMore = p.computeHasMore(len(result.Items))
	if p.hasMore {
		p.state = Ready
	} else {
		p.state = Exhausted
	}
	p.err = nil
	p.opts.logger.Debug("page merged",
		"page", page,
		"items", len(result.Items),
		"fetched", p.fetched,
		"total", p.store.Total(),
		"has_more", p.hasMore)
	return Loaded, nil
}

func (p *Pager[T]) computeHasMore(received int) bool {
	total := p.store.Total()
	if total == domain.UnknownTotal {
		// More than asked for means the endpoint ignores paging and sent everything.
		return received == p.opts.pageSize
	}
	hasMore := p.fetched < total
	if hasMore && received < p.opts.pageSize {
		// The reported total can lag behind the server's contents.
		return false
	}
	return hasMore
}
