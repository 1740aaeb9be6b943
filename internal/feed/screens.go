package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/logging"
	"github.com/cristianoliveira/lostfound/internal/pager"
	"github.com/cristianoliveira/lostfound/internal/reconcile"
	"github.com/cristianoliveira/lostfound/internal/remote"
	"github.com/cristianoliveira/lostfound/internal/search"
	"github.com/cristianoliveira/lostfound/internal/storage"
	"github.com/cristianoliveira/lostfound/internal/store"
)

// Deps are the collaborators shared by every screen of a session.
type Deps struct {
	Collection remote.Collection
	// Gateway persists snapshots; nil disables persistence.
	Gateway storage.Gateway
	// Follows is shared by the post screens; nil disables following.
	Follows       *reconcile.Follows
	UserID        int64
	// Admin lets the user delete posts they did not create.
	Admin         bool
	PageSize      int
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
	Search        search.Provider
	Logger        logging.Logger
	Now           func() time.Time
}

func (d Deps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.Nop()
	}
	return d.Logger
}

func (d Deps) clock() func() time.Time {
	if d.Now == nil {
		return time.Now
	}
	return d.Now
}

func (d Deps) pagerOptions(name string) []pager.Option {
	opts := []pager.Option{
		pager.WithLogger(d.logger().With("screen", name)),
		pager.WithClock(d.clock()),
	}
	if d.PageSize > 0 {
		opts = append(opts, pager.WithPageSize(d.PageSize))
	}
	if d.Timeout > 0 {
		opts = append(opts, pager.WithTimeout(d.Timeout))
	}
	return opts
}

func reconcilerOptions[T domain.Record](d Deps, name string) []reconcile.Option[T] {
	opts := []reconcile.Option[T]{reconcile.WithLogger[T](d.logger().With("screen", name))}
	if d.RetryAttempts > 0 {
		delay := d.RetryDelay
		if delay <= 0 {
			delay = reconcile.DefaultRetryDelay
		}
		opts = append(opts, reconcile.WithRetry[T](d.RetryAttempts, delay))
	}
	return opts
}

func screenOptions[T Item](d Deps, name string, view ViewFunc[T]) []Option[T] {
	return []Option[T]{
		WithName[T](name),
		WithView(view),
		WithSearch[T](d.Search),
		WithClock[T](d.clock()),
		WithLogger[T](d.logger()),
	}
}

// NewHome lists open posts from the dashboard.
func NewHome(d Deps) *Screen[domain.Post] {
	return newPostScreen(d, "home", remote.Dashboard, nil, domain.FilterPosts)
}

// NewArchived lists archived posts from the dashboard. A status in the
// criteria is ignored: the list only ever shows archived posts.
func NewArchived(d Deps) *Screen[domain.Post] {
	fixed := map[string]string{"status": string(domain.StatusArchived)}
	view := func(posts []domain.Post, c domain.Criteria, now time.Time) []domain.Post {
		c.Status = string(domain.StatusArchived)
		return domain.FilterPosts(posts, c, now)
	}
	return newPostScreen(d, "archived", remote.Dashboard, fixed, view)
}

// NewMine lists the current user's posts.
func NewMine(d Deps) *Screen[domain.Post] {
	return newPostScreen(d, "mine", remote.MyPosts, nil, domain.FilterPosts)
}

func newPostScreen(d Deps, name string, res remote.Resource, fixed map[string]string, view ViewFunc[domain.Post]) *Screen[domain.Post] {
	st := store.New[domain.Post]()
	p := pager.New[domain.Post](remote.NewSource[domain.Post](d.Collection, res, fixed), st, d.pagerOptions(name)...)

	ropts := reconcilerOptions[domain.Post](d, name)
	ropts = append(ropts, reconcile.WithOwnership(reconcile.PostOwnership(d.UserID, d.Admin)))
	if d.Follows != nil {
		ropts = append(ropts, reconcile.WithFollows[domain.Post](d.Follows))
	}
	r := reconcile.New[domain.Post](st, d.Collection, ropts...)

	return New(st, p, r, screenOptions[domain.Post](d, name, view)...)
}

// NewReports lists the reports submitted against posts. Reports are read-only.
func NewReports(d Deps) *Screen[domain.Report] {
	const name = "reports"
	st := store.New[domain.Report]()
	p := pager.New[domain.Report](remote.NewSource[domain.Report](d.Collection, remote.Reports, nil), st, d.pagerOptions(name)...)
	r := reconcile.New[domain.Report](st, d.Collection, reconcilerOptions[domain.Report](d, name)...)

	opts := screenOptions[domain.Report](d, name, domain.FilterReports)
	opts = append(opts, WithoutDelete[domain.Report]())
	return New(st, p, r, opts...)
}

// NewNotifications lists the user's notifications. When d.Gateway is set
// the list is persisted under storage.NotificationsKey.
func NewNotifications(d Deps) *Screen[domain.Notification] {
	const name = "notifications"
	st := store.New[domain.Notification]()
	p := pager.New[domain.Notification](remote.NewSource[domain.Notification](d.Collection, remote.Notifications, nil), st, d.pagerOptions(name)...)

	ropts := reconcilerOptions[domain.Notification](d, name)
	ropts = append(ropts, reconcile.WithReadable(reconcile.NotificationReadable()))
	r := reconcile.New[domain.Notification](st, d.Collection, ropts...)

	opts := screenOptions[domain.Notification](d, name, domain.FilterNotifications)
	opts = append(opts, WithoutDelete[domain.Notification]())
	if d.Gateway != nil {
		opts = append(opts, WithSnapshot(storage.NewSnapshot[domain.Notification](d.Gateway, storage.NotificationsKey)))
	}
	return New(st, p, r, opts...)
}

// Groups groups the visible posts of s.
func Groups(s *Screen[domain.Post], mode domain.GroupByMode) domain.GroupResult {
	return domain.GroupPosts(s.View(), mode)
}

// Unread counts unread notifications among the loaded ones.
func Unread(s *Screen[domain.Notification]) int {
	return domain.CountUnread(s.Store().Items())
}

// FollowSet is a follow set persisted under storage.FollowsKey.
type FollowSet struct {
	*reconcile.Follows
	flusher *flusher
}

// OpenFollows loads the followed threads from gw and persists every later
// change. A nil gateway gives an in-memory set.
func OpenFollows(ctx context.Context, gw storage.Gateway, logger logging.Logger) (*FollowSet, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if gw == nil {
		return &FollowSet{Follows: reconcile.NewFollows()}, nil
	}

	snap := storage.NewSnapshot[int64](gw, storage.FollowsKey)
	ids, err := snap.Load(ctx)
	if err != nil && !errors.Is(err, storage.ErrNoSnapshot) {
		return nil, fmt.Errorf("open follows: %w", err)
	}

	follows := reconcile.NewFollows(ids...)
	fl := newFlusher(func(ctx context.Context) error {
		return snap.Save(ctx, follows.IDs())
	}, logger.With("key", storage.FollowsKey))
	follows.OnChange(func([]int64) { fl.Mark() })
	return &FollowSet{Follows: follows, flusher: fl}, nil
}

// Close writes any pending change.
func (f *FollowSet) Close() {
	if f.flusher == nil {
		return
	}
	f.Follows.OnChange(nil)
	f.flusher.Stop()
}
