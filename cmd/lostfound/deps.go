package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cristianoliveira/lostfound/internal/colors"
	"github.com/cristianoliveira/lostfound/internal/config"
	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/feed"
	"github.com/cristianoliveira/lostfound/internal/logging"
	"github.com/cristianoliveira/lostfound/internal/remote"
	"github.com/cristianoliveira/lostfound/internal/search"
	"github.com/cristianoliveira/lostfound/internal/storage"
	"github.com/cristianoliveira/lostfound/internal/version"
)

// maxLookupPages bounds how far a command pages to find a record by ID.
const maxLookupPages = 20

// session holds the collaborators of one command run.
type session struct {
	deps    feed.Deps
	gateway storage.Gateway
	follows *feed.FollowSet
}

// openSession builds the remote client, snapshot gateway and follow set
// from the loaded configuration.
func openSession(ctx context.Context) (*session, error) {
	logger := logging.GetGlobal()

	client, err := remote.NewHTTPClient(config.Get("api_base_url", "http://localhost:8000"),
		remote.WithToken(config.Get("api_token", "")),
		remote.WithTimeout(config.GetSeconds("network_timeout_seconds", 15*time.Second)),
		remote.WithLogger(logger.With("component", "remote")))
	if err != nil {
		return nil, err
	}

	provider, err := search.NewProvider(config.Get("search_mode", search.ModeSubstring))
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseInt(config.Get("user_id", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id: %w", err)
	}

	var gateway storage.Gateway
	if gw, err := storage.NewFromConfig(); err != nil {
		colors.Warning("snapshots disabled:", err.Error())
	} else {
		gateway = gw
	}

	follows, err := feed.OpenFollows(ctx, gateway, logger)
	if err != nil {
		colors.Warning("followed threads not restored:", err.Error())
		follows, _ = feed.OpenFollows(ctx, nil, logger)
	}

	return &session{
		gateway: gateway,
		follows: follows,
		deps: feed.Deps{
			Collection:    client,
			Gateway:       gateway,
			Follows:       follows.Follows,
			UserID:        userID,
			Admin:         config.Get("user_role", "user") == "admin",
			PageSize:      config.GetInt("page_size", 10),
			Timeout:       config.GetSeconds("network_timeout_seconds", 15*time.Second),
			RetryAttempts: uint(config.GetInt("mutation_retry_attempts", 3)),
			Search:        provider,
			Logger:        logger,
		},
	}, nil
}

// Close flushes the follow set and releases the gateway.
func (s *session) Close() {
	s.follows.Close()
	if s.gateway != nil {
		if err := s.gateway.Close(); err != nil {
			colors.Debug("close snapshot storage:", err.Error())
		}
	}
}

// listing is a loaded list ready for printing.
type listing[T feed.Item] struct {
	Items   []T
	Loaded  int
	Total   int
	HasMore bool
}

// postList selects which post screen a command reads.
type postList int

const (
	homePosts postList = iota
	archivedPosts
	myPosts
)

// service implements the command clients over a fresh session per call.
type service struct {
	open func(ctx context.Context) (*session, error)
}

func newService() *service {
	return &service{open: openSession}
}

func (s *service) withSession(ctx context.Context, fn func(*session) error) error {
	sess, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}

func (s *service) postScreen(sess *session, list postList) *feed.Screen[domain.Post] {
	switch list {
	case archivedPosts:
		return feed.NewArchived(sess.deps)
	case myPosts:
		return feed.NewMine(sess.deps)
	default:
		return feed.NewHome(sess.deps)
	}
}

// Posts loads up to pages pages of the selected post list.
func (s *service) Posts(ctx context.Context, list postList, c domain.Criteria, pages int) (listing[domain.Post], error) {
	var out listing[domain.Post]
	err := s.withSession(ctx, func(sess *session) error {
		screen := s.postScreen(sess, list)
		defer screen.Close()
		var err error
		out, err = collect(ctx, screen, c, pages)
		return err
	})
	return out, err
}

// Notifications loads notifications. With cached set it only reads the
// persisted snapshot.
func (s *service) Notifications(ctx context.Context, c domain.Criteria, pages int, cached bool) (listing[domain.Notification], error) {
	var out listing[domain.Notification]
	err := s.withSession(ctx, func(sess *session) error {
		screen := feed.NewNotifications(sess.deps)
		defer screen.Close()
		if err := screen.Hydrate(ctx); err != nil {
			colors.Warning("cached notifications unavailable:", err.Error())
		}
		if cached {
			st := screen.State()
			out = listing[domain.Notification]{Items: screen.ViewFor(c), Loaded: st.Loaded, Total: st.Total}
			return nil
		}
		var err error
		out, err = collect(ctx, screen, c, pages)
		return err
	})
	return out, err
}

// Reports loads the reports list.
func (s *service) Reports(ctx context.Context, c domain.Criteria, pages int) (listing[domain.Report], error) {
	var out listing[domain.Report]
	err := s.withSession(ctx, func(sess *session) error {
		screen := feed.NewReports(sess.deps)
		defer screen.Close()
		var err error
		out, err = collect(ctx, screen, c, pages)
		return err
	})
	return out, err
}

// MarkNotificationRead marks one notification read.
func (s *service) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.withSession(ctx, func(sess *session) error {
		screen := feed.NewNotifications(sess.deps)
		defer screen.Close()
		if err := locate(ctx, screen, id); err != nil {
			return err
		}
		_, err := await(ctx, screen.MarkRead(id))
		return err
	})
}

// MarkAllNotificationsRead marks every notification read.
func (s *service) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var count int
	err := s.withSession(ctx, func(sess *session) error {
		screen := feed.NewNotifications(sess.deps)
		defer screen.Close()
		if _, err := collect(ctx, screen, domain.Criteria{}, maxLookupPages); err != nil {
			return err
		}
		o, err := await(ctx, screen.MarkAllRead())
		count = o.Count
		return err
	})
	return count, err
}

// ToggleFollow flips the follow flag of a thread.
func (s *service) ToggleFollow(ctx context.Context, threadID int64) (bool, error) {
	var followed bool
	err := s.withSession(ctx, func(sess *session) error {
		screen := feed.NewHome(sess.deps)
		defer screen.Close()
		o, err := await(ctx, screen.ToggleFollow(threadID))
		followed = o.Followed
		return err
	})
	return followed, err
}

// DeletePost soft-deletes one of the user's posts.
func (s *service) DeletePost(ctx context.Context, postID int64) error {
	return s.withSession(ctx, func(sess *session) error {
		screen := feed.NewMine(sess.deps)
		defer screen.Close()
		if err := locate(ctx, screen, postID); err != nil {
			return err
		}
		_, err := await(ctx, screen.SoftDelete(postID))
		return err
	})
}

// Version returns the build version.
func (s *service) Version() string {
	return version.Long()
}

// await waits for an outcome and returns it with its error.
func await(ctx context.Context, ch <-chan feed.Outcome) (feed.Outcome, error) {
	select {
	case o := <-ch:
		return o, o.Err
	case <-ctx.Done():
		return feed.Outcome{}, ctx.Err()
	}
}

// collect loads the first page for c, then up to pages-1 more.
func collect[T feed.Item](ctx context.Context, screen *feed.Screen[T], c domain.Criteria, pages int) (listing[T], error) {
	if _, err := await(ctx, screen.LoadFirst(c)); err != nil {
		return listing[T]{}, err
	}
	for i := 1; i < pages && screen.State().HasMore; i++ {
		if _, err := await(ctx, screen.LoadMore()); err != nil {
			return listing[T]{}, err
		}
	}
	return snapshotListing(screen.State()), nil
}

// locate pages through the screen until id is loaded.
func locate[T feed.Item](ctx context.Context, screen *feed.Screen[T], id int64) error {
	if _, err := await(ctx, screen.LoadFirst(domain.Criteria{})); err != nil {
		return err
	}
	for pages := 1; ; pages++ {
		if _, ok := screen.Store().Get(id); ok {
			return nil
		}
		if pages >= maxLookupPages || !screen.State().HasMore {
			return fmt.Errorf("%s %d: %w", screen.Name(), id, domain.ErrNotFound)
		}
		if _, err := await(ctx, screen.LoadMore()); err != nil {
			return err
		}
	}
}

func snapshotListing[T feed.Item](st feed.State[T]) listing[T] {
	return listing[T]{Items: st.Items, Loaded: st.Loaded, Total: st.Total, HasMore: st.HasMore}
}

// parseID parses a positive record ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidID, arg)
	}
	return id, nil
}

var client = newService()
