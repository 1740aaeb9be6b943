// Package reconcile applies optimistic local mutations to a record store
// and confirms them against the remote collection.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/logging"
	"github.com/cristianoliveira/lostfound/internal/remote"
	"github.com/cristianoliveira/lostfound/internal/store"
)

const (
	// DefaultAttempts is the number of tries for a remote confirmation.
	DefaultAttempts = 3
	// DefaultRetryDelay is the initial backoff between tries.
	DefaultRetryDelay = 500 * time.Millisecond

	defaultLogSize = 64
)

// Readable describes how records of one type carry read state.
type Readable[T domain.Record] struct {
	IsRead   func(T) bool
	MarkRead func(T) T
	Mutation func(mutationID string, id int64) remote.Mutation
}

// NotificationReadable is the read state of notifications.
func NotificationReadable() Readable[domain.Notification] {
	return Readable[domain.Notification]{
		IsRead:   func(n domain.Notification) bool { return n.IsRead },
		MarkRead: domain.Notification.MarkRead,
		Mutation: remote.MarkNotificationRead,
	}
}

// Ownership restricts soft-deletes to records the current user created.
// Admins may delete any record.
type Ownership[T domain.Record] struct {
	UserID  int64
	Admin   bool
	OwnedBy func(record T, userID int64) bool
}

// CanDelete reports whether the current user may delete record.
func (o Ownership[T]) CanDelete(record T) bool {
	return o.Admin || o.OwnedBy(record, o.UserID)
}

// PostOwnership restricts post deletes to userID's posts unless admin is set.
func PostOwnership(userID int64, admin bool) Ownership[domain.Post] {
	return Ownership[domain.Post]{UserID: userID, Admin: admin, OwnedBy: domain.Post.OwnedBy}
}

// Option configures a Reconciler.
type Option[T domain.Record] func(*Reconciler[T])

// WithFollows enables ToggleFollow against the given follow set.
func WithFollows[T domain.Record](f *Follows) Option[T] {
	return func(r *Reconciler[T]) {
		r.follows = f
	}
}

// WithReadable enables MarkRead and MarkAllRead.
func WithReadable[T domain.Record](readable Readable[T]) Option[T] {
	return func(r *Reconciler[T]) {
		r.readable = &readable
	}
}

// WithOwnership restricts SoftDelete to owned records.
func WithOwnership[T domain.Record](o Ownership[T]) Option[T] {
	return func(r *Reconciler[T]) {
		r.ownership = &o
	}
}

// WithDeleteMutation overrides the remote write confirming a soft-delete.
func WithDeleteMutation[T domain.Record](fn func(mutationID string, id int64) remote.Mutation) Option[T] {
	return func(r *Reconciler[T]) {
		if fn != nil {
			r.deleteMutation = fn
		}
	}
}

// WithRetry sets the confirmation attempts and initial backoff.
func WithRetry[T domain.Record](attempts uint, delay time.Duration) Option[T] {
	return func(r *Reconciler[T]) {
		if attempts > 0 {
			r.attempts = attempts
		}
		if delay > 0 {
			r.delay = delay
		}
	}
}

// WithLogger sets the logger.
func WithLogger[T domain.Record](l logging.Logger) Option[T] {
	return func(r *Reconciler[T]) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reconciler applies optimistic mutations to a store and confirms them
// remotely. A failed confirmation is either kept or rolled back depending
// on the mutation kind.
type Reconciler[T domain.Record] struct {
	store          *store.Store[T]
	collection     remote.Collection
	follows        *Follows
	readable       *Readable[T]
	ownership      *Ownership[T]
	deleteMutation func(mutationID string, id int64) remote.Mutation
	log            *Log[T]
	logger         logging.Logger
	attempts       uint
	delay          time.Duration
	now            func() time.Time
}

// New creates a reconciler over st.
func New[T domain.Record](st *store.Store[T], collection remote.Collection, opts ...Option[T]) *Reconciler[T] {
	r := &Reconciler[T]{
		store:          st,
		collection:     collection,
		deleteMutation: remote.DeletePost,
		log:            NewLog[T](defaultLogSize),
		logger:         logging.Nop(),
		attempts:       DefaultAttempts,
		delay:          DefaultRetryDelay,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Log returns the mutation log.
func (r *Reconciler[T]) Log() *Log[T] {
	return r.log
}

// Follows returns the follow set, or nil if follow is not enabled.
func (r *Reconciler[T]) Follows() *Follows {
	return r.follows
}

// MarkRead marks the record read locally and confirms it remotely.
// A failed confirmation is reported but the record stays read.
func (r *Reconciler[T]) MarkRead(ctx context.Context, id int64) error {
	if r.readable == nil {
		return fmt.Errorf("mark read: %w", domain.ErrUnsupported)
	}
	previous, ok := r.store.Get(id)
	if !ok {
		r.logger.Warn("mark read target missing", "id", id)
		return fmt.Errorf("mark read %d: %w", id, domain.ErrNotFound)
	}
	if r.readable.IsRead(previous) {
		return nil
	}
	if err := r.store.ApplyMutation(id, r.readable.MarkRead); err != nil {
		r.logger.Warn("mark read target missing", "id", id)
		return fmt.Errorf("mark read: %w", err)
	}

	p := r.begin(KindMarkRead, id)
	p.Previous = previous
	r.log.Add(p)

	if err := r.confirm(ctx, r.readable.Mutation(p.MutationID, id)); err != nil {
		r.resolve(p, StatusFailed, err)
		return fmt.Errorf("mark read %d: %w", id, err)
	}
	r.resolve(p, StatusConfirmed, nil)
	return nil
}

// MarkAllRead marks every loaded unread record read and confirms each one.
// Failures are collected and returned; nothing is rolled back.
func (r *Reconciler[T]) MarkAllRead(ctx context.Context) (int, error) {
	if r.readable == nil {
		return 0, fmt.Errorf("mark all read: %w", domain.ErrUnsupported)
	}
	changed := r.store.ApplyAll(func(item T) (T, bool) {
		if r.readable.IsRead(item) {
			return item, false
		}
		return r.readable.MarkRead(item), true
	})

	var errs []error
	for _, id := range changed {
		p := r.begin(KindMarkAllRead, id)
		r.log.Add(p)
		if err := r.confirm(ctx, r.readable.Mutation(p.MutationID, id)); err != nil {
			r.resolve(p, StatusFailed, err)
			errs = append(errs, fmt.Errorf("mark read %d: %w", id, err))
			continue
		}
		r.resolve(p, StatusConfirmed, nil)
	}
	if len(errs) > 0 {
		return len(changed), fmt.Errorf("mark all read: %d of %d failed: %w", len(errs), len(changed), errors.Join(errs...))
	}
	return len(changed), nil
}

// ToggleFollow flips the follow flag of threadID and confirms it remotely.
// On failure the flag is restored and the error returned.
func (r *Reconciler[T]) ToggleFollow(ctx context.Context, threadID int64) (bool, error) {
	if r.follows == nil {
		return false, fmt.Errorf("toggle follow: %w", domain.ErrUnsupported)
	}
	if threadID <= 0 {
		return false, fmt.Errorf("toggle follow %d: %w", threadID, domain.ErrInvalidID)
	}

	previous, next := r.follows.Toggle(threadID)
	kind := KindFollow
	if !next {
		kind = KindUnfollow
	}
	p := r.begin(kind, threadID)
	p.PreviousFollow = previous
	r.log.Add(p)

	if err := r.confirm(ctx, remote.SetThreadFollow(p.MutationID, threadID, next)); err != nil {
		if r.follows.CompareAndSet(threadID, next, previous) {
			r.resolve(p, StatusRolledBack, err)
		} else {
			// A later toggle already changed the flag.
			r.resolve(p, StatusSuperseded, err)
		}
		return previous, fmt.Errorf("toggle follow %d: %w", threadID, err)
	}
	r.resolve(p, StatusConfirmed, nil)
	return next, nil
}

// SoftDelete evicts the record immediately and confirms the delete
// remotely. On failure the record is reinserted at its original index,
// unless a first-page refresh replaced the store in the meantime. Once
// confirmed, a copy brought back by a later page is evicted again; a
// first-page refresh that still lists the record is left alone.
func (r *Reconciler[T]) SoftDelete(ctx context.Context, id int64) error {
	if r.ownership != nil {
		record, ok := r.store.Get(id)
		if !ok {
			r.logger.Warn("soft delete target missing", "id", id)
			return fmt.Errorf("soft delete %d: %w", id, domain.ErrNotFound)
		}
		if !r.ownership.CanDelete(record) {
			return fmt.Errorf("soft delete %d: %w", id, domain.ErrNotOwner)
		}
	}

	epoch := r.store.Epoch()
	record, index, err := r.store.Evict(id)
	if err != nil {
		r.logger.Warn("soft delete target missing", "id", id)
		return fmt.Errorf("soft delete: %w", err)
	}

	p := r.begin(KindSoftDelete, id)
	p.Previous = record
	p.Index = index
	p.Epoch = epoch
	r.log.Add(p)

	if err := r.confirm(ctx, r.deleteMutation(p.MutationID, id)); err != nil {
		if r.store.Epoch() != epoch {
			r.logger.Info("refresh superseded failed delete", "id", id, "mutation_id", p.MutationID)
			r.resolve(p, StatusSuperseded, err)
		} else {
			r.store.Restore(index, record)
			r.resolve(p, StatusRolledBack, err)
		}
		return fmt.Errorf("soft delete %d: %w", id, err)
	}
	r.resolve(p, StatusConfirmed, nil)
	if r.store.Epoch() == epoch {
		if _, _, err := r.store.Evict(id); err == nil {
			r.logger.Debug("evicted deleted record merged while pending", "id", id, "mutation_id", p.MutationID)
		}
	}
	return nil
}

func (r *Reconciler[T]) begin(kind Kind, target int64) Pending[T] {
	return Pending[T]{
		MutationID: uuid.NewString(),
		Kind:       kind,
		TargetID:   target,
		Epoch:      r.store.Epoch(),
		Status:     StatusPending,
		CreatedAt:  r.now(),
	}
}

func (r *Reconciler[T]) resolve(p Pending[T], status Status, err error) {
	r.log.Resolve(p.MutationID, status, err)
	if err != nil {
		r.logger.Warn("mutation not confirmed",
			"kind", p.Kind.String(),
			"target", p.TargetID,
			"mutation_id", p.MutationID,
			"status", status.String(),
			"error", err)
		return
	}
	r.logger.Debug("mutation confirmed", "kind", p.Kind.String(), "target", p.TargetID, "mutation_id", p.MutationID)
}

// confirm sends m, retrying transient failures. It returns the last
// error the collection reported.
func (r *Reconciler[T]) confirm(ctx context.Context, m remote.Mutation) error {
	var last error
	err := retry.Do(
		func() error {
			last = r.collection.Mutate(ctx, m)
			return last
		},
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.MaxDelay(8*r.delay),
		retry.MaxJitter(r.delay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Info("retrying mutation", "attempt", n, "path", m.Path, "mutation_id", m.ID, "error", err)
		}),
		retry.RetryIf(domain.IsTransient),
	)
	if err == nil {
		return nil
	}
	if last != nil {
		return last
	}
	return err
}
