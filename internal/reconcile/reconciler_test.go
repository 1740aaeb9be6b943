package reconcile

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/remote"
	"github.com/cristianoliveira/lostfound/internal/store"
)

var errOffline = &domain.NetworkError{Op: "mutate", Err: errors.New("offline")}

func pathIs(path string) interface{} {
	return mock.MatchedBy(func(m remote.Mutation) bool { return m.Path == path })
}

func newPostReconciler(t *testing.T, c remote.Collection, opts ...Option[domain.Post]) (*Reconciler[domain.Post], *store.Store[domain.Post]) {
	t.Helper()
	st := store.New[domain.Post]()
	st.Replace([]domain.Post{
		{ID: 4, Title: "d", OwnerID: 1, ThreadID: 40, Status: domain.StatusOpen},
		{ID: 5, Title: "e", OwnerID: 1, ThreadID: 50, Status: domain.StatusOpen},
		{ID: 6, Title: "f", OwnerID: 2, ThreadID: 60, Status: domain.StatusOpen},
	}, 3)
	opts = append([]Option[domain.Post]{WithRetry[domain.Post](2, time.Millisecond)}, opts...)
	return New[domain.Post](st, c, opts...), st
}

func newNotificationReconciler(t *testing.T, c remote.Collection) (*Reconciler[domain.Notification], *store.Store[domain.Notification]) {
	t.Helper()
	st := store.New[domain.Notification]()
	st.Replace([]domain.Notification{
		{ID: 1, Title: "New Claim"},
		{ID: 2, Title: "Post Returned", IsRead: true},
		{ID: 3, Title: "Claim Rejected"},
	}, domain.UnknownTotal)
	r := New[domain.Notification](st, c,
		WithReadable[domain.Notification](NotificationReadable()),
		WithRetry[domain.Notification](2, time.Millisecond))
	return r, st
}

func TestToggleFollowRollsBackOnFailure(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, pathIs("/threads/follow")).Return(&domain.ServerError{Status: http.StatusBadRequest, Message: "nope"})
	follows := NewFollows()
	r, _ := newPostReconciler(t, c, WithFollows[domain.Post](follows))

	followed, err := r.ToggleFollow(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, followed)
	assert.False(t, follows.IsFollowed(1), "flag is restored to its pre-toggle value")

	entries := r.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, KindFollow, entries[0].Kind)
	assert.Equal(t, StatusRolledBack, entries[0].Status)
	c.AssertNumberOfCalls(t, "Mutate", 1)
}

func TestToggleFollowConfirmed(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, mock.MatchedBy(func(m remote.Mutation) bool {
		return m.Method == http.MethodDelete && m.Query["thread_id"] == "40" && m.ID != ""
	})).Return(nil)
	follows := NewFollows(40)
	r, _ := newPostReconciler(t, c, WithFollows[domain.Post](follows))

	followed, err := r.ToggleFollow(context.Background(), 40)
	require.NoError(t, err)
	assert.False(t, followed)
	assert.False(t, follows.IsFollowed(40))
	assert.Empty(t, r.Log().Outstanding())
	c.AssertExpectations(t)
}

func TestToggleFollowRetriesTransientFailures(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, pathIs("/threads/follow")).Return(errOffline).Once()
	c.On("Mutate", mock.Anything, pathIs("/threads/follow")).Return(nil).Once()
	follows := NewFollows()
	r, _ := newPostReconciler(t, c, WithFollows[domain.Post](follows))

	followed, err := r.ToggleFollow(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, followed)
	assert.True(t, follows.IsFollowed(7))
	c.AssertNumberOfCalls(t, "Mutate", 2)
}

func TestToggleFollowWithoutFollowSet(t *testing.T) {
	r, _ := newPostReconciler(t, new(remote.MockCollection))
	_, err := r.ToggleFollow(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestToggleFollowInvalidThread(t *testing.T) {
	r, _ := newPostReconciler(t, new(remote.MockCollection), WithFollows[domain.Post](NewFollows()))
	_, err := r.ToggleFollow(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestSoftDeleteReinsertsAtOriginalIndex(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, pathIs("/posts")).Return(errOffline)
	r, st := newPostReconciler(t, c)

	err := r.SoftDelete(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.Equal(t, []int64{4, 5, 6}, domain.IDs(st.Items()))

	entries := r.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, StatusRolledBack, entries[0].Status)
	assert.Equal(t, 1, entries[0].Index)
	c.AssertNumberOfCalls(t, "Mutate", 2)
}

func TestSoftDeleteConfirmedEvicts(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, mock.MatchedBy(func(m remote.Mutation) bool {
		return m.Method == http.MethodDelete && m.Query["post_id"] == "5"
	})).Return(nil)
	r, st := newPostReconciler(t, c)

	require.NoError(t, r.SoftDelete(context.Background(), 5))
	assert.Equal(t, []int64{4, 6}, domain.IDs(st.Items()))
	c.AssertExpectations(t)
}

func TestSoftDeleteMissingTarget(t *testing.T) {
	c := new(remote.MockCollection)
	r, _ := newPostReconciler(t, c)

	err := r.SoftDelete(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	c.AssertNotCalled(t, "Mutate", mock.Anything, mock.Anything)
}

func TestSoftDeleteRequiresOwnership(t *testing.T) {
	c := new(remote.MockCollection)
	r, st := newPostReconciler(t, c, WithOwnership(PostOwnership(1, false)))

	err := r.SoftDelete(context.Background(), 6)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Equal(t, 3, st.Len())
	c.AssertNotCalled(t, "Mutate", mock.Anything, mock.Anything)
}

func TestAdminMayDeleteAnyPost(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, pathIs("/posts")).Return(nil)
	r, st := newPostReconciler(t, c, WithOwnership(PostOwnership(1, true)))

	require.NoError(t, r.SoftDelete(context.Background(), 6))
	assert.Equal(t, []int64{4, 5}, domain.IDs(st.Items()))
	c.AssertNumberOfCalls(t, "Mutate", 1)
}

func TestOwnershipCanDelete(t *testing.T) {
	post := domain.Post{ID: 1, OwnerID: 2}
	assert.True(t, PostOwnership(2, false).CanDelete(post))
	assert.False(t, PostOwnership(3, false).CanDelete(post))
	assert.True(t, PostOwnership(3, true).CanDelete(post))
}

func TestConfirmedDeleteEvictsRecordFromLaterPage(t *testing.T) {
	c := new(remote.MockCollection)
	var st *store.Store[domain.Post]
	c.On("Mutate", mock.Anything, pathIs("/posts")).Run(func(args mock.Arguments) {
		// A later page still carries the record while the delete is in flight.
		st.Append([]domain.Post{{ID: 5, Title: "e", Status: domain.StatusOpen}, {ID: 7, Title: "g", Status: domain.StatusOpen}})
	}).Return(nil)
	r, s := newPostReconciler(t, c)
	st = s

	require.NoError(t, r.SoftDelete(context.Background(), 5))
	assert.Equal(t, []int64{4, 6, 7}, domain.IDs(st.Items()))
	assert.Equal(t, StatusConfirmed, r.Log().Entries()[0].Status)
}

func TestSoftDeleteAfterRefreshDoesNotReinsert(t *testing.T) {
	c := new(remote.MockCollection)
	var st *store.Store[domain.Post]
	c.On("Mutate", mock.Anything, pathIs("/posts")).Run(func(args mock.Arguments) {
		// A first-page refresh lands while the delete is in flight.
		st.Replace([]domain.Post{{ID: 4, Title: "d", Status: domain.StatusOpen}, {ID: 6, Title: "f", Status: domain.StatusOpen}}, 2)
	}).Return(&domain.ServerError{Status: http.StatusConflict})
	r, s := newPostReconciler(t, c)
	st = s

	err := r.SoftDelete(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, []int64{4, 6}, domain.IDs(st.Items()))
	assert.Equal(t, StatusSuperseded, r.Log().Entries()[0].Status)
}

func TestRefreshWinsOverPendingDelete(t *testing.T) {
	c := new(remote.MockCollection)
	var st *store.Store[domain.Post]
	c.On("Mutate", mock.Anything, pathIs("/posts")).Run(func(args mock.Arguments) {
		// The server still lists the record while the delete is in flight.
		st.Replace([]domain.Post{{ID: 5, Title: "e", Status: domain.StatusOpen}}, 1)
	}).Return(nil)
	r, s := newPostReconciler(t, c)
	st = s

	require.NoError(t, r.SoftDelete(context.Background(), 5))
	assert.Equal(t, []int64{5}, domain.IDs(st.Items()))
}

func TestMarkReadKeepsLocalStateOnFailure(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, mock.MatchedBy(func(m remote.Mutation) bool {
		return m.Method == http.MethodPatch && m.Query["noti_id"] == "1"
	})).Return(&domain.ServerError{Status: http.StatusInternalServerError})
	r, st := newNotificationReconciler(t, c)

	err := r.MarkRead(context.Background(), 1)
	require.Error(t, err)
	n, _ := st.Get(1)
	assert.True(t, n.IsRead)
	assert.Equal(t, StatusFailed, r.Log().Entries()[0].Status)
	c.AssertNumberOfCalls(t, "Mutate", 2)
}

func TestMarkReadAlreadyRead(t *testing.T) {
	c := new(remote.MockCollection)
	r, _ := newNotificationReconciler(t, c)

	require.NoError(t, r.MarkRead(context.Background(), 2))
	c.AssertNotCalled(t, "Mutate", mock.Anything, mock.Anything)
}

func TestMarkReadNotFound(t *testing.T) {
	r, _ := newNotificationReconciler(t, new(remote.MockCollection))
	assert.ErrorIs(t, r.MarkRead(context.Background(), 42), domain.ErrNotFound)
}

func TestMarkReadUnsupportedForPosts(t *testing.T) {
	r, _ := newPostReconciler(t, new(remote.MockCollection))
	assert.ErrorIs(t, r.MarkRead(context.Background(), 4), domain.ErrUnsupported)
}

func TestMarkAllRead(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, mock.MatchedBy(func(m remote.Mutation) bool { return m.Query["noti_id"] == "1" })).Return(nil)
	c.On("Mutate", mock.Anything, mock.MatchedBy(func(m remote.Mutation) bool { return m.Query["noti_id"] == "3" })).
		Return(&domain.ServerError{Status: http.StatusForbidden, Message: "denied"})
	r, st := newNotificationReconciler(t, c)

	n, err := r.MarkAllRead(context.Background())
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 failed")
	assert.Equal(t, 0, domain.CountUnread(st.Items()), "failures are not rolled back")
	c.AssertNumberOfCalls(t, "Mutate", 2)
}

func TestMutationIDsAreUnique(t *testing.T) {
	var ids []string
	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ids = append(ids, args.Get(1).(remote.Mutation).ID)
	}).Return(nil)
	r, _ := newNotificationReconciler(t, c)

	_, err := r.MarkAllRead(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Len(t, ids[0], 36)
}

func TestLogPrunesResolvedEntries(t *testing.T) {
	l := NewLog[domain.Post](1)
	l.Add(Pending[domain.Post]{MutationID: "a"})
	l.Add(Pending[domain.Post]{MutationID: "b"})
	l.Add(Pending[domain.Post]{MutationID: "c"})
	l.Resolve("a", StatusConfirmed, nil)
	l.Resolve("b", StatusConfirmed, nil)

	_, ok := l.Get("a")
	assert.False(t, ok)
	_, ok = l.Get("b")
	assert.True(t, ok)
	outstanding := l.Outstanding()
	require.Len(t, outstanding, 1)
	assert.Equal(t, "c", outstanding[0].MutationID)
}

func TestFollowsOnChange(t *testing.T) {
	f := NewFollows(3)
	var got [][]int64
	f.OnChange(func(ids []int64) { got = append(got, ids) })

	f.Toggle(1)
	f.Set(3, true)
	assert.False(t, f.CompareAndSet(1, false, true))
	assert.True(t, f.CompareAndSet(1, true, false))

	assert.Equal(t, [][]int64{{1, 3}, {3}}, got)
	assert.Equal(t, []int64{3}, f.IDs())
}
