package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/pager"
	"github.com/cristianoliveira/lostfound/internal/remote"
	"github.com/cristianoliveira/lostfound/internal/search"
	"github.com/cristianoliveira/lostfound/internal/storage"
)

const waitFor = 2 * time.Second

func post(id int64, title, building, floor string, owner, thread int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%d,"title":%q,"building":%q,"post_floor":%q,"post_status":"OPEN","usr_id":%d,"thread_id":%d}`,
		id, title, building, floor, owner, thread))
}

func archivedPost(id int64, title string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%d,"title":%q,"building":"Library","post_floor":"1","post_status":"ARCHIVED","usr_id":8}`, id, title))
}

func notification(id int64, title string, read bool) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"id":%d,"title":%q,"noti_message":"m","is_read":%t}`, id, title, read))
}

func pageIs(n int) interface{} {
	return mock.MatchedBy(func(p remote.Params) bool { return p.Page == n })
}

func buildingIs(page int, building string) interface{} {
	return mock.MatchedBy(func(p remote.Params) bool {
		return p.Page == page && p.Filters["building"] == building
	})
}

func await(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o, ok := <-ch:
		require.True(t, ok, "outcome channel closed without a value")
		return o
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

func testDeps(c remote.Collection) Deps {
	return Deps{
		Collection:    c,
		UserID:        7,
		PageSize:      2,
		Timeout:       time.Second,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	}
}

func TestHomeLoadsPagesUntilExhausted(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 3, Items: []json.RawMessage{post(1, "Wallet", "Library", "1", 7, 10), post(2, "Keys", "Gym", "2", 8, 20)}}, nil).Once()
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(2)).
		Return(remote.RawPage{Page: 2, Total: 3, Items: []json.RawMessage{post(3, "Umbrella", "Library", "3", 8, 30)}}, nil).Once()

	s := NewHome(testDeps(c))
	defer s.Close()

	o := await(t, s.LoadFirst(domain.Criteria{}))
	require.NoError(t, o.Err)
	assert.Equal(t, OpLoadFirst, o.Op)
	assert.Equal(t, pager.Loaded, o.Result)

	state := s.State()
	assert.Len(t, state.Items, 2)
	assert.Equal(t, 3, state.Total)
	assert.True(t, state.HasMore)
	assert.False(t, state.IsLoadingFirst)

	o = await(t, s.LoadMore())
	require.NoError(t, o.Err)
	assert.Equal(t, pager.Loaded, o.Result)
	assert.Equal(t, []int64{1, 2, 3}, domain.IDs(s.View()))
	assert.False(t, s.State().HasMore)

	o = await(t, s.LoadMore())
	assert.Equal(t, pager.NoMoreData, o.Result)
	c.AssertNumberOfCalls(t, "FetchPage", 2)
}

func TestSetFilterRefetchesOnlyForServerCriteria(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, buildingIs(1, "Library")).
		Return(remote.RawPage{Page: 1, Total: 2, Items: []json.RawMessage{post(1, "Wallet", "Library", "1", 7, 10), post(2, "Badge", "Library", "2", 8, 20)}}, nil)
	c.On("FetchPage", mock.Anything, remote.Dashboard, buildingIs(1, "Gym")).
		Return(remote.RawPage{Page: 1, Total: 1, Items: []json.RawMessage{post(5, "Towel", "Gym", "1", 8, 50)}}, nil)

	s := NewHome(testDeps(c))
	defer s.Close()

	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{Building: "Library"})).Err)

	o := await(t, s.SetFilter(domain.Criteria{Building: "Library", Floor: "2"}))
	require.NoError(t, o.Err)
	assert.False(t, o.Refetched)
	assert.Equal(t, []int64{2}, domain.IDs(s.View()))
	assert.Equal(t, 2, s.State().Loaded, "client-side filters leave the store alone")
	c.AssertNumberOfCalls(t, "FetchPage", 1)

	o = await(t, s.SetFilter(domain.Criteria{Building: "Gym"}))
	require.NoError(t, o.Err)
	assert.True(t, o.Refetched)
	assert.Equal(t, []int64{5}, domain.IDs(s.View()))
	c.AssertNumberOfCalls(t, "FetchPage", 2)
}

func TestMineAcceptsUnpaginatedArray(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.MyPosts, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: domain.UnknownTotal, Items: []json.RawMessage{
			post(1, "Wallet", "Library", "1", 7, 10),
			post(2, "Keys", "Gym", "2", 7, 20),
			post(3, "Umbrella", "Library", "3", 7, 30),
		}}, nil)

	s := NewMine(testDeps(c))
	defer s.Close()

	o := await(t, s.LoadFirst(domain.Criteria{}))
	require.NoError(t, o.Err)
	assert.Equal(t, pager.Loaded, o.Result)
	assert.Equal(t, []int64{1, 2, 3}, domain.IDs(s.View()))
	assert.False(t, s.State().HasMore)

	o = await(t, s.LoadMore())
	assert.Equal(t, pager.NoMoreData, o.Result)
	c.AssertNumberOfCalls(t, "FetchPage", 1)
}

func TestArchivedIgnoresCallerStatus(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 2, Items: []json.RawMessage{
			archivedPost(1, "Old scarf"),
			post(2, "Keys", "Library", "1", 8, 20),
		}}, nil)

	s := NewArchived(testDeps(c))
	defer s.Close()

	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{Status: "OPEN"})).Err)

	params := c.Calls[0].Arguments.Get(2).(remote.Params)
	assert.Equal(t, "ARCHIVED", params.Filters["status"])
	assert.Equal(t, []int64{1}, domain.IDs(s.View()), "only archived posts are shown")
	assert.Equal(t, []int64{1}, domain.IDs(s.ViewFor(domain.Criteria{Status: "OPEN"})))
}

func TestSearchQueryRefinesView(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 2, Items: []json.RawMessage{post(1, "Black wallet", "Library", "1", 7, 10), post(2, "Keys", "Library", "1", 8, 20)}}, nil)

	d := testDeps(c)
	d.Search = search.NewSubstringProvider()
	s := NewHome(d)
	defer s.Close()

	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{})).Err)
	await(t, s.SetFilter(domain.Criteria{Query: "WALLET"}))

	assert.Equal(t, []int64{1}, domain.IDs(s.View()))
	c.AssertNumberOfCalls(t, "FetchPage", 1)
}

func TestSearchUsesConfiguredProvider(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 2, Items: []json.RawMessage{post(1, "Wallet", "Library", "1", 7, 10), post(2, "Keys", "Library", "1", 8, 20)}}, nil)

	p := new(search.MockProvider)
	p.On("Match", mock.MatchedBy(func(doc domain.Post) bool { return doc.ID == 2 }), "anything").Return(true)
	p.On("Match", mock.Anything, "anything").Return(false)

	d := testDeps(c)
	d.Search = p
	s := NewHome(d)
	defer s.Close()

	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{})).Err)
	assert.Equal(t, []int64{1, 2}, domain.IDs(s.View()), "no query, no provider calls")
	p.AssertNotCalled(t, "Match", mock.Anything, mock.Anything)

	assert.Equal(t, []int64{2}, domain.IDs(s.ViewFor(domain.Criteria{Query: "anything"})))
	p.AssertNumberOfCalls(t, "Match", 2)
}

func TestFetchErrorIsReportedInStateAndRetried(t *testing.T) {
	c := new(remote.MockCollection)
	offline := &domain.NetworkError{Op: "fetch page", Err: errors.New("offline")}
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).Return(remote.RawPage{}, offline).Once()
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 1, Items: []json.RawMessage{post(1, "Wallet", "Library", "1", 7, 10)}}, nil).Once()

	s := NewHome(testDeps(c))
	defer s.Close()

	o := await(t, s.LoadFirst(domain.Criteria{}))
	assert.Equal(t, pager.Failed, o.Result)
	require.Error(t, o.Err)

	state := s.State()
	var netErr *domain.NetworkError
	require.ErrorAs(t, state.Err, &netErr)
	assert.Empty(t, state.Items)

	o = await(t, s.Retry())
	require.NoError(t, o.Err)
	assert.Equal(t, pager.Loaded, o.Result)
	assert.NoError(t, s.State().Err)
	assert.Len(t, s.View(), 1)
}

func TestSoftDeleteOnlyOwnPosts(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.MyPosts, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 2, Items: []json.RawMessage{post(1, "Wallet", "Library", "1", 7, 10), post(2, "Keys", "Library", "1", 8, 20)}}, nil)
	c.On("Mutate", mock.Anything, mock.Anything).Return(nil)

	s := NewMine(testDeps(c))
	defer s.Close()
	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{})).Err)

	o := await(t, s.SoftDelete(2))
	assert.ErrorIs(t, o.Err, domain.ErrNotOwner)

	o = await(t, s.SoftDelete(1))
	require.NoError(t, o.Err)
	assert.Equal(t, []int64{2}, domain.IDs(s.View()))
	c.AssertNumberOfCalls(t, "Mutate", 1)
}

func TestAdminDeletesOthersPosts(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 1, Items: []json.RawMessage{post(5, "Scarf", "Gym", "1", 99, 50)}}, nil)
	c.On("Mutate", mock.Anything, mock.Anything).Return(nil)

	d := testDeps(c)
	d.Admin = true
	s := NewHome(d)
	defer s.Close()
	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{})).Err)

	require.NoError(t, await(t, s.SoftDelete(5)).Err)
	assert.Empty(t, s.View())
	c.AssertNumberOfCalls(t, "Mutate", 1)
}

func TestReportsAreReadOnly(t *testing.T) {
	s := NewReports(testDeps(new(remote.MockCollection)))
	defer s.Close()

	assert.ErrorIs(t, await(t, s.SoftDelete(1)).Err, domain.ErrUnsupported)
	assert.ErrorIs(t, await(t, s.MarkRead(1)).Err, domain.ErrUnsupported)
	assert.ErrorIs(t, await(t, s.ToggleFollow(1)).Err, domain.ErrUnsupported)
}

func TestToggleFollowPersistsAcrossSessions(t *testing.T) {
	gw, err := storage.NewFileGateway(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	c := new(remote.MockCollection)
	c.On("Mutate", mock.Anything, mock.Anything).Return(nil)

	follows, err := OpenFollows(ctx, gw, nil)
	require.NoError(t, err)

	d := testDeps(c)
	d.Follows = follows.Follows
	s := NewHome(d)

	o := await(t, s.ToggleFollow(40))
	require.NoError(t, o.Err)
	assert.True(t, o.Followed)
	s.Close()
	follows.Close()

	reopened, err := OpenFollows(ctx, gw, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, reopened.IsFollowed(40))
}

func TestNotificationsPersistAndHydrate(t *testing.T) {
	gw, err := storage.NewFileGateway(t.TempDir())
	require.NoError(t, err)

	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Notifications, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: domain.UnknownTotal, Items: []json.RawMessage{notification(1, "New Claim", false), notification(2, "Returned", false)}}, nil)
	c.On("Mutate", mock.Anything, mock.Anything).Return(nil)

	d := testDeps(c)
	d.Gateway = gw
	s := NewNotifications(d)
	require.NoError(t, s.Hydrate(context.Background()), "missing snapshot is not an error")
	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{})).Err)
	require.NoError(t, await(t, s.MarkRead(1)).Err)
	assert.Equal(t, 1, Unread(s))
	s.Close()

	restored := NewNotifications(d)
	defer restored.Close()
	require.NoError(t, restored.Hydrate(context.Background()))

	state := restored.State()
	assert.True(t, state.Seeded)
	require.Len(t, state.Items, 2)
	assert.True(t, state.Items[0].IsRead)
	assert.False(t, state.Items[1].IsRead)
}

func TestMarkAllReadCountsChangedNotifications(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Notifications, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 2, Items: []json.RawMessage{notification(1, "a", false), notification(2, "b", true)}}, nil)
	c.On("Mutate", mock.Anything, mock.Anything).Return(nil)

	s := NewNotifications(testDeps(c))
	defer s.Close()
	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{})).Err)

	o := await(t, s.MarkAllRead())
	require.NoError(t, o.Err)
	assert.Equal(t, 1, o.Count)
	assert.Equal(t, 0, Unread(s))

	await(t, s.SetFilter(domain.Criteria{Read: domain.ReadFilterUnread}))
	assert.Empty(t, s.View())
}

func TestCloseDiscardsInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(remote.RawPage{}, context.Canceled)

	s := NewHome(testDeps(c))
	ch := s.LoadFirst(domain.Criteria{})
	<-started
	assert.True(t, s.State().IsLoadingFirst)

	s.Close()
	o := await(t, ch)
	assert.Equal(t, pager.Discarded, o.Result)
	assert.Empty(t, s.State().Items)

	assert.ErrorIs(t, await(t, s.LoadMore()).Err, domain.ErrClosed)
}

func TestUpdatesSignalAfterLoad(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 1, Items: []json.RawMessage{post(1, "Wallet", "Library", "1", 7, 10)}}, nil)

	s := NewHome(testDeps(c))
	defer s.Close()

	await(t, s.LoadFirst(domain.Criteria{}))
	select {
	case <-s.Updates():
	case <-time.After(waitFor):
		t.Fatal("no update signal")
	}
}

func TestGroupsByBuilding(t *testing.T) {
	c := new(remote.MockCollection)
	c.On("FetchPage", mock.Anything, remote.Dashboard, pageIs(1)).
		Return(remote.RawPage{Page: 1, Total: 2, Items: []json.RawMessage{post(1, "Wallet", "Library", "1", 7, 10), post(2, "Towel", "Gym", "1", 8, 20)}}, nil)

	s := NewHome(testDeps(c))
	defer s.Close()
	require.NoError(t, await(t, s.LoadFirst(domain.Criteria{})).Err)

	groups := Groups(s, domain.GroupByBuilding)
	assert.Len(t, groups.Groups, 2)
}
