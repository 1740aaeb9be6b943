package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

func post(id int64, title string) domain.Post {
	return domain.Post{ID: id, Title: title, Status: domain.StatusOpen}
}

func titles(posts []domain.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestMergeScenario(t *testing.T) {
	var store []domain.Post

	store = Merge(store, []domain.Post{post(1, "a"), post(2, "b")}, ReplaceFirstPage)
	assert.Equal(t, []int64{1, 2}, domain.IDs(store))

	store = Merge(store, []domain.Post{post(2, "updated"), post(3, "c")}, Append)
	assert.Equal(t, []int64{1, 2, 3}, domain.IDs(store))
	assert.Equal(t, []string{"a", "updated", "c"}, titles(store))
}

func TestMergeReplaceDiscardsExisting(t *testing.T) {
	existing := []domain.Post{post(1, "a"), post(2, "b")}
	result := Merge(existing, []domain.Post{post(3, "c")}, ReplaceFirstPage)
	assert.Equal(t, []int64{3}, domain.IDs(result))
}

func TestMergeDeduplicatesIncomingAgainstItself(t *testing.T) {
	incoming := []domain.Post{post(1, "first"), post(2, "b"), post(1, "last")}

	t.Run("replace", func(t *testing.T) {
		result := Merge(nil, incoming, ReplaceFirstPage)
		assert.Equal(t, []int64{1, 2}, domain.IDs(result))
		assert.Equal(t, "last", result[0].Title)
	})

	t.Run("append", func(t *testing.T) {
		result := Merge([]domain.Post{post(9, "z")}, incoming, Append)
		assert.Equal(t, []int64{9, 1, 2}, domain.IDs(result))
		assert.Equal(t, "last", result[1].Title)
	})
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	existing := []domain.Post{post(1, "a"), post(2, "b")}
	incoming := []domain.Post{post(2, "updated")}

	_ = Merge(existing, incoming, Append)
	assert.Equal(t, []string{"a", "b"}, titles(existing))
	assert.Equal(t, []string{"updated"}, titles(incoming))
}

func TestMergeOrderStability(t *testing.T) {
	page := []domain.Post{post(5, "e"), post(3, "c"), post(8, "h")}
	first := Merge(nil, page, ReplaceFirstPage)
	second := Merge(first, page, ReplaceFirstPage)
	assert.Equal(t, domain.IDs(first), domain.IDs(second))
}

func TestMergeAppendIdempotence(t *testing.T) {
	existing := []domain.Post{post(1, "a"), post(2, "b"), post(3, "c")}
	again := []domain.Post{post(3, "c2"), post(1, "a2")}

	result := Merge(existing, again, Append)
	assert.Equal(t, []int64{1, 2, 3}, domain.IDs(result))
	assert.Equal(t, []string{"a2", "b", "c2"}, titles(result))
}

func TestMergeDedupInvariant(t *testing.T) {
	pages := [][]domain.Post{
		{post(1, "a"), post(2, "b"), post(3, "c")},
		{post(3, "c"), post(4, "d"), post(1, "a")},
		{post(4, "d"), post(4, "d"), post(5, "e")},
		{post(2, "b"), post(6, "f")},
	}

	var result []domain.Post
	for i, page := range pages {
		mode := Append
		if i == 0 {
			mode = ReplaceFirstPage
		}
		result = Merge(result, page, mode)
	}

	seen := make(map[int64]int)
	for _, p := range result {
		seen[p.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %d appears %d times", id, count)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, domain.IDs(result))
}

func TestMergeModeString(t *testing.T) {
	assert.Equal(t, "replace_first_page", ReplaceFirstPage.String())
	assert.Equal(t, "append", Append.String())
	assert.Equal(t, "unknown", MergeMode(42).String())
}

func TestStoreReplaceAndAppend(t *testing.T) {
	s := New[domain.Post]()
	assert.Equal(t, domain.UnknownTotal, s.Total())
	assert.Equal(t, uint64(0), s.Epoch())

	s.Replace([]domain.Post{post(1, "a"), post(2, "b")}, 10)
	assert.Equal(t, 10, s.Total())
	assert.Equal(t, uint64(1), s.Epoch())

	s.Append([]domain.Post{post(3, "c")})
	assert.Equal(t, []int64{1, 2, 3}, domain.IDs(s.Items()))
	assert.Equal(t, 10, s.Total(), "later pages never change the total")
	assert.Equal(t, uint64(1), s.Epoch())

	s.Replace([]domain.Post{post(2, "b")}, 4)
	assert.Equal(t, []int64{2}, domain.IDs(s.Items()))
	assert.Equal(t, 4, s.Total())
	assert.Equal(t, uint64(2), s.Epoch())
}

func TestStoreApplyMutation(t *testing.T) {
	s := New[domain.Notification]()
	s.Replace([]domain.Notification{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}, domain.UnknownTotal)

	t.Run("replaces in place", func(t *testing.T) {
		err := s.ApplyMutation(2, domain.Notification.MarkRead)
		require.NoError(t, err)
		n, ok := s.Get(2)
		require.True(t, ok)
		assert.True(t, n.IsRead)
		assert.Equal(t, []int64{1, 2}, domain.IDs(s.Items()))
	})

	t.Run("missing target", func(t *testing.T) {
		err := s.ApplyMutation(42, domain.Notification.MarkRead)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Equal(t, 2, s.Len())
	})

	t.Run("id change is rejected", func(t *testing.T) {
		err := s.ApplyMutation(1, func(n domain.Notification) domain.Notification {
			n.ID = 7
			return n
		})
		assert.Error(t, err)
		_, ok := s.Get(1)
		assert.True(t, ok)
	})
}

func TestStoreApplyAll(t *testing.T) {
	s := New[domain.Notification]()
	s.Replace([]domain.Notification{{ID: 1, Title: "a", IsRead: true}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}}, domain.UnknownTotal)

	changed := s.ApplyAll(func(n domain.Notification) (domain.Notification, bool) {
		if n.IsRead {
			return n, false
		}
		return n.MarkRead(), true
	})

	assert.Equal(t, []int64{2, 3}, changed)
	assert.Equal(t, 0, domain.CountUnread(s.Items()))
}

func TestStoreEvictAndRestore(t *testing.T) {
	s := New[domain.Post]()
	s.Replace([]domain.Post{post(4, "d"), post(5, "e"), post(6, "f")}, 3)

	removed, index, err := s.Evict(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed.ID)
	assert.Equal(t, 1, index)
	assert.Equal(t, []int64{4, 6}, domain.IDs(s.Items()))

	_, _, err = s.Evict(5)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.True(t, s.Restore(index, removed))
	assert.Equal(t, []int64{4, 5, 6}, domain.IDs(s.Items()))

	assert.False(t, s.Restore(0, removed), "restore is a no-op when the id is present")
	assert.Equal(t, []int64{4, 5, 6}, domain.IDs(s.Items()))
}

func TestStoreRestoreClampsIndex(t *testing.T) {
	s := New[domain.Post]()
	s.Replace([]domain.Post{post(1, "a")}, 1)

	assert.True(t, s.Restore(10, post(2, "b")))
	assert.True(t, s.Restore(-3, post(3, "c")))
	assert.Equal(t, []int64{3, 1, 2}, domain.IDs(s.Items()))
}

func TestStoreEvictDoesNotAliasSnapshots(t *testing.T) {
	s := New[domain.Post]()
	s.Replace([]domain.Post{post(1, "a"), post(2, "b"), post(3, "c")}, 3)
	before := s.Items()

	_, _, err := s.Evict(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, domain.IDs(before))
}

func TestStoreSeed(t *testing.T) {
	s := New[domain.Notification]()
	s.Seed([]domain.Notification{{ID: 1, Title: "cached"}, {ID: 2, Title: "cached"}})
	assert.True(t, s.Seeded())
	assert.Equal(t, uint64(0), s.Epoch())
	assert.Equal(t, domain.UnknownTotal, s.Total())

	s.Replace([]domain.Notification{{ID: 3, Title: "fresh"}}, domain.UnknownTotal)
	assert.False(t, s.Seeded())
	assert.Equal(t, []int64{3}, domain.IDs(s.Items()))
}

func TestStoreOnChange(t *testing.T) {
	s := New[domain.Post]()
	var calls [][]int64
	remove := s.OnChange(func(items []domain.Post) {
		calls = append(calls, domain.IDs(items))
	})

	s.Replace([]domain.Post{post(1, "a")}, 1)
	s.Append([]domain.Post{post(2, "b")})
	_ = s.ApplyMutation(42, func(p domain.Post) domain.Post { return p })
	remove()
	s.Append([]domain.Post{post(3, "c")})

	assert.Equal(t, [][]int64{{1}, {1, 2}}, calls)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := New[domain.Post]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := int64(worker*100 + j%10 + 1)
				s.Append([]domain.Post{post(id, fmt.Sprintf("w%d", worker))})
				_ = s.Items()
				_ = s.Len()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 80, s.Len())
}
