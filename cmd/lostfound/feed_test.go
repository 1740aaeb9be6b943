package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

func TestFeedCommand(t *testing.T) {
	client := &fakeClient{posts: []domain.Post{
		{ID: 4, Title: "Blue umbrella", Building: "Library", Floor: "2", Status: domain.StatusOpen},
	}}

	out, err := execute(t, NewFeedCmd(client), "--building", "Library", "--query", "umbrella", "--pages", "2")
	require.NoError(t, err)

	assert.Equal(t, homePosts, client.list)
	assert.Equal(t, 2, client.pages)
	assert.Equal(t, "Library", client.criteria.Building)
	assert.Equal(t, "umbrella", client.criteria.Query)
	assert.Equal(t, 7, client.criteria.Days, "configured window applies by default")
	assert.Contains(t, out, "Blue umbrella")
	assert.Contains(t, out, "Showing 1 of 1 loaded (1 total)")
}

func TestFeedCommandLists(t *testing.T) {
	client := &fakeClient{}

	_, err := execute(t, NewFeedCmd(client), "--mine", "--days", "0")
	require.NoError(t, err)
	assert.Equal(t, myPosts, client.list)
	assert.Equal(t, 0, client.criteria.Days)

	_, err = execute(t, NewFeedCmd(client), "--archived")
	require.NoError(t, err)
	assert.Equal(t, archivedPosts, client.list)

	_, err = execute(t, NewFeedCmd(client), "--archived", "--mine")
	assert.Error(t, err)
}

func TestFeedCommandArchivedStatus(t *testing.T) {
	client := &fakeClient{}

	_, err := execute(t, NewFeedCmd(client), "--archived", "--status", "open")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCHIVED")
	assert.Zero(t, client.pages, "client must not be called")

	_, err = execute(t, NewFeedCmd(client), "--archived", "--status", "archived")
	require.NoError(t, err)
	assert.Equal(t, archivedPosts, client.list)
}

func TestFeedCommandDateRangeReplacesWindow(t *testing.T) {
	client := &fakeClient{}

	_, err := execute(t, NewFeedCmd(client), "--from", "2026-01-01", "--to", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, 0, client.criteria.Days)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), client.criteria.From)
}

func TestFeedCommandRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad status", []string{"--status", "LOST"}},
		{"bad group", []string{"--group-by", "color"}},
		{"bad format", []string{"--format", "xml"}},
		{"bad pages", []string{"--pages", "0"}},
		{"bad date", []string{"--from", "01/02/2026"}},
		{"reversed range", []string{"--from", "2026-02-01", "--to", "2026-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			_, err := execute(t, NewFeedCmd(client), tt.args...)
			assert.Error(t, err)
			assert.Zero(t, client.pages, "client must not be called")
		})
	}
}

func TestFeedCommandGroups(t *testing.T) {
	client := &fakeClient{posts: []domain.Post{
		{ID: 1, Title: "Keys", Building: "Gym"},
		{ID: 2, Title: "Wallet", Building: "Library"},
	}}

	out, err := execute(t, NewFeedCmd(client), "--group-by", "building", "--format", "simple")
	require.NoError(t, err)
	assert.Contains(t, out, "Gym")
	assert.Contains(t, out, "Library")
	assert.Contains(t, out, "Wallet")
}

func TestFeedCommandError(t *testing.T) {
	client := &fakeClient{err: domain.ErrClosed}
	_, err := execute(t, NewFeedCmd(client))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrClosed))
	assert.Contains(t, err.Error(), "feed:")
}
