package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

func TestNotificationsCommand(t *testing.T) {
	client := &fakeClient{notifications: []domain.Notification{
		{ID: 1, Title: "Claim request", Message: "Someone claimed your wallet"},
		{ID: 2, Title: "Returned", IsRead: true},
	}}

	out, err := execute(t, NewNotificationsCmd(client), "--unread", "--cached")
	require.NoError(t, err)
	assert.Equal(t, domain.ReadFilterUnread, client.criteria.Read)
	assert.True(t, client.cached)
	assert.Contains(t, out, "Claim request")
	assert.Contains(t, out, "1 unread of 2")
}

func TestNotificationsCommandJSONHasNoFooter(t *testing.T) {
	client := &fakeClient{notifications: []domain.Notification{{ID: 1, Title: "Claim request"}}}

	out, err := execute(t, NewNotificationsCmd(client), "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Claim request"`)
	assert.NotContains(t, out, "unread of")
}

func TestNotificationsCommandExclusiveFlags(t *testing.T) {
	_, err := execute(t, NewNotificationsCmd(&fakeClient{}), "--unread", "--read")
	assert.Error(t, err)
}
