package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAllReadCommand(t *testing.T) {
	out, err := execute(t, NewMarkAllReadCmd(&fakeClient{count: 3}))
	require.NoError(t, err)
	assert.Contains(t, out, "3 notifications marked as read")

	out, err = execute(t, NewMarkAllReadCmd(&fakeClient{}))
	require.NoError(t, err)
	assert.Contains(t, out, "No unread notifications")
}
