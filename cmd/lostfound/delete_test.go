package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

func TestDeleteCommand(t *testing.T) {
	client := &fakeClient{}
	out, err := execute(t, NewDeleteCmd(client), "8")
	require.NoError(t, err)
	assert.Equal(t, int64(8), client.id)
	assert.Contains(t, out, "Post 8 deleted")

	client = &fakeClient{err: domain.ErrNotOwner}
	_, err = execute(t, NewDeleteCmd(client), "8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotOwner))

	_, err = execute(t, NewDeleteCmd(&fakeClient{}))
	assert.Error(t, err, "post id is required")
}
