package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

func TestReportsCommand(t *testing.T) {
	client := &fakeClient{reports: []domain.Report{{ID: 9, Title: "Spam post", Message: "Not a lost item"}}}

	out, err := execute(t, NewReportsCmd(client), "--pages", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, client.pages)
	assert.Contains(t, out, "Spam post")
	assert.Contains(t, out, "Showing 1 of 1 loaded")
	assert.NotContains(t, out, "total")
}
