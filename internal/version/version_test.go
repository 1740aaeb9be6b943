package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })
	Version, Commit, Date = v, commit, date
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		expected string
	}{
		{"development version without commit", "development", "unknown", "development"},
		{"release version with commit", "1.0.0", "abc1234", "1.0.0+abc1234"},
		{"empty commit shows only version", "2.0.0", "", "2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuild(t, tt.version, tt.commit, "")
			assert.Equal(t, tt.expected, String())
		})
	}
}

func TestLong(t *testing.T) {
	platform := " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"

	withBuild(t, "1.2.0", "unknown", "")
	assert.Equal(t, "lostfound 1.2.0"+platform, Long())

	withBuild(t, "1.2.0", "abc", "2024-01-20")
	assert.Equal(t, "lostfound 1.2.0+abc built 2024-01-20"+platform, Long())
}

func TestUserAgent(t *testing.T) {
	withBuild(t, "0.3.0", "unknown", "")
	assert.Equal(t, "lostfound/0.3.0", UserAgent())
}
