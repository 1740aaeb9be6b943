package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/feed"
)

const statusClearDuration = 4 * time.Second

// updateMsg reports that the screen state changed.
type updateMsg struct{}

// outcomeMsg carries the result of a screen operation.
type outcomeMsg struct {
	outcome feed.Outcome
	// target is the post or thread the operation acted on.
	target int64
}

// clearStatusMsg clears the status message set at the given sequence.
type clearStatusMsg struct {
	seq int
}

func waitForUpdate(s *feed.Screen[domain.Post]) tea.Cmd {
	return func() tea.Msg {
		<-s.Updates()
		return updateMsg{}
	}
}

func awaitOutcome(ch <-chan feed.Outcome, target int64) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg{outcome: <-ch, target: target}
	}
}

func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusClearDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
