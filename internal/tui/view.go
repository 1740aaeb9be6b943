package tui

import (
	"strings"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/tui/render"
)

// View renders the browser.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(render.Tabs(render.TabsState{Tabs: m.tabs, Active: m.tab, Counts: m.tabCounts()}))
	b.WriteString("\n")
	b.WriteString(render.Header(m.width))
	b.WriteString("\n")

	items := m.state.Items
	if len(items) == 0 {
		b.WriteString(render.Empty(m.state.IsLoadingFirst))
		b.WriteString("\n")
	}
	end := min(m.offset+m.listHeight(), len(items))
	now := m.now()
	for i := m.offset; i < end; i++ {
		p := items[i]
		b.WriteString(render.Row(render.RowState{
			Post:     p,
			Followed: m.isFollowed(p),
			Own:      p.OwnedBy(m.userID),
			Width:    m.width,
			Selected: i == m.cursor,
			Now:      now,
		}))
		b.WriteString("\n")
	}

	switch {
	case m.confirmDelete:
		b.WriteString(render.Confirm("Delete this post?"))
	case m.searching || m.search.Value() != "":
		b.WriteString(m.search.View())
	default:
		b.WriteString(m.statusLine())
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) statusLine() string {
	state := render.StatusState{
		Loading: m.state.IsLoadingFirst || m.state.IsLoadingMore,
		Spinner: m.spinner.View(),
		Message: m.status,
		IsError: m.statusError,
		Shown:   len(m.state.Items),
		Loaded:  m.state.Loaded,
		Total:   m.state.Total,
		HasMore: m.state.HasMore,
	}
	if m.state.Err != nil {
		state.Err = domain.UserMessage(m.state.Err)
	}
	if m.windowOn {
		state.WindowDays = m.windowDays
	}
	return render.Status(state)
}

// tabCounts counts loaded posts per tab. Only the All tab holds every
// building, so counts show there alone.
func (m *Model) tabCounts() map[string]int {
	if m.tab != 0 {
		return nil
	}
	return domain.TabCounts(m.state.Items, m.tabs)
}
