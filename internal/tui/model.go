// Package tui is the terminal browser over the home feed.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/feed"
)

const (
	headerFooterLines     = 5
	defaultViewportWidth  = 80
	defaultViewportHeight = 22
)

// Options configures the browser.
type Options struct {
	// Buildings are the tabs after "All".
	Buildings []string
	// WindowDays is the length of the time window toggled with "7".
	WindowDays int
	// UserID marks the user's own posts as deletable.
	UserID int64
	// Admin makes every post deletable.
	Admin bool
	Now   func() time.Time
}

// Model is the bubbletea model of the browser.
type Model struct {
	screen *feed.Screen[domain.Post]
	keys   keyMap
	help   help.Model

	spinner spinner.Model
	search  textinput.Model

	tabs       []string
	tab        int
	windowDays int
	windowOn   bool
	userID     int64
	admin      bool
	now        func() time.Time

	state  feed.State[domain.Post]
	cursor int
	offset int

	searching     bool
	confirmDelete bool
	pendingDelete int64

	status      string
	statusError bool
	statusSeq   int

	width  int
	height int
}

// New creates a browser over screen.
func New(screen *feed.Screen[domain.Post], opts Options) *Model {
	tabs := append([]string{domain.TabAll}, opts.Buildings...)

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Model{
		screen:     screen,
		keys:       defaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		search:     search,
		tabs:       tabs,
		windowDays: opts.WindowDays,
		windowOn:   opts.WindowDays > 0,
		userID:     opts.UserID,
		admin:      opts.Admin,
		now:        now,
		width:      defaultViewportWidth,
		height:     defaultViewportHeight,
	}
	m.refresh()
	return m
}

// Init starts the first fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForUpdate(m.screen),
		awaitOutcome(m.screen.LoadFirst(m.criteria()), 0),
	)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil
	case updateMsg:
		m.refresh()
		return m, waitForUpdate(m.screen)
	case outcomeMsg:
		m.refresh()
		return m, m.handleOutcome(msg)
	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusError = false
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmDelete {
		return m, m.handleConfirm(msg)
	}
	if m.searching {
		return m, m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m, m.moveDown()
	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab(-1)
	case key.Matches(msg, m.keys.More):
		return m, awaitOutcome(m.screen.LoadMore(), 0)
	case key.Matches(msg, m.keys.Refresh):
		if m.state.Err != nil {
			return m, awaitOutcome(m.screen.Retry(), 0)
		}
		return m, awaitOutcome(m.screen.LoadFirst(m.criteria()), 0)
	case key.Matches(msg, m.keys.Window):
		if m.windowDays <= 0 {
			return m, nil
		}
		m.windowOn = !m.windowOn
		return m, m.applyFilter()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.ClearTerm):
		if m.search.Value() == "" {
			return m, nil
		}
		m.search.SetValue("")
		return m, m.applyFilter()
	case key.Matches(msg, m.keys.Follow):
		return m, m.follow()
	case key.Matches(msg, m.keys.Delete):
		return m, m.askDelete()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handleSearchInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		return m.applyFilter()
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, m.applyFilter())
}

func (m *Model) handleConfirm(msg tea.KeyMsg) tea.Cmd {
	id := m.pendingDelete
	m.confirmDelete = false
	m.pendingDelete = 0

	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		return awaitOutcome(m.screen.SoftDelete(id), id)
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

func (m *Model) handleOutcome(msg outcomeMsg) tea.Cmd {
	o := msg.outcome
	if o.Err != nil {
		if errors.Is(o.Err, domain.ErrClosed) || errors.Is(o.Err, context.Canceled) {
			return nil
		}
		// Fetch errors already show from the screen state.
		switch o.Op {
		case feed.OpLoadFirst, feed.OpLoadMore, feed.OpRetry, feed.OpSetFilter:
			return nil
		}
		return m.setStatus(domain.UserMessage(o.Err), true)
	}

	switch o.Op {
	case feed.OpFollow:
		if o.Followed {
			return m.setStatus(fmt.Sprintf("Following thread %d", msg.target), false)
		}
		return m.setStatus(fmt.Sprintf("Stopped following thread %d", msg.target), false)
	case feed.OpDelete:
		return m.setStatus(fmt.Sprintf("Post %d deleted", msg.target), false)
	}
	return nil
}

func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusError = isError
	return clearStatusAfter(m.statusSeq)
}

func (m *Model) follow() tea.Cmd {
	p, ok := m.selected()
	if !ok {
		return nil
	}
	if p.ThreadID <= 0 {
		return m.setStatus("This post has no thread to follow", true)
	}
	return awaitOutcome(m.screen.ToggleFollow(p.ThreadID), p.ThreadID)
}

func (m *Model) askDelete() tea.Cmd {
	p, ok := m.selected()
	if !ok {
		return nil
	}
	if !m.admin && !p.OwnedBy(m.userID) {
		return m.setStatus("Only your own posts can be deleted", true)
	}
	m.confirmDelete = true
	m.pendingDelete = p.ID
	return nil
}

func (m *Model) switchTab(delta int) tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	m.tab = (m.tab + delta + len(m.tabs)) % len(m.tabs)
	m.cursor = 0
	m.offset = 0
	return m.applyFilter()
}

func (m *Model) applyFilter() tea.Cmd {
	ch := m.screen.SetFilter(m.criteria())
	m.refresh()
	return awaitOutcome(ch, 0)
}

func (m *Model) criteria() domain.Criteria {
	c := domain.Criteria{Query: m.search.Value()}
	if m.tab > 0 && m.tab < len(m.tabs) {
		c.Building = m.tabs[m.tab]
	}
	if m.windowOn {
		c.Days = m.windowDays
	}
	return c
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// moveDown moves the cursor and asks for the next page at the end of the list.
func (m *Model) moveDown() tea.Cmd {
	if m.cursor < len(m.state.Items)-1 {
		m.moveCursor(1)
		return nil
	}
	if m.state.HasMore && !m.state.IsLoadingMore && !m.state.IsLoadingFirst {
		return awaitOutcome(m.screen.LoadMore(), 0)
	}
	return nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.state.Items) {
		m.cursor = len(m.state.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *Model) selected() (domain.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Items) {
		return domain.Post{}, false
	}
	return m.state.Items[m.cursor], true
}

func (m *Model) refresh() {
	m.state = m.screen.State()
	m.clampCursor()
}

func (m *Model) listHeight() int {
	h := m.height - headerFooterLines
	if m.help.ShowAll {
		h -= 3
	}
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) isFollowed(p domain.Post) bool {
	f := m.screen.Follows()
	return f != nil && p.ThreadID > 0 && f.IsFollowed(p.ThreadID)
}
