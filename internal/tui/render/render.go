// Package render draws the rows, tabs and footer of the terminal browser.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cristianoliveira/lostfound/internal/colors"
	"github.com/cristianoliveira/lostfound/internal/domain"
)

const (
	markWidth            = 2
	buildingWidth        = 16
	floorWidth           = 6
	statusWidth          = 14
	ageWidth             = 5
	spacesBetweenColumns = 10
	defaultTitleWidth    = 40
	minTitleWidth        = 10

	followedSymbol = "★"
	ownSymbol      = "✎"
)

var (
	mutedColor    = lipgloss.Color("241")
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ansiColorNumber(colors.Blue))).
			Foreground(lipgloss.Color("0"))
)

// RowState defines the inputs needed to render a post row.
type RowState struct {
	Post     domain.Post
	Followed bool
	Own      bool
	Width    int
	Selected bool
	Now      time.Time
}

// TabsState defines the inputs needed to render the building tabs.
type TabsState struct {
	Tabs   []string
	Active int
	// Counts are the loaded posts per tab; nil hides them.
	Counts map[string]int
}

// StatusState defines the inputs of the line under the list.
type StatusState struct {
	Loading    bool
	Spinner    string
	Err        string
	Message    string
	IsError    bool
	Shown      int
	Loaded     int
	Total      int
	HasMore    bool
	WindowDays int
}

// Tabs renders the building tab bar.
func Tabs(state TabsState) string {
	active := lipgloss.NewStyle().Bold(true).Underline(true).
		Foreground(lipgloss.Color(ansiColorNumber(colors.Blue)))
	inactive := lipgloss.NewStyle().Foreground(mutedColor)

	parts := make([]string, 0, len(state.Tabs))
	for i, tab := range state.Tabs {
		label := tab
		if state.Counts != nil {
			label = fmt.Sprintf("%s (%d)", tab, state.Counts[tab])
		}
		if i == state.Active {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

// Header renders the table header.
func Header(width int) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ansiColorNumber(colors.Blue)))

	return headerStyle.Render(fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s  %-*s",
		markWidth, "",
		titleWidth(width), "TITLE",
		buildingWidth, "BUILDING",
		floorWidth, "FLOOR",
		statusWidth, "STATUS",
		ageWidth, "AGE",
	))
}

// Row renders a single post row.
func Row(state RowState) string {
	mark := ""
	switch {
	case state.Followed:
		mark = followedSymbol
	case state.Own:
		mark = ownSymbol
	}

	row := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s  %-*s",
		markWidth, mark,
		titleWidth(state.Width), truncate(state.Post.Title, titleWidth(state.Width)),
		buildingWidth, truncate(state.Post.Building, buildingWidth),
		floorWidth, truncate(state.Post.Floor, floorWidth),
		statusWidth, truncate(statusLabel(state.Post.Status), statusWidth),
		ageWidth, calculateAge(state.Post.FoundAt, state.Now),
	)

	if state.Selected {
		return selectedStyle.Render(row)
	}
	if state.Post.Status == domain.StatusReturned || state.Post.Status == domain.StatusArchived {
		return lipgloss.NewStyle().Foreground(mutedColor).Render(row)
	}
	return row
}

// Empty renders the placeholder of an empty list.
func Empty(loading bool) string {
	text := "No posts found"
	if loading {
		text = "Loading posts..."
	}
	return lipgloss.NewStyle().Foreground(mutedColor).Render(text)
}

// Status renders the loading, error or summary line.
func Status(state StatusState) string {
	switch {
	case state.Loading:
		return fmt.Sprintf("%s Loading...", state.Spinner)
	case state.Err != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Red))).
			Render(fmt.Sprintf("Error: %s (r: retry)", state.Err))
	case state.Message != "":
		color := ansiColorNumber(colors.Green)
		if state.IsError {
			color = ansiColorNumber(colors.Red)
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(state.Message)
	}

	line := fmt.Sprintf("%d of %d loaded", state.Shown, state.Loaded)
	if state.Total >= 0 {
		line += fmt.Sprintf(" (%d total)", state.Total)
	}
	if state.HasMore {
		line += " · n: more"
	}
	if state.WindowDays > 0 {
		line += fmt.Sprintf(" · last %d days", state.WindowDays)
	}
	return lipgloss.NewStyle().Foreground(mutedColor).Render(line)
}

// Confirm renders a yes/no prompt.
func Confirm(prompt string) string {
	return lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow))).
		Render(prompt + " (y/n)")
}

func statusLabel(status domain.PostStatus) string {
	switch status {
	case domain.StatusOpen:
		return "open"
	case domain.StatusWithSecurity:
		return "with security"
	case domain.StatusReturned:
		return "returned"
	case domain.StatusPending:
		return "pending"
	case domain.StatusArchived:
		return "archived"
	default:
		return strings.ToLower(string(status))
	}
}

func titleWidth(width int) int {
	total := markWidth + buildingWidth + floorWidth + statusWidth + ageWidth
	w := width - total - spacesBetweenColumns
	if width == 0 || w < minTitleWidth {
		return defaultTitleWidth
	}
	return w
}

// truncate shortens s to width display cells, ending in "...".
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:min(width, len(runes))])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func calculateAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}

	duration := now.Sub(t)
	switch {
	case duration < time.Minute:
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	case duration < time.Hour:
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh", int(duration.Hours()))
	}
	return fmt.Sprintf("%dd", int(duration.Hours()/24))
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
