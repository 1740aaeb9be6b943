package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cristianoliveira/lostfound/internal/colors"
	"github.com/cristianoliveira/lostfound/internal/domain"
)

// Alignment of a column's cells.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Column is one table column.
type Column[T any] struct {
	Name  string
	Width int
	Align Alignment
	Value func(T) string
}

// Table renders records as aligned columns.
type Table[T domain.Record] struct {
	columns     []Column[T]
	showHeaders bool
	headerColor string
}

// NewTable creates a table with headers shown in blue.
func NewTable[T domain.Record](columns ...Column[T]) *Table[T] {
	return &Table[T]{columns: columns, showHeaders: true, headerColor: colors.Blue}
}

// WithoutHeaders hides the header and separator lines.
func (t *Table[T]) WithoutHeaders() *Table[T] {
	t.showHeaders = false
	return t
}

// WithHeaderColor sets the header ANSI color; "" disables coloring.
func (t *Table[T]) WithHeaderColor(color string) *Table[T] {
	t.headerColor = color
	return t
}

// Format implements Formatter.
func (t *Table[T]) Format(items []T, w io.Writer) error {
	if len(items) == 0 {
		return nil
	}
	if t.showHeaders {
		if err := t.writeHeader(w); err != nil {
			return err
		}
	}
	for _, item := range items {
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			cells[i] = fit(col.Value(item), col.Width, col.Align)
		}
		if err := writeLine(w, cells); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table[T]) writeHeader(w io.Writer) error {
	names := make([]string, len(t.columns))
	seps := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = fit(col.Name, col.Width, col.Align)
		seps[i] = strings.Repeat("-", col.Width)
	}
	header := strings.Join(names, "  ")
	if t.headerColor != "" {
		header = t.headerColor + header + colors.Reset
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(header, " ")); err != nil {
		return err
	}
	return writeLine(w, seps)
}

func writeLine(w io.Writer, cells []string) error {
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	return err
}

// fit pads or truncates s to exactly width display cells.
func fit(s string, width int, align Alignment) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = truncate(s, width)
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// truncate shortens s to width display cells, ending in "..." when cut.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	suffix := "..."
	if width < len(suffix) {
		suffix = ""
	}
	limit := width - len(suffix)
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > limit {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + suffix
}
