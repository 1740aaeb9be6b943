// Package format renders records for the CLI.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

// Kind names an output style.
type Kind string

const (
	// KindTable renders aligned columns with a header.
	KindTable Kind = "table"
	// KindSimple renders one "id  date  - title" line per record.
	KindSimple Kind = "simple"
	// KindCompact renders the title only.
	KindCompact Kind = "compact"
	// KindJSON renders a JSON array.
	KindJSON Kind = "json"
)

// ParseKind parses an output style name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "":
		return KindTable, nil
	case KindTable, KindSimple, KindCompact, KindJSON:
		return k, nil
	default:
		return "", fmt.Errorf("invalid format '%s': must be one of table, simple, compact, json", s)
	}
}

// Formatter writes a list of records.
type Formatter[T domain.Record] interface {
	Format(items []T, w io.Writer) error
}

// Layout describes how one record type is shown.
type Layout[T domain.Record] struct {
	Columns []Column[T]
	Title   func(T) string
	Date    func(T) string
}

// New returns the formatter of kind for layout.
func New[T domain.Record](kind Kind, layout Layout[T]) Formatter[T] {
	switch kind {
	case KindSimple:
		return simpleFormatter[T]{layout: layout}
	case KindCompact:
		return compactFormatter[T]{layout: layout}
	case KindJSON:
		return jsonFormatter[T]{}
	default:
		return NewTable(layout.Columns...)
	}
}

type simpleFormatter[T domain.Record] struct {
	layout Layout[T]
}

func (f simpleFormatter[T]) Format(items []T, w io.Writer) error {
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "%-6d  %-16s  - %s\n", item.RecordID(), f.layout.Date(item), truncate(f.layout.Title(item), 50)); err != nil {
			return err
		}
	}
	return nil
}

type compactFormatter[T domain.Record] struct {
	layout Layout[T]
}

func (f compactFormatter[T]) Format(items []T, w io.Writer) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(w, f.layout.Title(item)); err != nil {
			return err
		}
	}
	return nil
}

type jsonFormatter[T domain.Record] struct{}

func (jsonFormatter[T]) Format(items []T, w io.Writer) error {
	if items == nil {
		items = []T{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// FormatGroups writes each group under a "=== name (count) ===" heading.
func FormatGroups(groups domain.GroupResult, f Formatter[domain.Post], w io.Writer) error {
	for _, group := range groups.Groups {
		if _, err := fmt.Fprintf(w, "=== %s (%d) ===\n", group.DisplayName, group.Count); err != nil {
			return err
		}
		if err := f.Format(group.Posts, w); err != nil {
			return err
		}
	}
	return nil
}
