// Package search refines already-fetched records with a free-text query.
// Strategies (substring, token, regex) share the Provider interface so the
// CLI and TUI filter the same way.
package search

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

// Document is a record with named text fields.
type Document interface {
	// SearchField returns the value of a field, or "" if the record has none.
	SearchField(name string) string
}

// Provider defines the interface for search providers.
type Provider interface {
	// Match returns true if the document matches the query.
	Match(doc Document, query string) bool

	// Name returns the provider name for identification and debugging.
	Name() string
}

// Provider names.
const (
	ModeSubstring = "substring"
	ModeToken     = "token"
	ModeRegex     = "regex"
)

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool
	Fields          []string
}

// DefaultOptions searches the free-text fields of every record type,
// ignoring case.
func DefaultOptions() Options {
	return Options{
		CaseInsensitive: true,
		Fields: []string{
			domain.FieldTitle,
			domain.FieldDescription,
			domain.FieldRoom,
			domain.FieldMessage,
			domain.FieldReporter,
		},
	}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithFields sets the fields to search in.
func WithFields(fields ...string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewProvider returns the provider registered under mode.
func NewProvider(mode string, opts ...Option) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeSubstring:
		return NewSubstringProvider(opts...), nil
	case ModeToken:
		return NewTokenProvider(opts...), nil
	case ModeRegex:
		return NewRegexProvider(opts...), nil
	default:
		return nil, fmt.Errorf("unknown search mode: %s", mode)
	}
}

// Filter returns the documents matching query, preserving order. A blank
// query returns items unchanged.
func Filter[T Document](items []T, p Provider, query string) []T {
	if p == nil || strings.TrimSpace(query) == "" {
		return items
	}
	return domain.Where(items, func(item T) bool { return p.Match(item, query) })
}

// fieldValues yields the non-empty configured fields of doc.
func fieldValues(doc Document, opts Options) []string {
	values := make([]string, 0, len(opts.Fields))
	for _, field := range opts.Fields {
		v := doc.SearchField(field)
		if v == "" {
			continue
		}
		if opts.CaseInsensitive {
			v = strings.ToLower(v)
		}
		values = append(values, v)
	}
	return values
}
