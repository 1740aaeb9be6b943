package search

import (
	"strings"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

// TokenProvider splits the query on whitespace; every token must match
// some field (AND logic). On records with read state, the tokens "read"
// and "unread" filter by it instead of matching text.
type TokenProvider struct {
	opts Options
}

// NewTokenProvider creates a new token search provider.
func NewTokenProvider(opts ...Option) Provider {
	return &TokenProvider{opts: applyOptions(opts)}
}

// Match returns true if every text token matches at least one field and
// the read filter, if any, holds.
func (p *TokenProvider) Match(doc Document, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return true
	}

	readState := doc.SearchField(domain.FieldRead)
	var wantRead, wantUnread bool
	text := make([]string, 0, len(tokens))
	for _, token := range tokens {
		lower := strings.ToLower(token)
		switch {
		case readState != "" && lower == "read":
			wantRead = true
		case readState != "" && lower == "unread":
			wantUnread = true
		case p.opts.CaseInsensitive:
			text = append(text, lower)
		default:
			text = append(text, token)
		}
	}

	// Both together cancel out.
	if wantRead != wantUnread {
		if wantRead && readState != "true" {
			return false
		}
		if wantUnread && readState == "true" {
			return false
		}
	}

	values := fieldValues(doc, p.opts)
	for _, token := range text {
		if !containsAny(values, token) {
			return false
		}
	}
	return true
}

// Name returns the provider name.
func (p *TokenProvider) Name() string {
	return ModeToken
}

func containsAny(values []string, token string) bool {
	for _, v := range values {
		if strings.Contains(v, token) {
			return true
		}
	}
	return false
}
