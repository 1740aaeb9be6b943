package search

import (
	"regexp"
	"sync"
)

// RegexProvider matches if any configured field matches the query as a
// regular expression. An invalid pattern matches nothing.
type RegexProvider struct {
	opts Options

	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

// NewRegexProvider creates a new regex search provider.
func NewRegexProvider(opts ...Option) Provider {
	o := applyOptions(opts)
	return &RegexProvider{opts: o, cache: make(map[string]*regexp.Regexp)}
}

// Match implements Provider.
func (p *RegexProvider) Match(doc Document, query string) bool {
	if query == "" {
		return true
	}
	re, err := p.compile(query)
	if err != nil {
		return false
	}
	// Case folding is done by the (?i) flag, so read fields verbatim.
	raw := p.opts
	raw.CaseInsensitive = false
	for _, v := range fieldValues(doc, raw) {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

func (p *RegexProvider) compile(pattern string) (*regexp.Regexp, error) {
	p.mu.RLock()
	re, ok := p.cache[pattern]
	p.mu.RUnlock()
	if ok {
		return re, nil
	}

	expr := pattern
	if p.opts.CaseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[pattern] = re
	p.mu.Unlock()
	return re, nil
}

// Name returns the provider name.
func (p *RegexProvider) Name() string {
	return ModeRegex
}
