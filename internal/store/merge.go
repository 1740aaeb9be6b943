// Package store holds the ordered, deduplicated record collection behind
// every list-backed screen.
package store

import "github.com/cristianoliveira/lostfound/internal/domain"

// MergeMode selects how an incoming page is combined with the held records.
type MergeMode int

const (
	// ReplaceFirstPage discards the held records. Used for a fresh first page.
	ReplaceFirstPage MergeMode = iota
	// Append adds the incoming page after the held records.
	Append
)

// String returns the string representation of the merge mode.
func (m MergeMode) String() string {
	switch m {
	case ReplaceFirstPage:
		return "replace_first_page"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// Merge combines existing and incoming without modifying either slice.
//
// Records are keyed by RecordID. A duplicate id keeps the slot where it was
// first seen and takes the value merged last. With ReplaceFirstPage the
// result is incoming deduplicated against itself; with Append it is
// existing followed by incoming, deduplicated the same way.
func Merge[T domain.Record](existing, incoming []T, mode MergeMode) []T {
	var size int
	if mode == Append {
		size = len(existing)
	}
	result := make([]T, 0, size+len(incoming))
	index := make(map[int64]int, size+len(incoming))

	add := func(item T) {
		id := item.RecordID()
		if pos, ok := index[id]; ok {
			result[pos] = item
			return
		}
		index[id] = len(result)
		result = append(result, item)
	}

	if mode == Append {
		for _, item := range existing {
			add(item)
		}
	}
	for _, item := range incoming {
		add(item)
	}
	return result
}
