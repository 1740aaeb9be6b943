package domain

import "fmt"

// UnknownTotal marks a page whose endpoint does not report a total count.
const UnknownTotal = -1

// Page is the unit returned by one page fetch.
type Page[T any] struct {
	Number int
	Total  int
	Items  []T
}

// HasTotal reports whether the endpoint reported a total count.
func (p Page[T]) HasTotal() bool {
	return p.Total >= 0
}

// ValidatePage checks a fetched page before it may be merged. A page may
// hold more items than requested: unpaginated endpoints return everything.
func ValidatePage[T Record](p Page[T]) error {
	if p.Number < 0 {
		return &ValidationError{Reason: fmt.Sprintf("negative page number %d", p.Number)}
	}
	if p.Total < UnknownTotal {
		return &ValidationError{Reason: fmt.Sprintf("negative total %d", p.Total)}
	}
	for i, item := range p.Items {
		if err := item.Validate(); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("item %d", i), Err: err}
		}
	}
	return nil
}
