package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cristianoliveira/lostfound/internal/domain"
)

// Source fetches typed pages of one resource.
type Source[T domain.Record] struct {
	collection Collection
	resource   Resource
	// Fixed filters override the caller's filters, e.g. status=ARCHIVED.
	fixed map[string]string
}

// NewSource creates a typed source over res.
func NewSource[T domain.Record](collection Collection, res Resource, fixed map[string]string) *Source[T] {
	return &Source[T]{collection: collection, resource: res, fixed: fixed}
}

// Resource returns the resource the source reads.
func (s *Source[T]) Resource() Resource {
	return s.resource
}

// FetchPage fetches and decodes one page. Items that cannot be decoded
// fail the whole page with a domain.ValidationError.
func (s *Source[T]) FetchPage(ctx context.Context, page, limit int, filters map[string]string) (domain.Page[T], error) {
	merged := make(map[string]string, len(s.fixed)+len(filters))
	for k, v := range filters {
		merged[k] = v
	}
	for k, v := range s.fixed {
		merged[k] = v
	}

	raw, err := s.collection.FetchPage(ctx, s.resource, Params{Page: page, Limit: limit, Filters: merged})
	if err != nil {
		return domain.Page[T]{}, err
	}
	return Decode[T](raw)
}

// Decode converts a raw page into a typed page.
func Decode[T domain.Record](raw RawPage) (domain.Page[T], error) {
	items := make([]T, 0, len(raw.Items))
	for i, data := range raw.Items {
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return domain.Page[T]{}, &domain.ValidationError{Reason: fmt.Sprintf("decode item %d", i), Err: err}
		}
		items = append(items, item)
	}
	return domain.Page[T]{Number: raw.Page, Total: raw.Total, Items: items}, nil
}
