// Package domain provides the domain layer for the lost-and-found client.
// It contains records, value objects, view filters, and the error taxonomy.
package domain

import "time"

// Record is the common surface of every item held in a list-backed screen.
type Record interface {
	// RecordID returns the stable server-assigned identity used for deduplication.
	RecordID() int64
	// Validate reports whether the record has the shape the engine expects.
	Validate() error
}

// Timed is implemented by records that carry a creation or discovery time.
type Timed interface {
	Timestamp() time.Time
}

// IDs returns the identities of records in order.
func IDs[T Record](records []T) []int64 {
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.RecordID()
	}
	return ids
}
