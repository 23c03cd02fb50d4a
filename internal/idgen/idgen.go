// Package idgen centralizes identifier generation so the rest of the
// module never reaches for crypto/rand or time-based IDs directly.
//
// event_id and run_id must be UUID v4 per spec.md §4.5/§4.8, so they use
// google/uuid. Broker order IDs have no such requirement; they use
// oklog/ulid/v2 for a short, time-sortable identifier, the same choice
// the teacher makes in pkg/id/id.go for journal/trading records.
package idgen

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewEventID returns a fresh UUID v4 string for an audit event_id.
func NewEventID() string { return uuid.NewString() }

// NewRunID returns a fresh UUID v4 string for a stream run's run_id.
func NewRunID() string { return uuid.NewString() }

// NewOrderID returns a short, lexicographically time-sortable broker
// order identifier.
func NewOrderID(prefix string) string {
	return prefix + ulid.Make().String()
}
