// Package idgen provides snapshot ID generators.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/bodygraph/gatesdb/ports"
	"github.com/google/uuid"
)

// UUID generates time-ordered UUIDv7 identifiers, so snapshot IDs sort in
// creation order.
type UUID struct{}

// New generates a new UUIDv7, falling back to v4 if the clock source fails.
func (UUID) New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

var _ ports.IDGenerator = UUID{}

// Sequential generates predictable IDs for tests.
type Sequential struct {
	prefix string
	n      atomic.Uint64
}

// NewSequential creates a generator producing prefix1, prefix2, ...
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New returns the next ID.
func (s *Sequential) New() string {
	return fmt.Sprintf("%s%d", s.prefix, s.n.Add(1))
}

var _ ports.IDGenerator = (*Sequential)(nil)
