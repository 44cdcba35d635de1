// Package store persists generated reports under opaque identifiers with a
// bounded lifetime. A record that has passed its expiry is indistinguishable
// from one that never existed.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/leomayn/planner/internal/planner"
)

// ErrNotFound is returned when no live record exists for an identifier,
// whether it expired or was never written.
var ErrNotFound = errors.New("report not found")

// DefaultTTL is how long a stored report stays retrievable.
const DefaultTTL = 30 * 24 * time.Hour

// ReportStore persists and retrieves stored reports by identifier.
type ReportStore interface {
	// Put writes the record under the identifier with the given lifetime.
	Put(ctx context.Context, id string, rec *planner.StoredReport, ttl time.Duration) error
	// Get returns the record for the identifier, or ErrNotFound.
	Get(ctx context.Context, id string) (*planner.StoredReport, error)
	// Close releases any underlying resources.
	Close()
}

// Key returns the namespaced storage key for a report identifier.
func Key(id string) string {
	return "planner:report:" + id
}
