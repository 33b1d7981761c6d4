// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// Snapshot is one stored revision of an encoded gates database.
type Snapshot struct {
	ID        string
	Locale    string
	Checksum  string // hex BLAKE2b-256 of Document
	Document  []byte // compact JSON interchange document
	CreatedAt time.Time
}

// SnapshotStore persists database snapshots per locale.
type SnapshotStore interface {
	// Save stores s. Saving a document whose checksum equals the latest
	// snapshot of the same locale is a no-op and reports saved=false.
	Save(ctx context.Context, s Snapshot) (saved bool, err error)

	// Get retrieves a snapshot by ID.
	Get(ctx context.Context, id string) (Snapshot, error)

	// Latest returns the most recent snapshot of a locale.
	Latest(ctx context.Context, locale string) (Snapshot, error)

	// List returns snapshots of a locale, newest first, without documents.
	// An empty locale lists every locale.
	List(ctx context.Context, locale string, limit int) ([]Snapshot, error)
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// CatalogMetrics records catalog load outcomes.
type CatalogMetrics interface {
	// CatalogLoaded records a successful load with per-collection entry counts.
	CatalogLoaded(locale string, counts map[string]int, at time.Time)
	CatalogLoadFailed(locale string)
	SnapshotSaved(locale string)
}
