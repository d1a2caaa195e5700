package health

import (
	"context"

	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SnapshotSource reports whether a search snapshot is published.
type SnapshotSource interface {
	Load() (*snapshot.Snapshot, error)
}
