package index

import (
	"context"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// CatalogSource reads the catalog and the curated overrides.
type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	// LoadManual returns no overrides (and no error) when the document is absent.
	LoadManual(ctx context.Context) (taxonomy.ManualOverrides, int, error)
}

// SnapshotRepository persists published snapshots for other instances and restarts.
type SnapshotRepository interface {
	Save(ctx context.Context, s *snapshot.Snapshot) error
	Load(ctx context.Context) (*snapshot.Snapshot, error)
}

// Notifier announces new snapshots to peers.
type Notifier interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channel string, fn func(message string)) error
}
