package search

import (
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// SnapshotSource returns the currently published snapshot.
type SnapshotSource interface {
	Load() (*snapshot.Snapshot, error)
}

// FeedbackReporter receives query tokens the index did not recognize.
// Implementations must not block.
type FeedbackReporter interface {
	Report(query string, tokens []string)
}
