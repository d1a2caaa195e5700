package catalogsearch

import "github.com/kailas-cloud/catalogsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrMalformedCatalog  = domain.ErrMalformedCatalog
	ErrSnapshotNotReady  = domain.ErrSnapshotNotReady
	ErrRebuildInProgress = domain.ErrRebuildInProgress
)
