package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a request that cannot be served as given.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedCatalog signals a catalog source without a usable structure.
	ErrMalformedCatalog = errors.New("malformed catalog")
	// ErrSnapshotNotReady signals that no index has been published yet.
	ErrSnapshotNotReady = errors.New("search index not ready")
	// ErrRebuildInProgress signals a concurrent rebuild request.
	ErrRebuildInProgress = errors.New("index rebuild already in progress")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// CatalogError wraps ErrMalformedCatalog with the location of the problem.
type CatalogError struct {
	Path   string
	Reason string
}

func (e *CatalogError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedCatalog.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedCatalog.Error(), e.Path, e.Reason)
}

func (e *CatalogError) Unwrap() error { return ErrMalformedCatalog }

// NewCatalogError creates a malformed catalog error.
func NewCatalogError(path, reason string) error {
	return &CatalogError{Path: path, Reason: reason}
}
