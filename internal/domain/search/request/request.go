package request

import (
	"fmt"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength  = 4096
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Request is a validated search query.
type Request struct {
	query    string
	filters  filter.Filters
	sortMode mode.Mode
	page     int
	pageSize int
}

// New validates and normalizes search parameters.
// Defaults: sort=default, page=1, pageSize=20. pageSize is clamped to [1, MaxPageSize].
// An empty query is valid and lists the whole catalog.
func New(query string, m mode.Mode, filters filter.Filters, page, pageSize int) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = mode.Default
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid sort mode: %q", domain.ErrInvalidRequest, m)
	}
	if page <= 0 {
		page = DefaultPage
	}
	switch {
	case pageSize == 0:
		pageSize = DefaultPageSize
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	return Request{
		query:    query,
		filters:  filters,
		sortMode: m,
		page:     page,
		pageSize: pageSize,
	}, nil
}

// Query returns the raw search text.
func (r *Request) Query() string { return r.query }

// Filters returns the explicit structured filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// Sort returns the requested ordering.
func (r *Request) Sort() mode.Mode { return r.sortMode }

// Page returns the 1-indexed page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of items per page.
func (r *Request) PageSize() int { return r.pageSize }
