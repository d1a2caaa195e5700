package chi

import (
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/result"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/engine"
	"github.com/kailas-cloud/catalogsearch/internal/query"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeIndexNotReady     ErrorResponseCode = "index_not_ready"
	ErrorResponseCodeRebuildInProgress ErrorResponseCode = "rebuild_in_progress"
	ErrorResponseCodeMalformedCatalog  ErrorResponseCode = "malformed_catalog"
	ErrorResponseCodeRateLimited       ErrorResponseCode = "rate_limited"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Q        string         `json:"q"`
	Filters  filter.Filters `json:"filters"`
	Sort     string         `json:"sort,omitempty"`
	Page     int            `json:"page,omitempty"`
	PageSize int            `json:"pageSize,omitempty"`
}

// SearchItem is one ranked catalog item.
type SearchItem struct {
	catalog.IndexedItem
	Score float64 `json:"score"`
}

// SearchMeta carries the query interpretation next to the results.
type SearchMeta struct {
	Normalized query.Normalized `json:"normalized"`
	Filters    filter.Filters   `json:"filters"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Items  []SearchItem  `json:"items"`
	Facets result.Facets `json:"facets"`
	Total  int           `json:"total"`
	Page   int           `json:"page"`
	Meta   SearchMeta    `json:"meta"`
}

// SnapshotResponse describes a published snapshot.
type SnapshotResponse struct {
	ID      string    `json:"id"`
	BuiltAt time.Time `json:"builtAt"`
	Items   int       `json:"items"`
	Values  int       `json:"values"`
	Tokens  int       `json:"tokens"`
}

// TaxonomyResponse is the body of GET /v1/taxonomy.
type TaxonomyResponse struct {
	Snapshot SnapshotResponse   `json:"snapshot"`
	Taxonomy *taxonomy.Taxonomy `json:"taxonomy"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	SnapshotID string            `json:"snapshotId,omitempty"`
}

func searchResponse(res engine.Result, page int) SearchResponse {
	items := make([]SearchItem, len(res.Hits))
	for i := range res.Hits {
		items[i] = SearchItem{IndexedItem: *res.Hits[i].Item(), Score: res.Hits[i].Score()}
	}
	facets := res.Facets
	if facets == nil {
		facets = result.Facets{}
	}
	return SearchResponse{
		Items:  items,
		Facets: facets,
		Total:  res.Total,
		Page:   page,
		Meta: SearchMeta{
			Normalized: res.Normalized,
			Filters:    res.Filters,
		},
	}
}

func snapshotResponse(st snapshot.Stats) SnapshotResponse {
	return SnapshotResponse{
		ID:      st.ID,
		BuiltAt: st.BuiltAt,
		Items:   st.Items,
		Values:  st.Values,
		Tokens:  st.Tokens,
	}
}
