// Package chi exposes the search service over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/catalogsearch/internal/logger"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
	indexuc "github.com/kailas-cloud/catalogsearch/internal/usecase/index"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        *searchuc.Service
	index         *indexuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	index *indexuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		index:  index,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrSnapshotNotReady, http.StatusServiceUnavailable, ErrorResponseCodeIndexNotReady),
		sentinelHandler(domain.ErrRebuildInProgress, http.StatusConflict, ErrorResponseCodeRebuildInProgress),
		sentinelHandler(domain.ErrMalformedCatalog,
			http.StatusUnprocessableEntity, ErrorResponseCodeMalformedCatalog),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.SearchQuery)
		r.Post("/search", s.SearchBody)
		r.Get("/normalize", s.Normalize)
		r.Get("/taxonomy", s.Taxonomy)
		r.Post("/admin/rebuild", s.Rebuild)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchQuery handles GET /v1/search. Filter fields are passed as repeated
// query parameters named after the field, e.g. class=A500&diameter_mm=12.
func (s *Server) SearchQuery(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var (
		q        string
		sort     string
		page     int
		pageSize int
	)
	binds := []struct {
		name string
		dest any
	}{
		{"q", &q},
		{"sort", &sort},
		{"page", &page},
		{"page_size", &pageSize},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, params, b.dest); err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
				"Invalid query parameter "+b.name)
			return
		}
	}

	var fs filter.Filters
	for _, f := range field.All() {
		var raw []string
		if err := runtime.BindQueryParameter("form", true, false, f.String(), params, &raw); err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
				"Invalid query parameter "+f.String())
			return
		}
		for _, v := range raw {
			fs.AddRaw(f, v)
		}
	}

	s.runSearch(w, r, q, fs, sort, page, pageSize)
}

// SearchBody handles POST /v1/search.
func (s *Server) SearchBody(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, req.Q, req.Filters, req.Sort, req.Page, req.PageSize)
}

func (s *Server) runSearch(
	w http.ResponseWriter,
	r *http.Request,
	q string,
	fs filter.Filters,
	sort string,
	page, pageSize int,
) {
	req, err := request.New(q, mode.Mode(sort), fs, page, pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(res, req.Page()))
}

// Normalize handles GET /v1/normalize.
func (s *Server) Normalize(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid query parameter q")
		return
	}

	n, err := s.search.Normalize(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Taxonomy handles GET /v1/taxonomy.
func (s *Server) Taxonomy(w http.ResponseWriter, r *http.Request) {
	tax, stats, err := s.search.Taxonomy(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TaxonomyResponse{
		Snapshot: snapshotResponse(stats),
		Taxonomy: tax,
	})
}

// Rebuild handles POST /v1/admin/rebuild.
func (s *Server) Rebuild(w http.ResponseWriter, r *http.Request) {
	stats, err := s.index.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(stats))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:     string(report.Status),
		Checks:     checks,
		SnapshotID: report.SnapshotID,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Request validation and catalog errors carry their own detail, which is safe to show.
func safeDomainMessage(err error) string {
	var ce *domain.CatalogError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrMalformedCatalog,
		domain.ErrSnapshotNotReady,
		domain.ErrRebuildInProgress,
		domain.ErrRateLimited,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
