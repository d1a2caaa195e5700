// Package search serves queries against the published snapshot.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/engine"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
	"github.com/kailas-cloud/catalogsearch/internal/query"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// Service runs searches, query interpretation and taxonomy reads.
type Service struct {
	snapshots SnapshotSource
	feedback  FeedbackReporter
}

// New creates a search service. feedback may be nil.
func New(snapshots SnapshotSource, feedback FeedbackReporter) *Service {
	return &Service{snapshots: snapshots, feedback: feedback}
}

// Search ranks items for req on the current snapshot. Unknown query tokens are
// handed to the feedback reporter without waiting for it.
func (s *Service) Search(_ context.Context, req request.Request) (engine.Result, error) {
	snap, err := s.snapshots.Load()
	if err != nil {
		return engine.Result{}, fmt.Errorf("search: %w", err)
	}

	start := time.Now()
	res := snap.Engine.Search(req)
	metrics.SearchDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	metrics.SearchResultsTotal.Observe(float64(res.Total))

	if unknown := res.Normalized.UnknownTokens; len(unknown) > 0 {
		metrics.UnknownTokensTotal.Add(float64(len(unknown)))
		if s.feedback != nil {
			s.feedback.Report(req.Query(), unknown)
		}
	}
	return res, nil
}

// Normalize returns the structured interpretation of q without ranking.
func (s *Service) Normalize(_ context.Context, q string) (query.Normalized, error) {
	if len(q) > request.MaxQueryLength {
		return query.Normalized{}, fmt.Errorf("%w: query too long (max %d bytes)",
			domain.ErrInvalidRequest, request.MaxQueryLength)
	}
	snap, err := s.snapshots.Load()
	if err != nil {
		return query.Normalized{}, fmt.Errorf("normalize: %w", err)
	}

	start := time.Now()
	n := snap.Engine.Normalize(q)
	metrics.SearchDuration.WithLabelValues("normalize").Observe(time.Since(start).Seconds())
	return n, nil
}

// Taxonomy returns the taxonomy of the current snapshot with its stats.
func (s *Service) Taxonomy(_ context.Context) (*taxonomy.Taxonomy, snapshot.Stats, error) {
	snap, err := s.snapshots.Load()
	if err != nil {
		return nil, snapshot.Stats{}, fmt.Errorf("taxonomy: %w", err)
	}
	return snap.Taxonomy, snap.Stats(), nil
}
