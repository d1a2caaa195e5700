// Package index owns the rebuild and refresh lifecycle of the search snapshot.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/indexer"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// Service rebuilds the index from the catalog, persists it and swaps it in.
type Service struct {
	source   CatalogSource
	repo     SnapshotRepository
	holder   *snapshot.Holder
	notifier Notifier
	channel  string
	logger   *zap.Logger
	now      func() time.Time

	rebuildMu sync.Mutex
	reloadMu  sync.Mutex
}

// New creates an index service. repo may be nil to keep snapshots in memory only.
func New(source CatalogSource, repo SnapshotRepository, holder *snapshot.Holder, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		repo:   repo,
		holder: holder,
		logger: logger,
		now:    time.Now,
	}
}

// WithNotifier enables refresh announcements on channel.
func (s *Service) WithNotifier(n Notifier, channel string) *Service {
	s.notifier = n
	s.channel = channel
	return s
}

// Rebuild indexes the catalog and publishes the result. A failed build leaves the
// current snapshot in place. Concurrent calls fail with domain.ErrRebuildInProgress.
func (s *Service) Rebuild(ctx context.Context) (snapshot.Stats, error) {
	if !s.rebuildMu.TryLock() {
		return snapshot.Stats{}, domain.ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()

	start := time.Now()
	snap, err := s.build(ctx)
	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("rebuild", "error").Inc()
		return snapshot.Stats{}, err
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, snap); err != nil {
			metrics.IndexRebuildsTotal.WithLabelValues("rebuild", "error").Inc()
			return snapshot.Stats{}, fmt.Errorf("persist snapshot: %w", err)
		}
	}

	s.publish(snap)
	metrics.IndexRebuildsTotal.WithLabelValues("rebuild", "ok").Inc()

	st := snap.Stats()
	s.logger.Info("index rebuilt",
		zap.String("snapshot_id", st.ID),
		zap.Int("items", st.Items),
		zap.Int("values", st.Values),
		zap.Int("tokens", st.Tokens),
		zap.Duration("duration", time.Since(start)),
	)

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, s.channel, st.ID); err != nil {
			s.logger.Warn("refresh announcement failed", zap.String("snapshot_id", st.ID), zap.Error(err))
		}
	}
	return st, nil
}

func (s *Service) build(ctx context.Context) (*snapshot.Snapshot, error) {
	cat, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	manual, skipped, err := s.source.LoadManual(ctx)
	if err != nil {
		return nil, fmt.Errorf("load manual overrides: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("manual overrides with unknown fields skipped", zap.Int("skipped", skipped))
	}

	res, err := indexer.Build(cat, manual)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return snapshot.New(res, s.now()), nil
}

// Reload publishes the persisted snapshot if it differs from the current one.
// Returns domain.ErrNotFound when nothing has been persisted.
func (s *Service) Reload(ctx context.Context) (snapshot.Stats, error) {
	if s.repo == nil {
		return snapshot.Stats{}, domain.ErrNotFound
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			metrics.IndexRebuildsTotal.WithLabelValues("reload", "error").Inc()
		}
		return snapshot.Stats{}, fmt.Errorf("load snapshot: %w", err)
	}
	if cur, err := s.holder.Load(); err == nil && cur.ID == snap.ID {
		return cur.Stats(), nil
	}

	s.publish(snap)
	metrics.IndexRebuildsTotal.WithLabelValues("reload", "ok").Inc()

	st := snap.Stats()
	s.logger.Info("index reloaded",
		zap.String("snapshot_id", st.ID),
		zap.Time("built_at", st.BuiltAt),
		zap.Int("items", st.Items),
	)
	return st, nil
}

// Bootstrap publishes the first snapshot: from the store unless rebuild is set,
// falling back to a rebuild when nothing is stored.
func (s *Service) Bootstrap(ctx context.Context, rebuild bool) (snapshot.Stats, error) {
	if !rebuild {
		st, err := s.Reload(ctx)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("stored snapshot unusable, rebuilding", zap.Error(err))
		}
	}
	return s.Rebuild(ctx)
}

// Watch reloads the stored snapshot whenever a peer announces a new one. It
// blocks until ctx is done. Announcements of the current snapshot are ignored.
func (s *Service) Watch(ctx context.Context) error {
	if s.notifier == nil {
		<-ctx.Done()
		return nil
	}
	err := s.notifier.Subscribe(ctx, s.channel, func(id string) {
		if cur, err := s.holder.Load(); err == nil && cur.ID.String() == id {
			return
		}
		if _, err := s.Reload(ctx); err != nil {
			s.logger.Error("refresh failed", zap.String("snapshot_id", id), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.channel, err)
	}
	return nil
}

func (s *Service) publish(snap *snapshot.Snapshot) {
	s.holder.Swap(snap)
	st := snap.Stats()
	metrics.ObserveSnapshot(st.Items, st.Values, st.Tokens)
}
