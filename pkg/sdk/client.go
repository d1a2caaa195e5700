package catalogsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/db"
	dbFile "github.com/kailas-cloud/catalogsearch/internal/db/file"
	dbRedis "github.com/kailas-cloud/catalogsearch/internal/db/redis"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/engine"
	"github.com/kailas-cloud/catalogsearch/internal/query"
	catalogrepo "github.com/kailas-cloud/catalogsearch/internal/repository/catalog"
	documentrepo "github.com/kailas-cloud/catalogsearch/internal/repository/document"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
	indexuc "github.com/kailas-cloud/catalogsearch/internal/usecase/index"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "catalogsearch:"
)

// Внутренние интерфейсы для подмены в тестах.
type indexUseCase interface {
	Bootstrap(ctx context.Context, rebuild bool) (snapshot.Stats, error)
	Rebuild(ctx context.Context) (snapshot.Stats, error)
}

type searchUseCase interface {
	Search(ctx context.Context, req request.Request) (engine.Result, error)
	Normalize(ctx context.Context, q string) (query.Normalized, error)
	Taxonomy(ctx context.Context) (*taxonomy.Taxonomy, snapshot.Stats, error)
}

// Client is the catalogsearch SDK entry point.
type Client struct {
	store     db.DocumentStore // nil when the index lives in memory only
	indexSvc  indexUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and publishes the first index: the persisted one when a
// store is configured and holds one, otherwise a fresh build of the catalog.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.catalogPath == "" {
		return nil, errors.New("catalogsearch: catalog source required (use WithCatalogFile)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("catalogsearch: database not ready: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	c := wireClient(store, cfg, obs)

	start := time.Now()
	st, err := c.indexSvc.Bootstrap(ctx, cfg.rebuildOnStart || store == nil)
	c.obs.observe("bootstrap", start, err, "snapshot_id", st.ID, "items", st.Items)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("catalogsearch: build index: %w", err)
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.DocumentStore, error) {
	switch cfg.driver {
	case "":
		return nil, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			ClientName: "catalogsearch-sdk",
		})
		if err != nil {
			return nil, fmt.Errorf("catalogsearch: create redis store: %w", err)
		}
		return s, nil
	case "file":
		s, err := dbFile.NewStore(dbFile.Config{Dir: cfg.dataDir})
		if err != nil {
			return nil, fmt.Errorf("catalogsearch: create file store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("catalogsearch: unknown driver %q", cfg.driver)
	}
}

func closeStore(store db.DocumentStore) {
	if store != nil {
		store.Close()
	}
}

func wireClient(store db.DocumentStore, cfg *clientConfig, obs *observer) *Client {
	holder := &snapshot.Holder{}
	catalogs := catalogrepo.New(catalogrepo.Config{
		Path:       cfg.catalogPath,
		Format:     catalogrepo.Format(cfg.catalogFormat),
		ManualPath: cfg.manualPath,
	})

	// Pass a nil interface, not a typed nil pointer, when there is no store.
	var repo indexuc.SnapshotRepository
	var pinger healthuc.DBPinger = memoryPinger{}
	if store != nil {
		repo = documentrepo.New(store, cfg.keyPrefix)
		pinger = store
	}

	return &Client{
		store:     store,
		indexSvc:  indexuc.New(catalogs, repo, holder, zap.NewNop()),
		searchSvc: searchuc.New(holder, nil),
		healthSvc: healthuc.New(pinger, holder),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	closeStore(c.store)
}

// Search ranks catalog items for q.
func (c *Client) Search(ctx context.Context, q SearchQuery) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "total", res.Total) }()

	req, err := request.New(q.Query, sortMode(q.Sort), filtersFromMap(q.Filters), q.Page, q.PageSize)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	out, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	c.obs.observeResults(out.Total)
	return searchResultFromEngine(out), nil
}

// Normalize returns the structured reading of q without ranking.
func (c *Client) Normalize(ctx context.Context, q string) (n NormalizedQuery, err error) {
	start := time.Now()
	defer func() { c.obs.observe("normalize", start, err) }()

	out, err := c.searchSvc.Normalize(ctx, q)
	if err != nil {
		return NormalizedQuery{}, fmt.Errorf("normalize: %w", err)
	}
	return normalizedFromQuery(out), nil
}

// Taxonomy returns the canonical values of every field, keyed by field name.
func (c *Client) Taxonomy(ctx context.Context) (values map[string][]TaxonomyValue, info SnapshotInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("taxonomy", start, err) }()

	tax, st, err := c.searchSvc.Taxonomy(ctx)
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("taxonomy: %w", err)
	}
	return taxonomyValues(tax), snapshotInfo(st), nil
}

// Rebuild re-reads the catalog and publishes a new index.
func (c *Client) Rebuild(ctx context.Context) (info SnapshotInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild", start, err, "snapshot_id", info.ID) }()

	st, err := c.indexSvc.Rebuild(ctx)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("rebuild: %w", err)
	}
	return snapshotInfo(st), nil
}

// memoryPinger stands in for the database when the index is not persisted.
type memoryPinger struct{}

func (memoryPinger) Ping(context.Context) error { return nil }
