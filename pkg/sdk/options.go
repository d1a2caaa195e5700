package catalogsearch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	catalogPath   string
	catalogFormat string // "json", "xlsx" or empty to detect by extension
	manualPath    string

	driver    string // "", "redis" or "file"
	addrs     []string
	password  string
	dataDir   string
	keyPrefix string

	rebuildOnStart bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCatalogFile sets the catalog source. The format is detected by extension.
func WithCatalogFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithCatalogFormat forces the catalog format: "json" or "xlsx".
func WithCatalogFormat(format string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogFormat = format
	})
}

// WithManualFile sets the curated synonym overrides. A missing file means no overrides.
func WithManualFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.manualPath = path
	})
}

// WithRedis persists built indexes in Redis and shares them with other instances.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithDataDir persists built indexes as files in dir.
func WithDataDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "file"
		c.dataDir = dir
	})
}

// WithKeyPrefix sets the key prefix of persisted documents.
// Default: "catalogsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithRebuildOnStart builds the index from the catalog even when a persisted one exists.
// Without a store the index is always built.
func WithRebuildOnStart() Option {
	return optionFunc(func(c *clientConfig) {
		c.rebuildOnStart = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
