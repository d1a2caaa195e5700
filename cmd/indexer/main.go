// Command indexer builds the search index from the catalog sources, stores it for
// the API servers and announces the new snapshot.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/config"
	"github.com/kailas-cloud/catalogsearch/internal/db"
	dbFile "github.com/kailas-cloud/catalogsearch/internal/db/file"
	dbRedis "github.com/kailas-cloud/catalogsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/catalogsearch/internal/logger"
	catalogrepo "github.com/kailas-cloud/catalogsearch/internal/repository/catalog"
	documentrepo "github.com/kailas-cloud/catalogsearch/internal/repository/document"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
	indexuc "github.com/kailas-cloud/catalogsearch/internal/usecase/index"
	"github.com/kailas-cloud/catalogsearch/internal/version"
)

func main() {
	catalogPath := flag.String("catalog", "", "catalog source path (overrides catalog.path)")
	manualPath := flag.String("manual", "", "manual overrides path (overrides catalog.manual_path)")
	format := flag.String("format", "", "catalog format: json or xlsx (overrides catalog.format)")
	flag.Parse()

	env := config.GetEnv()

	cfg := config.MustLoad(env)
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *manualPath != "" {
		cfg.Catalog.ManualPath = *manualPath
	}
	if *format != "" {
		cfg.Catalog.Format = *format
	}

	logger, err := logpkg.NewLogger(env, "indexer", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalogsearch indexer", append(version.Fields(),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("catalog", cfg.Catalog.Path),
		zap.String("manual", cfg.Catalog.ManualPath),
	)...)

	var (
		store db.DocumentStore
		redis *dbRedis.Store
	)
	switch cfg.Database.Driver {
	case config.DriverRedis:
		redis, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Password:   cfg.Database.Password,
			ClientName: "catalogsearch-indexer",
		})
		store = redis
	case config.DriverFile:
		store, err = dbFile.NewStore(dbFile.Config{Dir: cfg.Database.DataDir})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	catalogs := catalogrepo.New(catalogrepo.Config{
		Path:       cfg.Catalog.Path,
		Format:     catalogrepo.Format(cfg.Catalog.Format),
		ManualPath: cfg.Catalog.ManualPath,
	})
	svc := indexuc.New(catalogs, documentrepo.New(store, cfg.Database.KeyPrefix), &snapshot.Holder{}, logger)
	if redis != nil {
		svc.WithNotifier(redis, cfg.Database.RefreshChannel)
	}

	st, err := svc.Rebuild(ctx)
	if err != nil {
		logger.Error("Index build failed", zap.Error(err))
		store.Close()
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("Index stored",
		zap.String("snapshot_id", st.ID),
		zap.Time("built_at", st.BuiltAt),
		zap.Int("items", st.Items),
		zap.Int("values", st.Values),
		zap.Int("tokens", st.Tokens),
	)
}
