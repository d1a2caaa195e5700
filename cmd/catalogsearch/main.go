package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
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
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/catalogsearch/internal/repository/catalog"
	documentrepo "github.com/kailas-cloud/catalogsearch/internal/repository/document"
	feedbackrepo "github.com/kailas-cloud/catalogsearch/internal/repository/feedback"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
	chiTransport "github.com/kailas-cloud/catalogsearch/internal/transport/chi"
	feedbackuc "github.com/kailas-cloud/catalogsearch/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
	indexuc "github.com/kailas-cloud/catalogsearch/internal/usecase/index"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
	"github.com/kailas-cloud/catalogsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, "catalogsearch", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalogsearch API server", append(version.Fields(),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("catalog", cfg.Catalog.Path),
	)...)

	// Create document store based on driver
	var (
		store db.DocumentStore
		redis *dbRedis.Store
	)
	switch cfg.Database.Driver {
	case config.DriverRedis:
		redis, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Password:   cfg.Database.Password,
			ClientName: "catalogsearch",
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
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Feedback reporter for unknown query tokens
	var reporter searchuc.FeedbackReporter
	if cfg.Search.ReportUnknownTokens {
		sink, err := newFeedbackSink(cfg, redis, logger)
		if err != nil {
			logger.Fatal("Failed to create feedback sink", zap.Error(err))
		}
		fb := feedbackuc.New(sink, cfg.Feedback.RatePerSec, cfg.Feedback.Burst, logger).
			WithTimeout(time.Duration(cfg.Feedback.WriteTimeout) * time.Second)
		defer func() {
			if err := fb.Close(); err != nil {
				logger.Warn("feedback close failed", zap.Error(err))
			}
		}()
		reporter = fb
		logger.Info("Unknown-token feedback enabled", zap.String("driver", cfg.Feedback.Driver))
	}

	holder := &snapshot.Holder{}
	catalogs := catalogrepo.New(catalogrepo.Config{
		Path:       cfg.Catalog.Path,
		Format:     catalogrepo.Format(cfg.Catalog.Format),
		ManualPath: cfg.Catalog.ManualPath,
	})
	indexSvc := indexuc.New(catalogs, documentrepo.New(store, cfg.Database.KeyPrefix), holder, logger)
	if redis != nil {
		indexSvc.WithNotifier(redis, cfg.Database.RefreshChannel)
	}

	st, err := indexSvc.Bootstrap(ctx, cfg.Catalog.RebuildOnStart)
	if err != nil {
		logger.Fatal("Failed to publish initial snapshot", zap.Error(err))
	}
	logger.Info("Snapshot published",
		zap.String("snapshot_id", st.ID),
		zap.Int("items", st.Items),
		zap.Int("values", st.Values),
		zap.Int("tokens", st.Tokens),
	)

	go func() {
		if err := indexSvc.Watch(ctx); err != nil {
			logger.Error("Refresh watcher stopped", zap.Error(err))
		}
	}()

	// Create use case services
	searchSvc := searchuc.New(holder, reporter)
	healthSvc := healthuc.New(store, holder)

	server := chiTransport.NewServer(searchSvc, indexSvc, healthSvc, logger)
	r := chiTransport.NewRouter(server, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newFeedbackSink picks the unknown-token sink for the configured driver.
func newFeedbackSink(cfg config.Config, redis *dbRedis.Store, logger *zap.Logger) (feedbackuc.Sink, error) {
	switch cfg.Feedback.Driver {
	case config.DriverRedis:
		if redis == nil {
			return nil, fmt.Errorf("feedback driver %q requires a redis database", config.DriverRedis)
		}
		return feedbackrepo.NewRedisSink(redis, cfg.Feedback.RedisKey, cfg.Feedback.MaxLen), nil
	case config.DriverSQLite:
		sink, err := feedbackrepo.OpenSQLite(cfg.Feedback.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite feedback: %w", err)
		}
		return sink, nil
	default:
		return feedbackrepo.NewLogSink(logger), nil
	}
}
