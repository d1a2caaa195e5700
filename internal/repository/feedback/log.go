package feedback

import (
	"context"

	"go.uber.org/zap"

	domfb "github.com/kailas-cloud/catalogsearch/internal/domain/feedback"
)

// LogSink writes reports as structured log lines only.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log-only sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Write logs one report.
func (s *LogSink) Write(_ context.Context, r domfb.Report) error {
	s.logger.Info("unknown_tokens",
		zap.Strings("tokens", r.Tokens),
		zap.String("query", r.Query),
		zap.Time("reported_at", r.ReportedAt),
	)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error { return nil }
