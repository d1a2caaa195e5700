// Package feedback implements sinks for unknown-token reports.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	domfb "github.com/kailas-cloud/catalogsearch/internal/domain/feedback"
)

// listStore is the consumer interface for the Redis sink (ISP).
type listStore interface {
	RPushCapped(ctx context.Context, key string, maxLen int64, values ...string) error
}

// RedisSink appends JSON reports to a capped Redis list.
type RedisSink struct {
	store  listStore
	key    string
	maxLen int64
}

// NewRedisSink creates a sink writing to key, keeping at most maxLen reports.
func NewRedisSink(s listStore, key string, maxLen int64) *RedisSink {
	return &RedisSink{store: s, key: key, maxLen: maxLen}
}

// Write appends one report.
func (s *RedisSink) Write(ctx context.Context, r domfb.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := s.store.RPushCapped(ctx, s.key, s.maxLen, string(data)); err != nil {
		return fmt.Errorf("push report: %w", err)
	}
	return nil
}

// Close is a no-op; the store is owned by the caller.
func (s *RedisSink) Close() error { return nil }
