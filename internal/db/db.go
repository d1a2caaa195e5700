package db

import (
	"context"
	"time"
)

// Store is the full Redis-backed facade: documents, capped lists and refresh pub/sub.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	DocumentStore
	ListStore
	PubSub
}

// DocumentStore is the subset every backend (Redis or a data directory) provides.
type DocumentStore interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVItem holds a single key+value pair for SetMulti.
type KVItem struct {
	Key   string
	Value []byte
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMulti(ctx context.Context, items []KVItem) error
	Del(ctx context.Context, keys ...string) error
}

// ListStore provides append-only capped lists.
type ListStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	// RPushCapped appends values and trims the list to its newest maxLen elements.
	RPushCapped(ctx context.Context, key string, maxLen int64, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// PubSub provides fire-and-forget notifications between service instances.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	// Subscribe blocks, calling fn for every message, until ctx is done or the
	// connection fails.
	Subscribe(ctx context.Context, channel string, fn func(message string)) error
}
