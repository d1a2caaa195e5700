package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/catalogsearch/internal/db"
)

// RPush appends values to the tail of a list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	cmd := s.b().Rpush().Key(key).Element(values...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	return nil
}

// RPushCapped appends values and keeps only the newest maxLen elements.
// Both commands go out in one pipeline.
func (s *Store) RPushCapped(ctx context.Context, key string, maxLen int64, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	if maxLen <= 0 {
		return s.RPush(ctx, key, values...)
	}

	results := s.client.DoMulti(ctx,
		s.b().Rpush().Key(key).Element(values...).Build(),
		s.b().Ltrim().Key(key).Start(-maxLen).Stop(-1).Build(),
	)
	if err := results[0].Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	if err := results[1].Error(); err != nil {
		return &db.Error{Op: db.OpLTrim, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return nil
}

// LRange returns list elements between start and stop (inclusive, negative from the tail).
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return vals, nil
}
