// Package file implements db.DocumentStore on a local data directory, one file per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/db"
)

// Compile-time check: Store implements db.DocumentStore.
var _ db.DocumentStore = (*Store)(nil)

const fileExt = ".json"

// Config holds the data directory location.
type Config struct {
	Dir string
}

// Store keeps every key in its own file. Writes go through a temp file and a
// rename, so a reader sees either the old or the new document.
type Store struct {
	dir string
	mu  sync.Mutex // serializes writers
}

// NewStore creates the data directory if needed.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: cfg.Dir}, nil
}

// Ping checks that the data directory is still there.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if !info.IsDir() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%s is not a directory", s.dir)}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady polls Ping until the directory is available or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for data dir: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Get reads the file stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set atomically replaces the file stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMulti(ctx, []db.KVItem{{Key: key, Value: value}})
}

// SetMulti writes every value to a temp file first and renames them into place
// only when all writes succeeded.
func (s *Store) SetMulti(_ context.Context, items []db.KVItem) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type staged struct{ tmp, dst string }
	done := make([]staged, 0, len(items))
	cleanup := func() {
		for _, st := range done {
			_ = os.Remove(st.tmp)
		}
	}

	for _, item := range items {
		dst, err := s.path(item.Key)
		if err != nil {
			cleanup()
			return &db.Error{Op: db.OpSet, Err: err}
		}
		tmp, err := writeTemp(s.dir, item.Value)
		if err != nil {
			cleanup()
			return &db.Error{Op: db.OpSet, Err: fmt.Errorf("key %s: %w", item.Key, err)}
		}
		done = append(done, staged{tmp: tmp, dst: dst})
	}

	for i, st := range done {
		if err := os.Rename(st.tmp, st.dst); err != nil {
			cleanup()
			return &db.Error{Op: db.OpSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// Del removes keys. Missing keys are not an error.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		path, err := s.path(key)
		if err != nil {
			return &db.Error{Op: db.OpDel, Err: err}
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &db.Error{Op: db.OpDel, Err: err}
		}
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", db.ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, strings.ReplaceAll(key, ":", "_")+fileExt), nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}
