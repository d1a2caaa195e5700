package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/db"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{Dir: filepath.Join(t.TempDir(), "data")})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestNewStore_RequiresDir(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSetGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "cs:taxonomy", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "cs:taxonomy")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Get = %s", got)
	}

	if err := s.Set(ctx, "cs:taxonomy", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "cs:taxonomy")
	if string(got) != `{"a":2}` {
		t.Errorf("after overwrite Get = %s", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "../etc", "a/b", `a\b`} {
		err := s.Set(ctx, key, []byte("x"))
		if !errors.Is(err, db.ErrInvalidKey) {
			t.Errorf("Set(%q) = %v, want ErrInvalidKey", key, err)
		}
		var dbErr *db.Error
		if !errors.As(err, &dbErr) || dbErr.Op != db.OpSet {
			t.Errorf("Set(%q) not wrapped in db.Error: %v", key, err)
		}
	}
}

func TestSetMulti_AllOrNothingOnBadKey(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.SetMulti(ctx, []db.KVItem{
		{Key: "good", Value: []byte("1")},
		{Key: "../bad", Value: []byte("2")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.Get(ctx, "good"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("first key must not be written, Get err = %v", err)
	}

	entries, _ := os.ReadDir(s.dir)
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestDel(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"))

	if err := s.Del(ctx, "a", "never-written"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("key still present: %v", err)
	}
}

func TestPingAndWaitForReady(t *testing.T) {
	s := newStore(t)
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}

	_ = os.RemoveAll(s.dir)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error for removed dir")
	}
	if err := s.WaitForReady(context.Background(), 150*time.Millisecond); err == nil {
		t.Fatal("expected timeout")
	}
}
