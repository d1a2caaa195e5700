package document

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/db"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/indexer"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// mockStore implements the consumer interface for tests as an in-memory map.
type mockStore struct {
	data       map[string][]byte
	getFn      func(ctx context.Context, key string) ([]byte, error)
	setMultiFn func(ctx context.Context, items []db.KVItem) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetMulti(ctx context.Context, items []db.KVItem) error {
	if m.setMultiFn != nil {
		return m.setMultiFn(ctx, items)
	}
	for _, it := range items {
		m.data[it.Key] = it.Value
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{data: make(map[string][]byte)}
	return New(ms, "cs:"), ms
}

func testSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	res, err := indexer.Build(&catalog.Catalog{Categories: []catalog.Category{{
		Slug: "armatura", Title: "Арматура",
		Subcategories: []catalog.Subcategory{{
			Slug: "riflenaya", Title: "Арматура рифленая",
			Items: []catalog.Item{
				{Slug: "a-12", Title: "Арматура ф12 А500С", SKU: "AR-12"},
				{Slug: "a-10", Title: "Арматура ф10 А400"},
			},
		}},
	}}}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return snapshot.New(res, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
}
