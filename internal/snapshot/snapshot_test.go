package snapshot

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/indexer"
)

func build(t *testing.T, titles ...string) *indexer.Result {
	t.Helper()
	items := make([]catalog.Item, len(titles))
	for i, title := range titles {
		items[i] = catalog.Item{Slug: title, Title: title}
	}
	res, err := indexer.Build(&catalog.Catalog{Categories: []catalog.Category{{
		Slug: "krepezh", Title: "Крепеж",
		Subcategories: []catalog.Subcategory{{Slug: "bolty", Title: "Болты", Items: items}},
	}}}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func TestHolder_EmptyNotReady(t *testing.T) {
	var h Holder
	s, err := h.Load()
	if s != nil || !errors.Is(err, domain.ErrSnapshotNotReady) {
		t.Fatalf("Load() = %v, %v; want nil, ErrSnapshotNotReady", s, err)
	}
}

func TestHolder_Swap(t *testing.T) {
	var h Holder
	first := New(build(t, "Болт М8"), time.Now())
	if prev := h.Swap(first); prev != nil {
		t.Errorf("first swap returned %v", prev)
	}
	second := New(build(t, "Болт М8", "Болт М10"), time.Now())
	if prev := h.Swap(second); prev != first {
		t.Error("second swap must return the first snapshot")
	}
	got, err := h.Load()
	if err != nil || got != second {
		t.Fatalf("Load() = %v, %v", got, err)
	}
	if first.ID == second.ID {
		t.Error("snapshots must get distinct ids")
	}
}

func TestHolder_ConcurrentReaders(t *testing.T) {
	var h Holder
	h.Swap(New(build(t, "Болт М8"), time.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s, err := h.Load()
				if err != nil {
					t.Error(err)
					return
				}
				_ = s.Engine.Size()
			}
		}()
	}
	for i := 0; i < 10; i++ {
		h.Swap(New(build(t, "Болт М8", "Болт М10"), time.Now()))
	}
	wg.Wait()
}

func TestStats(t *testing.T) {
	builtAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(build(t, "Болт М8", "Болт М10"), builtAt)
	st := s.Stats()
	if st.Items != 2 {
		t.Errorf("Items = %d", st.Items)
	}
	if st.Values == 0 || st.Tokens == 0 {
		t.Errorf("empty counters: %+v", st)
	}
	if !st.BuiltAt.Equal(builtAt) || st.ID != s.ID.String() {
		t.Errorf("stats = %+v", st)
	}
}
