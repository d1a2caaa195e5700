package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// --- Mocks ---

type mockSource struct {
	loadFn   func(ctx context.Context) (*catalog.Catalog, error)
	manual   taxonomy.ManualOverrides
	skipped  int
	manualErr error
}

func (m *mockSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return testCatalog(), nil
}

func (m *mockSource) LoadManual(_ context.Context) (taxonomy.ManualOverrides, int, error) {
	return m.manual, m.skipped, m.manualErr
}

type mockRepo struct {
	mu      sync.Mutex
	saved   *snapshot.Snapshot
	saveErr error
	loadErr error
}

func (m *mockRepo) Save(_ context.Context, s *snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = s
	return nil
}

func (m *mockRepo) Load(_ context.Context) (*snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.saved == nil {
		return nil, domain.ErrNotFound
	}
	return m.saved, nil
}

type mockNotifier struct {
	mu        sync.Mutex
	published []string
	pubErr    error
	messages  []string
}

func (m *mockNotifier) Publish(_ context.Context, _, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, message)
	return m.pubErr
}

func (m *mockNotifier) Subscribe(_ context.Context, _ string, fn func(string)) error {
	for _, msg := range m.messages {
		fn(msg)
	}
	return nil
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Categories: []catalog.Category{{
		Slug: "armatura", Title: "Арматура",
		Subcategories: []catalog.Subcategory{{
			Slug: "riflenaya", Title: "Арматура рифленая",
			Items: []catalog.Item{
				{Slug: "a-12", Title: "Арматура ф12 А500С"},
				{Slug: "a-10", Title: "Арматура ф10 А400"},
			},
		}},
	}}}
}

func newService(src *mockSource, repo *mockRepo) (*Service, *snapshot.Holder) {
	h := &snapshot.Holder{}
	var r SnapshotRepository
	if repo != nil {
		r = repo
	}
	return New(src, r, h, zap.NewNop()), h
}

// --- Tests ---

func TestRebuild_PublishesAndPersists(t *testing.T) {
	repo := &mockRepo{}
	n := &mockNotifier{}
	svc, h := newService(&mockSource{}, repo)
	svc.WithNotifier(n, "cs:refresh")

	st, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if st.Items != 2 {
		t.Errorf("items = %d", st.Items)
	}
	cur, err := h.Load()
	if err != nil {
		t.Fatalf("holder empty after rebuild: %v", err)
	}
	if cur.ID.String() != st.ID || repo.saved != cur {
		t.Error("persisted, published and reported snapshots differ")
	}
	if len(n.published) != 1 || n.published[0] != st.ID {
		t.Errorf("published = %v", n.published)
	}
}

func TestRebuild_ManualOverridesApplied(t *testing.T) {
	src := &mockSource{manual: taxonomy.ManualOverrides{
		"арматурина": {{Field: field.ProductType, Value: "armatura"}},
	}}
	svc, h := newService(src, nil)

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	cur, _ := h.Load()
	found := false
	for _, key := range cur.Dictionary.Keys() {
		for _, e := range cur.Dictionary.Lookup(key) {
			if e.Source == taxonomy.SourceManual {
				found = true
			}
		}
	}
	if !found {
		t.Error("manual entries missing from the published dictionary")
	}
}

func TestRebuild_MalformedCatalogKeepsCurrent(t *testing.T) {
	src := &mockSource{}
	svc, h := newService(src, nil)
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
	before, _ := h.Load()

	src.loadFn = func(context.Context) (*catalog.Catalog, error) { return &catalog.Catalog{}, nil }
	_, err := svc.Rebuild(context.Background())
	if !errors.Is(err, domain.ErrMalformedCatalog) {
		t.Fatalf("expected ErrMalformedCatalog, got %v", err)
	}
	after, _ := h.Load()
	if after != before {
		t.Error("failed rebuild replaced the published snapshot")
	}
}

func TestRebuild_PersistFailureNotPublished(t *testing.T) {
	repo := &mockRepo{saveErr: errors.New("disk full")}
	svc, h := newService(&mockSource{}, repo)

	if _, err := svc.Rebuild(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := h.Load(); !errors.Is(err, domain.ErrSnapshotNotReady) {
		t.Errorf("snapshot published despite persist failure: %v", err)
	}
}

func TestRebuild_AnnouncementFailureIgnored(t *testing.T) {
	svc, _ := newService(&mockSource{}, &mockRepo{})
	svc.WithNotifier(&mockNotifier{pubErr: errors.New("no route")}, "cs:refresh")

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild must succeed when only the announcement fails: %v", err)
	}
}

func TestRebuild_Concurrent(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &mockSource{loadFn: func(context.Context) (*catalog.Catalog, error) {
		close(started)
		<-release
		return testCatalog(), nil
	}}
	svc, _ := newService(src, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Rebuild(context.Background())
		errCh <- err
	}()
	<-started

	if _, err := svc.Rebuild(context.Background()); !errors.Is(err, domain.ErrRebuildInProgress) {
		t.Errorf("expected ErrRebuildInProgress, got %v", err)
	}
	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
}

func TestReload(t *testing.T) {
	repo := &mockRepo{}
	builder, _ := newService(&mockSource{}, repo)
	st, err := builder.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	reader, h := newService(&mockSource{}, repo)
	got, err := reader.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got.ID != st.ID {
		t.Errorf("reloaded %s, want %s", got.ID, st.ID)
	}
	first, _ := h.Load()

	if _, err := reader.Reload(context.Background()); err != nil {
		t.Fatalf("second Reload: %v", err)
	}
	second, _ := h.Load()
	if first != second {
		t.Error("reloading the same snapshot must not swap")
	}
}

func TestReload_NothingStored(t *testing.T) {
	svc, _ := newService(&mockSource{}, &mockRepo{})
	if _, err := svc.Reload(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	memOnly, _ := newService(&mockSource{}, nil)
	if _, err := memOnly.Reload(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a repository, got %v", err)
	}
}

func TestBootstrap(t *testing.T) {
	t.Run("rebuilds when nothing stored", func(t *testing.T) {
		repo := &mockRepo{}
		svc, h := newService(&mockSource{}, repo)
		if _, err := svc.Bootstrap(context.Background(), false); err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		if _, err := h.Load(); err != nil {
			t.Error("no snapshot after bootstrap")
		}
		if repo.saved == nil {
			t.Error("bootstrap rebuild not persisted")
		}
	})

	t.Run("reuses stored snapshot", func(t *testing.T) {
		repo := &mockRepo{}
		first, _ := newService(&mockSource{}, repo)
		st, _ := first.Rebuild(context.Background())

		calls := 0
		src := &mockSource{loadFn: func(context.Context) (*catalog.Catalog, error) {
			calls++
			return testCatalog(), nil
		}}
		svc, _ := newService(src, repo)
		got, err := svc.Bootstrap(context.Background(), false)
		if err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		if got.ID != st.ID || calls != 0 {
			t.Errorf("expected reload of %s without catalog reads, got %s after %d reads", st.ID, got.ID, calls)
		}
	})

	t.Run("forced rebuild", func(t *testing.T) {
		repo := &mockRepo{}
		first, _ := newService(&mockSource{}, repo)
		st, _ := first.Rebuild(context.Background())

		svc, _ := newService(&mockSource{}, repo)
		got, err := svc.Bootstrap(context.Background(), true)
		if err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		if got.ID == st.ID {
			t.Error("forced bootstrap must build a new snapshot")
		}
	})
}

func TestWatch_ReloadsAnnouncedSnapshot(t *testing.T) {
	repo := &mockRepo{}
	builder, _ := newService(&mockSource{}, repo)
	st, _ := builder.Rebuild(context.Background())

	n := &mockNotifier{messages: []string{st.ID}}
	watcher, h := newService(&mockSource{}, repo)
	watcher.WithNotifier(n, "cs:refresh")

	if err := watcher.Watch(context.Background()); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	cur, err := h.Load()
	if err != nil || cur.ID.String() != st.ID {
		t.Fatalf("watcher did not pick up %s: %v", st.ID, err)
	}
}

func TestWatch_NoNotifierBlocksUntilDone(t *testing.T) {
	svc, _ := newService(&mockSource{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := svc.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}
}
