package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domfb "github.com/kailas-cloud/catalogsearch/internal/domain/feedback"
)

// --- Mocks ---

type mockSink struct {
	mu      sync.Mutex
	reports []domfb.Report
	err     error
	closed  bool
	block   chan struct{}
}

func (m *mockSink) Write(ctx context.Context, r domfb.Report) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, r)
	return nil
}

func (m *mockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

// --- Tests ---

func TestReport_WritesOnceOnClose(t *testing.T) {
	sink := &mockSink{}
	r := New(sink, 0, 1, zap.NewNop())

	r.Report("шпилька м10", []string{"шпилька"})
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if sink.count() != 1 {
		t.Fatalf("expected 1 report, got %d", sink.count())
	}
	got := sink.reports[0]
	if got.Query != "шпилька м10" || got.Tokens[0] != "шпилька" || got.ReportedAt.IsZero() {
		t.Errorf("report = %+v", got)
	}
	if !sink.closed {
		t.Error("sink must be closed")
	}
}

func TestReport_DeduplicatesTokenSets(t *testing.T) {
	sink := &mockSink{}
	r := New(sink, 0, 1, zap.NewNop())

	r.Report("шпилька анкер", []string{"шпилька", "анкер"})
	r.Report("анкер шпилька оцинк", []string{"анкер", "шпилька"})
	r.Report("анкер", []string{"анкер"})
	_ = r.Close()

	if sink.count() != 2 {
		t.Errorf("expected 2 distinct reports, got %d", sink.count())
	}
}

func TestReport_EmptyTokensIgnored(t *testing.T) {
	sink := &mockSink{}
	r := New(sink, 0, 1, zap.NewNop())
	r.Report("труба", nil)
	_ = r.Close()
	if sink.count() != 0 {
		t.Errorf("expected no reports, got %d", sink.count())
	}
}

func TestReport_Throttled(t *testing.T) {
	sink := &mockSink{}
	r := New(sink, 0.001, 1, zap.NewNop())

	r.Report("a", []string{"первый"})
	r.Report("b", []string{"второй"})
	_ = r.Close()

	if sink.count() != 1 {
		t.Fatalf("expected 1 report through the limiter, got %d", sink.count())
	}

	// a throttled token set is not remembered as seen
	if _, ok := r.seen.Load("второй"); ok {
		t.Error("throttled report must not be marked as seen")
	}
}

func TestReport_SinkErrorSwallowed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sink := &mockSink{err: errors.New("redis down")}
	r := New(sink, 0, 1, zap.New(core))

	r.Report("q", []string{"x"})
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := logs.FilterMessage("feedback write failed").All()
	if len(entries) != 1 || entries[0].Level != zap.DebugLevel {
		t.Fatalf("expected one debug log entry, got %+v", entries)
	}
}

func TestReport_DoesNotBlockOnSlowSink(t *testing.T) {
	sink := &mockSink{block: make(chan struct{})}
	r := New(sink, 0, 1, zap.NewNop()).WithTimeout(time.Second)

	done := make(chan struct{})
	go func() {
		r.Report("q", []string{"медленный"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked on the sink")
	}

	close(sink.block)
	_ = r.Close()
	if sink.count() != 1 {
		t.Errorf("expected the queued write to finish, got %d", sink.count())
	}
}

func TestReport_AfterCloseDropped(t *testing.T) {
	sink := &mockSink{}
	r := New(sink, 0, 1, zap.NewNop())
	_ = r.Close()

	r.Report("q", []string{"поздний"})
	if sink.count() != 0 {
		t.Errorf("expected no writes after Close, got %d", sink.count())
	}
}
