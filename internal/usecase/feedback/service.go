package feedback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	domfb "github.com/kailas-cloud/catalogsearch/internal/domain/feedback"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
)

const defaultWriteTimeout = 2 * time.Second

// Reporter forwards unknown tokens to a sink in the background. Each distinct
// token set is reported at most once per process. Sink failures are logged at
// debug level and never reach the caller.
type Reporter struct {
	sink    Sink
	limiter *rate.Limiter
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	seen sync.Map // report key -> struct{}

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a reporter. perSecond <= 0 disables throttling.
func New(sink Sink, perSecond float64, burst int, logger *zap.Logger) *Reporter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Reporter{
		sink:    sink,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		timeout: defaultWriteTimeout,
		now:     time.Now,
	}
}

// WithTimeout overrides the per-write timeout.
func (r *Reporter) WithTimeout(d time.Duration) *Reporter {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Report queues tokens of query for writing. It never blocks on the sink.
func (r *Reporter) Report(query string, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	rep := domfb.Report{
		Tokens:     append([]string(nil), tokens...),
		Query:      query,
		ReportedAt: r.now().UTC(),
	}
	key := rep.Key()

	if _, loaded := r.seen.LoadOrStore(key, struct{}{}); loaded {
		metrics.FeedbackReportsTotal.WithLabelValues("duplicate").Inc()
		return
	}
	if !r.limiter.Allow() {
		// Forget the key so the same tokens can be reported once the bucket refills.
		r.seen.Delete(key)
		metrics.FeedbackReportsTotal.WithLabelValues("throttled").Inc()
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	r.wg.Add(1)
	go r.write(rep)
}

func (r *Reporter) write(rep domfb.Report) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.sink.Write(ctx, rep); err != nil {
		metrics.FeedbackReportsTotal.WithLabelValues("failed").Inc()
		r.logger.Debug("feedback write failed",
			zap.Strings("tokens", rep.Tokens),
			zap.Error(err),
		)
		return
	}
	metrics.FeedbackReportsTotal.WithLabelValues("written").Inc()
}

// Close waits for queued writes and closes the sink. Reports after Close are dropped.
func (r *Reporter) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.wg.Wait()
	return r.sink.Close()
}
