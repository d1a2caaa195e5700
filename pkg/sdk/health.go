package catalogsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status     string            // "ok", "degraded", "error"
	Checks     map[string]string // "database", "index" → "ok"/"error"
	SnapshotID string            // empty until the first index build
}

// Ready reports whether searches can be served. A degraded client still answers
// from its in-memory index.
func (h HealthStatus) Ready() bool {
	return h.Status != string(healthuc.Unhealthy)
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:     string(report.Status),
		Checks:     checks,
		SnapshotID: report.SnapshotID,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
