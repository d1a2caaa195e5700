package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the index serves queries but a dependency is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates that no queries can be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// SnapshotID is empty until the first snapshot is published.
	SnapshotID string
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index SnapshotSource
}

// New creates a Service.
func New(db DBPinger, index SnapshotSource) *Service {
	return &Service{db: db, index: index}
}

// Check runs health checks against all components. Search runs from memory, so a
// failing database only degrades the service; a missing snapshot makes it unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	report := Report{Status: Healthy, Checks: checks}

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		report.Status = Degraded
	} else {
		checks["database"] = CheckOK
	}

	snap, err := s.index.Load()
	if err != nil {
		checks["index"] = CheckError
		report.Status = Unhealthy
	} else {
		checks["index"] = CheckOK
		report.SnapshotID = snap.ID.String()
	}

	return report
}
