// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/catalogsearch/internal/version.Version=v1.2.0
package version

import "go.uber.org/zap"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns a one-line build description, e.g. "v1.2.0 (abc1234, 2026-01-02)".
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}

// Fields returns the build metadata as log fields for the startup line.
func Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", Version),
		zap.String("commit", Commit),
		zap.String("build_date", Date),
	}
}
