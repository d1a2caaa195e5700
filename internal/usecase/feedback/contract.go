package feedback

import (
	"context"

	domfb "github.com/kailas-cloud/catalogsearch/internal/domain/feedback"
)

// Sink stores unknown-token reports.
type Sink interface {
	Write(ctx context.Context, r domfb.Report) error
	Close() error
}
