// Package snapshot publishes immutable index builds to concurrent readers.
package snapshot

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/engine"
	"github.com/kailas-cloud/catalogsearch/internal/indexer"
)

// Snapshot is one published build. Nothing in it is modified after New.
type Snapshot struct {
	ID         uuid.UUID
	BuiltAt    time.Time
	Taxonomy   *taxonomy.Taxonomy
	Generated  *taxonomy.Dictionary
	Dictionary *taxonomy.Dictionary
	Items      []catalog.IndexedItem
	Engine     *engine.Engine
}

// Stats summarizes a snapshot for logs and admin responses.
type Stats struct {
	ID      string    `json:"id"`
	BuiltAt time.Time `json:"builtAt"`
	Items   int       `json:"items"`
	Values  int       `json:"values"`
	Tokens  int       `json:"tokens"`
}

// New wraps a build result into a snapshot with a fresh identifier.
func New(res *indexer.Result, builtAt time.Time) *Snapshot {
	return Restore(uuid.New(), builtAt, res)
}

// Restore rebuilds a snapshot from persisted parts, keeping the original identifier.
func Restore(id uuid.UUID, builtAt time.Time, res *indexer.Result) *Snapshot {
	return &Snapshot{
		ID:         id,
		BuiltAt:    builtAt.UTC(),
		Taxonomy:   res.Taxonomy,
		Generated:  res.Generated,
		Dictionary: res.Dictionary,
		Items:      res.Items,
		Engine:     engine.New(res.Items, res.Dictionary, res.Taxonomy),
	}
}

// Stats returns the snapshot counters.
func (s *Snapshot) Stats() Stats {
	return Stats{
		ID:      s.ID.String(),
		BuiltAt: s.BuiltAt,
		Items:   len(s.Items),
		Values:  s.Taxonomy.Size(),
		Tokens:  s.Dictionary.Len(),
	}
}

// Holder is the swap point between the rebuild path and request handlers.
// The zero value holds nothing.
type Holder struct {
	cur atomic.Pointer[Snapshot]
}

// Load returns the current snapshot or domain.ErrSnapshotNotReady before the first Swap.
func (h *Holder) Load() (*Snapshot, error) {
	s := h.cur.Load()
	if s == nil {
		return nil, domain.ErrSnapshotNotReady
	}
	return s, nil
}

// Swap publishes s and returns the snapshot it replaced (nil on first publish).
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	return h.cur.Swap(s)
}
