// Package document persists published index snapshots as JSON documents in a KV store.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/catalogsearch/internal/db"
	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/taxonomy"
	"github.com/kailas-cloud/catalogsearch/internal/indexer"
	"github.com/kailas-cloud/catalogsearch/internal/snapshot"
)

// Document key suffixes under the configured prefix.
const (
	KeyManifest  = "manifest"
	KeyTaxonomy  = "taxonomy"
	KeySynonyms  = "synonyms"
	KeyGenerated = "synonyms:generated"
	KeyItems     = "items"
)

const manifestVersion = 1

// store is the consumer interface for snapshot documents (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMulti(ctx context.Context, items []db.KVItem) error
}

// Repo implements usecase/index.SnapshotRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. prefix is prepended to every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

type manifestDTO struct {
	Version int       `json:"version"`
	ID      string    `json:"id"`
	BuiltAt time.Time `json:"builtAt"`
	Items   int       `json:"items"`
	Values  int       `json:"values"`
	Tokens  int       `json:"tokens"`
}

// Save writes all snapshot documents in one batch. The manifest goes last, so a
// reader that finds the new manifest also finds the parts it describes.
func (r *Repo) Save(ctx context.Context, s *snapshot.Snapshot) error {
	st := s.Stats()
	parts := []struct {
		key string
		v   any
	}{
		{KeyTaxonomy, s.Taxonomy},
		{KeySynonyms, s.Dictionary},
		{KeyGenerated, s.Generated},
		{KeyItems, s.Items},
		{KeyManifest, manifestDTO{
			Version: manifestVersion,
			ID:      st.ID,
			BuiltAt: st.BuiltAt,
			Items:   st.Items,
			Values:  st.Values,
			Tokens:  st.Tokens,
		}},
	}

	items := make([]db.KVItem, 0, len(parts))
	for _, p := range parts {
		data, err := json.Marshal(p.v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", p.key, err)
		}
		items = append(items, db.KVItem{Key: r.key(p.key), Value: data})
	}

	if err := r.store.SetMulti(ctx, items); err != nil {
		return fmt.Errorf("save snapshot %s: %w", st.ID, err)
	}
	return nil
}

// Load restores the last saved snapshot. Returns domain.ErrNotFound when nothing
// has been saved yet.
func (r *Repo) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	var m manifestDTO
	if err := r.get(ctx, KeyManifest, &m); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("snapshot manifest version %d is not supported", m.Version)
	}
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot manifest id: %w", err)
	}

	res := &indexer.Result{
		Taxonomy:   &taxonomy.Taxonomy{},
		Dictionary: &taxonomy.Dictionary{},
		Generated:  &taxonomy.Dictionary{},
	}
	if err := r.get(ctx, KeyTaxonomy, res.Taxonomy); err != nil {
		return nil, err
	}
	if err := r.get(ctx, KeySynonyms, res.Dictionary); err != nil {
		return nil, err
	}
	if err := r.get(ctx, KeyGenerated, res.Generated); err != nil {
		return nil, err
	}
	var items []catalog.IndexedItem
	if err := r.get(ctx, KeyItems, &items); err != nil {
		return nil, err
	}
	if len(items) != m.Items {
		return nil, fmt.Errorf("snapshot %s: manifest lists %d items, found %d", m.ID, m.Items, len(items))
	}
	res.Items = items

	return snapshot.Restore(id, m.BuiltAt, res), nil
}

func (r *Repo) get(ctx context.Context, name string, v any) error {
	key := r.key(name)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(name string) string {
	return r.prefix + name
}
