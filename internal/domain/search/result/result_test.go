package result

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
)

func TestNew(t *testing.T) {
	it := &catalog.IndexedItem{Slug: "truba-57x3", Title: "Труба стальная 57×3"}

	r := New(it, 0.25)

	if r.Item() != it {
		t.Errorf("Item() = %p, want %p", r.Item(), it)
	}
	if r.Score() != 0.25 {
		t.Errorf("Score() = %f", r.Score())
	}
}

func TestFacets_JSONKeys(t *testing.T) {
	fs := Facets{
		field.DiameterMM: {{Value: "12", Label: "12 мм", Count: 3, Selected: true}},
	}
	b, err := json.Marshal(fs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"diameter_mm":[{"value":"12","label":"12 мм","count":3,"selected":true}]}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}
