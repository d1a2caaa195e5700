package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/catalogsearch/internal/domain/field"
)

// numericEpsilon is the tolerance used when comparing numeric attribute values.
const numericEpsilon = 1e-9

// Value is a single canonical attribute value: a string id or a number.
type Value struct {
	text    string
	num     float64
	numeric bool
}

// Text creates a string-valued canonical id.
func Text(id string) Value { return Value{text: id} }

// Number creates a numeric value.
func Number(n float64) Value { return Value{num: n, numeric: true, text: FormatNumber(n)} }

// Parse converts a raw value into the representation required by f.
// Numeric fields accept "12", "12.5" and "12,5". Returns false for empty or unparsable input.
func Parse(f field.Field, raw string) (Value, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{}, false
	}
	if !f.Numeric() {
		return Text(raw), true
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}, false
	}
	return Number(n), true
}

// FormatNumber renders a number in the canonical id form used as dictionary value ("12", "12.5").
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ID returns the canonical string id (numbers in FormatNumber form).
func (v Value) ID() string { return v.text }

// Num returns the numeric value; zero for string values.
func (v Value) Num() float64 { return v.num }

// IsNumeric reports whether v holds a number.
func (v Value) IsNumeric() bool { return v.numeric }

// Equal compares numbers by value and strings by exact id.
func (v Value) Equal(o Value) bool {
	if v.numeric && o.numeric {
		return math.Abs(v.num-o.num) < numericEpsilon
	}
	return v.text == o.text
}

// Filters is a sparse set of structured constraints indexed by canonical field.
// A field without values is unconstrained; a present field always holds at least one value.
type Filters struct {
	vals [field.Count][]Value
}

// Add appends v to f unless an equal value is already present.
// Invalid fields are ignored.
func (fs *Filters) Add(f field.Field, v Value) {
	if !f.Valid() {
		return
	}
	i := f.Index()
	for _, existing := range fs.vals[i] {
		if existing.Equal(v) {
			return
		}
	}
	fs.vals[i] = append(fs.vals[i], v)
}

// AddRaw parses raw for f and adds it. Returns false when the value is rejected.
func (fs *Filters) AddRaw(f field.Field, raw string) bool {
	v, ok := Parse(f, raw)
	if !ok || !f.Valid() {
		return false
	}
	fs.Add(f, v)
	return true
}

// Get returns the values for f; nil when f is unconstrained.
func (fs Filters) Get(f field.Field) []Value {
	if !f.Valid() {
		return nil
	}
	return fs.vals[f.Index()]
}

// Has reports whether f is constrained.
func (fs Filters) Has(f field.Field) bool { return len(fs.Get(f)) > 0 }

// Contains reports whether f holds a value equal to v.
func (fs Filters) Contains(f field.Field, v Value) bool {
	for _, existing := range fs.Get(f) {
		if existing.Equal(v) {
			return true
		}
	}
	return false
}

// Overlaps reports whether any of vals is present under f.
func (fs Filters) Overlaps(f field.Field, vals []Value) bool {
	for _, v := range vals {
		if fs.Contains(f, v) {
			return true
		}
	}
	return false
}

// Fields lists the constrained fields in declaration order.
func (fs Filters) Fields() []field.Field {
	var out []field.Field
	for i := range fs.vals {
		if len(fs.vals[i]) > 0 {
			out = append(out, field.Field(i+1))
		}
	}
	return out
}

// IsEmpty reports whether no field is constrained.
func (fs Filters) IsEmpty() bool {
	for i := range fs.vals {
		if len(fs.vals[i]) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy that can be mutated independently.
func (fs Filters) Clone() Filters {
	var out Filters
	for i := range fs.vals {
		if len(fs.vals[i]) > 0 {
			out.vals[i] = append([]Value(nil), fs.vals[i]...)
		}
	}
	return out
}

// Union merges b into a copy of a field by field. Duplicates collapse; order is a's values then b's new ones.
func Union(a, b Filters) Filters {
	out := a.Clone()
	for i := range b.vals {
		for _, v := range b.vals[i] {
			out.Add(field.Field(i+1), v)
		}
	}
	return out
}

// MarshalJSON encodes present fields only; numeric fields as JSON numbers.
func (fs Filters) MarshalJSON() ([]byte, error) {
	m := make(map[string][]any)
	for i := range fs.vals {
		if len(fs.vals[i]) == 0 {
			continue
		}
		f := field.Field(i + 1)
		list := make([]any, len(fs.vals[i]))
		for j, v := range fs.vals[i] {
			if f.Numeric() {
				list[j] = v.num
			} else {
				list[j] = v.text
			}
		}
		m[f.String()] = list
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts {"field": [values]} or {"field": value}. Unknown fields and
// unparsable values are dropped silently; empty lists leave the field unconstrained.
func (fs *Filters) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	*fs = Filters{}
	for name, msg := range raw {
		f, err := field.Parse(name)
		if err != nil {
			continue
		}
		var list []any
		if err := json.Unmarshal(msg, &list); err != nil {
			var single any
			if err := json.Unmarshal(msg, &single); err != nil {
				continue
			}
			list = []any{single}
		}
		for _, item := range list {
			switch x := item.(type) {
			case string:
				fs.AddRaw(f, x)
			case float64:
				if f.Numeric() {
					fs.Add(f, Number(x))
				} else {
					fs.Add(f, Text(FormatNumber(x)))
				}
			}
		}
	}
	return nil
}

// Restate renders v as a plain search token: diameters as "d12", everything else
// as the lower-cased canonical id.
func Restate(f field.Field, v Value) string {
	if f == field.DiameterMM {
		return "d" + v.text
	}
	return strings.ToLower(v.text)
}
