// Package field defines the closed set of canonical catalog attributes.
package field

import "fmt"

// Field is a canonical attribute of a catalog item.
// The zero value is not a valid field; use the constants below.
type Field uint8

// Canonical fields. The order is part of the wire contract of facets and
// taxonomy documents and must not change.
const (
	ProductType Field = iota + 1
	Class
	Surface
	Profile
	DiameterMM
	ThicknessMM
	Section
	SteelGrade
	GOST
	Category
	Subcategory
)

// Count is the number of canonical fields. Arrays indexed by Field.Index have this length.
const Count = int(Subcategory)

var names = [Count]string{
	"product_type",
	"class",
	"surface",
	"profile",
	"diameter_mm",
	"thickness_mm",
	"section",
	"steel_grade",
	"gost",
	"category",
	"subcategory",
}

var byName = func() map[string]Field {
	m := make(map[string]Field, Count)
	for i, n := range names {
		m[n] = Field(i + 1)
	}
	return m
}()

// All lists every canonical field in declaration order.
func All() []Field {
	out := make([]Field, Count)
	for i := range out {
		out[i] = Field(i + 1)
	}
	return out
}

// Faceted lists the fields facets are computed for.
func Faceted() []Field {
	return []Field{
		ProductType, Class, Surface, Profile, DiameterMM,
		SteelGrade, GOST, Section, Category, Subcategory,
	}
}

// Parse resolves a wire name such as "diameter_mm".
func Parse(name string) (Field, error) {
	f, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("unknown field %q", name)
	}
	return f, nil
}

// Valid reports whether f is one of the declared constants.
func (f Field) Valid() bool { return f >= ProductType && f <= Subcategory }

// Index returns the zero-based array slot of f. Callers must check Valid first.
func (f Field) Index() int { return int(f) - 1 }

// Numeric reports whether values of f are numbers.
func (f Field) Numeric() bool { return f == DiameterMM || f == ThicknessMM }

// String returns the wire name.
func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", uint8(f))
	}
	return names[f.Index()]
}

// MarshalText encodes the field by its wire name, which also makes it usable as a JSON map key.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid field %d", uint8(f))
	}
	return []byte(names[f.Index()]), nil
}

// UnmarshalText decodes a wire name.
func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
