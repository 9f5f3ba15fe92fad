// Package landuse defines the canonical land-use taxonomy and the synonym
// normalization applied before any compatibility-matrix lookup.
package landuse

import "strings"

// Category is a canonical land-use identifier. Every category appearing in
// parcel data must exist as both a row and a column label of the loaded
// compatibility matrix.
type Category string

// Clean collapses runs of whitespace and trims a raw label. It does not
// apply synonym mapping; callers that need canonical identifiers go through
// Table.Canonical.
func Clean(raw string) Category {
	return Category(strings.Join(strings.Fields(raw), " "))
}

// String returns the category identifier.
func (c Category) String() string { return string(c) }

// IsEmpty reports whether the category carries no label at all.
func (c Category) IsEmpty() bool { return c == "" }
