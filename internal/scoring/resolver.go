// Package scoring resolves adjacency edges against the compatibility matrix
// and aggregates pairwise scores into parcel-level scores under a named,
// explicit policy.
package scoring

import (
	"github.com/rotisserie/eris"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
	"github.com/glassbox-planner/compat-cli/internal/matrix"
)

// Resolver looks up the pairwise score for two canonical categories.
// Symmetry is guaranteed by the matrix model, so resolution order never
// matters.
type Resolver struct {
	m *matrix.Matrix
}

// NewResolver wraps a validated matrix.
func NewResolver(m *matrix.Matrix) *Resolver {
	return &Resolver{m: m}
}

// Resolve returns the matrix score for a category pair. ok is false for an
// undefined edge: either category unmapped, or the pair explicitly authored
// as not applicable. Undefined edges contribute no score and shrink the
// aggregation denominator; they are never coerced to a neutral value.
func (r *Resolver) Resolve(a, b landuse.Category) (score int, ok bool) {
	s, err := r.m.Lookup(a, b)
	if err != nil {
		if eris.Is(err, matrix.ErrUnknownCategory) || eris.Is(err, matrix.ErrPairUndefined) {
			return 0, false
		}
		// Lookup has no other failure modes; treat anything new as
		// undefined rather than inventing a score.
		return 0, false
	}
	return s, true
}

// Known reports whether a category is present on the matrix axes. Used to
// flag parcels whose own category has no policy entry.
func (r *Resolver) Known(c landuse.Category) bool {
	return r.m.Has(c)
}
