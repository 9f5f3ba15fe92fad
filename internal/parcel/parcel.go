// Package parcel defines the parcel input model and its file loaders.
// Parcels are read-only inputs: the engine never mutates geometry, it only
// attaches derived fields on output.
package parcel

import (
	"errors"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
)

// ErrInvalidGeometry marks a parcel whose geometry cannot be used for
// adjacency computation. Such parcels are excluded and flagged, never
// silently dropped from totals.
var ErrInvalidGeometry = errors.New("parcel: invalid geometry")

// Parcel is a single land unit: identifier, polygon geometry, and exactly
// one declared land-use category (already canonical).
type Parcel struct {
	ID       string
	Category landuse.Category
	// Geometry is a *geom.Polygon or *geom.MultiPolygon in a single planar
	// CRS. Nil when the source record carried no usable shape.
	Geometry geom.T
	// Attributes carries the source record's remaining fields through to
	// the enriched output untouched.
	Attributes map[string]any
}

// ValidateGeometry checks that a parcel geometry is present and structurally
// usable: polygonal, with at least one ring of at least four coordinates and
// nonzero area. Ring self-intersection repair is the geometry source's job;
// anything still broken here fails loudly rather than being guessed at.
func ValidateGeometry(g geom.T) error {
	if g == nil {
		return eris.Wrap(ErrInvalidGeometry, "no geometry")
	}
	switch t := g.(type) {
	case *geom.Polygon:
		return validatePolygon(t)
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return eris.Wrap(ErrInvalidGeometry, "empty multipolygon")
		}
		for i := 0; i < t.NumPolygons(); i++ {
			if err := validatePolygon(t.Polygon(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return eris.Wrapf(ErrInvalidGeometry, "unsupported geometry type %T", g)
	}
}

func validatePolygon(p *geom.Polygon) error {
	if p.NumLinearRings() == 0 {
		return eris.Wrap(ErrInvalidGeometry, "polygon has no rings")
	}
	ring := p.LinearRing(0)
	if ring.NumCoords() < 4 {
		return eris.Wrapf(ErrInvalidGeometry, "ring has %d coordinates, need at least 4", ring.NumCoords())
	}
	if ringArea(ring) == 0 {
		return eris.Wrap(ErrInvalidGeometry, "degenerate ring with zero area")
	}
	return nil
}

// ringArea returns the absolute shoelace area of a linear ring.
func ringArea(ring *geom.LinearRing) float64 {
	coords := ring.FlatCoords()
	stride := ring.Stride()
	n := len(coords) / stride
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += coords[i*stride] * coords[j*stride+1]
		area -= coords[j*stride] * coords[i*stride+1]
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}
