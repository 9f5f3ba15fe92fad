package adjacency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twpayne/go-geom"
)

// donut builds a square polygon with a square hole cut out of it.
func donut(x, y, size, holeInset float64) *geom.Polygon {
	p := geom.NewPolygon(geom.XY)
	hx, hy := x+holeInset, y+holeInset
	hs := size - 2*holeInset
	p.MustSetCoords([][]geom.Coord{
		{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}},
		{{hx, hy}, {hx + hs, hy}, {hx + hs, hy + hs}, {hx, hy + hs}, {hx, hy}},
	})
	return p
}

func TestPolyDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     [4]float64 // x, y origin and size for two squares
		expected float64
	}{
		{name: "touching edge", a: [4]float64{0, 0, 10, 0}, b: [4]float64{10, 0, 10, 0}, expected: 0},
		{name: "overlapping", a: [4]float64{0, 0, 10, 0}, b: [4]float64{5, 5, 10, 0}, expected: 0},
		{name: "gap of 5", a: [4]float64{0, 0, 10, 0}, b: [4]float64{15, 0, 10, 0}, expected: 5},
		{name: "diagonal gap", a: [4]float64{0, 0, 10, 0}, b: [4]float64{13, 14, 10, 0}, expected: 5},
		{name: "touching corner", a: [4]float64{0, 0, 10, 0}, b: [4]float64{10, 10, 10, 0}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := square(tt.a[0], tt.a[1], tt.a[2])
			b := square(tt.b[0], tt.b[1], tt.b[2])
			assert.InDelta(t, tt.expected, polyDistance(a, b), 1e-9)
			assert.InDelta(t, tt.expected, polyDistance(b, a), 1e-9, "distance must be symmetric")
		})
	}
}

func TestPolyDistanceContainment(t *testing.T) {
	outer := square(0, 0, 100)
	inner := square(40, 40, 10)
	assert.Equal(t, 0.0, polyDistance(outer, inner))
	assert.Equal(t, 0.0, polyDistance(inner, outer))
}

func TestPolyDistanceHole(t *testing.T) {
	// A 0..10 square with a 2..8 hole. A parcel in the courtyard is
	// separated from the donut by the hole ring, not contained by it.
	d := donut(0, 0, 10, 2)

	// Courtyard parcel with a 1-unit gap to the hole boundary on all sides.
	inner := square(3, 3, 4)
	assert.InDelta(t, 1.0, polyDistance(d, inner), 1e-9)
	assert.InDelta(t, 1.0, polyDistance(inner, d), 1e-9)

	// Courtyard parcel flush against the hole boundary touches the donut.
	flush := square(2, 2, 6)
	assert.Equal(t, 0.0, polyDistance(d, flush))

	// A parcel overlapping the donut's solid area is still distance 0.
	overlapping := square(-1, -1, 3)
	assert.Equal(t, 0.0, polyDistance(d, overlapping))
}

func TestSharedBoundaryLengthAlongHole(t *testing.T) {
	d := donut(0, 0, 10, 2)

	// The flush courtyard parcel shares the full hole perimeter.
	flush := square(2, 2, 6)
	assert.InDelta(t, 24.0, sharedBoundaryLength(d, flush, 0), 1e-6)
}

func TestPointInRing(t *testing.T) {
	ring := []float64{0, 0, 10, 0, 10, 10, 0, 10, 0, 0}
	assert.True(t, pointInRing(5, 5, ring))
	assert.False(t, pointInRing(15, 5, ring))
	assert.False(t, pointInRing(-1, -1, ring))
}

func TestSharedBoundaryLength(t *testing.T) {
	a := square(0, 0, 10)

	// Full shared edge.
	b := square(10, 0, 10)
	assert.InDelta(t, 10.0, sharedBoundaryLength(a, b, 0), 1e-6)

	// Partial shared edge: b offset upward by 4 leaves 6 units in common.
	c := square(10, 4, 10)
	assert.InDelta(t, 6.0, sharedBoundaryLength(a, c, 0), 1e-6)

	// Disjoint with a gap: nothing within tolerance 0.
	d := square(15, 0, 10)
	assert.Equal(t, 0.0, sharedBoundaryLength(a, d, 0))

	// Same gap counted as frontage once tolerance covers it.
	assert.InDelta(t, 10.0, sharedBoundaryLength(a, d, 5), 1e-6)
}

func TestSegSegDistance(t *testing.T) {
	// Crossing segments.
	assert.Equal(t, 0.0, segSegDistance(0, 0, 10, 10, 0, 10, 10, 0))
	// Parallel horizontal segments 3 apart.
	assert.InDelta(t, 3.0, segSegDistance(0, 0, 10, 0, 0, 3, 10, 3), 1e-9)
	// Endpoint-to-endpoint.
	assert.InDelta(t, 5.0, segSegDistance(0, 0, 1, 0, 4, 4, 8, 4), 1e-9)
}
