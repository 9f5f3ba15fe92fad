package adjacency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/glassbox-planner/compat-cli/internal/parcel"
)

func square(x, y, size float64) *geom.Polygon {
	p := geom.NewPolygon(geom.XY)
	p.MustSetCoords([][]geom.Coord{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}})
	return p
}

func testParcels() []parcel.Parcel {
	// Three 10x10 squares in a row: A touches B, B touches C, A and C are
	// 10 apart. D sits far away.
	return []parcel.Parcel{
		{ID: "A", Category: "Residential", Geometry: square(0, 0, 10)},
		{ID: "B", Category: "Industrial", Geometry: square(10, 0, 10)},
		{ID: "C", Category: "Green Space", Geometry: square(20, 0, 10)},
		{ID: "D", Category: "Residential", Geometry: square(1000, 1000, 10)},
	}
}

func TestBuildAndTouchNeighbors(t *testing.T) {
	idx, flagged, err := Build(testParcels(), Definition{Distance: 0})
	require.NoError(t, err)
	assert.Empty(t, flagged)
	assert.Equal(t, 4, idx.Len())

	edges := idx.NeighborsOf("B")
	require.Len(t, edges, 2)
	assert.Equal(t, "A", edges[0].NeighborID)
	assert.Equal(t, "C", edges[1].NeighborID)

	// Shared edge of two 10x10 squares is 10 units long.
	assert.InDelta(t, 10.0, edges[0].Weight, 1e-6)

	// Self-pairs are excluded.
	for _, e := range idx.NeighborsOf("A") {
		assert.NotEqual(t, "A", e.NeighborID)
	}
}

func TestWithinDistanceNeighbors(t *testing.T) {
	idx, _, err := Build(testParcels(), Definition{Distance: 12})
	require.NoError(t, err)

	// With a 12-unit threshold A also reaches C (gap of 10).
	edges := idx.NeighborsOf("A")
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.NeighborID
	}
	assert.Equal(t, []string{"B", "C"}, ids)
}

func TestIsolatedParcelHasNoNeighbors(t *testing.T) {
	idx, _, err := Build(testParcels(), Definition{Distance: 0})
	require.NoError(t, err)
	assert.Empty(t, idx.NeighborsOf("D"))
}

func TestOverlappingParcelsAreNeighbors(t *testing.T) {
	parcels := []parcel.Parcel{
		{ID: "A", Geometry: square(0, 0, 10)},
		{ID: "B", Geometry: square(5, 5, 10)},
	}
	idx, _, err := Build(parcels, Definition{Distance: 0})
	require.NoError(t, err)

	edges := idx.NeighborsOf("A")
	require.Len(t, edges, 1)
	assert.Equal(t, "B", edges[0].NeighborID)
}

func TestInvalidGeometryFlaggedNotDropped(t *testing.T) {
	bad := geom.NewPolygon(geom.XY)
	bad.MustSetCoords([][]geom.Coord{{{0, 0}, {1, 1}, {2, 2}, {0, 0}}})

	parcels := append(testParcels(), parcel.Parcel{ID: "E", Geometry: bad})
	idx, flagged, err := Build(parcels, Definition{Distance: 0})
	require.NoError(t, err)

	require.Len(t, flagged, 1)
	assert.Equal(t, "E", flagged[0].ParcelID)
	assert.NotEmpty(t, flagged[0].Reason)
	assert.False(t, idx.Contains("E"))
	assert.Empty(t, idx.NeighborsOf("E"))
	assert.Equal(t, 4, idx.Len())
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	parcels := []parcel.Parcel{
		{ID: "A", Geometry: square(0, 0, 10)},
		{ID: "A", Geometry: square(20, 0, 10)},
	}
	_, _, err := Build(parcels, Definition{Distance: 0})
	assert.Error(t, err)
}

func TestBuildRejectsNegativeDistance(t *testing.T) {
	_, _, err := Build(testParcels(), Definition{Distance: -1})
	assert.Error(t, err)
}

func TestNeighborsDeterministicOrder(t *testing.T) {
	idx, _, err := Build(testParcels(), Definition{Distance: 12})
	require.NoError(t, err)

	first := idx.NeighborsOf("B")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, idx.NeighborsOf("B"))
	}
}
