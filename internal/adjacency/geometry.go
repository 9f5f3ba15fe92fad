package adjacency

import (
	"math"

	"github.com/twpayne/go-geom"
)

// epsilon absorbs floating-point noise when testing "touching" boundaries:
// coordinates snapped by upstream GIS tooling can disagree in the last few
// bits.
const epsilon = 1e-9

// polyRings is one polygon's boundary: the exterior shell plus any interior
// hole rings, as flat XY coordinate slices.
type polyRings struct {
	shell []float64
	holes [][]float64
}

func polygonRings(g geom.T) []polyRings {
	switch t := g.(type) {
	case *geom.Polygon:
		if pr, ok := onePolygonRings(t); ok {
			return []polyRings{pr}
		}
		return nil
	case *geom.MultiPolygon:
		polys := make([]polyRings, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			if pr, ok := onePolygonRings(t.Polygon(i)); ok {
				polys = append(polys, pr)
			}
		}
		return polys
	default:
		return nil
	}
}

func onePolygonRings(p *geom.Polygon) (polyRings, bool) {
	n := p.NumLinearRings()
	if n == 0 {
		return polyRings{}, false
	}
	pr := polyRings{shell: flatXY(p.LinearRing(0))}
	for i := 1; i < n; i++ {
		pr.holes = append(pr.holes, flatXY(p.LinearRing(i)))
	}
	return pr, true
}

// boundaryRings returns every ring of the geometry, shells and holes alike.
// A hole ring is boundary too: a parcel sitting inside another's courtyard
// is separated from it by the hole ring, not the shell.
func boundaryRings(polys []polyRings) [][]float64 {
	rings := make([][]float64, 0, len(polys))
	for _, p := range polys {
		rings = append(rings, p.shell)
		rings = append(rings, p.holes...)
	}
	return rings
}

func flatXY(ring *geom.LinearRing) []float64 {
	stride := ring.Stride()
	coords := ring.FlatCoords()
	if stride == 2 {
		return coords
	}
	n := len(coords) / stride
	flat := make([]float64, 0, n*2)
	for i := 0; i < n; i++ {
		flat = append(flat, coords[i*stride], coords[i*stride+1])
	}
	return flat
}

// polyDistance returns the minimum planar distance between two polygonal
// geometries: zero when they overlap or touch, otherwise the smallest
// boundary-to-boundary separation.
func polyDistance(a, b geom.T) float64 {
	polysA := polygonRings(a)
	polysB := polygonRings(b)
	if len(polysA) == 0 || len(polysB) == 0 {
		return math.Inf(1)
	}

	// Containment check: any boundary vertex of one strictly inside the
	// other's filled area means overlap. A vertex inside a hole is not
	// inside the polygon.
	if anyVertexInside(polysA, polysB) || anyVertexInside(polysB, polysA) {
		return 0
	}

	min := math.Inf(1)
	for _, ra := range boundaryRings(polysA) {
		for _, rb := range boundaryRings(polysB) {
			if d := ringDistance(ra, rb); d < min {
				min = d
				if min == 0 {
					return 0
				}
			}
		}
	}
	return min
}

func anyVertexInside(vertexPolys, containerPolys []polyRings) bool {
	for _, vr := range boundaryRings(vertexPolys) {
		for i := 0; i+1 < len(vr); i += 2 {
			if containsPoint(containerPolys, vr[i], vr[i+1]) {
				return true
			}
		}
	}
	return false
}

// containsPoint reports whether (x, y) lies strictly inside the filled area
// of any polygon: inside its shell and outside all of its holes.
func containsPoint(polys []polyRings, x, y float64) bool {
	for _, p := range polys {
		if !pointInRing(x, y, p.shell) {
			continue
		}
		inHole := false
		for _, h := range p.holes {
			if pointInRing(x, y, h) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// pointInRing reports whether (x, y) lies strictly inside the ring, by ray
// casting. Points exactly on the boundary are reported outside; boundary
// contact is already covered by the segment-distance test.
func pointInRing(x, y float64, ring []float64) bool {
	n := len(ring) / 2
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i*2], ring[i*2+1]
		xj, yj := ring[j*2], ring[j*2+1]
		if (yi > y) != (yj > y) {
			cross := (xj-xi)*(y-yi)/(yj-yi) + xi
			if x < cross {
				inside = !inside
			}
		}
	}
	return inside
}

func ringDistance(a, b []float64) float64 {
	min := math.Inf(1)
	for i := 0; i+3 < len(a); i += 2 {
		for j := 0; j+3 < len(b); j += 2 {
			d := segSegDistance(
				a[i], a[i+1], a[i+2], a[i+3],
				b[j], b[j+1], b[j+2], b[j+3],
			)
			if d < min {
				min = d
				if min == 0 {
					return 0
				}
			}
		}
	}
	return min
}

// segSegDistance returns the minimum distance between two segments, zero if
// they intersect.
func segSegDistance(ax, ay, bx, by, cx, cy, dx, dy float64) float64 {
	if segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy) {
		return 0
	}
	d := pointSegDistance(ax, ay, cx, cy, dx, dy)
	if v := pointSegDistance(bx, by, cx, cy, dx, dy); v < d {
		d = v
	}
	if v := pointSegDistance(cx, cy, ax, ay, bx, by); v < d {
		d = v
	}
	if v := pointSegDistance(dx, dy, ax, ay, bx, by); v < d {
		d = v
	}
	return d
}

func pointSegDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

func segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := cross(cx, cy, dx, dy, ax, ay)
	d2 := cross(cx, cy, dx, dy, bx, by)
	d3 := cross(ax, ay, bx, by, cx, cy)
	d4 := cross(ax, ay, bx, by, dx, dy)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(cx, cy, dx, dy, ax, ay)) ||
		(d2 == 0 && onSegment(cx, cy, dx, dy, bx, by)) ||
		(d3 == 0 && onSegment(ax, ay, bx, by, cx, cy)) ||
		(d4 == 0 && onSegment(ax, ay, bx, by, dx, dy))
}

func cross(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func onSegment(ax, ay, bx, by, px, py float64) bool {
	return math.Min(ax, bx)-epsilon <= px && px <= math.Max(ax, bx)+epsilon &&
		math.Min(ay, by)-epsilon <= py && py <= math.Max(ay, by)+epsilon
}

// sharedBoundaryLength approximates the length of boundary shared between
// two polygonal geometries: the summed overlap of near-collinear segment
// pairs whose separation is within tol. In a clean cadastral fabric touching
// parcels share exact segments and this is their common frontage.
func sharedBoundaryLength(a, b geom.T, tol float64) float64 {
	if tol < epsilon {
		tol = epsilon
	}
	total := 0.0
	for _, ra := range boundaryRings(polygonRings(a)) {
		for _, rb := range boundaryRings(polygonRings(b)) {
			for i := 0; i+3 < len(ra); i += 2 {
				for j := 0; j+3 < len(rb); j += 2 {
					total += collinearOverlap(
						ra[i], ra[i+1], ra[i+2], ra[i+3],
						rb[j], rb[j+1], rb[j+2], rb[j+3],
						tol,
					)
				}
			}
		}
	}
	return total
}

// collinearOverlap returns the length of the overlapping interval of two
// segments that are parallel within tolerance and separated by at most tol.
func collinearOverlap(ax, ay, bx, by, cx, cy, dx1, dy1, tol float64) float64 {
	ux, uy := bx-ax, by-ay
	segLen := math.Hypot(ux, uy)
	if segLen < epsilon {
		return 0
	}
	ux, uy = ux/segLen, uy/segLen

	vx, vy := dx1-cx, dy1-cy
	otherLen := math.Hypot(vx, vy)
	if otherLen < epsilon {
		return 0
	}

	// Parallel test: the other segment's direction must align with ours.
	if math.Abs(ux*(vy/otherLen)-uy*(vx/otherLen)) > 1e-6 {
		return 0
	}

	// Perpendicular separation of both endpoints must be within tol.
	if math.Abs(ux*(cy-ay)-uy*(cx-ax)) > tol || math.Abs(ux*(dy1-ay)-uy*(dx1-ax)) > tol {
		return 0
	}

	// Project the other segment onto ours and intersect the intervals.
	t0 := (cx-ax)*ux + (cy-ay)*uy
	t1 := (dx1-ax)*ux + (dy1-ay)*uy
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	lo := math.Max(0, t0)
	hi := math.Min(segLen, t1)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
