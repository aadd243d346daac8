// Package geo holds the cleaned layer geometries and the spatial indexes
// used to answer containment, nearest-distance, and radius queries for many
// wells. All coordinates are in a projected CRS with meter units; indexes
// are immutable after construction and safe for concurrent reads.
package geo

import "math"

// Point is a projected coordinate pair in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BBox is an axis-aligned bounding rectangle.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b BBox) contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Ring is a closed sequence of vertices. The first and last vertex need not
// be duplicated; the closing edge is implied.
type Ring []Point

// Polygon is an outer ring plus optional interior holes (ring 0 is the
// exterior).
type Polygon struct {
	Rings []Ring `json:"rings"`
}

// Polyline is an open sequence of connected vertices, e.g. a stream
// flowline.
type Polyline []Point

// ringBBox computes the bounding box of a ring.
func ringBBox(r Ring) BBox {
	b := BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range r {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// pointInRing is the even-odd ray-casting test. The tiny epsilon in the
// denominator guards against division by zero on horizontal edges.
func pointInRing(p Point, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if ((yi > p.Y) != (yj > p.Y)) &&
			(p.X < (xj-xi)*(p.Y-yi)/(yj-yi+1e-12)+xi) {
			inside = !inside
		}
	}
	return inside
}

// pointInPolygon reports whether p falls inside the outer ring and outside
// every hole.
func pointInPolygon(p Point, poly Polygon) bool {
	if len(poly.Rings) == 0 || !pointInRing(p, poly.Rings[0]) {
		return false
	}
	for _, hole := range poly.Rings[1:] {
		if pointInRing(p, hole) {
			return false
		}
	}
	return true
}

// pointSegmentDistance is the exact euclidean distance from p to the
// segment ab.
func pointSegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
