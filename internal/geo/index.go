package geo

import (
	"math"
	"sort"
)

// DefaultCellSize is the uniform grid cell edge in meters. 500 m keeps cell
// occupancy low for statewide hydrography layers while letting the 1 km
// receptor radius resolve in a handful of cells.
const DefaultCellSize = 500.0

type cellKey struct{ x, y int }

type segment struct{ a, b Point }

// segmentIndex is a uniform grid over line segments supporting repeated
// nearest-distance queries without re-scanning the full geometry set. The
// same structure backs both flowline and polygon-boundary queries.
type segmentIndex struct {
	cellSize float64
	cells    map[cellKey][]segment
	minCell  cellKey
	maxCell  cellKey
	n        int
}

func newSegmentIndex(cellSize float64) *segmentIndex {
	return &segmentIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey][]segment),
	}
}

func (ix *segmentIndex) cellOf(p Point) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / ix.cellSize)),
		y: int(math.Floor(p.Y / ix.cellSize)),
	}
}

// add registers a segment in every cell overlapped by its bounding box.
func (ix *segmentIndex) add(a, b Point) {
	lo := ix.cellOf(Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)})
	hi := ix.cellOf(Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)})
	for cx := lo.x; cx <= hi.x; cx++ {
		for cy := lo.y; cy <= hi.y; cy++ {
			k := cellKey{x: cx, y: cy}
			ix.cells[k] = append(ix.cells[k], segment{a: a, b: b})
		}
	}
	if ix.n == 0 {
		ix.minCell, ix.maxCell = lo, hi
	} else {
		ix.minCell.x = min(ix.minCell.x, lo.x)
		ix.minCell.y = min(ix.minCell.y, lo.y)
		ix.maxCell.x = max(ix.maxCell.x, hi.x)
		ix.maxCell.y = max(ix.maxCell.y, hi.y)
	}
	ix.n++
}

// nearest returns the minimum distance from p to any indexed segment, or
// +Inf when the index is empty. It expands outward one cell ring at a time
// and stops once no unvisited ring can hold a closer segment.
func (ix *segmentIndex) nearest(p Point) float64 {
	if ix.n == 0 {
		return math.Inf(1)
	}

	center := ix.cellOf(p)
	maxRing := ix.maxChebyshevRadius(center)
	best := math.Inf(1)

	for r := 0; r <= maxRing; r++ {
		// A segment in a ring-r cell is at least (r-1) cell widths away.
		if float64(r-1)*ix.cellSize > best {
			break
		}
		for _, k := range ringCells(center, r) {
			for _, s := range ix.cells[k] {
				if d := pointSegmentDistance(p, s.a, s.b); d < best {
					best = d
				}
			}
		}
	}
	return best
}

// maxChebyshevRadius bounds the ring search by the populated cell extent.
func (ix *segmentIndex) maxChebyshevRadius(c cellKey) int {
	dx := max(abs(c.x-ix.minCell.x), abs(c.x-ix.maxCell.x))
	dy := max(abs(c.y-ix.minCell.y), abs(c.y-ix.maxCell.y))
	return max(dx, dy)
}

// ringCells enumerates the cells at Chebyshev radius r around c.
func ringCells(c cellKey, r int) []cellKey {
	if r == 0 {
		return []cellKey{c}
	}
	cells := make([]cellKey, 0, 8*r)
	for x := c.x - r; x <= c.x+r; x++ {
		cells = append(cells, cellKey{x: x, y: c.y - r}, cellKey{x: x, y: c.y + r})
	}
	for y := c.y - r + 1; y <= c.y+r-1; y++ {
		cells = append(cells, cellKey{x: c.x - r, y: y}, cellKey{x: c.x + r, y: y})
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PolygonIndex answers containment and nearest-boundary queries over a
// polygon layer (aquifers).
type PolygonIndex struct {
	polys    []Polygon
	bounds   []BBox
	boundary *segmentIndex
}

// NewPolygonIndex builds the index. An empty layer is valid: containment is
// always false and boundary distance is +Inf.
func NewPolygonIndex(polys []Polygon, cellSize float64) *PolygonIndex {
	ix := &PolygonIndex{
		polys:    polys,
		bounds:   make([]BBox, len(polys)),
		boundary: newSegmentIndex(cellSize),
	}
	for i, poly := range polys {
		if len(poly.Rings) == 0 {
			continue
		}
		ix.bounds[i] = ringBBox(poly.Rings[0])
		for _, ring := range poly.Rings {
			for j := range ring {
				ix.boundary.add(ring[j], ring[(j+1)%len(ring)])
			}
		}
	}
	return ix
}

// Empty reports whether the layer has no features.
func (ix *PolygonIndex) Empty() bool { return len(ix.polys) == 0 }

// Contains reports whether p lies inside any polygon.
func (ix *PolygonIndex) Contains(p Point) bool {
	for i, poly := range ix.polys {
		if ix.bounds[i].contains(p) && pointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

// NearestBoundary returns the distance in meters from p to the closest
// polygon boundary, or +Inf for an empty layer.
func (ix *PolygonIndex) NearestBoundary(p Point) float64 {
	return ix.boundary.nearest(p)
}

// LineIndex answers nearest-distance queries over a line layer (flowlines).
type LineIndex struct {
	segs *segmentIndex
}

// NewLineIndex builds the index. Degenerate polylines with fewer than two
// vertices are skipped.
func NewLineIndex(lines []Polyline, cellSize float64) *LineIndex {
	ix := &LineIndex{segs: newSegmentIndex(cellSize)}
	for _, line := range lines {
		for i := 0; i+1 < len(line); i++ {
			ix.segs.add(line[i], line[i+1])
		}
	}
	return ix
}

// Empty reports whether the layer has no features.
func (ix *LineIndex) Empty() bool { return ix.segs.n == 0 }

// Nearest returns the distance in meters from p to the closest flowline,
// or +Inf for an empty layer.
func (ix *LineIndex) Nearest(p Point) float64 {
	return ix.segs.nearest(p)
}

// TaggedPoint is a point feature with an optional tag, used for domestic
// wells carrying a county identifier.
type TaggedPoint struct {
	P   Point  `json:"point"`
	Tag string `json:"tag,omitempty"`
}

// Neighbor is a point feature found within a query radius.
type Neighbor struct {
	Tag       string
	DistanceM float64
}

// PointIndex answers radius queries over a point layer (domestic wells).
type PointIndex struct {
	cellSize float64
	cells    map[cellKey][]TaggedPoint
	n        int
}

// NewPointIndex builds the index.
func NewPointIndex(pts []TaggedPoint, cellSize float64) *PointIndex {
	ix := &PointIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey][]TaggedPoint),
	}
	for _, tp := range pts {
		k := cellKey{
			x: int(math.Floor(tp.P.X / cellSize)),
			y: int(math.Floor(tp.P.Y / cellSize)),
		}
		ix.cells[k] = append(ix.cells[k], tp)
		ix.n++
	}
	return ix
}

// Empty reports whether the layer has no features.
func (ix *PointIndex) Empty() bool { return ix.n == 0 }

// WithinRadius returns every indexed point within radius meters of p,
// sorted by distance (ties broken by tag) so callers iterate in a
// deterministic order.
func (ix *PointIndex) WithinRadius(p Point, radius float64) []Neighbor {
	if ix.n == 0 || radius <= 0 {
		return nil
	}

	lo := cellKey{
		x: int(math.Floor((p.X - radius) / ix.cellSize)),
		y: int(math.Floor((p.Y - radius) / ix.cellSize)),
	}
	hi := cellKey{
		x: int(math.Floor((p.X + radius) / ix.cellSize)),
		y: int(math.Floor((p.Y + radius) / ix.cellSize)),
	}

	var found []Neighbor
	for cx := lo.x; cx <= hi.x; cx++ {
		for cy := lo.y; cy <= hi.y; cy++ {
			for _, tp := range ix.cells[cellKey{x: cx, y: cy}] {
				d := math.Hypot(tp.P.X-p.X, tp.P.Y-p.Y)
				if d <= radius {
					found = append(found, Neighbor{Tag: tp.Tag, DistanceM: d})
				}
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].DistanceM != found[j].DistanceM {
			return found[i].DistanceM < found[j].DistanceM
		}
		return found[i].Tag < found[j].Tag
	})
	return found
}

// CountWithin returns the number of indexed points within radius meters of p.
func (ix *PointIndex) CountWithin(p Point, radius float64) int {
	return len(ix.WithinRadius(p, radius))
}
