package geo

import (
	"github.com/wellshed/wellrisk/internal/domain"
)

// Store holds the indexed layer geometries for one analysis run: aquifer
// polygons, surface-water flowlines, and domestic well points. Read-only
// after construction and safe for concurrent use.
type Store struct {
	Aquifers  *PolygonIndex
	Flowlines *LineIndex
	Domestic  *PointIndex
}

// NewStore validates the layers and builds their indexes. Empty layers are
// accepted and degrade to "no intersection" / infinite distance at query
// time; geometry that is still in geographic coordinates is rejected
// outright because proceeding would corrupt every distance-based component.
func NewStore(aquifers []Polygon, flowlines []Polyline, domestic []TaggedPoint, cellSize float64) (*Store, error) {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	var aquiferPts, flowPts, domesticPts []Point
	for _, poly := range aquifers {
		for _, ring := range poly.Rings {
			aquiferPts = append(aquiferPts, ring...)
		}
	}
	for _, line := range flowlines {
		flowPts = append(flowPts, line...)
	}
	for _, tp := range domestic {
		domesticPts = append(domesticPts, tp.P)
	}

	if err := CheckProjected("aquifer layer", aquiferPts); err != nil {
		return nil, err
	}
	if err := CheckProjected("flowline layer", flowPts); err != nil {
		return nil, err
	}
	if err := CheckProjected("domestic well layer", domesticPts); err != nil {
		return nil, err
	}

	return &Store{
		Aquifers:  NewPolygonIndex(aquifers, cellSize),
		Flowlines: NewLineIndex(flowlines, cellSize),
		Domestic:  NewPointIndex(domestic, cellSize),
	}, nil
}

// CheckProjected rejects coordinate sets that look geographic. A non-empty
// set where every vertex fits inside the lat/lon value range cannot be in a
// meter-based projected CRS at any realistic extent, so it is treated as an
// un-reprojected layer. Returns a ConfigurationError naming the layer.
func CheckProjected(name string, pts []Point) error {
	if len(pts) == 0 {
		return nil
	}
	for _, p := range pts {
		if p.X < -180 || p.X > 180 || p.Y < -90 || p.Y > 90 {
			return nil
		}
	}
	return &domain.ConfigurationError{
		Setting: "crs",
		Reason:  name + " appears to use geographic coordinates (degrees); reproject to the projected working CRS",
	}
}
