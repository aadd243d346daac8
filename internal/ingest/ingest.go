// Package ingest loads the analysis inputs from JSON files: the well
// inventory and the spatial layers. All coordinates are expected in the
// projected working CRS; geometry validation happens downstream when the
// store is built.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wellshed/wellrisk/internal/domain"
	"github.com/wellshed/wellrisk/internal/geo"
)

// Layers is the decoded spatial input file. Any layer may be empty; the
// county use table is only consulted in enhanced safeguard mode.
type Layers struct {
	Aquifers      []jsonPolygon     `json:"aquifers"`
	Flowlines     [][]jsonPoint     `json:"flowlines"`
	DomesticWells []jsonTaggedPoint `json:"domestic_wells"`

	// CountyUseM3Yr maps county names to annual per-well domestic water
	// use.
	CountyUseM3Yr map[string]float64 `json:"county_use_m3_yr"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// jsonPolygon is an outer ring plus optional holes.
type jsonPolygon struct {
	Rings [][]jsonPoint `json:"rings"`
}

type jsonTaggedPoint struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	County string  `json:"county,omitempty"`
}

// LoadWells reads and validates the well inventory file. Wells must carry
// unique, non-empty IDs; everything else is checked at scoring time.
func LoadWells(path string) ([]domain.Well, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wells file: %w", err)
	}

	var wells []domain.Well
	if err := json.Unmarshal(data, &wells); err != nil {
		return nil, fmt.Errorf("parse wells file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(wells))
	for i, w := range wells {
		if w.ID == "" {
			return nil, fmt.Errorf("wells file %s: well at index %d has no id", path, i)
		}
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("wells file %s: duplicate well id %q", path, w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	return wells, nil
}

// LoadLayers reads the spatial layers file and converts it into geometry
// types ready for indexing.
func LoadLayers(path string) (aquifers []geo.Polygon, flowlines []geo.Polyline, domestic []geo.TaggedPoint, countyUse map[string]float64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("read layers file: %w", err)
	}

	var layers Layers
	if err := json.Unmarshal(data, &layers); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("parse layers file %s: %w", path, err)
	}

	for i, poly := range layers.Aquifers {
		if len(poly.Rings) == 0 {
			return nil, nil, nil, nil, fmt.Errorf("layers file %s: aquifer %d has no rings", path, i)
		}
		p := geo.Polygon{Rings: make([]geo.Ring, len(poly.Rings))}
		for j, ring := range poly.Rings {
			if len(ring) < 3 {
				return nil, nil, nil, nil, fmt.Errorf("layers file %s: aquifer %d ring %d has fewer than 3 vertices", path, i, j)
			}
			p.Rings[j] = toPoints(ring)
		}
		aquifers = append(aquifers, p)
	}

	for i, line := range layers.Flowlines {
		if len(line) < 2 {
			return nil, nil, nil, nil, fmt.Errorf("layers file %s: flowline %d has fewer than 2 vertices", path, i)
		}
		flowlines = append(flowlines, geo.Polyline(toPoints(line)))
	}

	// The tag is the county name: it is what the enhanced safeguard mode
	// keys the county water-use table by. Wells without a county carry an
	// empty tag and fall back to the default use rate.
	for _, dw := range layers.DomesticWells {
		domestic = append(domestic, geo.TaggedPoint{P: geo.Point{X: dw.X, Y: dw.Y}, Tag: dw.County})
	}

	return aquifers, flowlines, domestic, layers.CountyUseM3Yr, nil
}

func toPoints(pts []jsonPoint) []geo.Point {
	out := make([]geo.Point, len(pts))
	for i, p := range pts {
		out[i] = geo.Point{X: p.X, Y: p.Y}
	}
	return out
}
