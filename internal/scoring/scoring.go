// Package scoring implements the five-component risk rubric. Each scorer
// is a pure function of a well plus the read-only geometry store, returning
// a bounded ComponentScore; the aggregator sums them into the final score.
// Scorers are independent strategies so any one can be swapped (e.g. a real
// DRASTIC raster, a real spill registry) without touching the aggregator.
package scoring

import (
	"fmt"
	"math"

	"github.com/wellshed/wellrisk/internal/domain"
	"github.com/wellshed/wellrisk/internal/geo"
)

// Component maxima. They sum to 100 so the final score is already on the
// 0-100 scale without re-weighting.
const (
	MaxAquifer      = 30.0
	MaxSurfaceWater = 20.0
	MaxIntegrity    = 20.0
	MaxSpills       = 15.0
	MaxReceptors    = 15.0
)

// Params are the tunable scoring constants.
type Params struct {
	// AquiferDecayM is the exponential decay constant (meters) for the
	// proximity part of the aquifer component.
	AquiferDecayM float64
	// FlowlineDecayM is the decay constant (meters) for surface water
	// proximity.
	FlowlineDecayM float64
	// ReceptorRadiusM is the search radius (meters) for nearby domestic
	// wells.
	ReceptorRadiusM float64
	// SpillScore is the flat historical-spills placeholder, a named
	// configuration default standing in for per-well spill records.
	SpillScore float64
}

// DefaultParams mirror the reference dataset tuning: multi-kilometer decay
// ranges and the 1 km receptor radius.
func DefaultParams() Params {
	return Params{
		AquiferDecayM:   1000,
		FlowlineDecayM:  500,
		ReceptorRadiusM: 1000,
		SpillScore:      5,
	}
}

// Scorer maps a well and the geometry store to one bounded component score.
type Scorer interface {
	Name() string
	Max() float64
	Score(well domain.Well, store *geo.Store) (domain.ComponentScore, error)
}

// clamp bounds v to [0, max]. Every formula clamps after evaluation so a
// component can never leave its documented range.
func clamp(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// finiteDistance converts a query distance into an optional raw
// measurement: infinities (empty layers) become nil.
func finiteDistance(d float64) *float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return nil
	}
	return &d
}

// AquiferScorer awards 20 points flat when the well sits inside any aquifer
// polygon, plus up to 10 proximity points decaying exponentially with the
// distance to the nearest aquifer boundary. An intersecting well gets the
// full proximity share as well, for the component maximum of 30.
type AquiferScorer struct {
	DecayM float64
}

func (s AquiferScorer) Name() string { return domain.ComponentAquifer }
func (s AquiferScorer) Max() float64 { return MaxAquifer }

func (s AquiferScorer) Score(well domain.Well, store *geo.Store) (domain.ComponentScore, error) {
	p := geo.Point{X: well.X, Y: well.Y}

	if store.Aquifers.Contains(p) {
		zero := 0.0
		return domain.ComponentScore{
			Name:       s.Name(),
			Value:      MaxAquifer,
			Max:        MaxAquifer,
			Intersects: true,
			DistanceM:  &zero,
		}, nil
	}

	dist := store.Aquifers.NearestBoundary(p)
	value := 0.0
	if !math.IsInf(dist, 1) {
		value = 10 * math.Exp(-dist/s.DecayM)
	}
	return domain.ComponentScore{
		Name:      s.Name(),
		Value:     clamp(value, MaxAquifer),
		Max:       MaxAquifer,
		DistanceM: finiteDistance(dist),
	}, nil
}

// SurfaceWaterScorer scores proximity to the nearest flowline with a pure
// exponential decay: 20 points at distance zero, asymptotically zero far
// away.
type SurfaceWaterScorer struct {
	DecayM float64
}

func (s SurfaceWaterScorer) Name() string { return domain.ComponentSurfaceWater }
func (s SurfaceWaterScorer) Max() float64 { return MaxSurfaceWater }

func (s SurfaceWaterScorer) Score(well domain.Well, store *geo.Store) (domain.ComponentScore, error) {
	dist := store.Flowlines.Nearest(geo.Point{X: well.X, Y: well.Y})
	value := 0.0
	if !math.IsInf(dist, 1) {
		value = MaxSurfaceWater * math.Exp(-dist/s.DecayM)
	}
	return domain.ComponentScore{
		Name:      s.Name(),
		Value:     clamp(value, MaxSurfaceWater),
		Max:       MaxSurfaceWater,
		DistanceM: finiteDistance(dist),
	}, nil
}

// IntegrityScorer combines well age and surface-casing depth. Age saturates
// at 50 years for 10 points; casing contributes 10 points at 0 ft shrinking
// to 0 at 1500 ft or deeper. Missing attributes are a DataError, never a
// silent default.
type IntegrityScorer struct{}

func (IntegrityScorer) Name() string { return domain.ComponentIntegrity }
func (IntegrityScorer) Max() float64 { return MaxIntegrity }

func (IntegrityScorer) Score(well domain.Well, _ *geo.Store) (domain.ComponentScore, error) {
	if well.AgeYears == nil {
		return domain.ComponentScore{}, &domain.DataError{WellID: well.ID, Attribute: "age_years"}
	}
	if well.CasingDepthFt == nil {
		return domain.ComponentScore{}, &domain.DataError{WellID: well.ID, Attribute: "casing_depth_ft"}
	}

	age := math.Min(10, 10*(*well.AgeYears)/50)
	casing := 10 * math.Max(0, 1-(*well.CasingDepthFt)/1500)
	return domain.ComponentScore{
		Name:  domain.ComponentIntegrity,
		Value: clamp(age+casing, MaxIntegrity),
		Max:   MaxIntegrity,
	}, nil
}

// SpillScorer awards the flat placeholder value pending a real historical
// spill dataset. Replacing it with live data is a configuration change.
type SpillScorer struct {
	Value float64
}

func (SpillScorer) Name() string { return domain.ComponentSpills }
func (SpillScorer) Max() float64 { return MaxSpills }

func (s SpillScorer) Score(_ domain.Well, _ *geo.Store) (domain.ComponentScore, error) {
	return domain.ComponentScore{
		Name:  domain.ComponentSpills,
		Value: clamp(s.Value, MaxSpills),
		Max:   MaxSpills,
	}, nil
}

// ReceptorScorer counts domestic wells within the search radius. The
// mapping is a linear ramp of 3 points per well saturating at 5 wells for
// the full 15: the source documentation only fixes "5+ → max", and the
// ramp is the simplest monotonic, saturating choice.
type ReceptorScorer struct {
	RadiusM float64
}

func (ReceptorScorer) Name() string { return domain.ComponentReceptors }
func (ReceptorScorer) Max() float64 { return MaxReceptors }

func (s ReceptorScorer) Score(well domain.Well, store *geo.Store) (domain.ComponentScore, error) {
	count := store.Domestic.CountWithin(geo.Point{X: well.X, Y: well.Y}, s.RadiusM)
	return domain.ComponentScore{
		Name:  domain.ComponentReceptors,
		Value: clamp(3*float64(count), MaxReceptors),
		Max:   MaxReceptors,
		Count: count,
	}, nil
}

// Aggregator runs the scorer set in rubric order and sums the components
// into the final score and tier. The sum of scorer maxima must equal 100.
type Aggregator struct {
	scorers []Scorer
	bands   domain.Bands
}

// NewAggregator builds the default five-scorer rubric for the given params
// and classification bands.
func NewAggregator(params Params, bands domain.Bands) (*Aggregator, error) {
	return NewAggregatorWith(bands,
		AquiferScorer{DecayM: params.AquiferDecayM},
		SurfaceWaterScorer{DecayM: params.FlowlineDecayM},
		IntegrityScorer{},
		SpillScorer{Value: params.SpillScore},
		ReceptorScorer{RadiusM: params.ReceptorRadiusM},
	)
}

// NewAggregatorWith builds an aggregator over an explicit scorer set,
// rejecting rubrics whose maxima do not sum to 100.
func NewAggregatorWith(bands domain.Bands, scorers ...Scorer) (*Aggregator, error) {
	total := 0.0
	for _, s := range scorers {
		total += s.Max()
	}
	if total != 100 {
		return nil, fmt.Errorf("scorer maxima sum to %g, want 100", total)
	}
	return &Aggregator{scorers: scorers, bands: bands}, nil
}

// Score computes all components for one well and returns them with the
// summed final score and its tier.
func (a *Aggregator) Score(well domain.Well, store *geo.Store) ([]domain.ComponentScore, float64, domain.RiskTier, error) {
	components := make([]domain.ComponentScore, 0, len(a.scorers))
	total := 0.0
	for _, s := range a.scorers {
		cs, err := s.Score(well, store)
		if err != nil {
			return nil, 0, "", fmt.Errorf("score component %s: %w", s.Name(), err)
		}
		components = append(components, cs)
		total += cs.Value
	}
	total = clamp(total, 100)
	return components, total, a.bands.Classify(total), nil
}
