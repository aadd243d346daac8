package domain

import "time"

// Component score names, in rubric order.
const (
	ComponentAquifer      = "aquifer_vulnerability"
	ComponentSurfaceWater = "surface_water_proximity"
	ComponentIntegrity    = "well_integrity"
	ComponentSpills       = "historical_spills"
	ComponentReceptors    = "human_receptors"
)

// ComponentScore is one named, bounded contribution to the final score,
// together with the raw measurement that produced it. Computed fresh per
// well per run and never mutated afterward.
type ComponentScore struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Max   float64 `json:"max"`

	// Raw measurements, set only where meaningful for the component.
	// DistanceM is nil when no feature exists to measure against
	// (the score degrades to 0 rather than carrying an infinity).
	DistanceM  *float64 `json:"distance_m,omitempty"`
	Intersects bool     `json:"intersects,omitempty"`
	Count      int      `json:"count,omitempty"`
}

// RiskTier labels a final score band.
type RiskTier string

const (
	TierHigh     RiskTier = "High"
	TierModerate RiskTier = "Moderate"
	TierLow      RiskTier = "Low"
)

// Bands holds the classification thresholds. A score ≥ High is TierHigh,
// ≥ Moderate is TierModerate, anything below is TierLow.
type Bands struct {
	High     float64 `json:"high"`
	Moderate float64 `json:"moderate"`
}

// Classify maps a final score to its risk tier.
func (b Bands) Classify(score float64) RiskTier {
	switch {
	case score >= b.High:
		return TierHigh
	case score >= b.Moderate:
		return TierModerate
	default:
		return TierLow
	}
}

// Percentiles are the Monte Carlo bounds on the safeguarded volume, in
// m³/yr.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// Safeguard quantifies the potable-water supply protected by plugging a
// well. Volumes are m³/yr; AcreFeetYr is the reporting conversion
// (1 acre-foot = 1233.48 m³).
type Safeguard struct {
	WaterM3Yr           float64      `json:"water_m3_yr"`
	WaterAcreFeetYr     float64      `json:"water_acft_yr"`
	LeakProbability     float64      `json:"leak_probability"`
	DemandM3Yr          float64      `json:"demand_m3_yr"`
	ContaminantLoadM3Yr float64      `json:"contaminant_load_m3_yr"`
	Percentiles         *Percentiles `json:"percentiles,omitempty"`
}

// WellResult is the aggregate scoring outcome for one well: component
// scores in rubric order, the summed final score, its tier, and the water
// safeguarded figures. This is the unit persisted to the cache and
// exported downstream.
type WellResult struct {
	Well           Well             `json:"well"`
	Components     []ComponentScore `json:"components"`
	FinalScore     float64          `json:"final_score"`
	Tier           RiskTier         `json:"risk_tier"`
	DomesticWells  int              `json:"domestic_wells_in_radius"`
	Safeguard      Safeguard        `json:"safeguard"`
	DataGap        bool             `json:"data_gap,omitempty"`
}

// ResultSet is a full run's output keyed by its input fingerprint.
// ComputedAt lives on the envelope, not on individual results, so two runs
// over identical inputs produce byte-identical WellResult records.
type ResultSet struct {
	Fingerprint string       `json:"fingerprint"`
	ComputedAt  time.Time    `json:"computed_at"`
	Results     []WellResult `json:"results"`
}
