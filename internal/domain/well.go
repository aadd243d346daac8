package domain

// DrasticClass is a hydrogeological aquifer-vulnerability classification
// (Depth, Recharge, Aquifer media, Soil, Topography, Impact, Conductivity).
// It is treated as a provided attribute, not a computed one.
type DrasticClass string

const (
	DrasticVeryHigh DrasticClass = "very_high"
	DrasticHigh     DrasticClass = "high"
	DrasticModerate DrasticClass = "moderate"
	DrasticLow      DrasticClass = "low"
	DrasticVeryLow  DrasticClass = "very_low"
)

// Factor maps the class to its leak-probability multiplier. Wells without a
// class (or with an unrecognized one) get 1.0, the neutral factor.
func (c DrasticClass) Factor() float64 {
	switch c {
	case DrasticVeryHigh:
		return 1.0
	case DrasticHigh:
		return 0.8
	case DrasticModerate:
		return 0.6
	case DrasticLow:
		return 0.4
	case DrasticVeryLow:
		return 0.2
	default:
		return 1.0
	}
}

// Well is one orphaned oil/gas well as handed over by the ingestion
// collaborator. Coordinates are in the projected working CRS (meters).
// Immutable once loaded.
//
// AgeYears and CasingDepthFt are pointers because "absent" must be
// distinguishable from zero: a missing integrity attribute biases the score
// and is surfaced as a DataError instead of being defaulted.
type Well struct {
	ID            string       `json:"id"`
	Name          string       `json:"name,omitempty"`
	X             float64      `json:"x"`
	Y             float64      `json:"y"`
	AgeYears      *float64     `json:"age_years,omitempty"`
	CasingDepthFt *float64     `json:"casing_depth_ft,omitempty"`
	County        string       `json:"county,omitempty"`
	Drastic       DrasticClass `json:"drastic_class,omitempty"`
}
