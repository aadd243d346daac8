// Package safeguard converts a well's risk score and the surrounding
// domestic-water demand into the annual volume of potable water protected
// by plugging the well, optionally with Monte Carlo percentile bounds.
package safeguard

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wellshed/wellrisk/internal/domain"
	"github.com/wellshed/wellrisk/internal/geo"
)

// M3PerAcreFoot converts cubic meters to acre-feet for reporting.
const M3PerAcreFoot = 1233.48

// Sigmoid calibration: probability 0.5 at score 50, ~0.9 near score 67.
const (
	sigmoidCenter = 50.0
	sigmoidSpread = 7.5
)

const daysPerYear = 365.0

// Mode selects the computation model.
type Mode string

const (
	// ModeBasic scales a flat per-well withdrawal by the risk score.
	ModeBasic Mode = "basic"
	// ModeEnhanced weights county-specific demand by distance and applies
	// the sigmoid leak probability.
	ModeEnhanced Mode = "enhanced"
)

// Distribution names the Monte Carlo leak-rate sampling shape.
type Distribution string

const (
	DistUniform    Distribution = "uniform"
	DistTriangular Distribution = "triangular"
)

// Config holds the water-safeguarded model settings.
type Config struct {
	Mode    Mode
	RadiusM float64

	// BasicWithdrawalM3Yr is the flat annual withdrawal per domestic well
	// used by the basic mode.
	BasicWithdrawalM3Yr float64

	// CountyUseM3Yr maps county names to annual per-well water use for the
	// enhanced mode; DefaultCountyUseM3Yr covers counties missing from the
	// table.
	CountyUseM3Yr        map[string]float64
	DefaultCountyUseM3Yr float64

	// Leak-rate range in m³/day, sampled by Monte Carlo and averaged for
	// the point-estimate contaminant load.
	LeakRateMinM3Day float64
	LeakRateMaxM3Day float64
	LeakRateDist     Distribution

	// Monte Carlo settings. Seed 0 means an unseeded run: sampling draws
	// from a time-seeded source and is intentionally not reproducible.
	MonteCarlo bool
	Iterations int
	Seed       int64
}

// DefaultConfig mirrors the reference dataset tuning.
func DefaultConfig() Config {
	return Config{
		Mode:                 ModeBasic,
		RadiusM:              1000,
		BasicWithdrawalM3Yr:  300,
		DefaultCountyUseM3Yr: 300,
		LeakRateMinM3Day:     0.5,
		LeakRateMaxM3Day:     5.9,
		LeakRateDist:         DistUniform,
		Iterations:           1000,
	}
}

// Validate rejects settings that would corrupt or never terminate the
// computation.
func (c Config) Validate() error {
	if c.Mode != ModeBasic && c.Mode != ModeEnhanced {
		return &domain.ConfigurationError{Setting: "safeguard_mode", Reason: "must be basic or enhanced"}
	}
	if c.RadiusM <= 0 {
		return &domain.ConfigurationError{Setting: "receptor_radius_m", Reason: "must be positive"}
	}
	if c.LeakRateMinM3Day < 0 {
		return &domain.ConfigurationError{Setting: "leak_rate_range", Reason: "negative leak rates are not physical"}
	}
	if c.LeakRateMaxM3Day < c.LeakRateMinM3Day {
		return &domain.ConfigurationError{Setting: "leak_rate_range", Reason: "maximum below minimum"}
	}
	if c.LeakRateDist != DistUniform && c.LeakRateDist != DistTriangular {
		return &domain.ConfigurationError{Setting: "leak_rate_distribution", Reason: "must be uniform or triangular"}
	}
	if c.MonteCarlo && c.Iterations < 1 {
		return &domain.ConfigurationError{Setting: "monte_carlo_iterations", Reason: "must be at least 1"}
	}
	return nil
}

// LeakProbability maps a final score to a leak probability in (0, 1) via a
// sigmoid centered at score 50 with spread 7.5.
func LeakProbability(score float64) float64 {
	return 1 / (1 + math.Exp(-(score-sigmoidCenter)/sigmoidSpread))
}

// Calculator computes safeguarded-water figures. The random source is
// injected so deterministic seeding is testable; the calculator itself is
// used from a single goroutine per instance.
type Calculator struct {
	cfg Config
	rng *rand.Rand
}

// NewCalculator validates the config and builds a calculator. Pass a nil
// rng to derive one from the configured seed (or the clock when no seed is
// set).
func NewCalculator(cfg Config, rng *rand.Rand) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Calculator{cfg: cfg, rng: rng}, nil
}

// Compute derives the safeguarded volume for one well from its final score,
// DRASTIC class, and the domestic wells found within the search radius.
// With no neighbors the safeguarded volume is zero in both modes.
func (c *Calculator) Compute(finalScore float64, drastic domain.DrasticClass, neighbors []geo.Neighbor) domain.Safeguard {
	prob := LeakProbability(finalScore) * drastic.Factor()
	demand := c.demand(neighbors)

	var water float64
	switch c.cfg.Mode {
	case ModeEnhanced:
		water = demand * prob
	default:
		water = demand * finalScore / 100
	}

	meanRate := (c.cfg.LeakRateMinM3Day + c.cfg.LeakRateMaxM3Day) / 2
	sg := domain.Safeguard{
		WaterM3Yr:           water,
		WaterAcreFeetYr:     water / M3PerAcreFoot,
		LeakProbability:     prob,
		DemandM3Yr:          demand,
		ContaminantLoadM3Yr: prob * meanRate * daysPerYear,
	}

	if c.cfg.MonteCarlo {
		sg.Percentiles = c.sampleSafeguard(finalScore, prob, demand)
	}
	return sg
}

// demand aggregates annual domestic water use near the well. Basic mode
// counts wells at the flat withdrawal; enhanced mode weights each well's
// county-specific use by max(0, 1 - distance/radius) so nearer receptors
// contribute more.
func (c *Calculator) demand(neighbors []geo.Neighbor) float64 {
	if c.cfg.Mode == ModeBasic {
		return float64(len(neighbors)) * c.cfg.BasicWithdrawalM3Yr
	}

	total := 0.0
	for _, n := range neighbors {
		use, ok := c.cfg.CountyUseM3Yr[n.Tag]
		if !ok {
			use = c.cfg.DefaultCountyUseM3Yr
		}
		weight := math.Max(0, 1-n.DistanceM/c.cfg.RadiusM)
		total += use * weight
	}
	return total
}

// sampleSafeguard draws leak rates from the configured range and reports
// the 5th/50th/95th percentiles of the resulting safeguarded-volume
// distribution. Per sample, the protected volume is capped by the annual
// volume the sampled leak rate could actually release: prob × min(demand,
// rate × 365). Basic mode substitutes the score fraction for prob, matching
// its point estimate.
func (c *Calculator) sampleSafeguard(finalScore, prob, demand float64) *domain.Percentiles {
	scale := prob
	if c.cfg.Mode == ModeBasic {
		scale = finalScore / 100
	}

	samples := make([]float64, c.cfg.Iterations)
	for i := range samples {
		rate := c.sampleLeakRate()
		samples[i] = scale * math.Min(demand, rate*daysPerYear)
	}
	sort.Float64s(samples)

	return &domain.Percentiles{
		P5:  stat.Quantile(0.05, stat.Empirical, samples, nil),
		P50: stat.Quantile(0.50, stat.Empirical, samples, nil),
		P95: stat.Quantile(0.95, stat.Empirical, samples, nil),
	}
}

// sampleLeakRate draws one leak rate in m³/day from the configured
// distribution. The triangular mode peaks at the range midpoint.
func (c *Calculator) sampleLeakRate() float64 {
	lo, hi := c.cfg.LeakRateMinM3Day, c.cfg.LeakRateMaxM3Day
	if hi == lo {
		return lo
	}
	u := c.rng.Float64()
	if c.cfg.LeakRateDist == DistUniform {
		return lo + u*(hi-lo)
	}

	mode := (lo + hi) / 2
	if u < (mode-lo)/(hi-lo) {
		return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
	}
	return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
}
