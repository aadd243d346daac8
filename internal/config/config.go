// Package config loads engine settings from environment variables, applying
// defaults where unset and validating everything before any scoring begins.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/wellshed/wellrisk/internal/domain"
	"github.com/wellshed/wellrisk/internal/safeguard"
	"github.com/wellshed/wellrisk/internal/scoring"
)

// Config holds all engine settings.
type Config struct {
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:""`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	CacheEnabled bool   `envconfig:"CACHE_ENABLED" default:"true"`
	CacheDir     string `envconfig:"CACHE_DIR" default:".wellrisk-cache"`

	// Workers bounds the concurrent well-scoring goroutines; 0 means one
	// per CPU.
	Workers int `envconfig:"WORKERS" default:"0"`

	GridCellM         float64 `envconfig:"GRID_CELL_M" default:"500"`
	ReceptorRadiusM   float64 `envconfig:"RECEPTOR_RADIUS_M" default:"1000"`
	AquiferDecayM     float64 `envconfig:"AQUIFER_DECAY_M" default:"1000"`
	FlowlineDecayM    float64 `envconfig:"FLOWLINE_DECAY_M" default:"500"`
	SpillScore        float64 `envconfig:"SPILL_SCORE" default:"5"`
	HighThreshold     float64 `envconfig:"TIER_HIGH_THRESHOLD" default:"65"`
	ModerateThreshold float64 `envconfig:"TIER_MODERATE_THRESHOLD" default:"35"`

	EnhancedMode         bool    `envconfig:"ENHANCED_MODE" default:"false"`
	BasicWithdrawalM3Yr  float64 `envconfig:"BASIC_WITHDRAWAL_M3_YR" default:"300"`
	DefaultCountyUseM3Yr float64 `envconfig:"DEFAULT_COUNTY_USE_M3_YR" default:"300"`

	MonteCarlo           bool    `envconfig:"MONTE_CARLO" default:"false"`
	MonteCarloIterations int     `envconfig:"MONTE_CARLO_ITERATIONS" default:"1000"`
	MonteCarloSeed       int64   `envconfig:"MONTE_CARLO_SEED" default:"0"`
	LeakRateMinM3Day     float64 `envconfig:"LEAK_RATE_MIN_M3_DAY" default:"0.5"`
	LeakRateMaxM3Day     float64 `envconfig:"LEAK_RATE_MAX_M3_DAY" default:"5.9"`
	LeakRateDist         string  `envconfig:"LEAK_RATE_DIST" default:"uniform"`

	OutputDir string `envconfig:"OUTPUT_DIR" default:"output"`

	KafkaEnabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"well-risk-results"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would corrupt the run. Safeguard-model
// settings are checked by their own package so the rules live next to the
// formulas.
func (c *Config) Validate() error {
	if c.HighThreshold <= c.ModerateThreshold {
		return &domain.ConfigurationError{
			Setting: "tier_thresholds",
			Reason:  "high threshold must exceed the moderate threshold",
		}
	}
	if c.Workers < 0 {
		return &domain.ConfigurationError{Setting: "workers", Reason: "must not be negative"}
	}
	if c.GridCellM <= 0 {
		return &domain.ConfigurationError{Setting: "grid_cell_m", Reason: "must be positive"}
	}
	// A non-positive decay constant inverts the distance falloff: exp(-d/k)
	// would grow with distance.
	if c.AquiferDecayM <= 0 {
		return &domain.ConfigurationError{Setting: "aquifer_decay_m", Reason: "must be positive"}
	}
	if c.FlowlineDecayM <= 0 {
		return &domain.ConfigurationError{Setting: "flowline_decay_m", Reason: "must be positive"}
	}
	if c.SpillScore < 0 || c.SpillScore > scoring.MaxSpills {
		return &domain.ConfigurationError{Setting: "spill_score", Reason: "must lie within the component range"}
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return &domain.ConfigurationError{Setting: "kafka_brokers", Reason: "required when kafka publishing is enabled"}
	}
	return c.SafeguardConfig(nil).Validate()
}

// Bands returns the risk classification thresholds.
func (c *Config) Bands() domain.Bands {
	return domain.Bands{High: c.HighThreshold, Moderate: c.ModerateThreshold}
}

// ScoringParams returns the component-scorer constants.
func (c *Config) ScoringParams() scoring.Params {
	return scoring.Params{
		AquiferDecayM:   c.AquiferDecayM,
		FlowlineDecayM:  c.FlowlineDecayM,
		ReceptorRadiusM: c.ReceptorRadiusM,
		SpillScore:      c.SpillScore,
	}
}

// SafeguardConfig returns the water-safeguarded model settings, folding in
// the county water-use table supplied by the ingestion collaborator.
func (c *Config) SafeguardConfig(countyUse map[string]float64) safeguard.Config {
	mode := safeguard.ModeBasic
	if c.EnhancedMode {
		mode = safeguard.ModeEnhanced
	}
	return safeguard.Config{
		Mode:                 mode,
		RadiusM:              c.ReceptorRadiusM,
		BasicWithdrawalM3Yr:  c.BasicWithdrawalM3Yr,
		CountyUseM3Yr:        countyUse,
		DefaultCountyUseM3Yr: c.DefaultCountyUseM3Yr,
		LeakRateMinM3Day:     c.LeakRateMinM3Day,
		LeakRateMaxM3Day:     c.LeakRateMaxM3Day,
		LeakRateDist:         safeguard.Distribution(c.LeakRateDist),
		MonteCarlo:           c.MonteCarlo,
		Iterations:           c.MonteCarloIterations,
		Seed:                 c.MonteCarloSeed,
	}
}
