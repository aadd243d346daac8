// Package engine orchestrates a scoring run: validate inputs, consult the
// result cache, score wells concurrently against the read-only geometry
// store, and persist the result set under its input fingerprint.
package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wellshed/wellrisk/internal/cache"
	"github.com/wellshed/wellrisk/internal/domain"
	"github.com/wellshed/wellrisk/internal/geo"
	"github.com/wellshed/wellrisk/internal/observability"
	"github.com/wellshed/wellrisk/internal/safeguard"
	"github.com/wellshed/wellrisk/internal/scoring"
)

// Options configure the non-model parts of the engine.
type Options struct {
	// Cache may be nil to disable result caching.
	Cache   *cache.Store
	Logger  *slog.Logger
	Metrics *observability.Metrics
	// Workers bounds concurrent well scoring; 0 means one per CPU.
	Workers int
}

// Engine runs the risk analysis. Each well's result is a pure function of
// its attributes, the layer geometries, and the configuration, so wells are
// scored concurrently with no shared mutable state beyond the metrics.
type Engine struct {
	store    *geo.Store
	agg      *scoring.Aggregator
	params   scoring.Params
	bands    domain.Bands
	sgCfg    safeguard.Config
	cache    *cache.Store
	logger   *slog.Logger
	metrics  *observability.Metrics
	workers  int
	baseSeed int64

	ready  atomic.Bool
	latest atomic.Pointer[domain.ResultSet]
}

// fingerprintInputs is the configuration surface hashed into the cache key.
// Worker count and logging settings are excluded: they cannot change any
// result.
type fingerprintInputs struct {
	Params    scoring.Params
	Bands     domain.Bands
	Safeguard safeguard.Config
}

// New validates the model configuration and builds an engine.
func New(store *geo.Store, params scoring.Params, bands domain.Bands, sgCfg safeguard.Config, opts Options) (*Engine, error) {
	agg, err := scoring.NewAggregator(params, bands)
	if err != nil {
		return nil, err
	}
	if err := sgCfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	baseSeed := sgCfg.Seed
	if sgCfg.MonteCarlo && baseSeed == 0 {
		// Unseeded Monte Carlo runs are intentionally not reproducible.
		baseSeed = time.Now().UnixNano()
		logger.Info("monte carlo running unseeded, percentiles will vary between runs")
	}

	return &Engine{
		store:    store,
		agg:      agg,
		params:   params,
		bands:    bands,
		sgCfg:    sgCfg,
		cache:    opts.Cache,
		logger:   logger,
		metrics:  metrics,
		workers:  workers,
		baseSeed: baseSeed,
	}, nil
}

// CheckReadiness reports nil once at least one analysis has completed.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no analysis has completed yet")
	}
	return nil
}

// Latest returns the most recent result set, or nil before the first run.
func (e *Engine) Latest() *domain.ResultSet {
	return e.latest.Load()
}

// Run scores the well list. A cache hit for the input fingerprint returns
// the stored result set unchanged without touching the geometry indexes.
func (e *Engine) Run(ctx context.Context, wells []domain.Well) (*domain.ResultSet, error) {
	start := time.Now()
	e.metrics.EngineRunning.Set(1)
	defer e.metrics.EngineRunning.Set(0)

	pts := make([]geo.Point, len(wells))
	for i, w := range wells {
		pts[i] = geo.Point{X: w.X, Y: w.Y}
	}
	if err := geo.CheckProjected("well list", pts); err != nil {
		return nil, err
	}

	fingerprint, err := cache.Fingerprint(wells, fingerprintInputs{
		Params:    e.params,
		Bands:     e.bands,
		Safeguard: e.sgCfg,
	})
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if rs, ok := e.cache.Load(fingerprint); ok {
			e.logger.Info("cache hit, skipping recomputation",
				"fingerprint", fingerprint, "wells", len(rs.Results))
			e.metrics.CacheHits.Inc()
			e.publish(rs)
			return rs, nil
		}
		e.metrics.CacheMisses.Inc()
	}

	results := make([]domain.WellResult, len(wells))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, well := range wells {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.scoreWell(well)
			if err != nil {
				e.metrics.ScoringErrors.Inc()
				return err
			}
			results[i] = res
			e.metrics.WellsScored.Inc()
			e.metrics.WellScore.Observe(res.FinalScore)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring run: %w", err)
	}

	rs := &domain.ResultSet{
		Fingerprint: fingerprint,
		ComputedAt:  domain.Now(),
		Results:     results,
	}

	if e.cache != nil {
		if err := e.cache.Save(rs); err != nil {
			// Cache write failures cost recomputation later, nothing else.
			e.logger.Warn("cache save failed", "fingerprint", fingerprint, "error", err)
		}
	}

	e.publish(rs)
	e.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("analysis complete",
		"wells", len(results),
		"fingerprint", fingerprint,
		"duration", time.Since(start),
	)
	return rs, nil
}

func (e *Engine) publish(rs *domain.ResultSet) {
	e.latest.Store(rs)
	e.ready.Store(true)
}

// scoreWell computes one well's components, final score, and safeguarded
// water. The data-gap flag records that a proximity measurement degraded to
// an empty-layer fallback rather than a real geometry query.
func (e *Engine) scoreWell(well domain.Well) (domain.WellResult, error) {
	components, final, tier, err := e.agg.Score(well, e.store)
	if err != nil {
		return domain.WellResult{}, err
	}

	neighbors := e.store.Domestic.WithinRadius(geo.Point{X: well.X, Y: well.Y}, e.sgCfg.RadiusM)

	calc, err := safeguard.NewCalculator(e.sgCfg, e.wellRNG(well.ID))
	if err != nil {
		return domain.WellResult{}, err
	}
	sg := calc.Compute(final, well.Drastic, neighbors)

	return domain.WellResult{
		Well:          well,
		Components:    components,
		FinalScore:    final,
		Tier:          tier,
		DomesticWells: len(neighbors),
		Safeguard:     sg,
		DataGap:       e.store.Aquifers.Empty() || e.store.Flowlines.Empty() || e.store.Domestic.Empty(),
	}, nil
}

// wellRNG derives a per-well random source from the base seed and the well
// ID, so seeded Monte Carlo output is deterministic regardless of how the
// scheduler interleaves the worker goroutines.
func (e *Engine) wellRNG(id string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(id))
	return rand.New(rand.NewSource(e.baseSeed ^ int64(h.Sum64())))
}
