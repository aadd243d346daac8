package engine_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellshed/wellrisk/internal/cache"
	"github.com/wellshed/wellrisk/internal/domain"
	"github.com/wellshed/wellrisk/internal/engine"
	"github.com/wellshed/wellrisk/internal/geo"
	"github.com/wellshed/wellrisk/internal/safeguard"
	"github.com/wellshed/wellrisk/internal/scoring"
)

func fptr(v float64) *float64 { return &v }

func testStore(t *testing.T) *geo.Store {
	t.Helper()
	aquifer := geo.Polygon{Rings: []geo.Ring{{
		{X: 1000, Y: 1000}, {X: 3000, Y: 1000}, {X: 3000, Y: 3000}, {X: 1000, Y: 3000}, {X: 1000, Y: 1000},
	}}}
	flowline := geo.Polyline{{X: -10000, Y: 0}, {X: 10000, Y: 0}}
	domestic := []geo.TaggedPoint{
		{P: geo.Point{X: 2100, Y: 2000}, Tag: "d1"},
		{P: geo.Point{X: 2200, Y: 2000}, Tag: "d2"},
		{P: geo.Point{X: 2300, Y: 2000}, Tag: "d3"},
		{P: geo.Point{X: 2400, Y: 2000}, Tag: "d4"},
		{P: geo.Point{X: 2500, Y: 2000}, Tag: "d5"},
	}
	store, err := geo.NewStore([]geo.Polygon{aquifer}, []geo.Polyline{flowline}, domestic, 0)
	require.NoError(t, err)
	return store
}

func testWells() []domain.Well {
	return []domain.Well{
		{ID: "w1", Name: "Alpha 1", X: 2000, Y: 2000, AgeYears: fptr(60), CasingDepthFt: fptr(200), County: "Garfield", Drastic: domain.DrasticHigh},
		{ID: "w2", Name: "Beta 2", X: 8000, Y: 300, AgeYears: fptr(10), CasingDepthFt: fptr(1800), County: "Kingfisher"},
		{ID: "w3", Name: "Gamma 3", X: 50000, Y: 50000, AgeYears: fptr(30), CasingDepthFt: fptr(900), County: "Logan"},
	}
}

func testSafeguardConfig() safeguard.Config {
	cfg := safeguard.DefaultConfig()
	cfg.MonteCarlo = true
	cfg.Seed = 42
	return cfg
}

func testBands() domain.Bands {
	return domain.Bands{High: 65, Moderate: 35}
}

func newTestEngine(t *testing.T, opts engine.Options) *engine.Engine {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	e, err := engine.New(testStore(t), scoring.DefaultParams(), testBands(), testSafeguardConfig(), opts)
	require.NoError(t, err)
	return e
}

func TestRun_ResultsInInputOrder(t *testing.T) {
	e := newTestEngine(t, engine.Options{Workers: 4})

	rs, err := e.Run(context.Background(), testWells())
	require.NoError(t, err)
	require.Len(t, rs.Results, 3)
	assert.Equal(t, "w1", rs.Results[0].Well.ID)
	assert.Equal(t, "w2", rs.Results[1].Well.ID)
	assert.Equal(t, "w3", rs.Results[2].Well.ID)
	assert.NotEmpty(t, rs.Fingerprint)
	assert.False(t, rs.ComputedAt.IsZero())
}

func TestRun_Deterministic(t *testing.T) {
	wells := testWells()

	first, err := newTestEngine(t, engine.Options{Workers: 1}).Run(context.Background(), wells)
	require.NoError(t, err)
	second, err := newTestEngine(t, engine.Options{Workers: 8}).Run(context.Background(), wells)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Results, second.Results)
}

func TestRun_WellScores(t *testing.T) {
	rs, err := newTestEngine(t, engine.Options{}).Run(context.Background(), testWells())
	require.NoError(t, err)

	inside := rs.Results[0]
	assert.Equal(t, domain.TierHigh, inside.Tier)
	assert.Equal(t, 5, inside.DomesticWells)
	assert.Greater(t, inside.Safeguard.WaterM3Yr, 0.0)
	require.NotNil(t, inside.Safeguard.Percentiles)
	assert.False(t, inside.DataGap)

	remote := rs.Results[2]
	assert.Less(t, remote.FinalScore, inside.FinalScore)
	assert.Equal(t, 0, remote.DomesticWells)
	assert.Zero(t, remote.Safeguard.WaterM3Yr)
}

func TestRun_CacheHit(t *testing.T) {
	store := cache.NewStore(t.TempDir(), slog.New(slog.DiscardHandler))
	wells := testWells()

	first, err := newTestEngine(t, engine.Options{Cache: store}).Run(context.Background(), wells)
	require.NoError(t, err)
	second, err := newTestEngine(t, engine.Options{Cache: store}).Run(context.Background(), wells)
	require.NoError(t, err)

	// A hit replays the stored envelope, timestamp included.
	assert.True(t, first.ComputedAt.Equal(second.ComputedAt))
	assert.Equal(t, first.Results, second.Results)
}

func TestRun_ConfigChangeMissesCache(t *testing.T) {
	store := cache.NewStore(t.TempDir(), slog.New(slog.DiscardHandler))
	wells := testWells()

	first, err := newTestEngine(t, engine.Options{Cache: store}).Run(context.Background(), wells)
	require.NoError(t, err)

	sgCfg := testSafeguardConfig()
	sgCfg.Mode = safeguard.ModeEnhanced
	changed, err := engine.New(testStore(t), scoring.DefaultParams(), testBands(), sgCfg, engine.Options{
		Cache:  store,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	second, err := changed.Run(context.Background(), wells)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
}

func TestRun_MissingAttributeFailsRun(t *testing.T) {
	wells := testWells()
	wells[1].CasingDepthFt = nil

	_, err := newTestEngine(t, engine.Options{}).Run(context.Background(), wells)
	require.Error(t, err)
	var dataErr *domain.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "w2", dataErr.WellID)
	assert.Equal(t, "casing_depth_ft", dataErr.Attribute)
}

func TestRun_GeographicWellCoordinatesRejected(t *testing.T) {
	wells := []domain.Well{
		{ID: "w1", X: -97.4, Y: 35.6, AgeYears: fptr(20), CasingDepthFt: fptr(500)},
	}

	_, err := newTestEngine(t, engine.Options{}).Run(context.Background(), wells)
	require.Error(t, err)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "crs", cfgErr.Setting)
}

func TestReadiness(t *testing.T) {
	e := newTestEngine(t, engine.Options{})
	ctx := context.Background()

	require.Error(t, e.CheckReadiness(ctx))
	assert.Nil(t, e.Latest())

	rs, err := e.Run(ctx, testWells())
	require.NoError(t, err)
	assert.NoError(t, e.CheckReadiness(ctx))
	assert.Same(t, rs, e.Latest())
}

func TestRun_DataGapFlaggedOnEmptyLayers(t *testing.T) {
	store, err := geo.NewStore(nil, nil, nil, 0)
	require.NoError(t, err)
	e, err := engine.New(store, scoring.DefaultParams(), testBands(), testSafeguardConfig(), engine.Options{
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), testWells())
	require.NoError(t, err)
	for _, res := range rs.Results {
		assert.True(t, res.DataGap)
	}
}

func TestRun_DataGapFlaggedOnEmptyDomesticLayer(t *testing.T) {
	aquifer := geo.Polygon{Rings: []geo.Ring{{
		{X: 1000, Y: 1000}, {X: 3000, Y: 1000}, {X: 3000, Y: 3000}, {X: 1000, Y: 3000}, {X: 1000, Y: 1000},
	}}}
	flowline := geo.Polyline{{X: -10000, Y: 0}, {X: 10000, Y: 0}}
	store, err := geo.NewStore([]geo.Polygon{aquifer}, []geo.Polyline{flowline}, nil, 0)
	require.NoError(t, err)

	e, err := engine.New(store, scoring.DefaultParams(), testBands(), testSafeguardConfig(), engine.Options{
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), testWells())
	require.NoError(t, err)
	// The receptor count degrades to zero just like the proximity
	// measurements do, so an absent domestic layer is a gap too.
	for _, res := range rs.Results {
		assert.True(t, res.DataGap)
	}
}

func TestNew_RejectsInvalidSafeguardConfig(t *testing.T) {
	cfg := testSafeguardConfig()
	cfg.RadiusM = -1

	_, err := engine.New(testStore(t), scoring.DefaultParams(), testBands(), cfg, engine.Options{})
	require.Error(t, err)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "receptor_radius_m", cfgErr.Setting)
}
