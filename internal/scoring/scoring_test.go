package scoring_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellshed/wellrisk/internal/domain"
	"github.com/wellshed/wellrisk/internal/geo"
	"github.com/wellshed/wellrisk/internal/scoring"
)

func fptr(v float64) *float64 { return &v }

// testStore builds a store with one aquifer square (2 km side, corner at
// 1000,1000), one horizontal flowline at y=0, and n domestic wells spread
// 100 m apart just east of the origin.
func testStore(t *testing.T, domesticCount int) *geo.Store {
	t.Helper()

	aquifer := geo.Polygon{Rings: []geo.Ring{{
		{X: 1000, Y: 1000},
		{X: 3000, Y: 1000},
		{X: 3000, Y: 3000},
		{X: 1000, Y: 3000},
	}}}

	flowline := geo.Polyline{{X: -100000, Y: 0}, {X: 100000, Y: 0}}

	var domestic []geo.TaggedPoint
	for i := 0; i < domesticCount; i++ {
		domestic = append(domestic, geo.TaggedPoint{
			P:   geo.Point{X: float64(100 * (i + 1)), Y: 0},
			Tag: "Haskell",
		})
	}

	store, err := geo.NewStore([]geo.Polygon{aquifer}, []geo.Polyline{flowline}, domestic, geo.DefaultCellSize)
	require.NoError(t, err)
	return store
}

func emptyStore(t *testing.T) *geo.Store {
	t.Helper()
	store, err := geo.NewStore(nil, nil, nil, geo.DefaultCellSize)
	require.NoError(t, err)
	return store
}

func TestAquiferScorer(t *testing.T) {
	s := scoring.AquiferScorer{DecayM: 1000}

	t.Run("intersecting well gets the full 30", func(t *testing.T) {
		well := domain.Well{ID: "w1", X: 2000, Y: 2000}
		cs, err := s.Score(well, testStore(t, 0))
		require.NoError(t, err)
		assert.Equal(t, 30.0, cs.Value)
		assert.True(t, cs.Intersects)
		require.NotNil(t, cs.DistanceM)
		assert.Equal(t, 0.0, *cs.DistanceM)
	})

	t.Run("proximity decays with distance", func(t *testing.T) {
		store := testStore(t, 0)
		prev := 10.0
		for _, x := range []float64{3000, 3500, 4500, 8000} {
			cs, err := s.Score(domain.Well{ID: "w", X: x, Y: 2000}, store)
			require.NoError(t, err)
			assert.LessOrEqual(t, cs.Value, prev, "decay must be non-increasing at x=%v", x)
			assert.GreaterOrEqual(t, cs.Value, 0.0)
			prev = cs.Value
		}
	})

	t.Run("empty layer scores zero", func(t *testing.T) {
		cs, err := s.Score(domain.Well{ID: "w", X: 0, Y: 0}, emptyStore(t))
		require.NoError(t, err)
		assert.Equal(t, 0.0, cs.Value)
		assert.False(t, cs.Intersects)
		assert.Nil(t, cs.DistanceM)
	})
}

func TestSurfaceWaterScorer(t *testing.T) {
	s := scoring.SurfaceWaterScorer{DecayM: 500}

	t.Run("touching the flowline scores the max", func(t *testing.T) {
		cs, err := s.Score(domain.Well{ID: "w", X: 0, Y: 0}, testStore(t, 0))
		require.NoError(t, err)
		assert.InDelta(t, 20.0, cs.Value, 1e-9)
	})

	t.Run("monotonically non-increasing in distance", func(t *testing.T) {
		store := testStore(t, 0)
		prev := 20.0
		for _, y := range []float64{100, 500, 2000, 10000} {
			cs, err := s.Score(domain.Well{ID: "w", X: 0, Y: y}, store)
			require.NoError(t, err)
			assert.Less(t, cs.Value, prev, "score must shrink at y=%v", y)
			assert.GreaterOrEqual(t, cs.Value, 0.0)
			prev = cs.Value
		}
	})

	t.Run("empty layer scores zero", func(t *testing.T) {
		cs, err := s.Score(domain.Well{ID: "w", X: 0, Y: 0}, emptyStore(t))
		require.NoError(t, err)
		assert.Equal(t, 0.0, cs.Value)
		assert.Nil(t, cs.DistanceM)
	})
}

func TestIntegrityScorer(t *testing.T) {
	s := scoring.IntegrityScorer{}
	store := emptyStore(t)

	tests := []struct {
		name   string
		age    float64
		casing float64
		want   float64
	}{
		{"worst case saturates at 20", 50, 0, 20},
		{"age satures beyond 50", 80, 0, 20},
		{"new well with deep casing", 0, 1500, 0},
		{"casing deeper than 1500 clamps to zero", 0, 3000, 0},
		{"half age, half casing", 25, 750, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			well := domain.Well{ID: "w", AgeYears: fptr(tt.age), CasingDepthFt: fptr(tt.casing)}
			cs, err := s.Score(well, store)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, cs.Value, 1e-9)
		})
	}

	t.Run("missing age is a DataError", func(t *testing.T) {
		_, err := s.Score(domain.Well{ID: "w-7", CasingDepthFt: fptr(500)}, store)
		var dataErr *domain.DataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, "age_years", dataErr.Attribute)
		assert.Equal(t, "w-7", dataErr.WellID)
	})

	t.Run("missing casing is a DataError", func(t *testing.T) {
		_, err := s.Score(domain.Well{ID: "w-8", AgeYears: fptr(30)}, store)
		var dataErr *domain.DataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, "casing_depth_ft", dataErr.Attribute)
	})
}

func TestReceptorScorer(t *testing.T) {
	s := scoring.ReceptorScorer{RadiusM: 1000}

	tests := []struct {
		count int
		want  float64
	}{
		{0, 0},
		{1, 3},
		{2, 6},
		{4, 12},
		{5, 15},
		{9, 15},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d domestic wells", tt.count), func(t *testing.T) {
			cs, err := s.Score(domain.Well{ID: "w", X: 0, Y: 0}, testStore(t, tt.count))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cs.Value)
			assert.Equal(t, tt.count, cs.Count)
		})
	}
}

func TestAggregator(t *testing.T) {
	bands := domain.Bands{High: 65, Moderate: 35}
	agg, err := scoring.NewAggregator(scoring.DefaultParams(), bands)
	require.NoError(t, err)

	t.Run("worst-case well maxes four components plus the spill placeholder", func(t *testing.T) {
		// Inside the aquifer, touching a flowline through it, age 50,
		// no casing, five domestic wells within 1 km.
		aquifer := geo.Polygon{Rings: []geo.Ring{{
			{X: -5000, Y: -5000}, {X: 5000, Y: -5000}, {X: 5000, Y: 5000}, {X: -5000, Y: 5000},
		}}}
		flow := geo.Polyline{{X: -5000, Y: 0}, {X: 5000, Y: 0}}
		var domestic []geo.TaggedPoint
		for i := 0; i < 5; i++ {
			domestic = append(domestic, geo.TaggedPoint{P: geo.Point{X: float64(100 * (i + 1)), Y: 0}})
		}
		store, err := geo.NewStore([]geo.Polygon{aquifer}, []geo.Polyline{flow}, domestic, geo.DefaultCellSize)
		require.NoError(t, err)

		well := domain.Well{ID: "worst", X: 0, Y: 0, AgeYears: fptr(50), CasingDepthFt: fptr(0)}
		components, final, tier, err := agg.Score(well, store)
		require.NoError(t, err)

		// 30 + 20 + 20 + 15 maxed, plus the fixed 5-point spill placeholder.
		assert.InDelta(t, 90.0, final, 1e-9)
		assert.Equal(t, domain.TierHigh, tier)
		require.Len(t, components, 5)
		for _, cs := range components {
			if cs.Name == domain.ComponentSpills {
				assert.Equal(t, 5.0, cs.Value)
				continue
			}
			assert.InDelta(t, cs.Max, cs.Value, 1e-9, "component %s should be maxed", cs.Name)
		}
	})

	t.Run("best-case well scores only the spill placeholder", func(t *testing.T) {
		well := domain.Well{ID: "best", X: 0, Y: 0, AgeYears: fptr(0), CasingDepthFt: fptr(1500)}
		components, final, tier, err := agg.Score(well, emptyStore(t))
		require.NoError(t, err)

		assert.InDelta(t, 5.0, final, 1e-9)
		assert.Equal(t, domain.TierLow, tier)
		for _, cs := range components {
			if cs.Name == domain.ComponentSpills {
				assert.Equal(t, 5.0, cs.Value)
			} else {
				assert.Equal(t, 0.0, cs.Value)
			}
		}
	})

	t.Run("every component stays within bounds", func(t *testing.T) {
		store := testStore(t, 3)
		wells := []domain.Well{
			{ID: "a", X: 2000, Y: 2000, AgeYears: fptr(12), CasingDepthFt: fptr(400)},
			{ID: "b", X: 0, Y: 50, AgeYears: fptr(73), CasingDepthFt: fptr(0)},
			{ID: "c", X: 90000, Y: 90000, AgeYears: fptr(1), CasingDepthFt: fptr(2500)},
		}
		for _, w := range wells {
			components, final, _, err := agg.Score(w, store)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, final, 0.0)
			assert.LessOrEqual(t, final, 100.0)
			for _, cs := range components {
				assert.GreaterOrEqual(t, cs.Value, 0.0, "component %s of well %s", cs.Name, w.ID)
				assert.LessOrEqual(t, cs.Value, cs.Max, "component %s of well %s", cs.Name, w.ID)
			}
		}
	})

	t.Run("DataError surfaces through the aggregator", func(t *testing.T) {
		well := domain.Well{ID: "gap", X: 0, Y: 0}
		_, _, _, err := agg.Score(well, emptyStore(t))
		var dataErr *domain.DataError
		require.True(t, errors.As(err, &dataErr))
	})

	t.Run("rubric maxima must sum to 100", func(t *testing.T) {
		_, err := scoring.NewAggregatorWith(bands, scoring.IntegrityScorer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want 100")
	})
}
