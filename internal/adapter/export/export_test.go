package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellshed/wellrisk/internal/adapter/export"
	"github.com/wellshed/wellrisk/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func sampleResultSet() *domain.ResultSet {
	dist := 432.1
	return &domain.ResultSet{
		Fingerprint: "deadbeef",
		ComputedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Results: []domain.WellResult{
			{
				Well: domain.Well{ID: "w1", Name: "Alpha 1", County: "Garfield", AgeYears: fptr(62), CasingDepthFt: fptr(310)},
				Components: []domain.ComponentScore{
					{Name: domain.ComponentAquifer, Value: 30, Max: 30, Intersects: true},
					{Name: domain.ComponentSurfaceWater, Value: 8.4, Max: 20, DistanceM: &dist},
				},
				FinalScore:    71.25,
				Tier:          domain.TierHigh,
				DomesticWells: 4,
				Safeguard: domain.Safeguard{
					WaterM3Yr:       855,
					WaterAcreFeetYr: 0.693161,
					LeakProbability: 0.94,
				},
			},
			{
				Well:       domain.Well{ID: "w2", Name: "Beta 2", County: "Logan"},
				FinalScore: 9.5,
				Tier:       domain.TierLow,
				DataGap:    true,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleResultSet()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "well_id", header[0])
	assert.Equal(t, "data_gap", header[len(header)-1])

	first := rows[1]
	assert.Equal(t, "w1", first[0])
	assert.Equal(t, "Garfield", first[2])
	assert.Equal(t, "71.25", first[3])
	assert.Equal(t, "High", first[4])
	assert.Equal(t, "true", first[5])
	assert.Equal(t, "432.10", first[6])
	assert.Equal(t, "62.00", first[7])
	assert.Equal(t, "4", first[9])
	assert.Equal(t, "false", first[len(first)-1])

	second := rows[2]
	assert.Equal(t, "w2", second[0])
	// Missing measurements render as empty cells, not zeros.
	assert.Equal(t, "", second[6])
	assert.Equal(t, "", second[7])
	assert.Equal(t, "true", second[len(second)-1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, sampleResultSet()))

	var decoded domain.ResultSet
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "deadbeef", decoded.Fingerprint)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, domain.TierHigh, decoded.Results[0].Tier)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath, jsonPath, err := export.WriteFiles(dir, sampleResultSet())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "deadbeef.csv"), csvPath)
	assert.Equal(t, filepath.Join(dir, "deadbeef.json"), jsonPath)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "w1,Alpha 1,Garfield")

	jsonData, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"fingerprint": "deadbeef"`)
}
