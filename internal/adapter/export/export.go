// Package export writes completed result sets to disk as a CSV summary
// table and a full JSON document.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wellshed/wellrisk/internal/domain"
)

var csvHeader = []string{
	"well_id",
	"name",
	"county",
	"final_score",
	"risk_tier",
	"aquifer_intersects",
	"surface_water_dist_m",
	"age_years",
	"casing_depth_ft",
	"domestic_wells_in_radius",
	"water_m3_yr",
	"water_acft_yr",
	"leak_probability",
	"data_gap",
}

// WriteCSV renders the result set as a flat summary table, one row per well
// in result order.
func WriteCSV(w io.Writer, rs *domain.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range rs.Results {
		if err := cw.Write(csvRow(rs.Results[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON renders the full result set, envelope included, as indented
// JSON.
func WriteJSON(w io.Writer, rs *domain.ResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

// WriteFiles writes both export formats into dir, named after the run's
// fingerprint. Returns the two paths written.
func WriteFiles(dir string, rs *domain.ResultSet) (csvPath, jsonPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create export dir: %w", err)
	}

	csvPath = filepath.Join(dir, rs.Fingerprint+".csv")
	jsonPath = filepath.Join(dir, rs.Fingerprint+".json")

	if err := writeFile(csvPath, func(f io.Writer) error { return WriteCSV(f, rs) }); err != nil {
		return "", "", err
	}
	if err := writeFile(jsonPath, func(f io.Writer) error { return WriteJSON(f, rs) }); err != nil {
		return "", "", err
	}
	return csvPath, jsonPath, nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func csvRow(res domain.WellResult) []string {
	var intersects bool
	var surfaceDist string
	for _, c := range res.Components {
		switch c.Name {
		case domain.ComponentAquifer:
			intersects = c.Intersects
		case domain.ComponentSurfaceWater:
			if c.DistanceM != nil {
				surfaceDist = formatFloat(*c.DistanceM)
			}
		}
	}

	return []string{
		res.Well.ID,
		res.Well.Name,
		res.Well.County,
		formatFloat(res.FinalScore),
		string(res.Tier),
		strconv.FormatBool(intersects),
		surfaceDist,
		formatOptional(res.Well.AgeYears),
		formatOptional(res.Well.CasingDepthFt),
		strconv.Itoa(res.DomesticWells),
		formatFloat(res.Safeguard.WaterM3Yr),
		formatFloat(res.Safeguard.WaterAcreFeetYr),
		formatFloat(res.Safeguard.LeakProbability),
		strconv.FormatBool(res.DataGap),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
