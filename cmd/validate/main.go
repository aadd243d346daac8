// Command validate performs integrity checks on an exported result-set JSON
// document: score bounds, tier consistency, safeguard arithmetic, and
// cross-checks against the CSV export when one is supplied.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -json output/<fingerprint>.json \
//	  -csv output/<fingerprint>.csv
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/wellshed/wellrisk/internal/domain"
)

const m3PerAcreFoot = 1233.48

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	jsonPath := flag.String("json", "", "path to the exported result-set JSON")
	csvPath := flag.String("csv", "", "path to the exported CSV summary (optional)")
	highThreshold := flag.Float64("tier-high", 65, "high tier threshold the run was configured with")
	moderateThreshold := flag.Float64("tier-moderate", 35, "moderate tier threshold the run was configured with")
	flag.Parse()

	if *jsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*jsonPath, *csvPath, domain.Bands{High: *highThreshold, Moderate: *moderateThreshold}); code != 0 {
		os.Exit(code)
	}
}

func run(jsonPath, csvPath string, bands domain.Bands) int {
	fmt.Println("=== Well Risk Result Validation ===")
	fmt.Println()

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read result JSON: %v\n", err)
		return 1
	}
	var rs domain.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse result JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateEnvelope(&rs),
		validateScoreBounds(&rs),
		validateTiers(&rs, bands),
		validateSafeguard(&rs),
	}
	if csvPath != "" {
		p, err := validateCSVParity(&rs, csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read CSV export: %v\n", err)
			return 1
		}
		phases = append(phases, p)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		allPassed = false
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      - %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Printf("\nAll checks passed (%d wells)\n", len(rs.Results))
	return 0
}

func validateEnvelope(rs *domain.ResultSet) *phase {
	p := &phase{name: "envelope"}
	if rs.Fingerprint == "" {
		p.errorf("result set has no fingerprint")
	}
	if rs.ComputedAt.IsZero() {
		p.errorf("result set has no computed_at timestamp")
	}
	seen := map[string]struct{}{}
	for i := range rs.Results {
		id := rs.Results[i].Well.ID
		if id == "" {
			p.errorf("result %d has no well id", i)
			continue
		}
		if _, dup := seen[id]; dup {
			p.errorf("duplicate well id %q", id)
		}
		seen[id] = struct{}{}
	}
	return p
}

func validateScoreBounds(rs *domain.ResultSet) *phase {
	p := &phase{name: "score bounds"}
	for i := range rs.Results {
		res := &rs.Results[i]
		var sum float64
		for _, c := range res.Components {
			if c.Value < 0 || c.Value > c.Max {
				p.errorf("%s: component %s value %g outside [0, %g]", res.Well.ID, c.Name, c.Value, c.Max)
			}
			sum += c.Value
		}
		if res.FinalScore < 0 || res.FinalScore > 100 {
			p.errorf("%s: final score %g outside [0, 100]", res.Well.ID, res.FinalScore)
		}
		if want := math.Min(sum, 100); math.Abs(res.FinalScore-want) > 1e-6 {
			p.errorf("%s: final score %g does not match component sum %g", res.Well.ID, res.FinalScore, want)
		}
	}
	return p
}

func validateTiers(rs *domain.ResultSet, bands domain.Bands) *phase {
	p := &phase{name: "tier consistency"}
	for i := range rs.Results {
		res := &rs.Results[i]
		if want := bands.Classify(res.FinalScore); res.Tier != want {
			p.errorf("%s: score %g classified %s, expected %s", res.Well.ID, res.FinalScore, res.Tier, want)
		}
	}
	return p
}

func validateSafeguard(rs *domain.ResultSet) *phase {
	p := &phase{name: "safeguard arithmetic"}
	for i := range rs.Results {
		res := &rs.Results[i]
		sg := &res.Safeguard

		if sg.LeakProbability < 0 || sg.LeakProbability > 1 {
			p.errorf("%s: leak probability %g outside [0, 1]", res.Well.ID, sg.LeakProbability)
		}
		if sg.WaterM3Yr < 0 {
			p.errorf("%s: negative safeguarded volume %g", res.Well.ID, sg.WaterM3Yr)
		}
		if want := sg.WaterM3Yr / m3PerAcreFoot; math.Abs(sg.WaterAcreFeetYr-want) > 1e-6 {
			p.errorf("%s: acre-foot conversion %g does not match %g", res.Well.ID, sg.WaterAcreFeetYr, want)
		}
		if res.DomesticWells == 0 && sg.WaterM3Yr != 0 {
			p.errorf("%s: nonzero safeguarded volume with no domestic wells in radius", res.Well.ID)
		}
		if pct := sg.Percentiles; pct != nil {
			if pct.P5 > pct.P50 || pct.P50 > pct.P95 {
				p.errorf("%s: percentiles not ordered: p5=%g p50=%g p95=%g", res.Well.ID, pct.P5, pct.P50, pct.P95)
			}
			if pct.P5 < 0 {
				p.errorf("%s: negative p5 %g", res.Well.ID, pct.P5)
			}
		}
	}
	return p
}

// validateCSVParity checks that the CSV export carries the same wells in the
// same order as the JSON document.
func validateCSVParity(rs *domain.ResultSet, csvPath string) (*phase, error) {
	p := &phase{name: "csv parity"}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		p.errorf("csv export is empty")
		return p, nil
	}

	dataRows := rows[1:]
	if len(dataRows) != len(rs.Results) {
		p.errorf("csv has %d rows, json has %d results", len(dataRows), len(rs.Results))
		return p, nil
	}
	for i, row := range dataRows {
		if row[0] != rs.Results[i].Well.ID {
			p.errorf("row %d: csv well %q, json well %q", i, row[0], rs.Results[i].Well.ID)
		}
	}
	return p, nil
}
