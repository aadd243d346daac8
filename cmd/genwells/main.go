// Command genwells generates a synthetic but realistic input fixture: a
// well inventory and a matching spatial layers file in a projected
// coordinate window. Output is deterministic for a given seed, so the
// fixtures can back test assertions.
//
// Usage:
//
//	go run ./cmd/genwells \
//	  -wells 50 \
//	  -wells-out testdata/wells.json \
//	  -layers-out testdata/layers.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/wellshed/wellrisk/internal/domain"
)

// Coordinate window, in meters of the projected working CRS. Roughly a
// 40x40 km tile.
const (
	originX = 600_000.0
	originY = 3_900_000.0
	extentM = 40_000.0
)

var counties = []string{"Garfield", "Kingfisher", "Logan", "Payne", "Noble"}

var drasticClasses = []domain.DrasticClass{
	domain.DrasticVeryHigh,
	domain.DrasticHigh,
	domain.DrasticModerate,
	domain.DrasticLow,
	domain.DrasticVeryLow,
	"", // some wells carry no classification
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonPolygon struct {
	Rings [][]jsonPoint `json:"rings"`
}

type jsonTaggedPoint struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	County string  `json:"county"`
}

type layersFile struct {
	Aquifers      []jsonPolygon      `json:"aquifers"`
	Flowlines     [][]jsonPoint      `json:"flowlines"`
	DomesticWells []jsonTaggedPoint  `json:"domestic_wells"`
	CountyUseM3Yr map[string]float64 `json:"county_use_m3_yr"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("wells", 50, "number of wells to generate")
	seed := flag.Int64("seed", 1, "random seed")
	wellsOut := flag.String("wells-out", "", "output path for the well inventory JSON")
	layersOut := flag.String("layers-out", "", "output path for the spatial layers JSON")
	flag.Parse()

	if *wellsOut == "" || *layersOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -wells-out, -layers-out")
	}

	rng := rand.New(rand.NewSource(*seed))

	wells := genWells(rng, *count)
	layers := genLayers(rng)

	if err := writeJSON(*wellsOut, wells); err != nil {
		return fmt.Errorf("writing well inventory: %w", err)
	}
	log.Printf("wrote %d wells: %s", len(wells), *wellsOut)

	if err := writeJSON(*layersOut, layers); err != nil {
		return fmt.Errorf("writing spatial layers: %w", err)
	}
	log.Printf("wrote layers (%d aquifers, %d flowlines, %d domestic wells): %s",
		len(layers.Aquifers), len(layers.Flowlines), len(layers.DomesticWells), *layersOut)

	printStats(wells)
	return nil
}

func genWells(rng *rand.Rand, count int) []domain.Well {
	wells := make([]domain.Well, count)
	for i := range wells {
		age := 20 + rng.Float64()*80       // 20..100 years
		casing := 100 + rng.Float64()*1800 // 100..1900 ft
		wells[i] = domain.Well{
			ID:            fmt.Sprintf("well-%03d", i+1),
			Name:          fmt.Sprintf("Lease %c-%d", 'A'+i%26, i/26+1),
			X:             originX + rng.Float64()*extentM,
			Y:             originY + rng.Float64()*extentM,
			AgeYears:      &age,
			CasingDepthFt: &casing,
			County:        counties[rng.Intn(len(counties))],
			Drastic:       drasticClasses[rng.Intn(len(drasticClasses))],
		}
	}
	return wells
}

func genLayers(rng *rand.Rand) layersFile {
	layers := layersFile{CountyUseM3Yr: map[string]float64{}}
	for _, c := range counties {
		layers.CountyUseM3Yr[c] = 250 + rng.Float64()*250
	}

	// A few rectangular aquifer patches, one with a hole.
	for i := 0; i < 3; i++ {
		x := originX + rng.Float64()*extentM*0.7
		y := originY + rng.Float64()*extentM*0.7
		w := 4000 + rng.Float64()*8000
		h := 4000 + rng.Float64()*8000
		poly := jsonPolygon{Rings: [][]jsonPoint{rect(x, y, w, h)}}
		if i == 0 {
			poly.Rings = append(poly.Rings, rect(x+w*0.4, y+h*0.4, w*0.2, h*0.2))
		}
		layers.Aquifers = append(layers.Aquifers, poly)
	}

	// Meandering flowlines crossing the window west to east.
	for i := 0; i < 2; i++ {
		y := originY + rng.Float64()*extentM
		var line []jsonPoint
		for x := originX - 1000; x <= originX+extentM+1000; x += 2000 {
			line = append(line, jsonPoint{X: x, Y: y + (rng.Float64()-0.5)*1500})
		}
		layers.Flowlines = append(layers.Flowlines, line)
	}

	// Domestic wells clustered around a handful of homestead centers, one
	// county per cluster.
	id := 0
	for c := 0; c < 8; c++ {
		cx := originX + rng.Float64()*extentM
		cy := originY + rng.Float64()*extentM
		county := counties[rng.Intn(len(counties))]
		n := 2 + rng.Intn(6)
		for j := 0; j < n; j++ {
			id++
			layers.DomesticWells = append(layers.DomesticWells, jsonTaggedPoint{
				ID:     fmt.Sprintf("dom-%03d", id),
				X:      cx + (rng.Float64()-0.5)*1200,
				Y:      cy + (rng.Float64()-0.5)*1200,
				County: county,
			})
		}
	}
	return layers
}

func rect(x, y, w, h float64) []jsonPoint {
	return []jsonPoint{
		{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}, {X: x, Y: y},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(wells []domain.Well) {
	countyCounts := map[string]int{}
	drasticCounts := map[domain.DrasticClass]int{}
	for i := range wells {
		countyCounts[wells[i].County]++
		drasticCounts[wells[i].Drastic]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(wells))
	fmt.Print("By county:")
	for _, c := range counties {
		fmt.Printf(" %s=%d", c, countyCounts[c])
	}
	fmt.Println()
	fmt.Printf("By DRASTIC: very_high=%d, high=%d, moderate=%d, low=%d, very_low=%d, unclassified=%d\n",
		drasticCounts[domain.DrasticVeryHigh], drasticCounts[domain.DrasticHigh],
		drasticCounts[domain.DrasticModerate], drasticCounts[domain.DrasticLow],
		drasticCounts[domain.DrasticVeryLow], drasticCounts[""])
}
