// Command wod-genmock generates a deterministic synthetic profile
// catalog for test fixtures and benchmarks. It builds profiles through
// the real catalog builder so the output matches pipeline behavior,
// then writes a standard catalog parquet file.
//
// Usage:
//
//	go run ./cmd/wod-genmock -out data/mock/catalog_mock.parquet -profiles 500
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oceanlab/wod-prof-db/internal/wod"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for catalog parquet fixture")
	nProfiles := flag.Int("profiles", 500, "number of synthetic profiles")
	seed := flag.Int64("seed", 7, "random seed")
	centerLon := flag.Float64("lon", -40.0, "cluster center longitude")
	centerLat := flag.Float64("lat", 35.0, "cluster center latitude")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))
	b := wod.NewBuilder()

	for i := 0; i < *nProfiles; i++ {
		p := mockProfile(rng, *centerLon, *centerLat)
		if _, err := b.Append(p); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
	}

	cat := b.Catalog()
	log.Printf("built %d profiles (%d rejected by usability screen)", cat.Len(), b.Rejected())

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := wod.WriteCatalog(*out, cat); err != nil {
		return fmt.Errorf("writing catalog fixture: %w", err)
	}
	log.Printf("wrote catalog fixture: %s", *out)

	printStats(cat)
	return nil
}

// mockProfile builds one synthetic CTD-like cast: exponentially
// stratified temperature and salinity with light noise, on a pressure
// axis with mildly jittered spacing. Roughly one cast in ten is
// degraded: bad QC, coarse spacing, or missing values.
func mockProfile(rng *rand.Rand, centerLon, centerLat float64) wod.Profile {
	nLevels := 50 + rng.Intn(400)
	date := time.Date(2000+rng.Intn(20), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)

	p := wod.Profile{
		ProbeType: wod.ProbeCTD,
		Year:      date.Year(),
		Month:     int(date.Month()),
		Day:       date.Day(),
		Date:      date,
		Lon:       centerLon + rng.NormFloat64()*2,
		Lat:       centerLat + rng.NormFloat64()*2,
		SalQC:     0,
		TempQC:    0,
		Pres:      make([]float64, nLevels),
		Sal:       make([]float64, nLevels),
		Temp:      make([]float64, nLevels),
		Depth:     make([]float64, nLevels),
		USal:      make([]float64, nLevels),
		UTemp:     make([]float64, nLevels),
		UDepth:    make([]float64, nLevels),
	}

	spacing := 2.0 + rng.Float64()*4.0
	if rng.Float64() < 0.05 {
		spacing = 15.0 + rng.Float64()*10.0 // too coarse for aggregation
	}
	if rng.Float64() < 0.05 {
		p.TempQC = int16(1 + rng.Intn(3))
	}

	pres := 0.0
	for lv := 0; lv < nLevels; lv++ {
		pres += spacing * (0.8 + 0.4*rng.Float64())
		p.Pres[lv] = pres
		p.Depth[lv] = pres * 0.99
		p.Temp[lv] = 2.0 + 22.0*math.Exp(-pres/800.0) + rng.NormFloat64()*0.02
		p.Sal[lv] = 34.5 + 1.2*math.Exp(-pres/500.0) + rng.NormFloat64()*0.005
		p.USal[lv] = 0.003
		p.UTemp[lv] = 0.002
		p.UDepth[lv] = 0.5

		if rng.Float64() < 0.01 {
			p.Sal[lv] = wod.Missing()
		}
	}

	return p
}

func printStats(c *wod.Catalog) {
	var qcClean int
	var pmax float64
	for i := 0; i < c.Len(); i++ {
		if c.TempQC[i] == 0 && c.SalQC[i] == 0 {
			qcClean++
		}
		if c.PMax[i] > pmax {
			pmax = c.PMax[i]
		}
	}
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", c.Len())
	fmt.Printf("QC clean: %d\n", qcClean)
	fmt.Printf("Deepest cast: %.1f dbar\n", pmax)
}
