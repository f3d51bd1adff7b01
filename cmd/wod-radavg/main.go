// wod-radavg - Radius-average aggregation over an ocean profile catalog
//
// Loads a profile catalog from parquet, reads query points from CSV
// (plain or gzip), and computes per-point, per-level statistics of
// derived variables for every profile within the search radius.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/wod-radavg ./cmd/wod-radavg

package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"

	"github.com/oceanlab/wod-prof-db/internal/common"
	"github.com/oceanlab/wod-prof-db/internal/eos"
	"github.com/oceanlab/wod-prof-db/internal/radavg"
	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// ResultRow is one (query point, grid level, channel) cell of the
// aggregation output in long format.
type ResultRow struct {
	Point   int32   `parquet:"point"`
	Lon     float64 `parquet:"lon"`
	Lat     float64 `parquet:"lat"`
	Pres    float64 `parquet:"pres"`
	Channel string  `parquet:"channel,dict"`
	Found   int32   `parquet:"found"`
	Median  float64 `parquet:"median"`
	Std     float64 `parquet:"std"`
	P05     float64 `parquet:"p05"`
	P95     float64 `parquet:"p95"`
}

// readPoints reads query points from a two-column lon,lat CSV,
// transparently decompressing .gz input. A non-numeric first row is
// treated as a header and skipped.
func readPoints(path string) (lons, lats []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReaderN(f, 256*1024, runtime.NumCPU())
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) < 2 {
			continue
		}
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errLon != nil || errLat != nil {
			if first {
				first = false
				continue // header row
			}
			return nil, nil, fmt.Errorf("bad point row %q", strings.Join(rec, ","))
		}
		first = false
		lons = append(lons, lon)
		lats = append(lats, lat)
	}
	return lons, lats, nil
}

func resultRows(res *radavg.Result, lons, lats []float64) []ResultRow {
	rows := make([]ResultRow, 0, len(lons)*len(res.Grid)*len(res.Channels))
	for qi := range lons {
		for z, p := range res.Grid {
			for ci, ch := range res.Channels {
				rows = append(rows, ResultRow{
					Point:   int32(qi),
					Lon:     lons[qi],
					Lat:     lats[qi],
					Pres:    p,
					Channel: ch.Name,
					Found:   int32(res.Found[qi]),
					Median:  res.Median[qi][z][ci],
					Std:     res.Std[qi][z][ci],
					P05:     res.P05[qi][z][ci],
					P95:     res.P95[qi][z][ci],
				})
			}
		}
	}
	return rows
}

func writeParquet(path string, rows []ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := parquet.NewGenericWriter[ResultRow](f, parquet.Compression(&parquet.Zstd))
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return w.Close()
}

// writeCSVGz exports the same rows as a gzip-compressed CSV for
// downstream tools that do not speak parquet.
func writeCSVGz(path string, rows []ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := kgzip.NewWriterLevel(f, kgzip.BestSpeed)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(gz)

	if err := cw.Write([]string{"point", "lon", "lat", "pres", "channel", "found", "median", "std", "p05", "p95"}); err != nil {
		return err
	}
	rec := make([]string, 10)
	for _, r := range rows {
		rec[0] = strconv.Itoa(int(r.Point))
		rec[1] = strconv.FormatFloat(r.Lon, 'g', -1, 64)
		rec[2] = strconv.FormatFloat(r.Lat, 'g', -1, 64)
		rec[3] = strconv.FormatFloat(r.Pres, 'g', -1, 64)
		rec[4] = r.Channel
		rec[5] = strconv.Itoa(int(r.Found))
		rec[6] = strconv.FormatFloat(r.Median, 'g', -1, 64)
		rec[7] = strconv.FormatFloat(r.Std, 'g', -1, 64)
		rec[8] = strconv.FormatFloat(r.P05, 'g', -1, 64)
		rec[9] = strconv.FormatFloat(r.P95, 'g', -1, 64)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return gz.Close()
}

func main() {
	cfg := common.DefaultConfig()

	catalogPath := flag.String("catalog", "", "Catalog parquet file (required)")
	pointsPath := flag.String("points", "", "Query points CSV, lon,lat per row (.gz supported; required)")
	defaultOut := filepath.Join(cfg.ResultsDir(),
		fmt.Sprintf("radavg_%s.parquet", wod.CatalogTimestamp(time.Now())))
	outPath := flag.String("out", defaultOut, "Output parquet file")
	csvPath := flag.String("csv", "", "Optional gzipped CSV export path")
	radiusKm := flag.Float64("radius-km", 100, "Search radius in kilometers")
	zmax := flag.Float64("zmax", radavg.DefaultGridMax, "Maximum standard grid pressure (dbar)")
	dz := flag.Float64("dz", radavg.DefaultGridStep, "Standard grid step (dbar)")
	month := flag.Int("month", 0, "Restrict catalog to calendar month 1-12 (0 = all)")
	channels := flag.String("channels", "n2,alpha,beta", "Comma-separated channels: sa,ct,n2,alpha,beta")
	maxSpacing := flag.Float64("max-spacing", radavg.DefaultMaxMeanSpacing, "Maximum mean pressure spacing (dbar)")
	workers := flag.Int("workers", runtime.NumCPU(), "Parallel query point workers")
	silent := flag.Bool("silent", false, "Disable progress output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "wod-radavg v%s - Radius-Average Profile Aggregator\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Computes median/std/p05/p95 of derived ocean variables on a\n")
		fmt.Fprintf(os.Stderr, "standard pressure grid for every query point.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *catalogPath == "" || *pointsPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -catalog and -points are required\n")
		flag.Usage()
		os.Exit(1)
	}

	log.Println("=========================================================")
	log.Printf("WOD Radius Average v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	if err := radavg.ValidateGrid(*zmax, *dz); err != nil {
		log.Fatalf("Bad -zmax/-dz: %v", err)
	}

	chans, err := radavg.ParseChannels(strings.Split(*channels, ","))
	if err != nil {
		log.Fatalf("Bad -channels: %v", err)
	}

	log.Printf("Loading catalog %s...", *catalogPath)
	cat, err := wod.ReadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("Catalog load failed: %v", err)
	}
	log.Printf("Catalog: %d profiles", cat.Len())

	if *month != 0 {
		cat = cat.Subset(wod.Where(cat.MonthMask(*month)))
		log.Printf("Month %d filter: %d profiles remain", *month, cat.Len())
	}

	lons, lats, err := readPoints(*pointsPath)
	if err != nil {
		log.Fatalf("Points load failed: %v", err)
	}
	log.Printf("Query points: %d", len(lons))
	log.Printf("Radius: %.0f km | Grid: 0-%.0f dbar step %.1f | Channels: %s | Workers: %d",
		*radiusKm, *zmax, *dz, *channels, *workers)

	stats := common.NewStats(uint64(len(lons)))
	stats.SetSilent(*silent)
	stats.StartReporter()

	agg := radavg.New(eos.NewLinear(), radavg.Config{
		RadiusKm:       *radiusKm,
		Grid:           radavg.StandardGrid(*zmax, *dz),
		Channels:       chans,
		MaxMeanSpacing: *maxSpacing,
		Workers:        *workers,
		OnPoint: func(point, found int) {
			stats.AddPoints(1)
			stats.AddProfiles(uint64(found))
		},
	})

	startTime := time.Now()
	res, err := agg.Aggregate(ctx, cat, lons, lats)
	stats.StopReporter()
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}
	elapsed := time.Since(startTime)

	rows := resultRows(res, lons, lats)
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	log.Printf("Writing %d rows to %s...", len(rows), *outPath)
	if err := writeParquet(*outPath, rows); err != nil {
		log.Fatalf("Parquet write failed: %v", err)
	}
	stats.AddRows(uint64(len(rows)))

	if *csvPath != "" {
		log.Printf("Writing CSV export %s...", *csvPath)
		if err := writeCSVGz(*csvPath, rows); err != nil {
			log.Fatalf("CSV export failed: %v", err)
		}
	}

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Query Points:  %d", len(lons))
	log.Printf("Profiles Used: %d", stats.GetProfiles())
	log.Printf("Output Rows:   %d", len(rows))
	log.Printf("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:          %.1f points/sec", float64(len(lons))/elapsed.Seconds())
	log.Println("=========================================================")
}
