// wod-levels-push - Exploded per-level profile data ingestion into ClickHouse
//
// Pushes every (profile, level) pair of a catalog parquet file into a
// ClickHouse table over the native protocol with columnar batches.
// Complements wod-catalog-push, which carries only per-profile
// metadata.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/wod-levels-push ./cmd/wod-levels-push

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/oceanlab/wod-prof-db/internal/common"
	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const createTableDDL = `
CREATE TABLE IF NOT EXISTS %s (
    profile_id Int64,
    date       DateTime,
    lat        Float64,
    lon        Float64,
    level      Int32,
    pres       Float64,
    sal        Float64,
    temp       Float64,
    z          Float64,
    usal       Float64,
    utemp      Float64,
    uz         Float64
) ENGINE = MergeTree
PARTITION BY toYYYYMM(date)
ORDER BY (profile_id, level)`

// LevelBatch holds column data for native insert
type LevelBatch struct {
	ProfileID *proto.ColInt64
	Date      *proto.ColDateTime
	Lat       *proto.ColFloat64
	Lon       *proto.ColFloat64
	Level     *proto.ColInt32
	Pres      *proto.ColFloat64
	Sal       *proto.ColFloat64
	Temp      *proto.ColFloat64
	Z         *proto.ColFloat64
	USal      *proto.ColFloat64
	UTemp     *proto.ColFloat64
	UZ        *proto.ColFloat64
}

func NewLevelBatch() *LevelBatch {
	return &LevelBatch{
		ProfileID: new(proto.ColInt64),
		Date:      new(proto.ColDateTime),
		Lat:       new(proto.ColFloat64),
		Lon:       new(proto.ColFloat64),
		Level:     new(proto.ColInt32),
		Pres:      new(proto.ColFloat64),
		Sal:       new(proto.ColFloat64),
		Temp:      new(proto.ColFloat64),
		Z:         new(proto.ColFloat64),
		USal:      new(proto.ColFloat64),
		UTemp:     new(proto.ColFloat64),
		UZ:        new(proto.ColFloat64),
	}
}

func (b *LevelBatch) Reset() {
	b.ProfileID.Reset()
	b.Date.Reset()
	b.Lat.Reset()
	b.Lon.Reset()
	b.Level.Reset()
	b.Pres.Reset()
	b.Sal.Reset()
	b.Temp.Reset()
	b.Z.Reset()
	b.USal.Reset()
	b.UTemp.Reset()
	b.UZ.Reset()
}

func (b *LevelBatch) Len() int {
	return b.ProfileID.Rows()
}

func (b *LevelBatch) Input() proto.Input {
	return proto.Input{
		{Name: "profile_id", Data: b.ProfileID},
		{Name: "date", Data: b.Date},
		{Name: "lat", Data: b.Lat},
		{Name: "lon", Data: b.Lon},
		{Name: "level", Data: b.Level},
		{Name: "pres", Data: b.Pres},
		{Name: "sal", Data: b.Sal},
		{Name: "temp", Data: b.Temp},
		{Name: "z", Data: b.Z},
		{Name: "usal", Data: b.USal},
		{Name: "utemp", Data: b.UTemp},
		{Name: "uz", Data: b.UZ},
	}
}

// AddProfile appends every level of catalog profile i as one row each.
func (b *LevelBatch) AddProfile(c *wod.Catalog, i int) {
	date := time.Unix(c.Date[i], 0).UTC()
	pres := c.Pressure(i)
	sal := c.Salinity(i)
	temp := c.Temperature(i)
	z := c.Depth(i)
	usal := c.SalinityUnc(i)
	utemp := c.TemperatureUnc(i)
	uz := c.DepthUnc(i)

	for lv := range pres {
		b.ProfileID.Append(int64(i))
		b.Date.Append(date)
		b.Lat.Append(c.Lat[i])
		b.Lon.Append(c.Lon[i])
		b.Level.Append(int32(lv))
		b.Pres.Append(pres[lv])
		b.Sal.Append(sal[lv])
		b.Temp.Append(temp[lv])
		b.Z.Append(z[lv])
		b.USal.Append(usal[lv])
		b.UTemp.Append(utemp[lv])
		b.UZ.Append(uz[lv])
	}
}

func flushBatch(ctx context.Context, conn *ch.Client, tableFQN string, batch *LevelBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (profile_id, date, lat, lon, level, pres, sal, temp, z, usal, utemp, uz) VALUES", tableFQN)
	if err := conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	}); err != nil {
		return err
	}
	batch.Reset()
	return nil
}

func main() {
	cfg := common.DefaultConfig()

	catalogPath := flag.String("catalog", "", "Catalog parquet file (required)")
	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "levels", "ClickHouse table")
	batchSize := flag.Int("batch-size", 500_000, "Level rows per insert batch")
	createTable := flag.Bool("create-table", false, "Create the table if it does not exist")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "wod-levels-push v%s - Per-Level Data Pusher\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Explodes catalog level arrays into one ClickHouse row per\n")
		fmt.Fprintf(os.Stderr, "(profile, level) pair over the native protocol.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *catalogPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -catalog is required\n")
		flag.Usage()
		os.Exit(1)
	}

	log.Println("=========================================================")
	log.Printf("WOD Levels Push v%s", Version)
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

	log.Printf("Connecting to ClickHouse at %s...", *chHost)
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     *chHost,
		Database:    *chDB,
		User:        cfg.ClickHouseUser,
		Password:    cfg.ClickHousePassword,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	if *createTable {
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf(createTableDDL, tableFQN)}); err != nil {
			log.Fatalf("Create table failed: %v", err)
		}
	}

	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)}); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	log.Printf("Loading catalog %s...", *catalogPath)
	cat, err := wod.ReadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("Catalog load failed: %v", err)
	}
	log.Printf("Catalog: %d profiles", cat.Len())

	startTime := time.Now()
	totalRows := 0
	batch := NewLevelBatch()

	for i := 0; i < cat.Len(); i++ {
		select {
		case <-ctx.Done():
			log.Fatalf("Canceled after %d rows", totalRows)
		default:
		}

		batch.AddProfile(cat, i)

		if batch.Len() >= *batchSize {
			n := batch.Len()
			if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
				log.Fatalf("Insert error: %v", err)
			}
			totalRows += n
			log.Printf("Flushed %d rows (%d total)", n, totalRows)
		}
	}

	if batch.Len() > 0 {
		n := batch.Len()
		if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
			log.Fatalf("Insert error: %v", err)
		}
		totalRows += n
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Profiles:   %d", cat.Len())
	log.Printf("Level Rows: %d", totalRows)
	log.Printf("Elapsed:    %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:       %.0f rows/sec", float64(totalRows)/elapsed.Seconds())
	log.Println("=========================================================")
}
