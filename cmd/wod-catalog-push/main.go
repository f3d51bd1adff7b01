// wod-catalog-push - Profile catalog metadata ingestion into ClickHouse
//
// Pushes the per-profile scalar columns of a catalog parquet file
// (position, date, QC, level summary) into a ClickHouse table for
// interactive screening queries. Level data stays in parquet; see
// wod-levels-push for the exploded per-level table.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/wod-catalog-push ./cmd/wod-catalog-push

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

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/oceanlab/wod-prof-db/internal/common"
	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const createTableDDL = `
CREATE TABLE IF NOT EXISTS %s (
    probe_type LowCardinality(String),
    nlevs      Int32,
    year       Int32,
    month      Int32,
    day        Int32,
    date       DateTime,
    lat        Float64,
    lon        Float64,
    pmin       Float64,
    pmax       Float64,
    dpm        Float64,
    dzm        Float64,
    ps_qc      Int16,
    pt_qc      Int16
) ENGINE = MergeTree
PARTITION BY toYYYYMM(date)
ORDER BY (probe_type, date)`

func pushCatalog(ctx context.Context, conn driver.Conn, tableFQN string, c *wod.Catalog, batchSize int) (int, error) {
	total := 0
	for start := 0; start < c.Len(); start += batchSize {
		end := start + batchSize
		if end > c.Len() {
			end = c.Len()
		}

		batch, err := conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", tableFQN))
		if err != nil {
			return total, err
		}

		batchStart := time.Now()
		for i := start; i < end; i++ {
			err := batch.Append(
				c.ProbeType[i].String(),
				c.NLevels[i],
				c.Year[i],
				c.Month[i],
				c.Day[i],
				time.Unix(c.Date[i], 0).UTC(),
				c.Lat[i],
				c.Lon[i],
				c.PMin[i],
				c.PMax[i],
				c.DPMean[i],
				c.DZMean[i],
				c.SalQC[i],
				c.TempQC[i],
			)
			if err != nil {
				return total, fmt.Errorf("append row %d: %w", i, err)
			}
		}
		if err := batch.Send(); err != nil {
			return total, fmt.Errorf("send batch: %w", err)
		}
		total += end - start
		log.Printf("Flushed %d rows in %v", end-start, time.Since(batchStart).Round(time.Millisecond))

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}
	}
	return total, nil
}

func main() {
	cfg := common.DefaultConfig()

	catalogPath := flag.String("catalog", "", "Catalog parquet file (required)")
	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "profiles", "ClickHouse table")
	batchSize := flag.Int("batch-size", 100_000, "Rows per insert batch")
	createTable := flag.Bool("create-table", false, "Create the table if it does not exist")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "wod-catalog-push v%s - Catalog Metadata Pusher\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Pushes per-profile catalog metadata into ClickHouse.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *catalogPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -catalog is required\n")
		flag.Usage()
		os.Exit(1)
	}

	log.Println("=========================================================")
	log.Printf("WOD Catalog Push v%s", Version)
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
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{*chHost},
		Auth: clickhouse.Auth{
			Database: *chDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
		Settings: clickhouse.Settings{
			"max_execution_time":           60,
			"async_insert":                 1,
			"wait_for_async_insert":        0,
			"async_insert_max_data_size":   100000000,
			"async_insert_busy_timeout_ms": 1000,
			"max_insert_block_size":        1048576,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("ClickHouse ping failed: %v", err)
	}

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("ClickHouse table: %s", tableFQN)

	if *createTable {
		if err := conn.Exec(ctx, fmt.Sprintf(createTableDDL, tableFQN)); err != nil {
			log.Fatalf("Create table failed: %v", err)
		}
	}

	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)); err != nil {
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
	total, err := pushCatalog(ctx, conn, tableFQN, cat, *batchSize)
	if err != nil {
		log.Fatalf("Push failed after %d rows: %v", total, err)
	}
	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Total Rows: %d", total)
	log.Printf("Elapsed:    %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:       %.0f rows/sec", float64(total)/elapsed.Seconds())
	log.Println("=========================================================")
}
