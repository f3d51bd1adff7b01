package wod

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// =============================================================================
// Parquet Persistence
// =============================================================================

// CatalogRow is the on-disk Parquet schema: one row per profile,
// scalar columns plus list columns for the ragged level sequences.
// NaN level entries are stored as-is (Parquet doubles carry NaN).
// QC scores are widened to int32 on disk (the generic codec does not
// take int16 fields); the in-memory catalog keeps them narrow.
type CatalogRow struct {
	ProbeType string  `parquet:"probe_type,dict,zstd"`
	NLevels   int32   `parquet:"nlevs,zstd"`
	Year      int32   `parquet:"year,zstd"`
	Month     int32   `parquet:"month,zstd"`
	Day       int32   `parquet:"day,zstd"`
	Date      int64   `parquet:"date,zstd"`
	Lat       float64 `parquet:"lat,zstd"`
	Lon       float64 `parquet:"lon,zstd"`
	PMin      float64 `parquet:"pmin,zstd"`
	PMax      float64 `parquet:"pmax,zstd"`
	DPMean    float64 `parquet:"dpm,zstd"`
	DZMean    float64 `parquet:"dzm,zstd"`
	SalQC     int32   `parquet:"ps_qc,zstd"`
	TempQC    int32   `parquet:"pt_qc,zstd"`

	Pres   []float64 `parquet:"pres,list,zstd"`
	Sal    []float64 `parquet:"sal,list,zstd"`
	Temp   []float64 `parquet:"temp,list,zstd"`
	Depth  []float64 `parquet:"z,list,zstd"`
	USal   []float64 `parquet:"usal,list,zstd"`
	UTemp  []float64 `parquet:"utemp,list,zstd"`
	UDepth []float64 `parquet:"uz,list,zstd"`
}

// WriteCatalog writes the catalog to a Parquet file at path.
func WriteCatalog(path string, c *Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog file: %w", err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[CatalogRow](f)
	row := make([]CatalogRow, 1)
	for i := 0; i < c.Len(); i++ {
		row[0] = CatalogRow{
			ProbeType: c.ProbeType[i].String(),
			NLevels:   c.NLevels[i],
			Year:      c.Year[i],
			Month:     c.Month[i],
			Day:       c.Day[i],
			Date:      c.Date[i],
			Lat:       c.Lat[i],
			Lon:       c.Lon[i],
			PMin:      c.PMin[i],
			PMax:      c.PMax[i],
			DPMean:    c.DPMean[i],
			DZMean:    c.DZMean[i],
			SalQC:     int32(c.SalQC[i]),
			TempQC:    int32(c.TempQC[i]),
			Pres:      c.Pressure(i),
			Sal:       c.Salinity(i),
			Temp:      c.Temperature(i),
			Depth:     c.Depth(i),
			USal:      c.SalinityUnc(i),
			UTemp:     c.TemperatureUnc(i),
			UDepth:    c.DepthUnc(i),
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("write catalog row %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close catalog writer: %w", err)
	}
	return nil
}

// ReadCatalog loads a catalog from a Parquet file. Usability gating is
// NOT re-applied: the file is trusted to contain only profiles that
// passed the policy when it was built.
func ReadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat catalog file: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open catalog parquet: %w", err)
	}

	cat := &Catalog{arena: &levelArena{}}
	reader := parquet.NewGenericReader[CatalogRow](pf)
	defer reader.Close()

	rows := make([]CatalogRow, 256)
	for {
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			appendRow(cat, &rows[i])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return cat, nil
}

func appendRow(c *Catalog, r *CatalogRow) {
	c.ProbeType = append(c.ProbeType, ProbeTypeFromString(r.ProbeType))
	c.NLevels = append(c.NLevels, int32(len(r.Pres)))
	c.Year = append(c.Year, r.Year)
	c.Month = append(c.Month, r.Month)
	c.Day = append(c.Day, r.Day)
	c.Date = append(c.Date, r.Date)
	c.Lat = append(c.Lat, r.Lat)
	c.Lon = append(c.Lon, r.Lon)
	c.PMin = append(c.PMin, r.PMin)
	c.PMax = append(c.PMax, r.PMax)
	c.DPMean = append(c.DPMean, r.DPMean)
	c.DZMean = append(c.DZMean, r.DZMean)
	c.SalQC = append(c.SalQC, int16(r.SalQC))
	c.TempQC = append(c.TempQC, int16(r.TempQC))

	c.starts = append(c.starts, int64(len(c.arena.Pres)))
	c.arena.Pres = append(c.arena.Pres, r.Pres...)
	c.arena.Sal = append(c.arena.Sal, r.Sal...)
	c.arena.Temp = append(c.arena.Temp, r.Temp...)
	c.arena.Depth = append(c.arena.Depth, r.Depth...)
	c.arena.USal = append(c.arena.USal, r.USal...)
	c.arena.UTemp = append(c.arena.UTemp, r.UTemp...)
	c.arena.UDepth = append(c.arena.UDepth, r.UDepth...)
}

// CatalogTimestamp formats a catalog build time the way report files
// name themselves.
func CatalogTimestamp(t time.Time) string {
	return t.UTC().Format("20060102_150405")
}
