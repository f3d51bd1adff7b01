// Package radavg implements the spatial-radius aggregation pipeline:
// radius-based geographic filtering of a profile catalog, quality
// control, derivation of physical variables, vertical regridding onto
// a shared standard pressure axis, and per-level statistical reduction
// across all profiles found near each query point.
package radavg

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oceanlab/wod-prof-db/internal/eos"
	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// =============================================================================
// Channels
// =============================================================================

// Channel names a derived variable to aggregate. Midpoint marks
// channels that live on the midpoint pressure axis (one level shorter
// than the cast), such as the buoyancy-frequency triplet; whether a
// channel is midpoint-valued is an explicit property here, never
// inferred from its name downstream.
type Channel struct {
	Name     string
	Midpoint bool
}

// Recognized channel names.
const (
	ChanAbsSal  = "sa"
	ChanConsTmp = "ct"
	ChanN2      = "n2"
	ChanAlpha   = "alpha"
	ChanBeta    = "beta"
)

// DefaultChannels is the buoyancy-frequency triplet: N^2 plus its
// companion expansion/contraction coefficients, all midpoint-valued.
func DefaultChannels() []Channel {
	return []Channel{
		{Name: ChanN2, Midpoint: true},
		{Name: ChanAlpha, Midpoint: true},
		{Name: ChanBeta, Midpoint: true},
	}
}

// ParseChannels converts channel names to Channel values with the
// conventional axis placement for each known name.
func ParseChannels(names []string) ([]Channel, error) {
	chans := make([]Channel, 0, len(names))
	for _, name := range names {
		switch name {
		case ChanAbsSal, ChanConsTmp:
			chans = append(chans, Channel{Name: name})
		case ChanN2, ChanAlpha, ChanBeta:
			chans = append(chans, Channel{Name: name, Midpoint: true})
		default:
			return nil, fmt.Errorf("unknown channel %q", name)
		}
	}
	return chans, nil
}

// =============================================================================
// Aggregator
// =============================================================================

// Config holds the aggregation parameters.
type Config struct {
	RadiusKm       float64   // search radius, default 100
	Grid           []float64 // standard pressure axis, default DefaultGrid()
	Channels       []Channel // default DefaultChannels()
	MaxMeanSpacing float64   // quality gate, default DefaultMaxMeanSpacing
	Workers        int       // parallel query points, default 1

	// OnPoint, when set, is called after each query point completes
	// with the number of profiles that survived filtering there. It
	// may be called concurrently.
	OnPoint func(point, found int)
}

// Result holds per-query-point aggregated statistics over
// (grid level x channel). Row i corresponds to query point i. Cells
// with no valid samples are NaN in all four statistics.
type Result struct {
	Grid     []float64
	Channels []Channel
	Found    []int // surviving profile count per query point

	// Shape: (query points, grid levels, channels).
	Median [][][]float64
	Std    [][][]float64
	P05    [][][]float64
	P95    [][][]float64
}

// Aggregator runs the radius aggregation pipeline against a catalog.
type Aggregator struct {
	engine eos.Engine
	cfg    Config
}

// New creates an Aggregator, filling unset Config fields with
// defaults.
func New(engine eos.Engine, cfg Config) *Aggregator {
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = 100
	}
	if cfg.Grid == nil {
		cfg.Grid = DefaultGrid()
	}
	if cfg.Channels == nil {
		cfg.Channels = DefaultChannels()
	}
	if cfg.MaxMeanSpacing <= 0 {
		cfg.MaxMeanSpacing = DefaultMaxMeanSpacing
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Aggregator{engine: engine, cfg: cfg}
}

// Aggregate processes every query point in order and returns the
// stacked statistics. lons and lats must have equal length. Query
// points are independent: they run on up to Config.Workers goroutines,
// each writing only its own output rows; the catalog and grid are
// shared read-only. Output ordering always matches query ordering.
func (a *Aggregator) Aggregate(ctx context.Context, cat *wod.Catalog, lons, lats []float64) (*Result, error) {
	if len(lons) != len(lats) {
		return nil, fmt.Errorf("aggregate: %d longitudes but %d latitudes", len(lons), len(lats))
	}

	nq, nz, nc := len(lons), len(a.cfg.Grid), len(a.cfg.Channels)
	res := &Result{
		Grid:     a.cfg.Grid,
		Channels: a.cfg.Channels,
		Found:    make([]int, nq),
		Median:   make([][][]float64, nq),
		Std:      make([][][]float64, nq),
		P05:      make([][][]float64, nq),
		P95:      make([][][]float64, nq),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for qi := range lons {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, err := a.aggregatePoint(cat, lons[qi], lats[qi], qi, res, nz, nc)
			if err != nil {
				return fmt.Errorf("query point %d (%.3f, %.3f): %w", qi, lons[qi], lats[qi], err)
			}
			res.Found[qi] = found
			if a.cfg.OnPoint != nil {
				a.cfg.OnPoint(qi, found)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// aggregatePoint runs the pipeline for one query point and writes the
// four statistic rows into the result slot qi.
func (a *Aggregator) aggregatePoint(cat *wod.Catalog, lon, lat float64, qi int, res *Result, nz, nc int) (int, error) {
	mask := WithinRadius(cat.Lon, cat.Lat, lon, lat, a.cfg.RadiusKm)
	subset := QualityFilter(cat.Subset(wod.Where(mask)), a.cfg.MaxMeanSpacing)

	if subset.Len() == 0 {
		// Insufficient data is not an error: the point is all-NaN.
		res.Median[qi] = nanMatrix(nz, nc)
		res.Std[qi] = nanMatrix(nz, nc)
		res.P05[qi] = nanMatrix(nz, nc)
		res.P95[qi] = nanMatrix(nz, nc)
		return 0, nil
	}

	// stack[profile][level][channel], regridded onto the shared axis.
	stack := make([][][]float64, subset.Len())
	for i := 0; i < subset.Len(); i++ {
		rows, err := a.regridProfileChannels(subset, i)
		if err != nil {
			return 0, err
		}
		stack[i] = rows
	}

	res.Median[qi] = make([][]float64, nz)
	res.Std[qi] = make([][]float64, nz)
	res.P05[qi] = make([][]float64, nz)
	res.P95[qi] = make([][]float64, nz)
	samples := make([]float64, len(stack))
	for z := 0; z < nz; z++ {
		med := make([]float64, nc)
		std := make([]float64, nc)
		p05 := make([]float64, nc)
		p95 := make([]float64, nc)
		for ch := 0; ch < nc; ch++ {
			for pi := range stack {
				samples[pi] = stack[pi][z][ch]
			}
			s := nanStats(samples)
			med[ch], std[ch], p05[ch], p95[ch] = s.Median, s.Std, s.P05, s.P95
		}
		res.Median[qi][z] = med
		res.Std[qi][z] = std
		res.P05[qi][z] = p05
		res.P95[qi][z] = p95
	}
	return subset.Len(), nil
}

// regridProfileChannels derives the selected channels for profile i
// and regrids each onto the standard axis. The returned rows are
// indexed [level][channel].
func (a *Aggregator) regridProfileChannels(c *wod.Catalog, i int) ([][]float64, error) {
	values, axes, err := a.deriveChannels(c, i)
	if err != nil {
		return nil, err
	}

	grid := a.cfg.Grid
	cols := make([][]float64, len(values))
	for ch := range values {
		// The engine boundary check: a derived channel must line up
		// with its pressure axis before interpolation sees it.
		if len(values[ch]) != len(axes[ch]) {
			return nil, fmt.Errorf("channel %q: %d values on a %d-level pressure axis",
				a.cfg.Channels[ch].Name, len(values[ch]), len(axes[ch]))
		}
		col, err := RegridProfile(values[ch], axes[ch], grid)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", a.cfg.Channels[ch].Name, err)
		}
		cols[ch] = col
	}

	rows := make([][]float64, len(grid))
	for z := range grid {
		row := make([]float64, len(cols))
		for ch := range cols {
			row[ch] = cols[ch][z]
		}
		rows[z] = row
	}
	return rows, nil
}

// deriveChannels runs the derived-variable engine for one profile and
// returns, per configured channel, its values and the pressure axis
// they live on (native or midpoint).
func (a *Aggregator) deriveChannels(c *wod.Catalog, i int) (values, axes [][]float64, err error) {
	pres := c.Pressure(i)
	sa := a.engine.AbsoluteSalinity(c.Salinity(i), pres, c.Lon[i], c.Lat[i])
	ct := a.engine.ConservativeTemperature(sa, c.Temperature(i), pres)

	var n2, alpha, beta, pMid []float64
	for _, ch := range a.cfg.Channels {
		if ch.Name == ChanN2 || ch.Name == ChanAlpha || ch.Name == ChanBeta {
			n2, alpha, beta, pMid = a.engine.NSquared(sa, ct, pres, c.Lat[i])
			break
		}
	}

	values = make([][]float64, len(a.cfg.Channels))
	axes = make([][]float64, len(a.cfg.Channels))
	for ci, ch := range a.cfg.Channels {
		switch ch.Name {
		case ChanAbsSal:
			values[ci] = sa
		case ChanConsTmp:
			values[ci] = ct
		case ChanN2:
			values[ci] = n2
		case ChanAlpha:
			values[ci] = alpha
		case ChanBeta:
			values[ci] = beta
		default:
			return nil, nil, fmt.Errorf("unknown channel %q", ch.Name)
		}
		if ch.Midpoint {
			axes[ci] = pMid
		} else {
			axes[ci] = pres
		}
	}
	return values, axes, nil
}

func nanMatrix(nz, nc int) [][]float64 {
	m := make([][]float64, nz)
	for z := range m {
		m[z] = nanRow(nc)
	}
	return m
}
