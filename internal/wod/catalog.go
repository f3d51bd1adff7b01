package wod

import (
	"fmt"
)

// =============================================================================
// Catalog - struct-of-arrays profile table with shared level arenas
// =============================================================================

// levelArena holds the concatenated level sequences of every profile
// in a catalog. A profile's slice is arena[start : start+nlevs].
type levelArena struct {
	Pres   []float64
	Sal    []float64
	Temp   []float64
	Depth  []float64
	USal   []float64
	UTemp  []float64
	UDepth []float64
}

// Catalog is an ordered, immutable collection of profile records.
// Scalar attributes are columnar; level data is addressed through a
// per-profile start offset into arenas shared across subsets, so
// filtering never copies level data.
type Catalog struct {
	ProbeType []ProbeType
	NLevels   []int32
	Year      []int32
	Month     []int32
	Day       []int32
	Date      []int64 // unix seconds
	Lat       []float64
	Lon       []float64
	PMin      []float64
	PMax      []float64
	DPMean    []float64 // mean pressure spacing, dbar
	DZMean    []float64 // mean depth spacing, m
	SalQC     []int16
	TempQC    []int16

	starts []int64
	arena  *levelArena
}

// Len returns the number of profiles in the catalog.
func (c *Catalog) Len() int {
	return len(c.Lat)
}

func (c *Catalog) levelSlice(col []float64, i int) []float64 {
	s := c.starts[i]
	return col[s : s+int64(c.NLevels[i])]
}

// Pressure returns profile i's pressure sequence (view, do not mutate).
func (c *Catalog) Pressure(i int) []float64 { return c.levelSlice(c.arena.Pres, i) }

// Salinity returns profile i's practical salinity sequence.
func (c *Catalog) Salinity(i int) []float64 { return c.levelSlice(c.arena.Sal, i) }

// Temperature returns profile i's in-situ temperature sequence.
func (c *Catalog) Temperature(i int) []float64 { return c.levelSlice(c.arena.Temp, i) }

// Depth returns profile i's depth sequence.
func (c *Catalog) Depth(i int) []float64 { return c.levelSlice(c.arena.Depth, i) }

// SalinityUnc returns profile i's salinity uncertainty sequence.
func (c *Catalog) SalinityUnc(i int) []float64 { return c.levelSlice(c.arena.USal, i) }

// TemperatureUnc returns profile i's temperature uncertainty sequence.
func (c *Catalog) TemperatureUnc(i int) []float64 { return c.levelSlice(c.arena.UTemp, i) }

// DepthUnc returns profile i's depth uncertainty sequence.
func (c *Catalog) DepthUnc(i int) []float64 { return c.levelSlice(c.arena.UDepth, i) }

// Subset returns a new catalog holding the profiles at the given
// indices, in the given order. Scalar columns are gathered; level
// arenas are shared with the parent (zero copy).
func (c *Catalog) Subset(idx []int) *Catalog {
	sub := &Catalog{
		ProbeType: make([]ProbeType, len(idx)),
		NLevels:   make([]int32, len(idx)),
		Year:      make([]int32, len(idx)),
		Month:     make([]int32, len(idx)),
		Day:       make([]int32, len(idx)),
		Date:      make([]int64, len(idx)),
		Lat:       make([]float64, len(idx)),
		Lon:       make([]float64, len(idx)),
		PMin:      make([]float64, len(idx)),
		PMax:      make([]float64, len(idx)),
		DPMean:    make([]float64, len(idx)),
		DZMean:    make([]float64, len(idx)),
		SalQC:     make([]int16, len(idx)),
		TempQC:    make([]int16, len(idx)),
		starts:    make([]int64, len(idx)),
		arena:     c.arena,
	}
	for j, i := range idx {
		sub.ProbeType[j] = c.ProbeType[i]
		sub.NLevels[j] = c.NLevels[i]
		sub.Year[j] = c.Year[i]
		sub.Month[j] = c.Month[i]
		sub.Day[j] = c.Day[i]
		sub.Date[j] = c.Date[i]
		sub.Lat[j] = c.Lat[i]
		sub.Lon[j] = c.Lon[i]
		sub.PMin[j] = c.PMin[i]
		sub.PMax[j] = c.PMax[i]
		sub.DPMean[j] = c.DPMean[i]
		sub.DZMean[j] = c.DZMean[i]
		sub.SalQC[j] = c.SalQC[i]
		sub.TempQC[j] = c.TempQC[i]
		sub.starts[j] = c.starts[i]
	}
	return sub
}

// Where returns the indices where mask is true.
func Where(mask []bool) []int {
	var idx []int
	for i, ok := range mask {
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// MonthMask returns a mask selecting profiles from the given month (1-12).
func (c *Catalog) MonthMask(month int) []bool {
	mask := make([]bool, c.Len())
	for i, m := range c.Month {
		mask[i] = int(m) == month
	}
	return mask
}

// =============================================================================
// Builder - append-only catalog construction with usability gating
// =============================================================================

// Builder accumulates usable profiles into a catalog. Profiles that
// fail the usability policy are counted and dropped; they never enter
// the catalog.
type Builder struct {
	cat      Catalog
	policy   UsabilityPolicy
	rejected int
}

// NewBuilder creates a Builder with the default usability policy.
func NewBuilder() *Builder {
	return NewBuilderWithPolicy(DefaultUsabilityPolicy())
}

// NewBuilderWithPolicy creates a Builder with an explicit policy.
func NewBuilderWithPolicy(policy UsabilityPolicy) *Builder {
	return &Builder{
		cat:    Catalog{arena: &levelArena{}},
		policy: policy,
	}
}

// Append validates and adds one profile. It returns false when the
// profile fails the usability policy, and an error when the profile
// violates the shared-length invariant.
func (b *Builder) Append(p Profile) (bool, error) {
	n := p.NLevels()
	for name, seq := range map[string][]float64{
		"sal": p.Sal, "temp": p.Temp, "z": p.Depth,
		"usal": p.USal, "utemp": p.UTemp, "uz": p.UDepth,
	} {
		if len(seq) != n {
			return false, fmt.Errorf("profile level sequences disagree: pres has %d, %s has %d", n, name, len(seq))
		}
	}

	if !b.policy.IsUsable(&p) {
		b.rejected++
		return false, nil
	}

	c := &b.cat
	c.ProbeType = append(c.ProbeType, p.ProbeType)
	c.NLevels = append(c.NLevels, int32(n))
	c.Year = append(c.Year, int32(p.Year))
	c.Month = append(c.Month, int32(p.Month))
	c.Day = append(c.Day, int32(p.Day))
	c.Date = append(c.Date, p.Date.Unix())
	c.Lat = append(c.Lat, p.Lat)
	c.Lon = append(c.Lon, p.Lon)

	pmin, pmax := validRange(p.Pres)
	c.PMin = append(c.PMin, pmin)
	c.PMax = append(c.PMax, pmax)
	c.DPMean = append(c.DPMean, meanDiff(p.Pres))
	c.DZMean = append(c.DZMean, meanDiff(p.Depth))
	c.SalQC = append(c.SalQC, p.SalQC)
	c.TempQC = append(c.TempQC, p.TempQC)

	c.starts = append(c.starts, int64(len(c.arena.Pres)))
	c.arena.Pres = append(c.arena.Pres, p.Pres...)
	c.arena.Sal = append(c.arena.Sal, p.Sal...)
	c.arena.Temp = append(c.arena.Temp, p.Temp...)
	c.arena.Depth = append(c.arena.Depth, p.Depth...)
	c.arena.USal = append(c.arena.USal, p.USal...)
	c.arena.UTemp = append(c.arena.UTemp, p.UTemp...)
	c.arena.UDepth = append(c.arena.UDepth, p.UDepth...)
	return true, nil
}

// Rejected returns the number of profiles dropped by the policy.
func (b *Builder) Rejected() int {
	return b.rejected
}

// Catalog finalizes and returns the built catalog. The builder must
// not be used afterwards.
func (b *Builder) Catalog() *Catalog {
	return &b.cat
}
