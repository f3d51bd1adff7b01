package radavg

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// gateCatalog builds a catalog of clean 10-level casts; callers
// degrade individual records by poking the scalar columns.
func gateCatalog(t *testing.T, n int) *wod.Catalog {
	t.Helper()
	b := wod.NewBuilder()
	for i := 0; i < n; i++ {
		p := wod.Profile{
			ProbeType: wod.ProbeCTD,
			Year:      2010,
			Month:     1,
			Day:       1 + i,
			Date:      time.Date(2010, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Lat:       float64(i),
			Lon:       0,
		}
		for lv := 0; lv < 10; lv++ {
			p.Pres = append(p.Pres, float64(lv)*5)
			p.Sal = append(p.Sal, 35.0)
			p.Temp = append(p.Temp, 10.0)
			p.Depth = append(p.Depth, float64(lv)*5)
			p.USal = append(p.USal, 0)
			p.UTemp = append(p.UTemp, 0)
			p.UDepth = append(p.UDepth, 0)
		}
		ok, err := b.Append(p)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return b.Catalog()
}

func TestQualityFilterKeepsClean(t *testing.T) {
	c := gateCatalog(t, 4)
	out := QualityFilter(c, DefaultMaxMeanSpacing)
	assert.Equal(t, 4, out.Len())
}

func TestQualityFilterRejectsQC(t *testing.T) {
	c := gateCatalog(t, 4)
	c.TempQC[1] = 1
	c.SalQC[2] = 2

	out := QualityFilter(c, DefaultMaxMeanSpacing)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []float64{0, 3}, out.Lat)
}

func TestQualityFilterRejectsCoarseSpacing(t *testing.T) {
	c := gateCatalog(t, 3)
	c.DPMean[0] = 10.0 // at the bound: keep
	c.DPMean[1] = 10.5 // beyond: drop
	c.DPMean[2] = math.NaN()

	out := QualityFilter(c, DefaultMaxMeanSpacing)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 0.0, out.Lat[0])
}

func TestQualityFilterIdempotent(t *testing.T) {
	c := gateCatalog(t, 5)
	c.TempQC[0] = 1
	c.DPMean[3] = 25

	once := QualityFilter(c, DefaultMaxMeanSpacing)
	twice := QualityFilter(once, DefaultMaxMeanSpacing)
	assert.Equal(t, once.Len(), twice.Len())
	assert.Equal(t, once.Lat, twice.Lat)
}
