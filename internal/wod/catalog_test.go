package wod

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestCatalog(t *testing.T, months ...int) *Catalog {
	t.Helper()
	b := NewBuilder()
	for i, m := range months {
		p := usableProfile(10)
		p.Month = m
		p.Year = 2015
		p.Day = 1 + i
		p.Date = time.Date(2015, time.Month(m), 1+i, 0, 0, 0, 0, time.UTC)
		p.Lat = float64(10 + i)
		p.Lon = float64(-40 + i)
		ok, err := b.Append(p)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return b.Catalog()
}

func TestBuilder_RejectsMismatchedSequences(t *testing.T) {
	p := usableProfile(10)
	p.Temp = p.Temp[:9]

	ok, err := NewBuilder().Append(p)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestBuilder_RejectsUnusableWithoutError(t *testing.T) {
	b := NewBuilder()
	p := usableProfile(10)
	p.TempQC = 5

	ok, err := b.Append(p)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, b.Rejected())
	assert.Equal(t, 0, b.Catalog().Len())
}

func TestBuilder_DerivedColumns(t *testing.T) {
	b := NewBuilder()
	p := usableProfile(5) // pressures 0,5,10,15,20
	_, err := b.Append(p)
	require.NoError(t, err)

	c := b.Catalog()
	assert.Equal(t, 0.0, c.PMin[0])
	assert.Equal(t, 20.0, c.PMax[0])
	assert.Equal(t, 5.0, c.DPMean[0])
	assert.Equal(t, int32(5), c.NLevels[0])
}

func TestBuilder_MeanSpacingSkipsMissing(t *testing.T) {
	b := NewBuilder()
	p := usableProfile(10)
	p.Pres[4] = math.NaN() // spacing computed over valid entries only
	_, err := b.Append(p)
	require.NoError(t, err)

	c := b.Catalog()
	// Pressures 0,5,10,15,_,25,...,45: 8 gaps covering 45 dbar.
	assert.InDelta(t, 45.0/8.0, c.DPMean[0], 1e-12)
}

func TestCatalog_SubsetSharesLevelData(t *testing.T) {
	c := buildTestCatalog(t, 1, 2, 3, 4)

	sub := c.Subset([]int{3, 1})
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, c.Lat[3], sub.Lat[0])
	assert.Equal(t, c.Lat[1], sub.Lat[1])

	// Level slices must alias the parent arena, not copies.
	parent := c.Pressure(3)
	child := sub.Pressure(0)
	require.Equal(t, parent, child)
	assert.Same(t, &parent[0], &child[0])
}

func TestCatalog_SubsetEmpty(t *testing.T) {
	c := buildTestCatalog(t, 1, 2)
	sub := c.Subset(nil)
	assert.Equal(t, 0, sub.Len())
}

func TestCatalog_MonthMask(t *testing.T) {
	c := buildTestCatalog(t, 1, 7, 7, 12)

	idx := Where(c.MonthMask(7))
	assert.Equal(t, []int{1, 2}, idx)

	assert.Empty(t, Where(c.MonthMask(3)))
}

func TestProbeTypeFromWODCode(t *testing.T) {
	assert.Equal(t, ProbeCTD, ProbeTypeFromWODCode(4))
	assert.Equal(t, ProbeSTD, ProbeTypeFromWODCode(5))
	assert.Equal(t, ProbeXCTD, ProbeTypeFromWODCode(6))
	assert.Equal(t, ProbeXTD, ProbeTypeFromWODCode(2))
	assert.Equal(t, ProbeFloat, ProbeTypeFromWODCode(9))
	assert.Equal(t, ProbeUnknown, ProbeTypeFromWODCode(0))
	assert.Equal(t, ProbeReadFail, ProbeTypeFromWODCode(42))
}

func TestProbeTypeStringRoundTrip(t *testing.T) {
	for _, pt := range []ProbeType{ProbeUnknown, ProbeCTD, ProbeSTD, ProbeXCTD, ProbeXTD, ProbeFloat, ProbeReadFail} {
		assert.Equal(t, pt, ProbeTypeFromString(pt.String()))
	}
}
