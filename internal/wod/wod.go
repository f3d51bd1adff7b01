// Package wod provides World Ocean Database profile data structures.
// This package contains the in-memory profile catalog, the usability
// policy applied at catalog build time, and Parquet persistence.
//
// Storage layout:
//   - Scalar per-profile columns (position, date, QC scores, sampling
//     statistics) are plain struct-of-arrays slices.
//   - Ragged per-level sequences (pressure, salinity, temperature,
//     depth and their uncertainties) live in shared arenas addressed
//     by a start offset + level count per profile. All sequences of a
//     profile share one length (nlevs).
//
// Missing values are NaN sentinels. There is no masked-array
// abstraction; callers test validity with Valid.
package wod

import (
	"math"
	"time"
)

// SchemaVersion is the current catalog schema version.
const SchemaVersion = 1

// QCMissing marks an absent per-profile QC score.
const QCMissing int16 = -1

// Valid reports whether a level value is present (non-NaN).
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// Missing is the sentinel stored for absent level values.
func Missing() float64 {
	return math.NaN()
}

// =============================================================================
// Probe Types
// =============================================================================

// ProbeType identifies the instrument that recorded a cast.
type ProbeType uint8

const (
	ProbeUnknown ProbeType = iota
	ProbeCTD
	ProbeSTD
	ProbeXCTD
	ProbeXTD
	ProbeFloat
	ProbeReadFail
)

// probeNames maps ProbeType to the labels used by the WOD ingestion stage.
var probeNames = [...]string{
	ProbeUnknown:  "UNKNOWN",
	ProbeCTD:      "CTD",
	ProbeSTD:      "STD",
	ProbeXCTD:     "XCTD",
	ProbeXTD:      "XTD",
	ProbeFloat:    "FLOAT",
	ProbeReadFail: "READ_FAIL",
}

func (p ProbeType) String() string {
	if int(p) < len(probeNames) {
		return probeNames[p]
	}
	return probeNames[ProbeReadFail]
}

// ProbeTypeFromWODCode converts a WOD numeric probe-type code.
// Codes: 4=CTD, 5=STD, 6=XCTD, 2=XTD, 9=FLOAT, 0=UNKNOWN; anything
// else is treated as a read failure.
func ProbeTypeFromWODCode(code int) ProbeType {
	switch code {
	case 4:
		return ProbeCTD
	case 5:
		return ProbeSTD
	case 6:
		return ProbeXCTD
	case 2:
		return ProbeXTD
	case 9:
		return ProbeFloat
	case 0:
		return ProbeUnknown
	default:
		return ProbeReadFail
	}
}

// ProbeTypeFromString parses a stored probe-type label.
func ProbeTypeFromString(s string) ProbeType {
	for pt, name := range probeNames {
		if s == name {
			return ProbeType(pt)
		}
	}
	return ProbeReadFail
}

// =============================================================================
// Profile - one vertical cast (ingestion-facing value type)
// =============================================================================

// Profile is a single vertical cast as handed over by an ingestion
// collaborator. All level sequences must share one length; any entry
// may be NaN. Profiles are immutable once appended to a catalog.
type Profile struct {
	ProbeType ProbeType
	Year      int
	Month     int
	Day       int
	Date      time.Time
	Lat       float64
	Lon       float64

	// Per-profile QC scores, lower is better. QCMissing when absent.
	SalQC  int16
	TempQC int16

	// Parallel level sequences (shared length).
	Pres   []float64 // pressure, dbar
	Sal    []float64 // practical salinity
	Temp   []float64 // in-situ temperature, degC
	Depth  []float64 // depth, m
	USal   []float64 // salinity uncertainty
	UTemp  []float64 // temperature uncertainty
	UDepth []float64 // depth uncertainty
}

// NLevels returns the shared level count.
func (p *Profile) NLevels() int {
	return len(p.Pres)
}

// meanDiff returns the mean spacing between consecutive valid entries,
// or NaN when fewer than two valid entries exist.
func meanDiff(xs []float64) float64 {
	var sum float64
	var n int
	last := math.NaN()
	for _, x := range xs {
		if !Valid(x) {
			continue
		}
		if Valid(last) {
			sum += x - last
			n++
		}
		last = x
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// validRange returns the min and max over valid entries, or NaNs.
func validRange(xs []float64) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, x := range xs {
		if !Valid(x) {
			continue
		}
		if !Valid(lo) || x < lo {
			lo = x
		}
		if !Valid(hi) || x > hi {
			hi = x
		}
	}
	return lo, hi
}
