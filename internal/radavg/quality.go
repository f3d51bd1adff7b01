package radavg

import (
	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// DefaultMaxMeanSpacing is the coarsest acceptable mean pressure
// spacing (dbar) for a profile entering an aggregation.
const DefaultMaxMeanSpacing = 10.0

// qcAccepted is the WOD profile QC code for an accepted cast.
const qcAccepted = 0

// QualityFilter keeps only records whose temperature and salinity
// profile QC codes are both accepted and whose mean pressure spacing
// does not exceed maxMeanSpacing. The input catalog is not mutated;
// the result shares its level arenas. Applying the filter twice
// yields the same subset as applying it once.
func QualityFilter(c *wod.Catalog, maxMeanSpacing float64) *wod.Catalog {
	var idx []int
	for i := 0; i < c.Len(); i++ {
		if c.TempQC[i] != qcAccepted || c.SalQC[i] != qcAccepted {
			continue
		}
		if !(c.DPMean[i] <= maxMeanSpacing) { // NaN spacing also fails
			continue
		}
		idx = append(idx, i)
	}
	return c.Subset(idx)
}
