package wod

// UsabilityPolicy is the ingestion-time quality contract: only usable
// profiles are ever added to a catalog.
type UsabilityPolicy struct {
	// MinCoverage is the minimum fraction of levels with jointly valid
	// pressure, salinity and temperature.
	MinCoverage float64

	// QCThreshold is the exclusive upper bound on both profile QC
	// scores (lower score = higher confidence).
	QCThreshold int16
}

// DefaultUsabilityPolicy mirrors the operational WOD screening:
// at least half of the levels fully populated and both QC scores
// present and below 3.
func DefaultUsabilityPolicy() UsabilityPolicy {
	return UsabilityPolicy{MinCoverage: 0.5, QCThreshold: 3}
}

// IsUsable reports whether a profile passes the policy. A profile is
// usable only if the jointly-valid (pres, sal, temp) coverage meets
// MinCoverage AND both QC scores are present and strictly below
// QCThreshold. Profiles with no levels are never usable.
func (u UsabilityPolicy) IsUsable(p *Profile) bool {
	n := p.NLevels()
	if n == 0 {
		return false
	}

	joint := 0
	for i := 0; i < n; i++ {
		if Valid(p.Pres[i]) && Valid(p.Sal[i]) && Valid(p.Temp[i]) {
			joint++
		}
	}
	if float64(joint)/float64(n) < u.MinCoverage {
		return false
	}

	if p.SalQC == QCMissing || p.TempQC == QCMissing {
		return false
	}
	return p.SalQC < u.QCThreshold && p.TempQC < u.QCThreshold
}
