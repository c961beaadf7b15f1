package costmodel

import (
	"math"

	"github.com/fabworks/quotecost/internal/money"
)

// DefaultMaxRiskUplift bounds how far a DFM risk score can lift the base
// margin when no calibration override is supplied.
const DefaultMaxRiskUplift = 0.08

// ApplyRiskMargin lifts a base margin fraction by up to maxUplift according
// to a 0-1 DFM risk score. A nil, NaN, or non-positive risk score leaves the
// margin untouched; scores above 1 are clamped. The result is rounded to 4
// decimals and is monotonic non-decreasing in the risk score, so a riskier
// part never prices below a safer one on margin alone.
func ApplyRiskMargin(baseMargin float64, riskScore *float64, maxUplift float64) float64 {
	if riskScore == nil || math.IsNaN(*riskScore) || *riskScore <= 0 {
		return baseMargin
	}
	if maxUplift < 0 {
		maxUplift = DefaultMaxRiskUplift
	}

	clamped := *riskScore
	if clamped > 1 {
		clamped = 1
	}
	return money.Round4(baseMargin + maxUplift*clamped)
}
