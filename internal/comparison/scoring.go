package comparison

import (
	"github.com/fabworks/quotecost/internal/money"
)

// Composite score weights. They sum to 1 so the score stays on a 0-100
// scale.
const (
	weightCost          = 0.4
	weightMachinability = 0.3
	weightStrength      = 0.2
	weightCompatibility = 0.1
)

// strengthNormalizationMPa maps tensile strength onto the 0-100 scale:
// materials at or above this value score 100.
const strengthNormalizationMPa = 1000.0

// Warning thresholds.
const (
	lowMachinabilityThreshold = 30.0
	highCostDeltaThreshold    = 50.0
)

// Warning labels attached to candidate compatibility flags.
const (
	WarnLowMachinability = "low_machinability"
	WarnHighCostDelta    = "high_cost_delta"
	WarnProcessMismatch  = "process_mismatch"
)

// costScore rewards candidates whose total cost stays close to the
// baseline, in either direction.
func costScore(costDeltaPercent float64) float64 {
	s := 100 - abs(costDeltaPercent)
	if s < 0 {
		return 0
	}
	return s
}

// machinabilityScore clamps the catalog rating onto 0-100.
func machinabilityScore(rating float64) float64 {
	return clamp100(rating)
}

// strengthScore normalizes tensile strength onto 0-100.
func strengthScore(tensileMPa float64) float64 {
	return clamp100(tensileMPa / strengthNormalizationMPa * 100)
}

// compatibilityScore is a 0/25/50/75/100 ladder over four binary checks:
// process match, region availability, finish compatibility, and a clean
// warning list.
func compatibilityScore(flags CompatibilityFlags) float64 {
	var passed float64
	if flags.ProcessMatch {
		passed++
	}
	if flags.RegionAvailable {
		passed++
	}
	if flags.FinishesMatch {
		passed++
	}
	if len(flags.Warnings) == 0 {
		passed++
	}
	return passed * 25
}

// compositeScore combines the four factor scores with the fixed weights.
func compositeScore(costDeltaPercent, machinability, tensileMPa float64, flags CompatibilityFlags) float64 {
	return money.Round2(weightCost*costScore(costDeltaPercent) +
		weightMachinability*machinabilityScore(machinability) +
		weightStrength*strengthScore(tensileMPa) +
		weightCompatibility*compatibilityScore(flags))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
