package costmodel

import (
	"github.com/fabworks/quotecost/internal/catalog"
	"github.com/fabworks/quotecost/internal/money"
)

// EstimateFinishCost prices one secondary finishing operation for a part.
// The cost is the sum of a flat per-part charge, an area-variable charge,
// and a labor-time charge derived from prep time plus a coverage-rate
// process time over the externally exposed surface. The labor rate is a
// calibrated fraction of the machine hourly rate; the exposed surface is a
// calibrated fraction of total surface area.
func (e *Engine) EstimateFinishCost(fin catalog.Finish, machineHourlyRate, surfaceAreaCM2 float64) float64 {
	perPart := fin.CostPerPart
	if perPart < 0 {
		perPart = 0
	}

	var areaVariable float64
	if fin.CostPerAreaCM2 > 0 && surfaceAreaCM2 > 0 {
		areaVariable = fin.CostPerAreaCM2 * surfaceAreaCM2
	}

	laborRate := machineHourlyRate * e.heur.FinishLaborRateRatio

	var processTimeMin float64
	if fin.ProcessingRateCM2PerMin > 0 && surfaceAreaCM2 > 0 {
		processTimeMin = (surfaceAreaCM2 * e.heur.ExposedSurfaceFraction) / fin.ProcessingRateCM2PerMin
	}

	totalTimeMin := fin.PrepTimeMin + processTimeMin
	timeCost := (totalTimeMin / 60) * laborRate

	cost := perPart + areaVariable + timeCost
	if cost < 0 {
		return 0
	}
	return cost
}

// BuildFinishAdders prices each finish and returns the adder map keyed by
// finish code, ready to attach to a cost-factor record. Results are rounded
// to 2 decimals since they feed monetary fields directly.
func (e *Engine) BuildFinishAdders(finishes []catalog.Finish, machineHourlyRate, surfaceAreaCM2 float64) map[string]float64 {
	if len(finishes) == 0 {
		return nil
	}
	adders := make(map[string]float64, len(finishes))
	for _, fin := range finishes {
		adders[fin.Code] = money.Round2(e.EstimateFinishCost(fin, machineHourlyRate, surfaceAreaCM2))
	}
	return adders
}
