// Package costmodel implements the deterministic cost roll-up for
// machined and fabricated parts: machining time from feature counts, material
// mass from volume, setup amortization, finish and inspection adders,
// overhead, risk-adjusted margin, quantity-break discounting, and rush
// surcharge. Every function here is pure; identical inputs always produce
// identical outputs, which is what makes external caching and regression
// fixtures safe.
package costmodel

import (
	"fmt"

	"github.com/fabworks/quotecost/internal/catalog"
	"github.com/fabworks/quotecost/internal/money"
)

// InvalidQuantityError reports a batch quantity the engine cannot price.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: must be a positive integer", e.Quantity)
}

// BreakdownRequest carries the inputs of one cost roll-up.
type BreakdownRequest struct {
	// Quantity is the batch size. Must be positive.
	Quantity int

	// Metrics is the part's geometry summary.
	Metrics GeometryMetrics

	// Factors is the read-only economics record for the process+machine.
	Factors catalog.CostFactors

	// ToleranceMultiplier scales machining cost for tight-tolerance work.
	// Zero means the default of 1 (standard tolerance).
	ToleranceMultiplier float64

	// Overrides optionally pins intermediate values.
	Overrides *Overrides

	// RiskScore is an optional 0-1 DFM manufacturability risk estimate.
	// When present and positive it lifts the base margin by up to the
	// calibrated maximum uplift before the roll-up.
	RiskScore *float64
}

// Engine computes pricing breakdowns against one heuristics calibration.
// Stateless apart from the injected calibration; safe for unbounded
// concurrent use.
type Engine struct {
	heur Heuristics
}

// NewEngine returns an engine using the given calibration.
func NewEngine(heur Heuristics) (*Engine, error) {
	if err := heur.Validate(); err != nil {
		return nil, fmt.Errorf("invalid heuristics: %w", err)
	}
	return &Engine{heur: heur}, nil
}

// Heuristics returns the calibration the engine was built with.
func (e *Engine) Heuristics() Heuristics {
	return e.heur
}

// ComputeBreakdown runs the per-part cost roll-up and returns the pricing
// breakdown for the batch. The sequence is fixed: machining, setup
// amortization, material, finish, inspection, overhead, margin, then the
// quantity discount and finally the rush multiplier on the unit price.
func (e *Engine) ComputeBreakdown(req BreakdownRequest) (PricingBreakdown, error) {
	if req.Quantity <= 0 {
		return PricingBreakdown{}, &InvalidQuantityError{Quantity: req.Quantity}
	}

	tolerance := req.ToleranceMultiplier
	if tolerance <= 0 {
		tolerance = 1
	}
	f := req.Factors

	machineTimeMin := e.machineTimeMinutes(req.Metrics, req.Overrides)

	cycleTimeMin := machineTimeMin
	if req.Overrides != nil && req.Overrides.CycleTimeMin != nil {
		cycleTimeMin = *req.Overrides.CycleTimeMin
	}

	massKG := req.Metrics.VolumeCC * e.heur.DefaultDensityKGPerCC
	if req.Overrides != nil && req.Overrides.MaterialMassKG != nil {
		massKG = *req.Overrides.MaterialMassKG
	}

	machining := (machineTimeMin / 60) * f.MachineRatePerHour * tolerance
	setup := f.SetupCost / float64(req.Quantity)
	material := massKG * f.MaterialPricePerKG

	var finish float64
	for _, adder := range f.FinishCostAdders {
		finish += adder
	}

	inspection := f.InspectionCostPerPart
	if tolerance > 1 {
		inspection *= 1 + (tolerance-1)*e.heur.InspectionToleranceFactor
	}

	overhead := f.OverheadPercent * (machining + material + setup)
	unitCost := material + machining + setup + finish + inspection + overhead

	marginPercent := f.BaseMarginPercent
	if req.RiskScore != nil {
		marginPercent = ApplyRiskMargin(marginPercent, req.RiskScore, e.heur.MaxRiskMarginUplift)
	}
	margin := unitCost * marginPercent

	unitPrice := unitCost + margin
	unitPrice *= 1 - ResolveQuantityDiscount(f.QuantityBreaks, req.Quantity)
	if f.RushMultiplier > 1 {
		unitPrice *= f.RushMultiplier
	}

	unitPrice = money.Round2(unitPrice)

	return PricingBreakdown{
		Material:             money.Round2(material),
		Machining:            money.Round2(machining),
		Setup:                money.Round2(setup),
		Finish:               money.Round2(finish),
		Inspection:           money.Round2(inspection),
		Overhead:             money.Round2(overhead),
		Margin:               money.Round2(margin),
		UnitCostBeforeMargin: money.Round2(unitCost),
		UnitPrice:            unitPrice,
		TotalPrice:           money.Round2(unitPrice * float64(req.Quantity)),
		CycleTimeMin:         cycleTimeMin,
		MachineTimeMin:       machineTimeMin,
	}, nil
}

// machineTimeMinutes derives the per-part machining time. Feature counts win
// over the volume fallback; an explicit override wins over both.
func (e *Engine) machineTimeMinutes(m GeometryMetrics, ov *Overrides) float64 {
	if ov != nil && ov.MachineTimeMin != nil {
		return *ov.MachineTimeMin
	}

	if m.Features.Total() > 0 {
		fm := e.heur.FeatureMinutes
		return float64(m.Features.Holes)*fm.Holes +
			float64(m.Features.Pockets)*fm.Pockets +
			float64(m.Features.Slots)*fm.Slots +
			float64(m.Features.Faces)*fm.Faces +
			float64(m.Features.Bends)*fm.Bends +
			float64(m.Features.Corners)*fm.Corners +
			float64(m.Features.Threads)*fm.Threads
	}

	// No feature data: estimate from removed volume, floored so trivially
	// small parts still carry a handling charge.
	t := (m.VolumeCC / e.heur.RemovalRateCCPerMin) * e.heur.VolumeTimeFactor
	if t < e.heur.MinMachineTimeMin {
		t = e.heur.MinMachineTimeMin
	}
	return t
}
