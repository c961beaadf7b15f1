package comparison

import (
	"context"
	"fmt"

	"github.com/fabworks/quotecost/internal/catalog"
	"github.com/fabworks/quotecost/internal/costmodel"
)

// EnginePricer prices materials through the cost model engine using the
// catalog's cost-factor records. This is the default Pricer; remote pricing
// engines plug in behind the same interface through the pricingsource
// adapters.
type EnginePricer struct {
	engine   *costmodel.Engine
	snapshot *catalog.Snapshot
}

// NewEnginePricer creates the default engine-backed pricer.
func NewEnginePricer(engine *costmodel.Engine, snapshot *catalog.Snapshot) *EnginePricer {
	return &EnginePricer{engine: engine, snapshot: snapshot}
}

// PriceMaterial prices one material: the process+machine factor record is
// looked up, the material's own stock price and density override the
// record's generic material economics, and requested finishes are priced
// against the material's surface area.
func (p *EnginePricer) PriceMaterial(ctx context.Context, m catalog.Material, req CompareRequest) (costmodel.PricingBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return costmodel.PricingBreakdown{}, err
	}

	factors, err := p.snapshot.FactorsFor(req.Process, req.MachineID)
	if err != nil {
		return costmodel.PricingBreakdown{}, err
	}

	if m.PricePerKG > 0 {
		factors.MaterialPricePerKG = m.PricePerKG
	}

	if len(req.Finishes) > 0 {
		finishes := make([]catalog.Finish, 0, len(req.Finishes))
		for _, code := range req.Finishes {
			fin, ok := p.snapshot.FinishByCode(code)
			if !ok {
				return costmodel.PricingBreakdown{}, fmt.Errorf("unknown finish %q", code)
			}
			finishes = append(finishes, fin)
		}
		factors = factors.WithFinishAdders(
			p.engine.BuildFinishAdders(finishes, factors.MachineRatePerHour, req.Geometry.SurfaceAreaCM2))
	}

	breakdown := costmodel.BreakdownRequest{
		Quantity:            req.Quantity,
		Metrics:             req.Geometry,
		Factors:             factors,
		ToleranceMultiplier: req.ToleranceMultiplier,
		RiskScore:           req.RiskScore,
	}

	if m.DensityGPerCC > 0 {
		massKG := req.Geometry.VolumeCC * m.DensityGPerCC / 1000
		breakdown.Overrides = &costmodel.Overrides{MaterialMassKG: &massKG}
	}

	return p.engine.ComputeBreakdown(breakdown)
}
