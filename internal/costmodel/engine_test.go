package costmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/quotecost/internal/catalog"
)

func testFactors() catalog.CostFactors {
	return catalog.CostFactors{
		ID:                    "cnc_milling/test",
		Process:               "cnc_milling",
		MachineID:             "test",
		MachineRatePerHour:    60,
		SetupCost:             120,
		MaterialPricePerKG:    20,
		InspectionCostPerPart: 2,
		OverheadPercent:       0.2,
		BaseMarginPercent:     0.25,
		FinishCostAdders:      map[string]float64{"FIN_A": 5},
	}
}

func testMetrics() GeometryMetrics {
	return GeometryMetrics{
		VolumeCC:       100,
		SurfaceAreaCM2: 150,
		Features:       FeatureCounts{Holes: 4},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultHeuristics())
	require.NoError(t, err)
	return e
}

// TestComputeBreakdown_WorkedExample pins the reference roll-up: 4 holes at
// 2 min each on a $60/hr machine, $120 setup across 10 parts.
func TestComputeBreakdown_WorkedExample(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.ComputeBreakdown(BreakdownRequest{
		Quantity: 10,
		Metrics:  testMetrics(),
		Factors:  testFactors(),
	})
	require.NoError(t, err)

	assert.InDelta(t, 8.0, got.MachineTimeMin, 1e-9)
	assert.InDelta(t, 8.0, got.CycleTimeMin, 1e-9)
	assert.Equal(t, 8.00, got.Machining)
	assert.Equal(t, 12.00, got.Setup)
	assert.Equal(t, 5.40, got.Material) // 100cc × 0.0027 kg/cc × $20/kg
	assert.Equal(t, 5.00, got.Finish)
	assert.Equal(t, 2.00, got.Inspection)
	assert.Equal(t, 5.08, got.Overhead) // 0.2 × (8 + 5.40 + 12)
	assert.Equal(t, 37.48, got.UnitCostBeforeMargin)
	assert.Equal(t, 9.37, got.Margin)
	assert.Equal(t, 46.85, got.UnitPrice)
	assert.Equal(t, 468.50, got.TotalPrice)
}

// TestComputeBreakdown_TotalPriceProperty checks total ≈ unit × quantity
// across a quantity sweep.
func TestComputeBreakdown_TotalPriceProperty(t *testing.T) {
	e := newTestEngine(t)
	factors := testFactors()
	factors.QuantityBreaks = []catalog.QuantityBreak{
		{MinQty: 50, DiscountPercent: 5},
		{MinQty: 100, DiscountPercent: 10},
	}

	for _, qty := range []int{1, 3, 10, 49, 50, 99, 100, 500, 1000} {
		got, err := e.ComputeBreakdown(BreakdownRequest{
			Quantity: qty,
			Metrics:  testMetrics(),
			Factors:  factors,
		})
		require.NoError(t, err, "quantity %d", qty)
		assert.GreaterOrEqual(t, got.UnitPrice, 0.0)
		assert.InDelta(t, got.UnitPrice*float64(qty), got.TotalPrice, 0.1,
			"quantity %d: total should equal unit × qty within rounding", qty)
	}
}

// TestComputeBreakdown_QuantityBreakMonotonicity verifies that crossing each
// discount threshold lowers the unit price, and that breaks never stack.
func TestComputeBreakdown_QuantityBreakMonotonicity(t *testing.T) {
	e := newTestEngine(t)
	factors := testFactors()
	factors.SetupCost = 0 // isolate the discount effect from amortization
	factors.QuantityBreaks = []catalog.QuantityBreak{
		{MinQty: 50, DiscountPercent: 5},
		{MinQty: 100, DiscountPercent: 10},
	}

	price := func(qty int) float64 {
		got, err := e.ComputeBreakdown(BreakdownRequest{
			Quantity: qty,
			Metrics:  testMetrics(),
			Factors:  factors,
		})
		require.NoError(t, err)
		return got.UnitPrice
	}

	p10, p50, p100 := price(10), price(50), price(100)
	assert.Less(t, p100, p50)
	assert.Less(t, p50, p10)

	// Only the highest qualifying break applies: 10% off, not 15%.
	assert.InDelta(t, p10*0.90, p100, 0.02)
	assert.InDelta(t, p10*0.95, p50, 0.02)
}

// TestComputeBreakdown_RushMultiplier verifies the rush surcharge scales the
// unit price last, after the quantity discount.
func TestComputeBreakdown_RushMultiplier(t *testing.T) {
	e := newTestEngine(t)

	base := testFactors()
	rush := testFactors()
	rush.RushMultiplier = 1.3

	normal, err := e.ComputeBreakdown(BreakdownRequest{Quantity: 10, Metrics: testMetrics(), Factors: base})
	require.NoError(t, err)
	expedited, err := e.ComputeBreakdown(BreakdownRequest{Quantity: 10, Metrics: testMetrics(), Factors: rush})
	require.NoError(t, err)

	assert.InDelta(t, normal.UnitPrice*1.3, expedited.UnitPrice, 0.02)

	// A multiplier at or below 1 is a no-op.
	noRush := testFactors()
	noRush.RushMultiplier = 1.0
	same, err := e.ComputeBreakdown(BreakdownRequest{Quantity: 10, Metrics: testMetrics(), Factors: noRush})
	require.NoError(t, err)
	assert.Equal(t, normal.UnitPrice, same.UnitPrice)
}

// TestComputeBreakdown_ToleranceMultiplier verifies machining scales
// linearly and inspection sub-linearly with a tight tolerance.
func TestComputeBreakdown_ToleranceMultiplier(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.ComputeBreakdown(BreakdownRequest{
		Quantity:            10,
		Metrics:             testMetrics(),
		Factors:             testFactors(),
		ToleranceMultiplier: 1.5,
	})
	require.NoError(t, err)

	assert.Equal(t, 12.00, got.Machining)  // 8 × 1.5
	assert.Equal(t, 2.80, got.Inspection)  // 2 × (1 + 0.5×0.8)
}

func TestComputeBreakdown_Overrides(t *testing.T) {
	e := newTestEngine(t)

	machineTime := 20.0
	cycleTime := 25.0
	mass := 1.5

	got, err := e.ComputeBreakdown(BreakdownRequest{
		Quantity: 10,
		Metrics:  testMetrics(),
		Factors:  testFactors(),
		Overrides: &Overrides{
			MachineTimeMin: &machineTime,
			CycleTimeMin:   &cycleTime,
			MaterialMassKG: &mass,
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 20.0, got.MachineTimeMin, 1e-9)
	assert.InDelta(t, 25.0, got.CycleTimeMin, 1e-9)
	assert.Equal(t, 20.00, got.Machining) // 20/60 × 60
	assert.Equal(t, 30.00, got.Material)  // 1.5 × 20
}

// TestComputeBreakdown_VolumeFallback exercises the no-feature-data path:
// time comes from removed volume, floored at the minimum.
func TestComputeBreakdown_VolumeFallback(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		volumeCC float64
		wantTime float64
	}{
		{name: "large part uses volume model", volumeCC: 600, wantTime: 10.0}, // 600/15 × 0.25
		{name: "tiny part hits the floor", volumeCC: 1, wantTime: 0.5},
		{name: "zero volume hits the floor", volumeCC: 0, wantTime: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ComputeBreakdown(BreakdownRequest{
				Quantity: 1,
				Metrics:  GeometryMetrics{VolumeCC: tt.volumeCC},
				Factors:  testFactors(),
			})
			require.NoError(t, err)
			assert.InDelta(t, tt.wantTime, got.MachineTimeMin, 1e-9)
		})
	}
}

func TestComputeBreakdown_InvalidQuantity(t *testing.T) {
	e := newTestEngine(t)

	for _, qty := range []int{0, -1, -100} {
		_, err := e.ComputeBreakdown(BreakdownRequest{
			Quantity: qty,
			Metrics:  testMetrics(),
			Factors:  testFactors(),
		})
		require.Error(t, err, "quantity %d", qty)

		var invalidErr *InvalidQuantityError
		require.ErrorAs(t, err, &invalidErr)
		assert.Equal(t, qty, invalidErr.Quantity)
	}
}

// TestComputeBreakdown_RiskScoreLiftsMargin verifies the risk uplift is
// bounded and applied before the roll-up's margin step.
func TestComputeBreakdown_RiskScoreLiftsMargin(t *testing.T) {
	e := newTestEngine(t)

	base, err := e.ComputeBreakdown(BreakdownRequest{Quantity: 10, Metrics: testMetrics(), Factors: testFactors()})
	require.NoError(t, err)

	risk := 1.0
	risky, err := e.ComputeBreakdown(BreakdownRequest{
		Quantity:  10,
		Metrics:   testMetrics(),
		Factors:   testFactors(),
		RiskScore: &risk,
	})
	require.NoError(t, err)

	// Max uplift: margin fraction goes 0.25 -> 0.33 on the same unit cost.
	assert.Equal(t, base.UnitCostBeforeMargin, risky.UnitCostBeforeMargin)
	assert.InDelta(t, risky.UnitCostBeforeMargin*0.33, risky.Margin, 0.01)
	assert.Greater(t, risky.UnitPrice, base.UnitPrice)
}

// TestComputeBreakdown_Pure verifies identical inputs produce identical
// outputs, which external memoization layers rely on.
func TestComputeBreakdown_Pure(t *testing.T) {
	e := newTestEngine(t)

	req := BreakdownRequest{
		Quantity:            25,
		Metrics:             testMetrics(),
		Factors:             testFactors(),
		ToleranceMultiplier: 1.2,
	}

	first, err := e.ComputeBreakdown(req)
	require.NoError(t, err)
	second, err := e.ComputeBreakdown(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
