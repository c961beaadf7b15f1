package costmodel

// GeometryMetrics is the volumetric, area, and feature-count summary of a
// part produced by upstream CAD analysis. Immutable per quote line.
type GeometryMetrics struct {
	VolumeCC       float64       `json:"volume_cc"`
	SurfaceAreaCM2 float64       `json:"surface_area_cm2"`
	Features       FeatureCounts `json:"features"`
}

// FeatureCounts holds per-feature occurrence counts from CAD analysis.
type FeatureCounts struct {
	Holes   int `json:"holes,omitempty"`
	Pockets int `json:"pockets,omitempty"`
	Slots   int `json:"slots,omitempty"`
	Faces   int `json:"faces,omitempty"`
	Bends   int `json:"bends,omitempty"`
	Corners int `json:"corners,omitempty"`
	Threads int `json:"threads,omitempty"`
}

// Total returns the summed feature count. Zero means no feature data was
// extracted and the engine falls back to its volume-based time model.
func (f FeatureCounts) Total() int {
	return f.Holes + f.Pockets + f.Slots + f.Faces + f.Bends + f.Corners + f.Threads
}

// Overrides lets a caller pin individual intermediate values of the cost
// roll-up (known cycle time from a prior run, measured stock mass). A nil
// field means "compute it".
type Overrides struct {
	MachineTimeMin *float64 `json:"machine_time_min,omitempty"`
	CycleTimeMin   *float64 `json:"cycle_time_min,omitempty"`
	MaterialMassKG *float64 `json:"material_mass_kg,omitempty"`
}

// PricingBreakdown is the result of one cost roll-up. It is a value object:
// recomputed on every call, never mutated. All monetary fields are rounded
// to 2 decimals.
type PricingBreakdown struct {
	Material             float64 `json:"material"`
	Machining            float64 `json:"machining"`
	Setup                float64 `json:"setup"`
	Finish               float64 `json:"finish"`
	Inspection           float64 `json:"inspection"`
	Overhead             float64 `json:"overhead"`
	Margin               float64 `json:"margin"`
	UnitCostBeforeMargin float64 `json:"unit_cost_before_margin"`
	UnitPrice            float64 `json:"unit_price"`
	TotalPrice           float64 `json:"total_price"`

	CycleTimeMin   float64 `json:"cycle_time_min"`
	MachineTimeMin float64 `json:"machine_time_min"`
}
