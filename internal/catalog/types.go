package catalog

// Material describes one stock material in the catalog. Records are
// read-only at compute time; mutation happens only through catalog
// administration, which produces a new snapshot.
type Material struct {
	ID       string `json:"id"        yaml:"id"`
	Name     string `json:"name"      yaml:"name"`
	Category string `json:"category"  yaml:"category"`

	// DensityGPerCC is the material density in grams per cubic centimeter.
	DensityGPerCC float64 `json:"density_g_per_cc" yaml:"density_g_per_cc"`

	// PricePerKG is the stock price in the catalog currency per kilogram.
	PricePerKG float64 `json:"price_per_kg" yaml:"price_per_kg"`

	// MachinabilityRating is a 0-100 relative machinability index
	// (100 = free machining brass class).
	MachinabilityRating float64 `json:"machinability_rating" yaml:"machinability_rating"`

	// TensileStrengthMPa is the ultimate tensile strength in megapascals.
	TensileStrengthMPa float64 `json:"tensile_strength_mpa" yaml:"tensile_strength_mpa"`

	// Processes lists manufacturing processes this material supports
	// (e.g. "cnc_milling", "sheet_metal", "injection_molding").
	Processes []string `json:"processes" yaml:"processes"`

	// Regions lists regions where the stock is available.
	Regions []string `json:"regions" yaml:"regions"`

	// CompatibleFinishes lists finish codes applicable to this material.
	CompatibleFinishes []string `json:"compatible_finishes" yaml:"compatible_finishes"`
}

// SupportsProcess reports whether the material lists the given process.
func (m Material) SupportsProcess(process string) bool {
	for _, p := range m.Processes {
		if p == process {
			return true
		}
	}
	return false
}

// AvailableIn reports whether the material stock is available in the region.
// An empty region matches everything; a material with no region list is
// treated as globally available.
func (m Material) AvailableIn(region string) bool {
	if region == "" || len(m.Regions) == 0 {
		return true
	}
	for _, r := range m.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// SupportsFinish reports whether the finish code is compatible with the
// material. A material with no compatibility list accepts any finish.
func (m Material) SupportsFinish(code string) bool {
	if len(m.CompatibleFinishes) == 0 {
		return true
	}
	for _, f := range m.CompatibleFinishes {
		if f == code {
			return true
		}
	}
	return false
}

// Finish describes one secondary finishing operation (anodize, powder coat,
// bead blast, ...) with its cost drivers.
type Finish struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`

	// CostPerPart is a flat per-part charge, zero if the finish has none.
	CostPerPart float64 `json:"cost_per_part" yaml:"cost_per_part"`

	// CostPerAreaCM2 is the area-variable charge per square centimeter.
	CostPerAreaCM2 float64 `json:"cost_per_area_cm2" yaml:"cost_per_area_cm2"`

	// PrepTimeMin is fixed preparation labor in minutes per part.
	PrepTimeMin float64 `json:"prep_time_min" yaml:"prep_time_min"`

	// ProcessingRateCM2PerMin is the coverage rate of the finishing process.
	// Zero means the time model is skipped for this finish.
	ProcessingRateCM2PerMin float64 `json:"processing_rate_cm2_per_min" yaml:"processing_rate_cm2_per_min"`

	// Processes lists manufacturing processes this finish applies to.
	Processes []string `json:"processes" yaml:"processes"`
}

// QuantityBreak is one volume-discount threshold rule. Breaks are not
// cumulative: only the highest qualifying threshold applies.
type QuantityBreak struct {
	MinQty          int     `json:"min_qty" yaml:"min_qty"`
	DiscountPercent float64 `json:"discount_percent" yaml:"discount_percent"`
}

// CostFactors is the versioned economics record for one process+machine
// pairing. It is read-only at compute time.
type CostFactors struct {
	// ID identifies the factor record ("cnc_milling/haas-vf2").
	ID string `json:"id" yaml:"id"`

	// Process is the manufacturing process the record applies to.
	Process string `json:"process" yaml:"process"`

	// MachineID identifies the machine the rates were calibrated for.
	MachineID string `json:"machine_id" yaml:"machine_id"`

	MachineRatePerHour    float64 `json:"machine_rate_per_hour"    yaml:"machine_rate_per_hour"`
	SetupCost             float64 `json:"setup_cost"               yaml:"setup_cost"`
	MaterialPricePerKG    float64 `json:"material_price_per_kg"    yaml:"material_price_per_kg"`
	InspectionCostPerPart float64 `json:"inspection_cost_per_part" yaml:"inspection_cost_per_part"`

	// FinishCostAdders holds the summed per-part cost of each requested
	// finish, keyed by finish code.
	FinishCostAdders map[string]float64 `json:"finish_cost_adders" yaml:"finish_cost_adders"`

	// OverheadPercent and BaseMarginPercent are fractions (0.2 = 20%).
	OverheadPercent   float64 `json:"overhead_percent"    yaml:"overhead_percent"`
	BaseMarginPercent float64 `json:"base_margin_percent" yaml:"base_margin_percent"`

	// RushMultiplier is an expedite surcharge factor applied after the
	// quantity discount. Values <= 1 mean no surcharge.
	RushMultiplier float64 `json:"rush_multiplier,omitempty" yaml:"rush_multiplier,omitempty"`

	QuantityBreaks []QuantityBreak `json:"quantity_breaks" yaml:"quantity_breaks"`

	// Version is the catalog revision this record came from.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// WithFinishAdders returns a copy of the factors with the finish adder map
// replaced. The receiver is not modified; factor records stay read-only.
func (f CostFactors) WithFinishAdders(adders map[string]float64) CostFactors {
	out := f
	out.FinishCostAdders = make(map[string]float64, len(adders))
	for k, v := range adders {
		out.FinishCostAdders[k] = v
	}
	return out
}
