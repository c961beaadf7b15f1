package costmodel

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Heuristics holds the calibrated constants behind the cost model: the
// per-feature machining-time table, the material-removal fallback, and the
// business ratios used for inspection, finishing, and risk margin. These are
// calibrated business numbers, not physics; recalibration ships a new
// Heuristics value rather than a new engine build.
type Heuristics struct {
	// Version identifies the calibration revision.
	Version string `yaml:"version"`

	// FeatureMinutes maps a geometry feature to machining minutes per
	// occurrence.
	FeatureMinutes FeatureMinutes `yaml:"feature_minutes"`

	// RemovalRateCCPerMin is the assumed bulk material-removal rate used by
	// the volume-based fallback when no feature data is present.
	RemovalRateCCPerMin float64 `yaml:"removal_rate_cc_per_min"`

	// VolumeTimeFactor scales the volume-based fallback into minutes.
	VolumeTimeFactor float64 `yaml:"volume_time_factor"`

	// MinMachineTimeMin is the floor for the volume-based fallback.
	MinMachineTimeMin float64 `yaml:"min_machine_time_min"`

	// DefaultDensityKGPerCC converts part volume to mass when no material
	// density override is supplied (calibrated for 6061 aluminum).
	DefaultDensityKGPerCC float64 `yaml:"default_density_kg_per_cc"`

	// InspectionToleranceFactor scales inspection cost sub-linearly with a
	// tolerance multiplier above 1.
	InspectionToleranceFactor float64 `yaml:"inspection_tolerance_factor"`

	// FinishLaborRateRatio derives finishing labor cost from the machine
	// hourly rate.
	FinishLaborRateRatio float64 `yaml:"finish_labor_rate_ratio"`

	// ExposedSurfaceFraction approximates the externally exposed share of a
	// part's total surface area during finishing.
	ExposedSurfaceFraction float64 `yaml:"exposed_surface_fraction"`

	// MaxRiskMarginUplift bounds the risk-adjusted margin uplift.
	MaxRiskMarginUplift float64 `yaml:"max_risk_margin_uplift"`
}

// FeatureMinutes is the per-feature machining-time lookup table, minutes per
// feature occurrence.
type FeatureMinutes struct {
	Holes   float64 `yaml:"holes"`
	Pockets float64 `yaml:"pockets"`
	Slots   float64 `yaml:"slots"`
	Faces   float64 `yaml:"faces"`
	Bends   float64 `yaml:"bends"`
	Corners float64 `yaml:"corners"`
	Threads float64 `yaml:"threads"`
}

// DefaultHeuristics returns the shipped calibration.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Version: "2024.1",
		FeatureMinutes: FeatureMinutes{
			Holes:   2.0,
			Pockets: 6.0,
			Slots:   4.0,
			Faces:   3.0,
			Bends:   1.5,
			Corners: 0.5,
			Threads: 3.0,
		},
		RemovalRateCCPerMin:       15.0,
		VolumeTimeFactor:          0.25,
		MinMachineTimeMin:         0.5,
		DefaultDensityKGPerCC:     0.0027,
		InspectionToleranceFactor: 0.8,
		FinishLaborRateRatio:      0.6,
		ExposedSurfaceFraction:    0.5,
		MaxRiskMarginUplift:       0.08,
	}
}

// LoadHeuristics parses a YAML calibration document. Fields omitted from the
// document keep their default values, so a calibration file only needs to
// name what it changes.
func LoadHeuristics(data []byte) (Heuristics, error) {
	h := DefaultHeuristics()
	if err := yaml.Unmarshal(data, &h); err != nil {
		return Heuristics{}, fmt.Errorf("parsing heuristics: %w", err)
	}
	if err := h.Validate(); err != nil {
		return Heuristics{}, err
	}
	return h, nil
}

// Validate checks the calibration for values that would corrupt the cost
// model (zero removal rate, negative times, out-of-range ratios).
func (h Heuristics) Validate() error {
	if h.RemovalRateCCPerMin <= 0 {
		return fmt.Errorf("removal_rate_cc_per_min must be positive, got %g", h.RemovalRateCCPerMin)
	}
	if h.VolumeTimeFactor <= 0 {
		return fmt.Errorf("volume_time_factor must be positive, got %g", h.VolumeTimeFactor)
	}
	if h.MinMachineTimeMin < 0 {
		return fmt.Errorf("min_machine_time_min must not be negative, got %g", h.MinMachineTimeMin)
	}
	if h.DefaultDensityKGPerCC <= 0 {
		return fmt.Errorf("default_density_kg_per_cc must be positive, got %g", h.DefaultDensityKGPerCC)
	}
	if h.InspectionToleranceFactor < 0 || h.InspectionToleranceFactor > 1 {
		return fmt.Errorf("inspection_tolerance_factor must be in [0,1], got %g", h.InspectionToleranceFactor)
	}
	if h.FinishLaborRateRatio < 0 {
		return fmt.Errorf("finish_labor_rate_ratio must not be negative, got %g", h.FinishLaborRateRatio)
	}
	if h.ExposedSurfaceFraction <= 0 || h.ExposedSurfaceFraction > 1 {
		return fmt.Errorf("exposed_surface_fraction must be in (0,1], got %g", h.ExposedSurfaceFraction)
	}
	if h.MaxRiskMarginUplift < 0 {
		return fmt.Errorf("max_risk_margin_uplift must not be negative, got %g", h.MaxRiskMarginUplift)
	}
	fm := h.FeatureMinutes
	for _, v := range []float64{fm.Holes, fm.Pockets, fm.Slots, fm.Faces, fm.Bends, fm.Corners, fm.Threads} {
		if v < 0 {
			return fmt.Errorf("feature minutes must not be negative")
		}
	}
	return nil
}
