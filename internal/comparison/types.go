package comparison

import (
	"fmt"

	"github.com/fabworks/quotecost/internal/costmodel"
)

// DefaultLimit is the number of alternatives returned when the request does
// not specify one.
const DefaultLimit = 5

// candidateHeadroom is how many extra candidates are queried beyond the
// requested limit, so post-filter drop-outs (pricing failures, warnings)
// still leave enough survivors to fill the result.
const candidateHeadroom = 5

// CandidatePricingError reports an isolated pricing failure for one
// candidate material during a comparison. It is logged and the candidate is
// dropped; it never fails the comparison as a whole.
type CandidatePricingError struct {
	MaterialID string
	Err        error
}

func (e *CandidatePricingError) Error() string {
	return fmt.Sprintf("pricing candidate %q: %v", e.MaterialID, e.Err)
}

func (e *CandidatePricingError) Unwrap() error {
	return e.Err
}

// CompareRequest describes one material comparison.
type CompareRequest struct {
	// BaselineMaterialID identifies the material to compare against. ID,
	// exact name, or partial name; resolved against the catalog snapshot.
	BaselineMaterialID string

	// Process is the manufacturing process the part is quoted for.
	Process string

	// MachineID selects the cost-factor record together with Process.
	MachineID string

	// Geometry is the part's geometry summary.
	Geometry costmodel.GeometryMetrics

	// Quantity is the batch size being priced.
	Quantity int

	// Region optionally restricts availability checks. Empty means any.
	Region string

	// Finishes optionally lists requested finish codes, checked against
	// each candidate's compatibility list.
	Finishes []string

	// Limit caps the returned alternatives. Zero means DefaultLimit.
	Limit int

	// ToleranceMultiplier and RiskScore pass through to the cost engine.
	ToleranceMultiplier float64
	RiskScore           *float64
}

// CompatibilityFlags records the binary compatibility checks for one
// candidate and the warnings derived from them.
type CompatibilityFlags struct {
	ProcessMatch    bool     `json:"process_match"`
	RegionAvailable bool     `json:"region_available"`
	FinishesMatch   bool     `json:"finishes_match"`
	Warnings        []string `json:"warnings,omitempty"`
}

// MaterialComparisonItem is one candidate's row in a comparison result:
// identity, mechanical properties, pricing, deltas against the baseline,
// compatibility, and the composite score. Ephemeral; one instance per
// candidate per request.
type MaterialComparisonItem struct {
	MaterialID   string `json:"material_id"`
	MaterialName string `json:"material_name"`
	Category     string `json:"category"`

	DensityGPerCC       float64 `json:"density_g_per_cc"`
	MachinabilityRating float64 `json:"machinability_rating"`
	TensileStrengthMPa  float64 `json:"tensile_strength_mpa"`

	Pricing costmodel.PricingBreakdown `json:"pricing"`

	// CostDeltaPercent and CostDeltaAmount compare total batch cost against
	// the baseline. Positive means more expensive than the baseline.
	CostDeltaPercent float64 `json:"cost_delta_percent"`
	CostDeltaAmount  float64 `json:"cost_delta_amount"`

	// WeightDeltaPercent compares part mass at the common reference volume.
	WeightDeltaPercent float64 `json:"weight_delta_percent"`

	Compatibility CompatibilityFlags `json:"compatibility"`

	// Score is the 0-100 composite ranking score.
	Score float64 `json:"score"`

	// IsBestValue marks the single top-scored alternative.
	IsBestValue bool `json:"is_best_value"`
}

// CompareMetadata reports single-dimension winners and bookkeeping for a
// comparison. The winners need not coincide with the top composite score.
type CompareMetadata struct {
	CheapestMaterialID       string `json:"cheapest_material_id,omitempty"`
	StrongestMaterialID      string `json:"strongest_material_id,omitempty"`
	MostMachinableMaterialID string `json:"most_machinable_material_id,omitempty"`

	CandidatesConsidered int    `json:"candidates_considered"`
	CandidatesDropped    int    `json:"candidates_dropped"`
	CatalogVersion       string `json:"catalog_version"`
	TraceID              string `json:"trace_id"`
}

// CompareResult is the full outcome of a comparison: the priced baseline,
// the ranked alternatives, and metadata.
type CompareResult struct {
	Current      MaterialComparisonItem   `json:"current"`
	Alternatives []MaterialComparisonItem `json:"alternatives"`
	Metadata     CompareMetadata          `json:"metadata"`
}
