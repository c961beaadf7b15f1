// Package pricingsource canonicalizes the three pricing-response shapes the
// platform sees (the v2 engine, the legacy engine, and the in-process
// deterministic estimate) into one PricingComputation contract. Consumers
// never see the source-specific shapes.
package pricingsource

import (
	"fmt"
	"strings"
)

// Source discriminates which pricing path produced a computation.
type Source string

const (
	// SourceEngineV2 marks output normalized from the v2 pricing engine.
	SourceEngineV2 Source = "engine_v2"
	// SourceLegacy marks output normalized from the legacy pricing engine.
	SourceLegacy Source = "legacy"
	// SourceEstimate marks a deterministic in-process estimate produced
	// when no real engine is reachable.
	SourceEstimate Source = "estimate"
)

// PricingComputation is the canonical pricing contract. The matrix is always
// non-empty and sorted ascending by quantity; optional sections are nil when
// the source did not provide them.
type PricingComputation struct {
	Source   Source      `json:"source"`
	Currency string      `json:"currency"`
	Matrix   []MatrixRow `json:"matrix"`

	LeadTimes *LeadTimes        `json:"leadTimes,omitempty"`
	Minimums  *Minimums         `json:"minimums,omitempty"`
	Tax       *Tax              `json:"tax,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MatrixRow is one quantity tier of a pricing computation. Optional numeric
// fields are pointers: a nil field was absent or malformed at the source and
// must never be read as zero.
type MatrixRow struct {
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`

	LeadTimeDays       *int     `json:"leadTimeDays,omitempty"`
	MarginPercentage   *float64 `json:"marginPercentage,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Currency           string   `json:"currency,omitempty"`

	// Breakdown holds per-component unit-cost figures keyed by component
	// name (material, machining, finish, inspection, overhead, margin).
	// Components the source did not report are absent from the map.
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// LeadTimes carries source-level delivery estimates in days.
type LeadTimes struct {
	StandardDays *int `json:"standardDays,omitempty"`
	ExpediteDays *int `json:"expediteDays,omitempty"`
}

// Minimums carries order minimums imposed by the source.
type Minimums struct {
	OrderQuantity *int     `json:"orderQuantity,omitempty"`
	OrderValue    *float64 `json:"orderValue,omitempty"`
}

// Tax carries tax information reported by the source.
type Tax struct {
	Rate      *float64 `json:"rate,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	Inclusive bool     `json:"inclusive,omitempty"`
}

// SchemaValidationError reports canonical-contract violations in adapter
// output. It signals a programming error or upstream contract drift and must
// surface to the caller; it is never retried or silently coerced.
type SchemaValidationError struct {
	Source     Source
	Violations []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("pricing computation from %s violates canonical schema: %s",
		e.Source, strings.Join(e.Violations, "; "))
}

// Canonical breakdown component keys.
const (
	ComponentMaterial   = "material"
	ComponentMachining  = "machining"
	ComponentFinish     = "finish"
	ComponentInspection = "inspection"
	ComponentOverhead   = "overhead"
	ComponentMargin     = "margin"
)
