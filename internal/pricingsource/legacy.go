package pricingsource

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/fabworks/quotecost/internal/money"
)

// FromLegacy normalizes a raw legacy pricing-engine payload into the
// canonical contract. The legacy engine reports snake_case fields with the
// matrix under "price_matrix" (some deployments: "tiers"), and frequently
// string-encodes its numbers.
//
// Coercion rules match FromV2: a row missing its quantity or unit price is
// dropped; optional fields that fail coercion are dropped individually,
// never defaulted. The result is validated against the canonical schema.
func FromLegacy(raw []byte, fallbackCurrency string) (*PricingComputation, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding legacy payload: %w", err)
	}

	payloadCurrency, _ := getString(payload, "currency", "currency_code")
	currency := normalizeCurrency(payloadCurrency, fallbackCurrency)

	pc := &PricingComputation{
		Source:   SourceLegacy,
		Currency: currency,
	}

	rows, _ := getSlice(payload, "price_matrix", "tiers")
	for _, entry := range rows {
		rowMap, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		qty := intField(rowMap, "quantity", "qty")
		unit := numField(rowMap, "unit_price")
		if qty == nil || *qty < 1 || unit == nil || *unit < 0 {
			continue
		}

		row := MatrixRow{
			Quantity:  *qty,
			UnitPrice: money.Round2(*unit),
			Currency:  currency,
		}

		if total := numField(rowMap, "total_price"); total != nil && *total >= 0 {
			row.TotalPrice = money.Round2(*total)
		} else {
			row.TotalPrice = money.Round2(row.UnitPrice * float64(row.Quantity))
		}

		row.LeadTimeDays = intField(rowMap, "lead_time_days", "lead_time")
		row.MarginPercentage = numField(rowMap, "margin_percentage")
		row.DiscountPercentage = numField(rowMap, "discount_percentage")

		if comps, ok := getMap(rowMap, "breakdown", "cost_breakdown"); ok {
			row.Breakdown = breakdownFrom(comps, map[string][]string{
				ComponentMaterial:   {"material_cost", "material"},
				ComponentMachining:  {"machining_cost", "machining"},
				ComponentFinish:     {"finish_cost", "finish"},
				ComponentInspection: {"inspection_cost", "inspection"},
				ComponentOverhead:   {"overhead_cost", "overhead"},
				ComponentMargin:     {"margin_cost", "margin"},
			})
		}

		pc.Matrix = append(pc.Matrix, row)
	}
	pc.Matrix = finalizeMatrix(pc.Matrix)

	if lt, ok := getMap(payload, "lead_times"); ok {
		leadTimes := &LeadTimes{
			StandardDays: intField(lt, "standard", "standard_days"),
			ExpediteDays: intField(lt, "expedite", "expedite_days"),
		}
		if leadTimes.StandardDays != nil || leadTimes.ExpediteDays != nil {
			pc.LeadTimes = leadTimes
		}
	}

	if mins, ok := getMap(payload, "minimums"); ok {
		minimums := &Minimums{
			OrderQuantity: intField(mins, "min_order_qty"),
			OrderValue:    numField(mins, "min_order_value"),
		}
		if minimums.OrderQuantity != nil || minimums.OrderValue != nil {
			pc.Minimums = minimums
		}
	}

	if tax, ok := getMap(payload, "tax_info", "tax"); ok {
		t := &Tax{
			Rate:      numField(tax, "tax_rate", "rate"),
			Amount:    numField(tax, "tax_amount", "amount"),
			Inclusive: getBool(tax, "tax_inclusive", "inclusive"),
		}
		if t.Rate != nil || t.Amount != nil {
			pc.Tax = t
		}
	}

	if meta, ok := getMap(payload, "metadata"); ok {
		pc.Metadata = stringMetadata(meta)
	}

	if err := validate(pc); err != nil {
		return nil, err
	}
	return pc, nil
}
