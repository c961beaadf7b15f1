package pricingsource

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/fabworks/quotecost/internal/money"
)

// FromV2 normalizes a raw v2 pricing-engine payload into the canonical
// contract. The v2 engine reports camelCase fields with the matrix under
// "quantities" (newer builds: "priceMatrix"), amounts that may arrive as
// string-encoded numbers, and cost components under "costComponents".
//
// A row whose quantity or unit amount is missing or malformed is dropped
// entirely; optional fields that fail coercion are dropped individually. The
// result is validated against the canonical schema before returning.
func FromV2(raw []byte, fallbackCurrency string) (*PricingComputation, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding v2 payload: %w", err)
	}

	payloadCurrency, _ := getString(payload, "currencyCode", "currency")
	currency := normalizeCurrency(payloadCurrency, fallbackCurrency)

	pc := &PricingComputation{
		Source:   SourceEngineV2,
		Currency: currency,
	}

	rows, _ := getSlice(payload, "quantities", "priceMatrix")
	for _, entry := range rows {
		rowMap, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		qty := intField(rowMap, "qty", "quantity")
		unit := numField(rowMap, "unitAmount", "unitPrice")
		if qty == nil || *qty < 1 || unit == nil || *unit < 0 {
			continue
		}

		row := MatrixRow{
			Quantity:  *qty,
			UnitPrice: money.Round2(*unit),
			Currency:  currency,
		}

		if total := numField(rowMap, "extendedAmount", "totalPrice"); total != nil && *total >= 0 {
			row.TotalPrice = money.Round2(*total)
		} else {
			row.TotalPrice = money.Round2(row.UnitPrice * float64(row.Quantity))
		}

		row.LeadTimeDays = intField(rowMap, "leadTimeDays")
		row.MarginPercentage = numField(rowMap, "marginPct", "marginPercentage")
		row.DiscountPercentage = numField(rowMap, "discountPct", "discountPercentage")

		if comps, ok := getMap(rowMap, "costComponents"); ok {
			row.Breakdown = breakdownFrom(comps, map[string][]string{
				ComponentMaterial:   {"material"},
				ComponentMachining:  {"machining"},
				ComponentFinish:     {"finish", "finishing"},
				ComponentInspection: {"inspection"},
				ComponentOverhead:   {"overhead"},
				ComponentMargin:     {"margin"},
			})
		}

		pc.Matrix = append(pc.Matrix, row)
	}
	pc.Matrix = finalizeMatrix(pc.Matrix)

	if lt, ok := getMap(payload, "leadTimes"); ok {
		leadTimes := &LeadTimes{
			StandardDays: intField(lt, "standardDays"),
			ExpediteDays: intField(lt, "expediteDays"),
		}
		if leadTimes.StandardDays != nil || leadTimes.ExpediteDays != nil {
			pc.LeadTimes = leadTimes
		}
	}

	if mins, ok := getMap(payload, "orderMinimums", "minimums"); ok {
		minimums := &Minimums{
			OrderQuantity: intField(mins, "minimumQuantity", "orderQuantity"),
			OrderValue:    numField(mins, "minimumValue", "orderValue"),
		}
		if minimums.OrderQuantity != nil || minimums.OrderValue != nil {
			pc.Minimums = minimums
		}
	}

	if tax, ok := getMap(payload, "tax"); ok {
		t := &Tax{
			Rate:      numField(tax, "ratePct", "rate"),
			Amount:    numField(tax, "amount"),
			Inclusive: getBool(tax, "included", "inclusive"),
		}
		if t.Rate != nil || t.Amount != nil {
			pc.Tax = t
		}
	}

	if meta, ok := getMap(payload, "metadata", "meta"); ok {
		pc.Metadata = stringMetadata(meta)
	}

	if err := validate(pc); err != nil {
		return nil, err
	}
	return pc, nil
}

// stringMetadata keeps only string-valued metadata entries.
func stringMetadata(meta map[string]any) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
