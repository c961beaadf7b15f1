package pricingsource

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/fabworks/quotecost/internal/money"
)

// EstimateInput identifies the quote line a deterministic estimate is
// produced for. The identity fields form the hash seed: the same line always
// receives the same synthetic prices, so repeated UI refreshes before a real
// price lands never jitter.
type EstimateInput struct {
	QuoteID string
	LineID  string
	CADKey  string

	// BaseQuantity is the primary order quantity. Must be positive.
	BaseQuantity int

	// Quantities optionally lists the tier ladder to price. Empty means
	// just BaseQuantity.
	Quantities []int

	// Currency for the synthetic prices. Empty defaults to USD.
	Currency string
}

// Synthetic unit-price range: 80.00 to 139.99.
const (
	estimateBasePrice  = 80.0
	estimateSpreadMod  = 6000
	estimateMaxDiscPct = 20.0
	estimateTierDisc   = 5.0
)

// Fixed percentage splits of the synthetic unit price.
var estimateSplits = map[string]float64{
	ComponentMaterial:   0.34,
	ComponentMachining:  0.26,
	ComponentFinish:     0.12,
	ComponentInspection: 0.08,
	ComponentOverhead:   0.10,
	ComponentMargin:     0.10,
}

// ComputeDeterministicEstimate produces a canonical pricing computation when
// no real pricing engine is reachable. The unit price is seeded from the
// quote line identity; later tiers receive a bounded per-tier discount and a
// small seeded variance. Identical input yields byte-identical output.
func ComputeDeterministicEstimate(input EstimateInput) (*PricingComputation, error) {
	if input.BaseQuantity <= 0 {
		return nil, fmt.Errorf("estimate requires a positive base quantity, got %d", input.BaseQuantity)
	}

	seed := stableHash(input.QuoteID, input.LineID, input.CADKey, input.BaseQuantity)
	baseUnitPrice := estimateBasePrice + float64(seed%estimateSpreadMod)/100

	quantities := tierQuantities(input)
	currency := normalizeCurrency(input.Currency, "USD")

	pc := &PricingComputation{
		Source:   SourceEstimate,
		Currency: currency,
		Matrix:   make([]MatrixRow, 0, len(quantities)),
		Metadata: map[string]string{
			"estimate_seed": strconv.FormatUint(seed, 16),
		},
	}

	for idx, qty := range quantities {
		variance := tierVariance(seed, idx)

		discountPct := float64(idx) * estimateTierDisc
		if discountPct > estimateMaxDiscPct {
			discountPct = estimateMaxDiscPct
		}

		unit := money.Round2(baseUnitPrice * (1 + variance) * (1 - discountPct/100))
		lead := 7 + idx*3

		breakdown := make(map[string]float64, len(estimateSplits))
		for component, split := range estimateSplits {
			breakdown[component] = money.Round2(unit * split)
		}

		margin := estimateSplits[ComponentMargin] * 100
		disc := discountPct
		pc.Matrix = append(pc.Matrix, MatrixRow{
			Quantity:           qty,
			UnitPrice:          unit,
			TotalPrice:         money.Round2(unit * float64(qty)),
			LeadTimeDays:       &lead,
			MarginPercentage:   &margin,
			DiscountPercentage: &disc,
			Currency:           currency,
			Breakdown:          breakdown,
		})
	}

	standard := 7
	expedite := 3
	pc.LeadTimes = &LeadTimes{StandardDays: &standard, ExpediteDays: &expedite}

	if err := validate(pc); err != nil {
		return nil, err
	}
	return pc, nil
}

// stableHash derives the estimate seed from the quote line identity using
// FNV-1a, which is stable across processes and platforms.
func stableHash(quoteID, lineID, cadKey string, baseQuantity int) uint64 {
	h := fnv.New64a()
	for _, part := range []string{quoteID, lineID, cadKey, strconv.Itoa(baseQuantity)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// tierVariance derives a bounded per-tier variance in [-0.05, 0.05] from the
// seed, so tiers differ from each other but never between calls.
func tierVariance(seed uint64, tierIndex int) float64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatUint(seed, 10)))
	h.Write([]byte(strconv.Itoa(tierIndex)))
	tierSeed := h.Sum64()
	return (float64(tierSeed%1001) - 500) / 10000
}

// tierQuantities returns the sorted, deduplicated tier ladder including the
// base quantity.
func tierQuantities(input EstimateInput) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(input.Quantities)+1)
	for _, q := range append([]int{input.BaseQuantity}, input.Quantities...) {
		if q > 0 && !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	sort.Ints(out)
	return out
}
