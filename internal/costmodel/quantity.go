package costmodel

import (
	"sort"

	"github.com/fabworks/quotecost/internal/catalog"
)

// ResolveQuantityDiscount returns the discount fraction in [0,1) for the
// batch quantity. Breaks are scanned ascending by minimum quantity and only
// the last qualifying break applies; discounts are never cumulative. A
// quantity that meets no break, or an empty break list, yields zero.
func ResolveQuantityDiscount(breaks []catalog.QuantityBreak, quantity int) float64 {
	if len(breaks) == 0 || quantity <= 0 {
		return 0
	}

	sorted := make([]catalog.QuantityBreak, len(breaks))
	copy(sorted, breaks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinQty < sorted[j].MinQty })

	var fraction float64
	for _, b := range sorted {
		if b.MinQty > quantity {
			break
		}
		fraction = b.DiscountPercent / 100
	}

	if fraction < 0 {
		return 0
	}
	if fraction >= 1 {
		// A full or negative price makes no sense; cap just under free.
		return 0.99
	}
	return fraction
}
