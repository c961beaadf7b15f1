package pricingsource

import (
	"sort"
	"strings"

	"github.com/fabworks/quotecost/internal/money"
)

// The helpers below probe loosely-typed payload maps. A field that is
// missing or fails numeric coercion reports absent; adapters must drop such
// fields rather than defaulting them, so a broken upstream payload can never
// fabricate a zero price.

func getMap(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if sub, ok := m[k].(map[string]any); ok {
			return sub, true
		}
	}
	return nil, false
}

func getSlice(m map[string]any, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if s, ok := m[k].([]any); ok {
			return s, true
		}
	}
	return nil, false
}

func getString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func getBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if b, ok := m[k].(bool); ok {
			return b
		}
	}
	return false
}

// numField returns the first key that coerces to a finite number, nil if
// none do.
func numField(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if f, ok := money.Coerce(v); ok {
			return &f
		}
	}
	return nil
}

// intField returns the first key that coerces to a non-negative integer.
func intField(m map[string]any, keys ...string) *int {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if n, ok := money.CoerceInt(v); ok {
			return &n
		}
	}
	return nil
}

// normalizeCurrency maps a payload currency onto an upper-case ISO code,
// falling back when the payload value is absent or unusable.
func normalizeCurrency(raw, fallback string) string {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if len(c) == 3 {
		return c
	}
	f := strings.ToUpper(strings.TrimSpace(fallback))
	if len(f) == 3 {
		return f
	}
	return "USD"
}

// breakdownFrom maps source-specific component keys onto the canonical
// breakdown. Components that are missing or malformed are simply absent.
func breakdownFrom(raw map[string]any, keyMap map[string][]string) map[string]float64 {
	out := make(map[string]float64, len(keyMap))
	for canonical, candidates := range keyMap {
		if v := numField(raw, candidates...); v != nil && *v >= 0 {
			out[canonical] = money.Round2(*v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// finalizeMatrix sorts rows ascending by quantity and removes duplicate
// quantities, keeping the first occurrence.
func finalizeMatrix(rows []MatrixRow) []MatrixRow {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Quantity < rows[j].Quantity })
	out := rows[:0]
	for i, r := range rows {
		if i > 0 && r.Quantity == out[len(out)-1].Quantity {
			continue
		}
		out = append(out, r)
	}
	return out
}
