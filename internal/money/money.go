// Package money provides monetary rounding and lenient numeric coercion
// shared by the cost model and the pricing source adapters.
package money

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount to 2 decimal places (half away from zero).
// All monetary fields on a pricing breakdown pass through this before leaving
// the engine.
func Round2(v float64) float64 {
	return round(v, 2)
}

// Round4 rounds a percentage or rate to 4 decimal places.
func Round4(v float64) float64 {
	return round(v, 4)
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Coerce attempts to interpret an arbitrary decoded JSON value as a finite
// number. It accepts float64, integer types, json.Number, and string-encoded
// numbers ("42.50"). A value that cannot be parsed, or that parses to NaN or
// an infinity, reports false. Callers must treat a false result as "field
// absent" rather than defaulting to zero.
func Coerce(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		return parse(n.String())
	case string:
		return parse(n)
	default:
		return 0, false
	}
}

// CoerceInt is Coerce restricted to values representable as a non-negative
// integer, used for quantities and lead-time days.
func CoerceInt(v any) (int, bool) {
	f, ok := Coerce(v)
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parse(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
