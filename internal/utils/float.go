package utils

import "math"

// NullableFloat returns a pointer to v, or nil when v is NaN or infinite.
// Undefined statistics are carried as NaN internally; JSON has no NaN, so
// response models encode them as null.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// RoundedFloat is NullableFloat with v rounded to the given number of
// decimal places.
func RoundedFloat(v float64, places int) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	return &r
}

// FloatOr dereferences p, returning fallback for nil
func FloatOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
