package utils

import (
	"math"
	"testing"
)

func TestNullableFloat(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		isNil bool
	}{
		{"finite", 3.14, false},
		{"zero", 0, false},
		{"negative", -42, false},
		{"nan", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
		{"negative infinity", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NullableFloat(tt.input)
			if tt.isNil {
				if got != nil {
					t.Errorf("NullableFloat(%v) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil || *got != tt.input {
				t.Errorf("NullableFloat(%v) = %v, want %v", tt.input, got, tt.input)
			}
		})
	}
}

func TestRoundedFloat(t *testing.T) {
	if got := RoundedFloat(12.3456, 2); got == nil || *got != 12.35 {
		t.Errorf("expected 12.35, got %v", got)
	}
	if got := RoundedFloat(1234.5, 0); got == nil || *got != 1235 {
		t.Errorf("expected 1235, got %v", got)
	}
	if got := RoundedFloat(math.NaN(), 2); got != nil {
		t.Errorf("expected nil for NaN, got %v", *got)
	}
}

func TestFloatOr(t *testing.T) {
	v := 2.5
	if got := FloatOr(&v, 1); got != 2.5 {
		t.Errorf("expected 2.5, got %v", got)
	}
	if got := FloatOr(nil, 1); got != 1 {
		t.Errorf("expected fallback 1, got %v", got)
	}
}
