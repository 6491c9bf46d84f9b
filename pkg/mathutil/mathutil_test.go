package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSafeNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Finite value", 42.5, 42.5},
		{"Positive infinity", math.Inf(1), 0},
		{"Negative infinity", math.Inf(-1), 0},
		{"NaN", math.NaN(), 0},
		{"Zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := SafeNumber(tt.input); result != tt.expected {
				t.Errorf("SafeNumber(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(7, 5, 35); got != 7 {
		t.Errorf("ClampInt(7) = %v, expected 7", got)
	}
	if got := ClampInt(40, 5, 35); got != 35 {
		t.Errorf("ClampInt(40) = %v, expected 35", got)
	}
	if got := ClampInt(-1, 5, 35); got != 5 {
		t.Errorf("ClampInt(-1) = %v, expected 5", got)
	}
}

func TestMonthlyRate(t *testing.T) {
	if got := MonthlyRate(12); math.Abs(got-0.01) > 1e-12 {
		t.Errorf("MonthlyRate(12) = %v, expected 0.01", got)
	}
	if got := MonthlyRate(0); got != 0 {
		t.Errorf("MonthlyRate(0) = %v, expected 0", got)
	}
}

func TestCalculatePercentage(t *testing.T) {
	if got := CalculatePercentage(400000, 500000); math.Abs(got-80) > 1e-9 {
		t.Errorf("CalculatePercentage() = %v, expected 80", got)
	}
	if got := CalculatePercentage(1, 0); got != 0 {
		t.Errorf("CalculatePercentage with zero total = %v, expected 0", got)
	}
}
