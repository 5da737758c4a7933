package finance

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MonthlyPayment returns the fixed-rate amortized payment for a loan.
// Formula: P·r·(1+r)^n / ((1+r)^n − 1), r = annualRatePct/1200, n = years×12.
// A zero rate falls back to straight-line repayment.
func MonthlyPayment(principal, annualRatePct float64, years int) float64 {
	if principal <= 0 || years <= 0 {
		return 0
	}
	n := float64(years * 12)
	r := annualRatePct / 1200
	if r == 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1)
}

// Ratio divides n by d. The second return value is false when d is zero,
// in which case the ratio is reported as 0.
func Ratio(n, d float64) (float64, bool) {
	if d == 0 || math.IsNaN(d) {
		return 0, false
	}
	return n / d, true
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Cents rounds a dollar amount to cents.
func Cents(v float64) float64 {
	return Round(v, 2)
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Median of data. The input is not modified.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Compound grows value at rate for the given number of years.
func Compound(value, rate float64, years int) float64 {
	return value * math.Pow(1+rate, float64(years))
}
