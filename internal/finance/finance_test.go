package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		want      float64
	}{
		{"400k at 6.25% over 30 years", 400000, 6.25, 30, 2462.87},
		{"400k at 5.5% over 30 years", 400000, 5.5, 30, 2271.16},
		{"zero rate repays straight line", 360000, 0, 30, 1000},
		{"no principal", 0, 6, 30, 0},
		{"no term", 100000, 6, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MonthlyPayment(tt.principal, tt.rate, tt.years), 0.01)
		})
	}
}

func TestRatio(t *testing.T) {
	v, ok := Ratio(10, 4)
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	v, ok = Ratio(10, 0)
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestClampAndRound(t *testing.T) {
	assert.Equal(t, 100.0, Clamp(140, 0, 100))
	assert.Equal(t, 0.0, Clamp(-3, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
	assert.Equal(t, 12.35, Round(12.345001, 2))
	assert.Equal(t, 1234.57, Cents(1234.5678))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))

	data := []float64{3, 1, 2}
	Median(data)
	assert.Equal(t, []float64{3, 1, 2}, data, "input must not be reordered")
}

func TestCompound(t *testing.T) {
	assert.InDelta(t, 110408.08, Compound(100000, 0.02, 5), 0.01)
	assert.Equal(t, 100000.0, Compound(100000, 0.05, 0))
}
