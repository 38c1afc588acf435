package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile_LinearInterpolation(t *testing.T) {
	x := []float64{40, 25, 100, 35, 30}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 25},
		{0.25, 30},
		{0.5, 35},
		{0.75, 40},
		{1, 100},
		{0.1, 27},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Quantile(x, tt.p), 1e-12, "p=%v", tt.p)
	}
	// input must stay untouched
	assert.Equal(t, []float64{40, 25, 100, 35, 30}, x)
}

func TestQuantile_EvenLength(t *testing.T) {
	assert.InDelta(t, 2.5, Median([]float64{1, 2, 3, 4}), 1e-12)
	q1, q3 := Quartiles([]float64{1, 2, 3, 4})
	assert.InDelta(t, 1.75, q1, 1e-12)
	assert.InDelta(t, 3.25, q3, 1e-12)
	assert.InDelta(t, 1.5, IQR([]float64{1, 2, 3, 4}), 1e-12)
}

func TestEmptyInputs(t *testing.T) {
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsNaN(Mode(nil)))
	assert.True(t, math.IsNaN(SampleStd([]float64{1})))
}

func TestPopMeanStd(t *testing.T) {
	mean, std := PopMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)
	assert.InDelta(t, 2.138089935299395, SampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestMode_TieBreaksToSmallest(t *testing.T) {
	assert.Equal(t, 3.0, Mode([]float64{5, 3, 5, 3, 9}))
	assert.Equal(t, 7.0, Mode([]float64{7}))

	mode, count := ModeString([]string{"Tokyo", "Osaka", "Osaka", "Tokyo", "Nagoya"})
	assert.Equal(t, "Osaka", mode)
	assert.Equal(t, 2, count)
}

func TestZScores(t *testing.T) {
	z := ZScores([]float64{1, 2, 3})
	assert.InDelta(t, -1.224744871391589, z[0], 1e-12)
	assert.InDelta(t, 0, z[1], 1e-12)
	assert.InDelta(t, 1.224744871391589, z[2], 1e-12)

	assert.Equal(t, []float64{0, 0, 0}, ZScores([]float64{4, 4, 4}))
}

func TestCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Correlation([]float64{1, 1, 1}, []float64{1, 2, 3})))
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{3, -1, 8})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 8.0, hi)
}
