// Package stats は欠損値を含まない float64 スライスに対する記述統計を提供します。
// 平均・分散などは gonum/stat に委ね、pandas と同じ規則が必要な分位点と最頻値は
// ここで実装しています。
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean. Empty input yields NaN.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// PopMeanStd returns the mean and the population (ddof=0) standard deviation.
func PopMeanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	return mean, math.Sqrt(variance)
}

// SampleStd returns the sample (ddof=1) standard deviation; NaN when len(x) < 2.
func SampleStd(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Quantile returns the p-quantile (0 <= p <= 1) using linear interpolation
// between order statistics at rank (n-1)*p, the rule used by numpy and pandas.
// x is not modified.
func Quantile(x []float64, p float64) float64 {
	sorted := sortedCopy(x)
	return quantileSorted(sorted, p)
}

// Quantiles computes several quantiles with a single sort.
func Quantiles(x []float64, ps ...float64) []float64 {
	sorted := sortedCopy(x)
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = quantileSorted(sorted, p)
	}
	return out
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	rank := p * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	if upper >= n {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func sortedCopy(x []float64) []float64 {
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	return cp
}

// Median returns the 0.5 quantile.
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// Quartiles returns Q1 and Q3.
func Quartiles(x []float64) (q1, q3 float64) {
	q := Quantiles(x, 0.25, 0.75)
	return q[0], q[1]
}

// IQR returns Q3 - Q1.
func IQR(x []float64) float64 {
	q1, q3 := Quartiles(x)
	return q3 - q1
}

// Mode returns the most frequent value. Ties resolve to the smallest value,
// matching pandas Series.mode()[0]. Empty input yields NaN.
func Mode(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	counts := make(map[float64]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	mode, best := math.Inf(1), 0
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode
}

// ModeString returns the most frequent string and its count.
// Ties resolve to the lexicographically smallest value.
func ModeString(x []string) (string, int) {
	counts := make(map[string]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	var mode string
	best := 0
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode, best
}

// ZScores returns population z-scores. When the spread is zero every score is 0.
func ZScores(x []float64) []float64 {
	mean, std := PopMeanStd(x)
	out := make([]float64, len(x))
	if std == 0 || math.IsNaN(std) {
		return out
	}
	for i, v := range x {
		out[i] = (v - mean) / std
	}
	return out
}

// Correlation returns the Pearson correlation coefficient of x and y.
// Zero variance on either side yields NaN, as pandas does.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	_, sx := PopMeanStd(x)
	_, sy := PopMeanStd(y)
	if sx == 0 || sy == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
