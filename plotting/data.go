package plotting

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/stats"
	"github.com/YuminosukeSato/dataauto/table"
)

// values は欠損を除いた数値列の値を返す
func values(op string, t *table.Table, column string) ([]float64, error) {
	c, err := t.Numeric(op, column)
	if err != nil {
		return nil, err
	}
	vals := c.NonMissing()
	if len(vals) == 0 {
		return nil, errors.NewValueError(op, fmt.Sprintf("column '%s' has no values to plot", column))
	}
	return vals, nil
}

// pairs は x, y の両方がそろっている行の組を返す
func pairs(op string, t *table.Table, x, y string) ([]float64, []float64, error) {
	cx, err := t.Numeric(op, x)
	if err != nil {
		return nil, nil, err
	}
	cy, err := t.Numeric(op, y)
	if err != nil {
		return nil, nil, err
	}
	var xs, ys []float64
	for i := range cx.Nums {
		if math.IsNaN(cx.Nums[i]) || math.IsNaN(cy.Nums[i]) {
			continue
		}
		xs = append(xs, cx.Nums[i])
		ys = append(ys, cy.Nums[i])
	}
	if len(xs) == 0 {
		return nil, nil, errors.NewValueError(op, fmt.Sprintf("columns '%s' and '%s' share no complete rows", x, y))
	}
	return xs, ys, nil
}

// sortedPairs は x の昇順に並べ替えた組を返す
func sortedPairs(op string, t *table.Table, x, y string) ([]float64, []float64, error) {
	xs, ys, err := pairs(op, t, x, y)
	if err != nil {
		return nil, nil, err
	}
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	sx := make([]float64, len(xs))
	sy := make([]float64, len(ys))
	for i, j := range idx {
		sx[i], sy[i] = xs[j], ys[j]
	}
	return sx, sy, nil
}

// correlation は二列以上の相関行列を計算する
func correlation(op string, t *table.Table, columns []string) (*mat.SymDense, []string, error) {
	for _, name := range columns {
		if _, err := t.Numeric(op, name); err != nil {
			return nil, nil, err
		}
	}
	if (len(columns) == 0 && len(t.NumericNames()) < 2) || len(columns) == 1 {
		return nil, nil, errors.NewValueError(op, "a correlation heatmap needs at least two numeric columns")
	}
	return t.Correlation(columns)
}

// histogram は [min, max] を bins 個の等幅の階級に分けて度数を数える
func histogram(vals []float64, bins int) (dividers, counts []float64) {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers = floats.Span(make([]float64, bins+1), lo, hi)
	// 最大値を最後の階級に含める
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, dividers, sorted, nil)
	return dividers, counts
}

// boxStats は箱ひげ図の [最小, Q1, 中央値, Q3, 最大]
func boxStats(vals []float64) [5]float64 {
	lo, hi := stats.MinMax(vals)
	q := stats.Quantiles(vals, 0.25, 0.5, 0.75)
	return [5]float64{lo, q[0], q[1], q[2], hi}
}

// kdePoints はヒストグラムに重ねる密度曲線の評価点の数
const kdePoints = 200

// gaussianKDE はガウスカーネル密度推定を [lo, hi] の points 点で評価する。
// バンド幅は Scott の規則 (標本標準偏差 × n^(-1/5))。値が二つ未満か分散が0なら nil を返す
func gaussianKDE(vals []float64, lo, hi float64, points int) (xs, ys []float64) {
	n := len(vals)
	if n < 2 || points < 2 {
		return nil, nil
	}
	sd := stat.StdDev(vals, nil)
	if !(sd > 0) {
		return nil, nil
	}
	bw := sd * math.Pow(float64(n), -0.2)

	kernels := make([]distuv.Normal, n)
	for i, v := range vals {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}
	xs = floats.Span(make([]float64, points), lo, hi)
	ys = make([]float64, points)
	for i, x := range xs {
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		ys[i] = sum / float64(n)
	}
	return xs, ys
}
