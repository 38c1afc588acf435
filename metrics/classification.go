package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassMetrics は一クラス分の precision / recall / F1 / support
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report は分類レポート。String() で表形式に整形する
type Report struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	// Support は全サンプル数
	Support int
}

// ClassificationReport はクラスごとの precision / recall / F1 と各平均を計算する。
//
// 対象クラスは yTrue と yPred に現れる値の和集合（昇順）。
// names が nil でなければ names[int(値)] をラベル表示に使う。
// 分母が 0 になる指標は 0 とする。
func ClassificationReport(yTrue, yPred []float64, names []string) (*Report, error) {
	const op = "ClassificationReport"
	n := len(yTrue)
	if n == 0 {
		return nil, errors.NewValueError(op, "empty input")
	}
	if len(yPred) != n {
		return nil, errors.NewDimensionError(op, n, len(yPred), 0)
	}

	labels := unionSorted(yTrue, yPred)
	index := make(map[float64]int, len(labels))
	for i, v := range labels {
		index[v] = i
	}
	tp := make([]int, len(labels))
	predicted := make([]int, len(labels))
	support := make([]int, len(labels))
	correct := 0
	for i := range yTrue {
		t, p := index[yTrue[i]], index[yPred[i]]
		support[t]++
		predicted[p]++
		if t == p {
			tp[t]++
			correct++
		}
	}

	rep := &Report{
		Classes:     make([]ClassMetrics, len(labels)),
		Accuracy:    float64(correct) / float64(n),
		MacroAvg:    ClassMetrics{Label: "macro avg", Support: n},
		WeightedAvg: ClassMetrics{Label: "weighted avg", Support: n},
		Support:     n,
	}
	for i, v := range labels {
		m := ClassMetrics{
			Label:     labelName(v, names),
			Precision: ratio(tp[i], predicted[i]),
			Recall:    ratio(tp[i], support[i]),
			Support:   support[i],
		}
		if s := m.Precision + m.Recall; s > 0 {
			m.F1 = 2 * m.Precision * m.Recall / s
		}
		rep.Classes[i] = m

		k := float64(len(labels))
		rep.MacroAvg.Precision += m.Precision / k
		rep.MacroAvg.Recall += m.Recall / k
		rep.MacroAvg.F1 += m.F1 / k

		w := float64(m.Support) / float64(n)
		rep.WeightedAvg.Precision += m.Precision * w
		rep.WeightedAvg.Recall += m.Recall * w
		rep.WeightedAvg.F1 += m.F1 * w
	}
	return rep, nil
}

// String は scikit-learn の classification_report と同じ体裁の表を返す
func (r *Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(m ClassMetrics) {
		fmt.Fprintf(&b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Support)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func labelName(v float64, names []string) string {
	if i := int(v); names != nil && float64(i) == v && i >= 0 && i < len(names) {
		return names[i]
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func unionSorted(a, b []float64) []float64 {
	seen := make(map[float64]struct{}, len(a))
	var out []float64
	for _, s := range [][]float64{a, b} {
		for _, v := range s {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	sort.Float64s(out)
	return out
}
