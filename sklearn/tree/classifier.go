package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

var classificationCriteria = []string{"gini", "entropy"}

// DecisionTreeClassifier は CART 分類木
//
//	dt := tree.NewDecisionTreeClassifier(tree.WithMaxDepth(5))
//	err := dt.Fit(X, y)
//	pred, err := dt.Predict(XTest)
type DecisionTreeClassifier struct {
	model.BaseEstimator
	Params

	Nodes []Node
	// ClassValues は y に現れた値の昇順。葉の確率の列順と一致する
	ClassValues []float64
	NFeatures   int
	Importances []float64
}

// NewDecisionTreeClassifier は gini 基準の分類木を作成する
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{Params: defaultParams("gini")}
	for _, opt := range opts {
		opt(&dt.Params)
	}
	return dt
}

// Fit は全サンプルで木を学習する
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	r, _ := X.Dims()
	return dt.FitSample(X, y, allRows(r))
}

// FitSample は idx で指定した行（重複可）だけで木を学習する。
// クラスの集合は y 全体から決めるので、標本に現れないクラスも確率の列として残る。
func (dt *DecisionTreeClassifier) FitSample(X, y mat.Matrix, idx []int) error {
	const op = "DecisionTreeClassifier.Fit"
	if err := dt.Params.validate(classificationCriteria); err != nil {
		return err
	}
	labels, err := checkInput(op, X, y)
	if err != nil {
		return err
	}
	r, c := X.Dims()
	if err := checkSample(op, idx, r); err != nil {
		return err
	}

	dt.ClassValues = uniqueSorted(labels)
	codes := make([]int, r)
	for i, v := range labels {
		codes[i] = sort.SearchFloat64s(dt.ClassValues, v)
	}

	acc := &classAccumulator{y: codes, k: len(dt.ClassValues), entropy: dt.Criterion == "entropy"}
	b := newBuilder(dt.Params, X, acc, len(idx))
	b.build(idx, 0)

	dt.Nodes = b.nodes
	dt.NFeatures = c
	dt.Importances = b.importance
	dt.SetFitted()
	return nil
}

// PredictProba は各クラスの確率を (n_samples, n_classes) で返す
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	return predictRows("DecisionTreeClassifier.PredictProba", dt.Nodes, dt.NFeatures, X, len(dt.ClassValues),
		func(leaf *Node, out []float64) { copy(out, leaf.Value) })
}

// Predict は確率が最大のクラス値を返す。同率なら小さいクラス値を選ぶ
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	return predictRows("DecisionTreeClassifier.Predict", dt.Nodes, dt.NFeatures, X, 1,
		func(leaf *Node, out []float64) { out[0] = dt.ClassValues[argmax(leaf.Value)] })
}

// Classes は学習時のクラス値を昇順で返す
func (dt *DecisionTreeClassifier) Classes() []float64 {
	return append([]float64(nil), dt.ClassValues...)
}

// Score は正解率を返す。未学習や形の不一致では 0
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0
	}
	r, _ := pred.Dims()
	if yr, _ := y.Dims(); yr != r || r == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < r; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(r)
}

// GetFeatureImportances は合計が 1 になるよう正規化した不純度減少量を返す
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	return normalize(dt.Importances)
}

// GetDepth は木の深さ（根のみなら 0）を返す
func (dt *DecisionTreeClassifier) GetDepth() int {
	if len(dt.Nodes) == 0 {
		return 0
	}
	return depthOf(dt.Nodes, 0)
}

// GetNLeaves は葉の数を返す
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	return countLeaves(dt.Nodes)
}

// GetParams はハイパーパラメータを返す
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return dt.Params.getParams()
}

// SetParams はハイパーパラメータを更新する
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	return dt.Params.setParams(params)
}

type classAccumulator struct {
	y       []int
	k       int
	entropy bool

	total, left []float64
	n, nL       float64
	right       []float64
}

func (a *classAccumulator) init(idx []int) {
	if a.total == nil {
		a.total = make([]float64, a.k)
		a.left = make([]float64, a.k)
		a.right = make([]float64, a.k)
	}
	for j := range a.total {
		a.total[j] = 0
	}
	for _, i := range idx {
		a.total[a.y[i]]++
	}
	a.n = float64(len(idx))
	a.reset()
}

func (a *classAccumulator) reset() {
	for j := range a.left {
		a.left[j] = 0
	}
	a.nL = 0
}

func (a *classAccumulator) move(i int) {
	a.left[a.y[i]]++
	a.nL++
}

func (a *classAccumulator) impurity() float64 {
	return a.measure(a.total, a.n)
}

func (a *classAccumulator) children() (float64, float64) {
	for j := range a.right {
		a.right[j] = a.total[j] - a.left[j]
	}
	return a.measure(a.left, a.nL), a.measure(a.right, a.n-a.nL)
}

func (a *classAccumulator) measure(counts []float64, n float64) float64 {
	if n <= 0 {
		return 0
	}
	if a.entropy {
		h := 0.0
		for _, c := range counts {
			if c > 0 {
				p := c / n
				h -= p * math.Log2(p)
			}
		}
		return h
	}
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}

func (a *classAccumulator) value() []float64 {
	probs := make([]float64, a.k)
	for j, c := range a.total {
		probs[j] = c / a.n
	}
	return probs
}

func uniqueSorted(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	out := make([]float64, 0)
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func argmax(values []float64) int {
	best := 0
	for j := 1; j < len(values); j++ {
		if values[j] > values[best] {
			best = j
		}
	}
	return best
}
