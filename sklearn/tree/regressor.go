package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

var regressionCriteria = []string{"squared_error"}

// DecisionTreeRegressor は二乗誤差を分割基準とする CART 回帰木
type DecisionTreeRegressor struct {
	model.BaseEstimator
	Params

	Nodes       []Node
	NFeatures   int
	Importances []float64
}

// NewDecisionTreeRegressor は回帰木を作成する
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{Params: defaultParams("squared_error")}
	for _, opt := range opts {
		opt(&dt.Params)
	}
	return dt
}

// Fit は全サンプルで木を学習する
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	r, _ := X.Dims()
	return dt.FitSample(X, y, allRows(r))
}

// FitSample は idx で指定した行（重複可）だけで木を学習する
func (dt *DecisionTreeRegressor) FitSample(X, y mat.Matrix, idx []int) error {
	const op = "DecisionTreeRegressor.Fit"
	if err := dt.Params.validate(regressionCriteria); err != nil {
		return err
	}
	target, err := checkInput(op, X, y)
	if err != nil {
		return err
	}
	r, c := X.Dims()
	if err := checkSample(op, idx, r); err != nil {
		return err
	}

	b := newBuilder(dt.Params, X, &squaredErrorAccumulator{y: target}, len(idx))
	b.build(idx, 0)

	dt.Nodes = b.nodes
	dt.NFeatures = c
	dt.Importances = b.importance
	dt.SetFitted()
	return nil
}

// Predict は葉の平均値を返す
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	return predictRows("DecisionTreeRegressor.Predict", dt.Nodes, dt.NFeatures, X, 1,
		func(leaf *Node, out []float64) { out[0] = leaf.Value[0] })
}

// Score は決定係数 R^2 を返す
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) float64 {
	pred, err := dt.Predict(X)
	if err != nil {
		return 0
	}
	r, _ := pred.Dims()
	if yr, _ := y.Dims(); yr != r || r == 0 {
		return 0
	}
	mean := 0.0
	for i := 0; i < r; i++ {
		mean += y.At(i, 0)
	}
	mean /= float64(r)
	var ssRes, ssTot float64
	for i := 0; i < r; i++ {
		d := y.At(i, 0) - pred.At(i, 0)
		ssRes += d * d
		m := y.At(i, 0) - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// GetFeatureImportances は合計が 1 になるよう正規化した不純度減少量を返す
func (dt *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	return normalize(dt.Importances)
}

// GetDepth は木の深さを返す
func (dt *DecisionTreeRegressor) GetDepth() int {
	if len(dt.Nodes) == 0 {
		return 0
	}
	return depthOf(dt.Nodes, 0)
}

// GetNLeaves は葉の数を返す
func (dt *DecisionTreeRegressor) GetNLeaves() int {
	return countLeaves(dt.Nodes)
}

// GetParams はハイパーパラメータを返す
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return dt.Params.getParams()
}

// SetParams はハイパーパラメータを更新する
func (dt *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	return dt.Params.setParams(params)
}

type squaredErrorAccumulator struct {
	y []float64

	n, sum, sq    float64
	nL, sumL, sqL float64
}

func (a *squaredErrorAccumulator) init(idx []int) {
	a.n, a.sum, a.sq = 0, 0, 0
	for _, i := range idx {
		v := a.y[i]
		a.n++
		a.sum += v
		a.sq += v * v
	}
	a.reset()
}

func (a *squaredErrorAccumulator) reset() {
	a.nL, a.sumL, a.sqL = 0, 0, 0
}

func (a *squaredErrorAccumulator) move(i int) {
	v := a.y[i]
	a.nL++
	a.sumL += v
	a.sqL += v * v
}

func mse(n, sum, sq float64) float64 {
	if n <= 0 {
		return 0
	}
	mean := sum / n
	v := sq/n - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

func (a *squaredErrorAccumulator) impurity() float64 {
	return mse(a.n, a.sum, a.sq)
}

func (a *squaredErrorAccumulator) children() (float64, float64) {
	return mse(a.nL, a.sumL, a.sqL), mse(a.n-a.nL, a.sum-a.sumL, a.sq-a.sqL)
}

func (a *squaredErrorAccumulator) value() []float64 {
	return []float64{a.sum / a.n}
}
