package ensemble

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/sklearn/tree"
)

// RandomForestClassifier は分類木の確率を平均するランダムフォレスト
type RandomForestClassifier struct {
	model.BaseEstimator
	ForestParams

	Trees       []*tree.DecisionTreeClassifier
	ClassValues []float64
	NFeatures   int
}

// NewRandomForestClassifier は 100 本の木を持つ分類フォレストを作成する
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{ForestParams: defaultForestParams()}
	for _, opt := range opts {
		opt(&rf.ForestParams)
	}
	return rf
}

// Fit は各木を並列に学習する
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	return rf.FitContext(context.Background(), X, y)
}

// FitContext は ctx がキャンセルされると残りの木の学習を中止する
func (rf *RandomForestClassifier) FitContext(ctx context.Context, X, y mat.Matrix) error {
	const op = "RandomForestClassifier.Fit"
	if err := rf.ForestParams.validate(); err != nil {
		return err
	}
	n, p, err := checkShapes(op, X, y)
	if err != nil {
		return err
	}
	maxFeatures := rf.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = sqrtFeatures(p)
	}

	trees := make([]*tree.DecisionTreeClassifier, rf.NEstimators)
	err = fitTrees(ctx, rf.NEstimators, func(_ context.Context, i int) error {
		seed := rf.RandomState + int64(i)
		t := tree.NewDecisionTreeClassifier(rf.treeOptions(seed, maxFeatures)...)
		if err := t.FitSample(X, y, rf.sample(i, n)); err != nil {
			return err
		}
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}

	// 木は y 全体からクラスを決めるので、どの木も同じ列順になる
	rf.ClassValues = trees[0].Classes()
	rf.Trees = trees
	rf.NFeatures = p
	rf.SetFitted()
	return nil
}

// PredictProba は各木のクラス確率の平均を返す
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	if _, c := X.Dims(); c != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", rf.NFeatures, c, 1)
	}
	return averageRows(X, len(rf.Trees), len(rf.ClassValues), func(t int, rows mat.Matrix) (mat.Matrix, error) {
		return rf.Trees[t].PredictProba(rows)
	})
}

// Predict は平均確率が最大のクラスを返す。同率なら小さいクラス値
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, k := probas.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best := 0
		for j := 1; j < k; j++ {
			if probas.At(i, j) > probas.At(i, best) {
				best = j
			}
		}
		out.Set(i, 0, rf.ClassValues[best])
	}
	return out, nil
}

// Classes は学習時のクラス値を昇順で返す
func (rf *RandomForestClassifier) Classes() []float64 {
	out := append([]float64(nil), rf.ClassValues...)
	sort.Float64s(out)
	return out
}

// FeatureImportances は各木の正規化済み重要度の平均を返す
func (rf *RandomForestClassifier) FeatureImportances() []float64 {
	per := make([][]float64, len(rf.Trees))
	for i, t := range rf.Trees {
		per[i] = t.GetFeatureImportances()
	}
	return meanImportances(per, rf.NFeatures)
}
