package ensemble

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/sklearn/tree"
)

// RandomForestRegressor は回帰木の予測を平均するランダムフォレスト
//
//	rf := ensemble.NewRandomForestRegressor(ensemble.WithRandomState(42))
//	err := rf.Fit(X, y)
type RandomForestRegressor struct {
	model.BaseEstimator
	ForestParams

	Trees     []*tree.DecisionTreeRegressor
	NFeatures int
}

// NewRandomForestRegressor は 100 本の木を持つ回帰フォレストを作成する
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{ForestParams: defaultForestParams()}
	for _, opt := range opts {
		opt(&rf.ForestParams)
	}
	return rf
}

// Fit は各木を並列に学習する
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	return rf.FitContext(context.Background(), X, y)
}

// FitContext は ctx がキャンセルされると残りの木の学習を中止する
func (rf *RandomForestRegressor) FitContext(ctx context.Context, X, y mat.Matrix) error {
	const op = "RandomForestRegressor.Fit"
	if err := rf.ForestParams.validate(); err != nil {
		return err
	}
	n, p, err := checkShapes(op, X, y)
	if err != nil {
		return err
	}
	maxFeatures := rf.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = p
	}

	trees := make([]*tree.DecisionTreeRegressor, rf.NEstimators)
	err = fitTrees(ctx, rf.NEstimators, func(_ context.Context, i int) error {
		seed := rf.RandomState + int64(i)
		t := tree.NewDecisionTreeRegressor(rf.treeOptions(seed, maxFeatures)...)
		if err := t.FitSample(X, y, rf.sample(i, n)); err != nil {
			return err
		}
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}

	rf.Trees = trees
	rf.NFeatures = p
	rf.SetFitted()
	return nil
}

// Predict は全ての木の予測の平均を返す
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	if _, c := X.Dims(); c != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForestRegressor.Predict", rf.NFeatures, c, 1)
	}
	return averageRows(X, len(rf.Trees), 1, func(t int, rows mat.Matrix) (mat.Matrix, error) {
		return rf.Trees[t].Predict(rows)
	})
}

// FeatureImportances は各木の正規化済み重要度の平均を返す
func (rf *RandomForestRegressor) FeatureImportances() []float64 {
	per := make([][]float64, len(rf.Trees))
	for i, t := range rf.Trees {
		per[i] = t.GetFeatureImportances()
	}
	return meanImportances(per, rf.NFeatures)
}
