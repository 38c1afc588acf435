// Package pipeline は前処理とランダムフォレストをつないだ学習・評価・予測を提供します。
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/metrics"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/preprocessing"
	"github.com/YuminosukeSato/dataauto/sklearn/ensemble"
	"github.com/YuminosukeSato/dataauto/sklearn/model_selection"
	"github.com/YuminosukeSato/dataauto/table"
)

// Pipeline は学習済みの前処理とモデルの組です。gob でそのまま保存できます。
type Pipeline struct {
	Kind     ModelKind
	Target   string
	Features []string

	// Labels[code] は分類モデルのクラスの表示名
	Labels []string
	// ClassValues は数値の目的変数で分類したときの各クラスの値
	ClassValues []float64
	TargetKind  table.Kind

	Transformer *preprocessing.ColumnTransformer
	Regressor   *ensemble.RandomForestRegressor
	Classifier  *ensemble.RandomForestClassifier

	// Report は学習時のテストデータに対する評価結果
	Report string
}

// Metrics はテストデータに対する評価値です。使わない指標は 0 のままです。
type Metrics struct {
	MSE      float64
	RMSE     float64
	MAE      float64
	R2       float64
	Accuracy float64
}

// TrainResult は Train の結果です。
type TrainResult struct {
	Pipeline  *Pipeline
	Report    string
	Metrics   Metrics
	TrainRows int
	TestRows  int
	// Classification は分類モデルのときだけ設定される
	Classification *metrics.Report
}

// Train は目的変数以外の全列を特徴量としてランダムフォレストを学習し、テストデータで評価します。
//
// 行は TrainTestSplit で分割され、数値特徴量は学習側で標準化、テキスト特徴量は one-hot 化されます。
// 同じ入力と RandomState からは同じ評価結果が得られます。
func Train(ctx context.Context, t *table.Table, opts TrainOptions) (*TrainResult, error) {
	const op = "Train"
	start := time.Now()

	target, err := t.Lookup(op, opts.Target)
	if err != nil {
		return nil, err
	}
	if opts.Kind != Regressor && opts.Kind != Classifier {
		return nil, errors.NewUnsupportedModelTypeError(opts.Kind.String(), modelKindNames)
	}
	if opts.Kind == Regressor && target.Kind != table.Numeric {
		return nil, errors.NewTypeMismatchError(op, opts.Target, table.Numeric.String(), target.Kind.String())
	}
	if n := target.MissingCount(); n > 0 {
		return nil, errors.NewValueError(op, fmt.Sprintf(
			"target column '%s' has %d missing values; fill or drop them first", opts.Target, n))
	}

	features := make([]string, 0, t.NCols())
	for _, name := range t.Names() {
		if name != opts.Target {
			features = append(features, name)
		}
	}
	if len(features) == 0 {
		return nil, errors.NewValueError(op, "no feature columns besides the target")
	}

	trainIdx, testIdx, err := model_selection.TrainTestSplit(t.NRows(), opts.TestSize, opts.RandomState)
	if err != nil {
		return nil, err
	}
	trainT, testT := t.Take(trainIdx), t.Take(testIdx)

	p := &Pipeline{
		Kind:        opts.Kind,
		Target:      opts.Target,
		Features:    features,
		TargetKind:  target.Kind,
		Transformer: preprocessing.NewColumnTransformer(),
	}
	if err := p.Transformer.Fit(trainT, features); err != nil {
		return nil, err
	}
	XTrain, err := p.Transformer.Transform(trainT)
	if err != nil {
		return nil, err
	}
	XTest, err := p.Transformer.Transform(testT)
	if err != nil {
		return nil, err
	}

	forestOpts := []ensemble.Option{
		ensemble.WithNEstimators(opts.NEstimators),
		ensemble.WithRandomState(opts.RandomState),
	}
	res := &TrainResult{Pipeline: p, TrainRows: len(trainIdx), TestRows: len(testIdx)}

	var codes []float64
	if opts.Kind == Classifier {
		codes = p.encodeTarget(target)
	} else {
		codes = target.Nums
	}
	yTrain := columnVector(codes, trainIdx)
	yTest := columnVector(codes, testIdx)

	switch opts.Kind {
	case Regressor:
		p.Regressor = ensemble.NewRandomForestRegressor(forestOpts...)
		if err := p.Regressor.FitContext(ctx, XTrain, yTrain); err != nil {
			return nil, err
		}
		pred, err := p.Regressor.Predict(XTest)
		if err != nil {
			return nil, err
		}
		if res.Metrics, err = regressionMetrics(yTest, pred); err != nil {
			return nil, err
		}
		p.Report = metrics.RegressionText(res.Metrics.MSE, res.Metrics.R2)

	case Classifier:
		p.Classifier = ensemble.NewRandomForestClassifier(forestOpts...)
		if err := p.Classifier.FitContext(ctx, XTrain, yTrain); err != nil {
			return nil, err
		}
		pred, err := p.Classifier.Predict(XTest)
		if err != nil {
			return nil, err
		}
		rep, err := metrics.ClassificationReport(mat.Col(nil, 0, yTest), mat.Col(nil, 0, pred), p.Labels)
		if err != nil {
			return nil, err
		}
		res.Classification = rep
		res.Metrics.Accuracy = rep.Accuracy
		p.Report = rep.String()
	}
	res.Report = p.Report

	log.GetLoggerWithName("pipeline").Info("model trained",
		log.OperationKey, log.OperationTrain,
		log.TargetKey, opts.Target,
		log.ModelKindKey, opts.Kind.String(),
		log.EstimatorsKey, opts.NEstimators,
		log.RandomSeedKey, opts.RandomState,
		log.TrainRowsKey, res.TrainRows,
		log.TestRowsKey, res.TestRows,
		log.FeaturesKey, p.Transformer.NOutputs(),
		log.MSEKey, res.Metrics.MSE,
		log.R2ScoreKey, res.Metrics.R2,
		log.AccuracyKey, res.Metrics.Accuracy,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// encodeTarget はクラスを昇順に並べて 0..k-1 のコードに置き換える。
// 数値の目的変数は値の大小、テキストは辞書順で並ぶ。
func (p *Pipeline) encodeTarget(c *table.Column) []float64 {
	codes := make([]float64, c.Len())
	if c.Kind == table.Numeric {
		p.ClassValues = uniqueFloats(c.Nums)
		p.Labels = make([]string, len(p.ClassValues))
		for i, v := range p.ClassValues {
			p.Labels[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		for i, v := range c.Nums {
			codes[i] = float64(sort.SearchFloat64s(p.ClassValues, v))
		}
		return codes
	}

	seen := make(map[string]struct{})
	for _, s := range c.Strs {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			p.Labels = append(p.Labels, s)
		}
	}
	sort.Strings(p.Labels)
	for i, s := range c.Strs {
		codes[i] = float64(sort.SearchStrings(p.Labels, s))
	}
	return codes
}

// Predict は t の特徴量列から目的変数を予測し、目的変数と同名の列として返す
func (p *Pipeline) Predict(t *table.Table) (*table.Column, error) {
	X, err := p.Transformer.Transform(t)
	if err != nil {
		return nil, err
	}

	switch p.Kind {
	case Regressor:
		if p.Regressor == nil {
			return nil, errors.NewNotFittedError("Pipeline", "Predict")
		}
		pred, err := p.Regressor.Predict(X)
		if err != nil {
			return nil, err
		}
		return table.NewNumeric(p.Target, mat.Col(nil, 0, pred)), nil

	case Classifier:
		if p.Classifier == nil {
			return nil, errors.NewNotFittedError("Pipeline", "Predict")
		}
		pred, err := p.Classifier.Predict(X)
		if err != nil {
			return nil, err
		}
		codes := mat.Col(nil, 0, pred)
		if p.TargetKind == table.Numeric {
			values := make([]float64, len(codes))
			for i, c := range codes {
				values[i] = p.ClassValues[int(c)]
			}
			return table.NewNumeric(p.Target, values), nil
		}
		labels := make([]string, len(codes))
		for i, c := range codes {
			labels[i] = p.Labels[int(c)]
		}
		return table.NewText(p.Target, labels, nil), nil
	}
	return nil, errors.NewUnsupportedModelTypeError(p.Kind.String(), modelKindNames)
}

// Save はパイプラインを gob 形式で path に保存する
func (p *Pipeline) Save(path string) error {
	return model.SaveModel(p, path)
}

// Load は Save で保存したパイプラインを読み込む
func Load(path string) (*Pipeline, error) {
	var p Pipeline
	if err := model.LoadModel(&p, path); err != nil {
		return nil, err
	}
	if p.Transformer == nil || (p.Regressor == nil && p.Classifier == nil) {
		return nil, errors.NewValueError("Load", fmt.Sprintf("%s does not contain a trained pipeline", path))
	}
	return &p, nil
}

// regressionMetrics は n×1 の正解と予測から回帰指標を求める。形の検査は MSEMatrix が行う
func regressionMetrics(yTrue, yPred mat.Matrix) (Metrics, error) {
	var m Metrics
	var err error
	if m.MSE, err = metrics.MSEMatrix(yTrue, yPred); err != nil {
		return m, err
	}
	m.RMSE = math.Sqrt(m.MSE)

	t := mat.NewVecDense(rowsOf(yTrue), mat.Col(nil, 0, yTrue))
	p := mat.NewVecDense(rowsOf(yPred), mat.Col(nil, 0, yPred))
	if m.MAE, err = metrics.MAE(t, p); err != nil {
		return m, err
	}
	if m.R2, err = metrics.R2Score(t, p); err != nil {
		return m, err
	}
	return m, nil
}

func rowsOf(m mat.Matrix) int {
	r, _ := m.Dims()
	return r
}

func columnVector(values []float64, idx []int) *mat.Dense {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return mat.NewDense(len(idx), 1, out)
}

func uniqueFloats(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	var out []float64
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
