package pipeline

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

func employees(n int) *table.Table {
	age := make([]float64, n)
	salary := make([]float64, n)
	city := make([]string, n)
	segment := make([]string, n)
	cities := []string{"Tokyo", "Osaka", "Nagoya"}
	for i := 0; i < n; i++ {
		age[i] = float64(20 + i)
		city[i] = cities[i%3]
		offset := 0.0
		if city[i] == "Tokyo" {
			offset = 5000
		}
		salary[i] = 1000*age[i] + offset
		if age[i] >= 45 {
			segment[i] = "senior"
		} else {
			segment[i] = "junior"
		}
	}
	return table.MustNew(
		table.NewNumeric("Age", age),
		table.NewText("City", city, nil),
		table.NewNumeric("Salary", salary),
		table.NewText("Segment", segment, nil),
	)
}

func quickOptions(target string, kind ModelKind) TrainOptions {
	opts := DefaultTrainOptions(target, kind)
	opts.NEstimators = 20
	return opts
}

func TestParseModelKind(t *testing.T) {
	k, err := ParseModelKind("Classifier")
	require.NoError(t, err)
	assert.Equal(t, Classifier, k)

	_, err = ParseModelKind("svm")
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	assert.Contains(t, err.Error(), "regressor, classifier")
}

func TestTrain_Regressor(t *testing.T) {
	tbl, err := employees(50).Drop("Segment")
	require.NoError(t, err)

	res, err := Train(context.Background(), tbl, quickOptions("Salary", Regressor))
	require.NoError(t, err)

	assert.Equal(t, 40, res.TrainRows)
	assert.Equal(t, 10, res.TestRows)
	assert.Greater(t, res.Metrics.R2, 0.8)
	assert.InDelta(t, math.Sqrt(res.Metrics.MSE), res.Metrics.RMSE, 1e-9)
	assert.True(t, strings.HasPrefix(res.Report, "Mean Squared Error (MSE): "))
	assert.Contains(t, res.Report, "\nR^2 Score: ")
	assert.Equal(t, []string{"Age", "City"}, res.Pipeline.Features)
}

func TestTrain_Deterministic(t *testing.T) {
	tbl, err := employees(40).Drop("Segment")
	require.NoError(t, err)

	a, err := Train(context.Background(), tbl, quickOptions("Salary", Regressor))
	require.NoError(t, err)
	b, err := Train(context.Background(), tbl, quickOptions("Salary", Regressor))
	require.NoError(t, err)
	assert.Equal(t, a.Report, b.Report)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestTrain_Classifier(t *testing.T) {
	tbl, err := employees(60).Drop("Salary")
	require.NoError(t, err)

	res, err := Train(context.Background(), tbl, quickOptions("Segment", Classifier))
	require.NoError(t, err)

	assert.Equal(t, []string{"junior", "senior"}, res.Pipeline.Labels)
	assert.GreaterOrEqual(t, res.Metrics.Accuracy, 0.8)
	require.NotNil(t, res.Classification)
	assert.Contains(t, res.Report, "precision    recall  f1-score   support")
	assert.Contains(t, res.Report, "weighted avg")

	pred, err := res.Pipeline.Predict(tbl)
	require.NoError(t, err)
	assert.Equal(t, table.Text, pred.Kind)
	assert.Equal(t, 60, pred.Len())
	for _, s := range pred.Strs {
		assert.Contains(t, []string{"junior", "senior"}, s)
	}
}

func TestTrain_NumericClassTarget(t *testing.T) {
	n := 30
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		if i >= 15 {
			y[i] = 10
		} else {
			y[i] = 2
		}
	}
	tbl := table.MustNew(table.NewNumeric("x", x), table.NewNumeric("label", y))

	res, err := Train(context.Background(), tbl, quickOptions("label", Classifier))
	require.NoError(t, err)
	// 数値のクラスは大小順
	assert.Equal(t, []float64{2, 10}, res.Pipeline.ClassValues)
	assert.Equal(t, []string{"2", "10"}, res.Pipeline.Labels)

	pred, err := res.Pipeline.Predict(tbl)
	require.NoError(t, err)
	assert.Equal(t, table.Numeric, pred.Kind)
	for _, v := range pred.Nums {
		assert.True(t, v == 2 || v == 10)
	}
}

func TestPipeline_SaveLoad(t *testing.T) {
	tbl, err := employees(40).Drop("Segment")
	require.NoError(t, err)
	res, err := Train(context.Background(), tbl, quickOptions("Salary", Regressor))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, res.Pipeline.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, res.Report, loaded.Report)

	want, err := res.Pipeline.Predict(tbl)
	require.NoError(t, err)
	got, err := loaded.Predict(tbl)
	require.NoError(t, err)
	assert.Equal(t, want.Nums, got.Nums)

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.True(t, errors.Is(err, errors.ErrIOFailure))
}

func TestTrain_Errors(t *testing.T) {
	ctx := context.Background()
	tbl := employees(20)

	_, err := Train(ctx, tbl, quickOptions("Bonus", Regressor))
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))

	_, err = Train(ctx, tbl, quickOptions("Segment", Regressor))
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))

	for _, k := range []ModelKind{ModelKind(-1), ModelKind(7)} {
		_, err = Train(ctx, tbl, quickOptions("Salary", k))
		assert.True(t, errors.Is(err, errors.ErrUnsupported), k.String())
		assert.Contains(t, err.Error(), "unknown")
	}

	opts := quickOptions("Salary", Regressor)
	opts.TestSize = 1.5
	_, err = Train(ctx, tbl, opts)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	gappy := table.MustNew(
		table.NewNumeric("x", []float64{1, 2, 3, 4, 5}),
		table.NewNumeric("y", []float64{1, math.NaN(), 3, 4, 5}),
	)
	_, err = Train(ctx, gappy, quickOptions("y", Regressor))
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	gappyFeature := table.MustNew(
		table.NewNumeric("x", []float64{1, math.NaN(), 3, 4, 5, 6, 7, 8, 9, 10}),
		table.NewNumeric("y", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
	)
	_, err = Train(ctx, gappyFeature, quickOptions("y", Regressor))
	assert.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "fill them first")

	only := table.MustNew(table.NewNumeric("y", []float64{1, 2, 3}))
	_, err = Train(ctx, only, quickOptions("y", Regressor))
	assert.True(t, errors.As(err, &valErr))
}

func TestRegressionMetrics(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1, 2, 3, 6})
	m, err := regressionMetrics(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.MSE, 1e-12)
	assert.InDelta(t, 1.0, m.RMSE, 1e-12)
	assert.InDelta(t, 0.5, m.MAE, 1e-12)
	assert.InDelta(t, 0.2, m.R2, 1e-12)

	_, err = regressionMetrics(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	_, err = regressionMetrics(yTrue, mat.NewDense(3, 1, []float64{1, 2, 3}))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}
