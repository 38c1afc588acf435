package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Perfect accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 2, 1, 0},
			want:  1.0,
		},
		{
			name:  "80% accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 1, 1, 0},
			want:  0.8,
		},
		{
			name:  "Zero accuracy",
			yTrue: []float64{0, 0, 0},
			yPred: []float64{1, 1, 1},
			want:  0.0,
		},
		{
			name:    "Empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var yTrue, yPred *mat.VecDense
			if len(tt.yTrue) > 0 {
				yTrue = mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			}
			if len(tt.yPred) > 0 {
				yPred = mat.NewVecDense(len(tt.yPred), tt.yPred)
			}

			got, err := Accuracy(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassificationReport(t *testing.T) {
	yTrue := []float64{0, 0, 1, 1}
	yPred := []float64{0, 1, 1, 1}

	rep, err := ClassificationReport(yTrue, yPred, []string{"A", "B"})
	require.NoError(t, err)

	require.Len(t, rep.Classes, 2)
	assert.Equal(t, "A", rep.Classes[0].Label)
	assert.InDelta(t, 1.0, rep.Classes[0].Precision, 1e-12)
	assert.InDelta(t, 0.5, rep.Classes[0].Recall, 1e-12)
	assert.InDelta(t, 0.8, rep.Classes[1].F1, 1e-12)
	assert.InDelta(t, 0.75, rep.Accuracy, 1e-12)

	want := "              precision    recall  f1-score   support\n\n" +
		"           A       1.00      0.50      0.67         2\n" +
		"           B       0.67      1.00      0.80         2\n\n" +
		"    accuracy                           0.75         4\n" +
		"   macro avg       0.83      0.75      0.73         4\n" +
		"weighted avg       0.83      0.75      0.73         4\n"
	assert.Equal(t, want, rep.String())
}

func TestClassificationReport_ZeroDivision(t *testing.T) {
	// クラス 2 は予測されない、クラス 3 は正解に現れない
	rep, err := ClassificationReport([]float64{1, 2, 2}, []float64{1, 1, 3}, nil)
	require.NoError(t, err)

	labels := make([]string, len(rep.Classes))
	for i, c := range rep.Classes {
		labels[i] = c.Label
	}
	assert.Equal(t, []string{"1", "2", "3"}, labels)

	assert.Equal(t, 0.0, rep.Classes[1].Precision)
	assert.Equal(t, 0.0, rep.Classes[1].F1)
	assert.Equal(t, 0.0, rep.Classes[2].Recall)
	assert.Equal(t, 0, rep.Classes[2].Support)
	for _, c := range rep.Classes {
		assert.False(t, math.IsNaN(c.F1))
	}
}

func TestClassificationReport_Errors(t *testing.T) {
	_, err := ClassificationReport(nil, nil, nil)
	assert.Error(t, err)
	_, err = ClassificationReport([]float64{1}, []float64{1, 2}, nil)
	assert.Error(t, err)
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.25, "0.25"},
		{3, "3.0"},
		{17.0 / 3.0, "5.666666666666667"},
		{123456789.5, "123456789.5"},
		{1e16, "1e+16"},
		{0.00001, "1e-05"},
		{-2.5, "-2.5"},
		{0, "0.0"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in))
	}
}

func TestRegressionText(t *testing.T) {
	assert.Equal(t, "Mean Squared Error (MSE): 0.25\nR^2 Score: 0.8\n", RegressionText(0.25, 0.8))
}
