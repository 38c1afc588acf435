package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/stats"
)

// スケールがこれより小さい列は定数列とみなし、スケールを1にする
const zeroSpread = 1e-8

// presentValues は列 j の NaN でない値を返す
func presentValues(X mat.Matrix, j int) []float64 {
	r, _ := X.Dims()
	out := make([]float64, 0, r)
	for i := 0; i < r; i++ {
		if v := X.At(i, j); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func fitColumns(op string, X mat.Matrix, fn func(j int, values []float64)) (int, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	for j := 0; j < c; j++ {
		values := presentValues(X, j)
		if len(values) == 0 {
			return 0, errors.NewValueError(op, fmt.Sprintf("feature %d has no non-missing values", j))
		}
		fn(j, values)
	}
	return c, nil
}

// affine は (x - center[j]) / scale[j] を全要素に適用する。NaN はそのまま残る。
func affine(X mat.Matrix, center, scale []float64) *mat.Dense {
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - center[j]) / scale[j]
	}, X)
	return result
}

func inverseAffine(X mat.Matrix, center, scale []float64) *mat.Dense {
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return v*scale[j] + center[j]
	}, X)
	return result
}

// StandardScaler はデータを平均0、標準偏差1に変換する
//
// 各列は欠損(NaN)を除いた値で学習し、欠損は変換後も欠損のまま残る。
// 標準偏差は母標準偏差(ddof=0)。
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（定数列では1）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	_, c := X.Dims()
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	n, err := fitColumns("StandardScaler.Fit", X, func(j int, values []float64) {
		mean, std := stats.PopMeanStd(values)
		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1
		if s.WithStd && std >= zeroSpread {
			s.Scale[j] = std
		}
	})
	if err != nil {
		return err
	}
	s.NFeatures = n
	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}
	return affine(X, s.Mean, s.Scale), nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}
	return inverseAffine(X, s.Mean, s.Scale), nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}

// MinMaxScaler はデータを指定した範囲（デフォルト[0,1]）にスケーリングする
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin / DataMax は学習データの最小値・最大値
	DataMin []float64
	DataMax []float64

	// Scale は各特徴量の (max - min)。定数列では1
	Scale []float64

	NFeatures int

	// FeatureRange はスケーリング後の範囲 [min, max]
	FeatureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: featureRange}
}

// NewMinMaxScalerDefault はデフォルト設定([0,1]範囲)でMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit は訓練データから最小値・最大値を計算する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	_, c := X.Dims()
	m.DataMin = make([]float64, c)
	m.DataMax = make([]float64, c)
	m.Scale = make([]float64, c)
	n, err := fitColumns("MinMaxScaler.Fit", X, func(j int, values []float64) {
		lo, hi := stats.MinMax(values)
		m.DataMin[j], m.DataMax[j] = lo, hi
		m.Scale[j] = hi - lo
		if math.Abs(m.Scale[j]) < zeroSpread {
			m.Scale[j] = 1
		}
	})
	if err != nil {
		return err
	}
	m.NFeatures = n
	m.SetFitted()
	return nil
}

// span は FeatureRange の幅
func (m *MinMaxScaler) span() float64 {
	return m.FeatureRange[1] - m.FeatureRange[0]
}

// Transform は学習済みの最小値・最大値でデータをスケーリングする
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", m.NFeatures, c, 1)
	}
	result := mat.NewDense(r, c, nil)
	span := m.span()
	result.Apply(func(i, j int, v float64) float64 {
		return (v-m.DataMin[j])/m.Scale[j]*span + m.FeatureRange[0]
	}, X)
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}
	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.InverseTransform", m.NFeatures, c, 1)
	}
	result := mat.NewDense(r, c, nil)
	span := m.span()
	result.Apply(func(i, j int, v float64) float64 {
		return (v-m.FeatureRange[0])/span*m.Scale[j] + m.DataMin[j]
	}, X)
	return result, nil
}

// GetParams はスケーラーのパラメータを取得する
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": m.FeatureRange,
	}
}

// String はスケーラーの文字列表現を返す
func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.NFeatures)
}

// RobustScaler は中央値を引き、四分位範囲(IQR)で割る
// 外れ値の影響を受けにくいスケーリング
type RobustScaler struct {
	model.BaseEstimator

	Center []float64
	Scale  []float64

	NFeatures int
}

// NewRobustScaler は新しいRobustScalerを作成する
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{}
}

// Fit は各列の中央値と IQR を計算する
func (s *RobustScaler) Fit(X mat.Matrix) error {
	_, c := X.Dims()
	s.Center = make([]float64, c)
	s.Scale = make([]float64, c)
	n, err := fitColumns("RobustScaler.Fit", X, func(j int, values []float64) {
		q := stats.Quantiles(values, 0.25, 0.5, 0.75)
		s.Center[j] = q[1]
		s.Scale[j] = q[2] - q[0]
		if math.Abs(s.Scale[j]) < zeroSpread {
			s.Scale[j] = 1
		}
	})
	if err != nil {
		return err
	}
	s.NFeatures = n
	s.SetFitted()
	return nil
}

// Transform は (x - median) / IQR を適用する
func (s *RobustScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("RobustScaler", "Transform")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("RobustScaler.Transform", s.NFeatures, c, 1)
	}
	return affine(X, s.Center, s.Scale), nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *RobustScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は元のスケールに戻す
func (s *RobustScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("RobustScaler", "InverseTransform")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("RobustScaler.InverseTransform", s.NFeatures, c, 1)
	}
	return inverseAffine(X, s.Center, s.Scale), nil
}

// String はスケーラーの文字列表現を返す
func (s *RobustScaler) String() string {
	if !s.IsFitted() {
		return "RobustScaler()"
	}
	return fmt.Sprintf("RobustScaler(n_features=%d)", s.NFeatures)
}

// NewScaler は ScaleMethod に対応するスケーラーを返す
func NewScaler(method ScaleMethod) (model.InverseTransformer, error) {
	switch method {
	case Standard:
		return NewStandardScalerDefault(), nil
	case MinMax:
		return NewMinMaxScalerDefault(), nil
	case Robust:
		return NewRobustScaler(), nil
	}
	return nil, errors.NewUnsupportedMethodError(method.String(), scaleMethodNames)
}
