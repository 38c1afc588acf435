package model

import (
	"gonum.org/v1/gonum/mat"
)

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Estimator
}

// Classifier は分類モデルのインターフェース
//
// クラスラベルは 0..k-1 の整数コードを float64 で表したもの。
// 文字列ラベルとの対応は呼び出し側（pipeline）が保持する。
type Classifier interface {
	Estimator

	// PredictProba は各クラスの確率を (n_samples, n_classes) で返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes は学習時に見たクラスコードを昇順で返す
	Classes() []float64
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
