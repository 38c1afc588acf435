package pipeline

import (
	"strings"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// ModelKind は学習するモデルの種類です。
type ModelKind int

const (
	Regressor ModelKind = iota
	Classifier
)

var modelKindNames = []string{"regressor", "classifier"}

func (k ModelKind) String() string {
	if k >= 0 && int(k) < len(modelKindNames) {
		return modelKindNames[k]
	}
	return "unknown"
}

// ParseModelKind は "regressor" / "classifier" を受け付けます。
func ParseModelKind(s string) (ModelKind, error) {
	for i, name := range modelKindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return ModelKind(i), nil
		}
	}
	return Regressor, errors.NewUnsupportedModelTypeError(s, modelKindNames)
}

const (
	DefaultTestSize    = 0.2
	DefaultRandomState = 42
)

// TrainOptions は Train の設定です。
type TrainOptions struct {
	Target      string
	Kind        ModelKind
	TestSize    float64
	RandomState int64
	NEstimators int
}

// DefaultTrainOptions は test_size=0.2, random_state=42, 100 本の木の設定を返します。
func DefaultTrainOptions(target string, kind ModelKind) TrainOptions {
	return TrainOptions{
		Target:      target,
		Kind:        kind,
		TestSize:    DefaultTestSize,
		RandomState: DefaultRandomState,
		NEstimators: 100,
	}
}
