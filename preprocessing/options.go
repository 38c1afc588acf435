package preprocessing

import (
	"strings"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// Strategy は欠損値補完の戦略です。
type Strategy int

const (
	Mean Strategy = iota
	Median
	Mode
	Constant
)

var strategyNames = []string{"mean", "median", "mode", "constant"}

func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// ParseStrategy は "mean" / "median" / "mode" / "constant" を受け付けます。
func ParseStrategy(s string) (Strategy, error) {
	for i, name := range strategyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Strategy(i), nil
		}
	}
	return Mean, errors.NewUnsupportedStrategyError(s, strategyNames)
}

// OutlierMethod は外れ値判定の方法です。
type OutlierMethod int

const (
	IQR OutlierMethod = iota
	ZScore
)

func (m OutlierMethod) String() string {
	switch m {
	case IQR:
		return "IQR"
	case ZScore:
		return "Z-score"
	default:
		return "unknown"
	}
}

// ParseOutlierMethod は "IQR" と "Z-score"（大文字小文字・ハイフン有無を問わない）を受け付けます。
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	switch norm {
	case "iqr":
		return IQR, nil
	case "zscore", "z":
		return ZScore, nil
	}
	return IQR, errors.NewUnsupportedMethodError(s, []string{"IQR", "Z-score"})
}

// ScaleMethod はスケーリングの方法です。
type ScaleMethod int

const (
	Standard ScaleMethod = iota
	MinMax
	Robust
)

var scaleMethodNames = []string{"standard", "minmax", "robust"}

func (m ScaleMethod) String() string {
	if m >= 0 && int(m) < len(scaleMethodNames) {
		return scaleMethodNames[m]
	}
	return "unknown"
}

// ParseScaleMethod は "standard" / "minmax"（"min-max" も可）/ "robust" を受け付けます。
func ParseScaleMethod(s string) (ScaleMethod, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	for i, name := range scaleMethodNames {
		if norm == name {
			return ScaleMethod(i), nil
		}
	}
	return Standard, errors.NewUnsupportedMethodError(s, scaleMethodNames)
}
