package plotting

import (
	"strings"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// Kind はグラフの種類です。
type Kind int

const (
	KindHistogram Kind = iota
	KindScatter
	KindBox
	KindHeatmap
	KindLine
)

var kindNames = []string{"histogram", "scatter", "box", "heatmap", "line"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind は "histogram" / "scatter" / "box" / "heatmap" / "line" を受け付けます。
// "hist" と "boxplot" も使えます。
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "hist":
		return KindHistogram, nil
	case "boxplot":
		return KindBox, nil
	}
	for i, name := range kindNames {
		if norm == name {
			return Kind(i), nil
		}
	}
	return KindHistogram, errors.NewUnsupportedOptionError(errors.OptionPlotType, s, kindNames)
}

// DefaultBins はヒストグラムの既定の階級数
const DefaultBins = 20

// Options はファイル出力の設定です。
type Options struct {
	// OutputDir は出力先。存在しなければ作成する
	OutputDir string
	// Interactive なら PNG に加えて go-echarts の HTML も書き出す
	Interactive bool
	Bins        int
}

// DefaultOptions はカレントディレクトリに PNG だけを書き出す設定を返します。
func DefaultOptions() Options {
	return Options{OutputDir: ".", Bins: DefaultBins}
}

func (o Options) bins() int {
	if o.Bins > 0 {
		return o.Bins
	}
	return DefaultBins
}

// Spec はどの列をどの種類のグラフにするかを表します。
//
// KindHistogram と KindBox は Column、KindScatter と KindLine は X と Y、KindHeatmap は Columns
// （空なら全数値列）を使います。
type Spec struct {
	Kind    Kind
	Column  string
	X, Y    string
	Columns []string
}
