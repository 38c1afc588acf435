package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

// OneHotEncoder はテキスト列をカテゴリごとの 0/1 列に展開する
//
// カテゴリは学習データに現れた値を辞書順に並べたもの。
// 変換時に未知のカテゴリや欠損値が来た場合はエラーにせず、その列のブロックをすべて0にする。
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories[j] は j 番目の入力列のカテゴリ（昇順）
	Categories [][]string

	NFeatures int
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit は各テキスト列のカテゴリを学習する
func (e *OneHotEncoder) Fit(cols []*table.Column) error {
	if len(cols) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	e.Categories = make([][]string, len(cols))
	for j, c := range cols {
		if c.Kind != table.Text {
			return errors.NewTypeMismatchError("OneHotEncoder.Fit", c.Name, table.Text.String(), c.Kind.String())
		}
		seen := map[string]struct{}{}
		for _, v := range c.NonMissingStrings() {
			seen[v] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		e.Categories[j] = cats
	}
	e.NFeatures = len(cols)
	e.SetFitted()
	return nil
}

// NOutputs は変換後の列数を返す
func (e *OneHotEncoder) NOutputs() int {
	n := 0
	for _, cats := range e.Categories {
		n += len(cats)
	}
	return n
}

// Transform はテキスト列を one-hot 行列に変換する
func (e *OneHotEncoder) Transform(cols []*table.Column) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(cols) != e.NFeatures {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", e.NFeatures, len(cols), 1)
	}
	rows := cols[0].Len()
	width := e.NOutputs()
	if rows == 0 || width == 0 {
		return nil, errors.NewValueError("OneHotEncoder.Transform", "nothing to encode")
	}

	out := mat.NewDense(rows, width, nil)
	offset := 0
	for j, c := range cols {
		if c.Kind != table.Text {
			return nil, errors.NewTypeMismatchError("OneHotEncoder.Transform", c.Name, table.Text.String(), c.Kind.String())
		}
		cats := e.Categories[j]
		for i := 0; i < rows; i++ {
			if c.Null[i] {
				continue
			}
			k := sort.SearchStrings(cats, c.Strs[i])
			if k < len(cats) && cats[k] == c.Strs[i] {
				out.Set(i, offset+k, 1)
			}
		}
		offset += len(cats)
	}
	return out, nil
}

// FitTransform は学習と変換を同時に行う
func (e *OneHotEncoder) FitTransform(cols []*table.Column) (*mat.Dense, error) {
	if err := e.Fit(cols); err != nil {
		return nil, err
	}
	return e.Transform(cols)
}

// FeatureNames は "列名_カテゴリ" 形式の出力列名を返す
func (e *OneHotEncoder) FeatureNames(inputs []string) []string {
	names := make([]string, 0, e.NOutputs())
	for j, cats := range e.Categories {
		for _, c := range cats {
			names = append(names, inputs[j]+"_"+c)
		}
	}
	return names
}
