package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/model"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

// ColumnTransformer は数値列を標準化し、テキスト列を one-hot 化して一つの行列に並べる
//
// 出力の列順は [数値列..., one-hot ブロック...]。
// 数値列に欠損があると ValueError を返すので、先に FillMissing で埋めておく。
type ColumnTransformer struct {
	model.BaseEstimator

	NumericColumns []string
	TextColumns    []string

	Scaler  *StandardScaler
	Encoder *OneHotEncoder
}

// NewColumnTransformer は新しいColumnTransformerを作成する
func NewColumnTransformer() *ColumnTransformer {
	return &ColumnTransformer{}
}

// Fit は features を型で振り分け、数値列のスケーラーとテキスト列のエンコーダを学習する
func (ct *ColumnTransformer) Fit(t *table.Table, features []string) error {
	const op = "ColumnTransformer.Fit"
	if len(features) == 0 {
		return errors.NewValueError(op, "no feature columns")
	}
	if t.NRows() == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}

	ct.NumericColumns, ct.TextColumns = nil, nil
	for _, name := range features {
		c, err := t.Lookup(op, name)
		if err != nil {
			return err
		}
		if c.Kind == table.Numeric {
			ct.NumericColumns = append(ct.NumericColumns, name)
		} else {
			ct.TextColumns = append(ct.TextColumns, name)
		}
	}

	ct.Scaler, ct.Encoder = nil, nil
	if len(ct.NumericColumns) > 0 {
		X, err := ct.numericMatrix(op, t)
		if err != nil {
			return err
		}
		ct.Scaler = NewStandardScalerDefault()
		if err := ct.Scaler.Fit(X); err != nil {
			return err
		}
	}
	if len(ct.TextColumns) > 0 {
		cols, err := ct.textColumns(op, t)
		if err != nil {
			return err
		}
		ct.Encoder = NewOneHotEncoder()
		if err := ct.Encoder.Fit(cols); err != nil {
			return err
		}
	}
	if ct.NOutputs() == 0 {
		return errors.NewValueError(op, "features produce no output columns")
	}
	ct.SetFitted()
	return nil
}

func (ct *ColumnTransformer) numericMatrix(op string, t *table.Table) (*mat.Dense, error) {
	for _, name := range ct.NumericColumns {
		c, err := t.Numeric(op, name)
		if err != nil {
			return nil, err
		}
		if n := c.MissingCount(); n > 0 {
			return nil, errors.NewValueError(op,
				fmt.Sprintf("column '%s' has %d missing values; fill them first (clean)", name, n))
		}
	}
	return t.Matrix(op, ct.NumericColumns)
}

func (ct *ColumnTransformer) textColumns(op string, t *table.Table) ([]*table.Column, error) {
	cols := make([]*table.Column, len(ct.TextColumns))
	for i, name := range ct.TextColumns {
		c, err := t.Lookup(op, name)
		if err != nil {
			return nil, err
		}
		if c.Kind != table.Text {
			return nil, errors.NewTypeMismatchError(op, name, table.Text.String(), c.Kind.String())
		}
		cols[i] = c
	}
	return cols, nil
}

// NOutputs は出力行列の列数
func (ct *ColumnTransformer) NOutputs() int {
	n := len(ct.NumericColumns)
	if ct.Encoder != nil {
		n += ct.Encoder.NOutputs()
	}
	return n
}

// Transform は学習済みの変換を t に適用する
func (ct *ColumnTransformer) Transform(t *table.Table) (*mat.Dense, error) {
	const op = "ColumnTransformer.Transform"
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	rows := t.NRows()
	if rows == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(rows, ct.NOutputs(), nil)
	offset := 0
	if ct.Scaler != nil {
		X, err := ct.numericMatrix(op, t)
		if err != nil {
			return nil, err
		}
		scaled, err := ct.Scaler.Transform(X)
		if err != nil {
			return nil, err
		}
		n := len(ct.NumericColumns)
		out.Slice(0, rows, offset, offset+n).(*mat.Dense).Copy(scaled)
		offset += n
	}
	if ct.Encoder != nil && ct.Encoder.NOutputs() > 0 {
		cols, err := ct.textColumns(op, t)
		if err != nil {
			return nil, err
		}
		encoded, err := ct.Encoder.Transform(cols)
		if err != nil {
			return nil, err
		}
		out.Slice(0, rows, offset, offset+ct.Encoder.NOutputs()).(*mat.Dense).Copy(encoded)
	}

	if err := errors.CheckMatrix(op, out, rows, ct.NOutputs()); err != nil {
		return nil, err
	}
	return out, nil
}

// FitTransform は学習と変換を同時に行う
func (ct *ColumnTransformer) FitTransform(t *table.Table, features []string) (*mat.Dense, error) {
	if err := ct.Fit(t, features); err != nil {
		return nil, err
	}
	return ct.Transform(t)
}

// FeatureNames は出力列の名前を返す
func (ct *ColumnTransformer) FeatureNames() []string {
	names := append([]string(nil), ct.NumericColumns...)
	if ct.Encoder != nil {
		names = append(names, ct.Encoder.FeatureNames(ct.TextColumns)...)
	}
	return names
}
