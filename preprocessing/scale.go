package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/table"
)

// ScaleResult は ScaleColumns で変換された列とスキップされた列です。
type ScaleResult struct {
	Scaled  []string
	Skipped []string
}

// ScaleColumns は columns の各数値列を method で独立にスケーリングし、その場で置き換えます。
//
// 列ごとに別々のスケーラーを学習するので列間の情報は混ざりません。
// 数値でない列と、値が一つもない列は警告を出してスキップします。
func ScaleColumns(t *table.Table, columns []string, method ScaleMethod) (ScaleResult, error) {
	const op = "ScaleColumns"
	var res ScaleResult
	if len(columns) == 0 {
		return res, errors.NewValueError(op, "at least one column is required")
	}

	targets := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, err := t.Lookup(op, name)
		if err != nil {
			return res, err
		}
		targets[i] = c
	}
	if _, err := NewScaler(method); err != nil {
		return res, err
	}

	for _, c := range targets {
		if c.Kind != table.Numeric {
			errors.Warn(errors.NewColumnSkippedWarning(op, c.Name, "column is not numeric"))
			res.Skipped = append(res.Skipped, c.Name)
			continue
		}
		if c.MissingCount() == c.Len() {
			errors.Warn(errors.NewColumnSkippedWarning(op, c.Name, "column has no values"))
			res.Skipped = append(res.Skipped, c.Name)
			continue
		}

		scaler, _ := NewScaler(method)
		X := mat.NewDense(c.Len(), 1, append([]float64(nil), c.Nums...))
		out, err := scaler.FitTransform(X)
		if err != nil {
			return res, errors.Wrapf(err, "scale column '%s'", c.Name)
		}
		scaled := mat.Col(nil, 0, out)
		if err := t.Set(table.NewNumeric(c.Name, scaled)); err != nil {
			return res, err
		}
		res.Scaled = append(res.Scaled, c.Name)
	}

	log.GetLoggerWithName("preprocessing").Debug("columns scaled",
		log.OperationKey, log.OperationScale,
		log.MethodKey, method.String(),
		log.ColumnsKey, res.Scaled,
	)
	return res, nil
}
