package preprocessing

import (
	"fmt"
	"math"
	"strconv"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/stats"
	"github.com/YuminosukeSato/dataauto/table"
)

// Filled は一列分の補完結果です。
type Filled struct {
	Column string
	// Value は補完に使った値（数値列は strconv 形式）
	Value string
	Count int
}

// FillResult は FillMissing の結果です。補完対象外になった列は Skipped に入ります。
type FillResult struct {
	Filled  []Filled
	Skipped []string
}

// Total returns the number of cells filled across all columns.
func (r FillResult) Total() int {
	n := 0
	for _, f := range r.Filled {
		n += f.Count
	}
	return n
}

// FillMissing は欠損値を strategy に従って埋めます。テーブルはその場で変更されます。
//
// columns が空なら全列が対象です。存在しない列名が含まれていれば何も変更せずに
// ColumnNotFoundError を返します。テキスト列に mean / median を指定した場合や、
// 値が一つもない数値列は警告を出してスキップします。
// Constant では value が必須で、数値列には数値として解釈できる必要があります。
func FillMissing(t *table.Table, strategy Strategy, columns []string, value *string) (FillResult, error) {
	const op = "FillMissing"
	var result FillResult

	if len(columns) == 0 {
		columns = t.Names()
	}
	targets := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, err := t.Lookup(op, name)
		if err != nil {
			return result, err
		}
		targets[i] = c
	}

	if strategy == Constant {
		if value == nil {
			return result, errors.NewValueError(op, "the constant strategy requires a fill value")
		}
		// 数値列への定数は先にすべて検証し、途中まで書き換えた状態を残さない
		for _, c := range targets {
			if c.Kind == table.Numeric {
				if _, err := strconv.ParseFloat(*value, 64); err != nil {
					return result, errors.NewTypeMismatchError(op, c.Name, "numeric", "text")
				}
			}
		}
	}

	logger := log.GetLoggerWithName("preprocessing").With(log.OperationKey, log.OperationClean)

	for _, c := range targets {
		var (
			filled Filled
			ok     bool
			reason string
		)
		if c.Kind == table.Numeric {
			filled, ok, reason = fillNumeric(c, strategy, value)
		} else {
			filled, ok, reason = fillText(c, strategy, value)
		}
		if !ok {
			errors.Warn(errors.NewColumnSkippedWarning(op, c.Name, reason))
			result.Skipped = append(result.Skipped, c.Name)
			continue
		}
		logger.Debug("missing values filled",
			log.ColumnKey, c.Name,
			log.StrategyKey, strategy.String(),
			log.FilledKey, filled.Count,
		)
		result.Filled = append(result.Filled, filled)
	}
	return result, nil
}

func fillNumeric(c *table.Column, strategy Strategy, value *string) (Filled, bool, string) {
	var fill float64
	if strategy == Constant {
		fill, _ = strconv.ParseFloat(*value, 64)
	} else {
		present := c.NonMissing()
		if len(present) == 0 {
			return Filled{}, false, fmt.Sprintf("no non-missing values to compute %s", strategy)
		}
		switch strategy {
		case Mean:
			fill = stats.Mean(present)
		case Median:
			fill = stats.Median(present)
		case Mode:
			fill = stats.Mode(present)
		default:
			return Filled{}, false, fmt.Sprintf("unsupported strategy %s", strategy)
		}
	}

	count := 0
	for i, v := range c.Nums {
		if math.IsNaN(v) {
			c.SetFloat(i, fill)
			count++
		}
	}
	return Filled{Column: c.Name, Value: strconv.FormatFloat(fill, 'g', -1, 64), Count: count}, true, ""
}

func fillText(c *table.Column, strategy Strategy, value *string) (Filled, bool, string) {
	var fill string
	switch strategy {
	case Constant:
		fill = *value
	case Mode:
		present := c.NonMissingStrings()
		if len(present) == 0 {
			return Filled{}, false, "no non-missing values to compute mode"
		}
		fill, _ = stats.ModeString(present)
	default:
		return Filled{}, false, fmt.Sprintf("strategy %s requires a numeric column", strategy)
	}

	count := 0
	for i := range c.Strs {
		if c.Null[i] {
			c.SetString(i, fill)
			count++
		}
	}
	return Filled{Column: c.Name, Value: fill, Count: count}, true, ""
}
