package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/stats"
	"github.com/YuminosukeSato/dataauto/table"
)

// DefaultMultiplier は IQR 法の既定の倍率です。
const DefaultMultiplier = 1.5

// OutlierResult は RemoveOutliers の結果です。
type OutlierResult struct {
	Table *table.Table
	// Removed は削除した全行数（MissingDropped を含む）
	Removed int
	// MissingDropped は対象列が欠損していたため削除した行数
	MissingDropped int
	// Lower / Upper は IQR 法では値の境界、Z-score 法では z の境界 (-m, m)
	Lower, Upper float64
}

// RemoveOutliers は column の値に基づいて外れ値の行を取り除いた新しいテーブルを返します。
//
// IQR: Q1 - m*IQR <= v <= Q3 + m*IQR の行を残す。
// Z-score: 母標準偏差による |z| < m の行を残す。標準偏差が0なら全行の z は0。
// どちらの方法でも対象列が欠損している行は削除され、MissingDropped に数えられる。
func RemoveOutliers(t *table.Table, column string, method OutlierMethod, multiplier float64) (OutlierResult, error) {
	const op = "RemoveOutliers"
	if !(multiplier > 0) || math.IsInf(multiplier, 0) {
		return OutlierResult{}, errors.NewValidationError("multiplier", "must be a positive number", multiplier)
	}
	c, err := t.Numeric(op, column)
	if err != nil {
		return OutlierResult{}, err
	}

	present := c.NonMissing()
	keep := make([]bool, c.Len())
	res := OutlierResult{}

	switch method {
	case IQR:
		q1, q3 := stats.Quartiles(present)
		iqr := q3 - q1
		res.Lower, res.Upper = q1-multiplier*iqr, q3+multiplier*iqr
		for i, v := range c.Nums {
			keep[i] = !math.IsNaN(v) && v >= res.Lower && v <= res.Upper
		}
	case ZScore:
		res.Lower, res.Upper = -multiplier, multiplier
		z := stats.ZScores(present)
		k := 0
		for i, v := range c.Nums {
			if math.IsNaN(v) {
				continue
			}
			keep[i] = math.Abs(z[k]) < multiplier
			k++
		}
	default:
		return OutlierResult{}, errors.NewUnsupportedMethodError(method.String(), []string{"IQR", "Z-score"})
	}

	for i, v := range c.Nums {
		if keep[i] {
			continue
		}
		res.Removed++
		if math.IsNaN(v) {
			res.MissingDropped++
		}
	}

	res.Table, err = t.Filter(keep)
	if err != nil {
		return OutlierResult{}, err
	}

	log.GetLoggerWithName("preprocessing").Debug("outliers removed",
		log.OperationKey, log.OperationRemoveOutlier,
		log.ColumnKey, column,
		log.MethodKey, method.String(),
		log.RemovedKey, res.Removed,
		log.LowerBoundKey, res.Lower,
		log.UpperBoundKey, res.Upper,
	)
	return res, nil
}
