package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatFloat は Python の repr と同じ表記で浮動小数点数を文字列にする。
// 1e-4 <= |x| < 1e16 は固定小数点（整数値でも ".0" を付ける）、それ以外は指数表記。
func FormatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case x == 0:
		if math.Signbit(x) {
			return "-0.0"
		}
		return "0.0"
	}
	abs := math.Abs(x)
	if abs >= 1e-4 && abs < 1e16 {
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(x, 'e', -1, 64)
}

// RegressionText は回帰モデルの評価結果を二行のテキストにする
func RegressionText(mse, r2 float64) string {
	return fmt.Sprintf("Mean Squared Error (MSE): %s\nR^2 Score: %s\n", FormatFloat(mse), FormatFloat(r2))
}
