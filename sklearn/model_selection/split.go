// Package model_selection は学習用とテスト用の行の分割を提供します。
package model_selection

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// TrainTestSplit は 0..n-1 の行番号をシャッフルし、先頭 round(testSize*n) 行をテスト側に割り当てる。
//
// 同じ seed と n からは常に同じ分割が得られる。
//
//	train, test, err := model_selection.TrainTestSplit(t.NRows(), 0.2, 42)
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	const op = "TrainTestSplit"
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	nTest := int(math.Round(testSize * float64(n)))
	if nTest == 0 || nTest >= n {
		return nil, nil, errors.NewValueError(op, fmt.Sprintf(
			"with n_samples=%d and test_size=%g one of the train or test sets would be empty", n, testSize))
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
