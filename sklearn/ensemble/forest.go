// Package ensemble はブートストラップ標本で学習した決定木の平均を取るランダムフォレストを提供します。
package ensemble

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/core/parallel"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/sklearn/tree"
)

// DefaultNEstimators は木の本数の既定値
const DefaultNEstimators = 100

// predictThreshold 以下の行数では予測を並列化しない
const predictThreshold = 256

// ForestParams はランダムフォレストのハイパーパラメータ
type ForestParams struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures は各分割で試す特徴量の数。0 なら回帰は全特徴量、分類は sqrt(p)
	MaxFeatures int
	Bootstrap   bool
	// RandomState は i 番目の木に RandomState+i として渡される
	RandomState int64
}

// Option はランダムフォレストの設定を変更する関数
type Option func(*ForestParams)

// WithNEstimators は木の本数を設定する
func WithNEstimators(n int) Option { return func(p *ForestParams) { p.NEstimators = n } }

// WithMaxDepth は各木の最大深さを設定する
func WithMaxDepth(d int) Option { return func(p *ForestParams) { p.MaxDepth = d } }

// WithMinSamplesSplit は分割に必要な最小サンプル数を設定する
func WithMinSamplesSplit(n int) Option { return func(p *ForestParams) { p.MinSamplesSplit = n } }

// WithMinSamplesLeaf は葉に必要な最小サンプル数を設定する
func WithMinSamplesLeaf(n int) Option { return func(p *ForestParams) { p.MinSamplesLeaf = n } }

// WithMaxFeatures は各分割で試す特徴量の数を設定する
func WithMaxFeatures(k int) Option { return func(p *ForestParams) { p.MaxFeatures = k } }

// WithBootstrap はブートストラップ標本を使うかどうかを設定する
func WithBootstrap(b bool) Option { return func(p *ForestParams) { p.Bootstrap = b } }

// WithRandomState は乱数シードを設定する
func WithRandomState(seed int64) Option { return func(p *ForestParams) { p.RandomState = seed } }

func defaultForestParams() ForestParams {
	return ForestParams{
		NEstimators:     DefaultNEstimators,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
}

func (p *ForestParams) validate() error {
	if p.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be >= 1", p.NEstimators)
	}
	if p.MaxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be >= 0", p.MaxFeatures)
	}
	return nil
}

// GetParams はハイパーパラメータを返す
func (p *ForestParams) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      p.NEstimators,
		"max_depth":         p.MaxDepth,
		"min_samples_split": p.MinSamplesSplit,
		"min_samples_leaf":  p.MinSamplesLeaf,
		"max_features":      p.MaxFeatures,
		"bootstrap":         p.Bootstrap,
		"random_state":      p.RandomState,
	}
}

func (p *ForestParams) treeOptions(seed int64, maxFeatures int) []tree.Option {
	return []tree.Option{
		tree.WithMaxDepth(p.MaxDepth),
		tree.WithMinSamplesSplit(p.MinSamplesSplit),
		tree.WithMinSamplesLeaf(p.MinSamplesLeaf),
		tree.WithMaxFeatures(maxFeatures),
		tree.WithRandomState(seed),
	}
}

// sample は i 番目の木の学習に使う行番号を返す
func (p *ForestParams) sample(i, n int) []int {
	idx := make([]int, n)
	if !p.Bootstrap {
		for j := range idx {
			idx[j] = j
		}
		return idx
	}
	rnd := rand.New(rand.NewSource(p.RandomState + int64(i)))
	for j := range idx {
		idx[j] = rnd.Intn(n)
	}
	return idx
}

func sqrtFeatures(p int) int {
	k := int(math.Sqrt(float64(p)))
	if k < 1 {
		k = 1
	}
	return k
}

func checkShapes(op string, X, y mat.Matrix) (int, int, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if yr, _ := y.Dims(); yr != r {
		return 0, 0, errors.NewDimensionError(op, r, yr, 0)
	}
	return r, c, nil
}

// averageRows は各木の出力 (n, width) の平均を行ごとに並列で計算する
func averageRows(X mat.Matrix, nTrees, width int, predict func(t int, rows mat.Matrix) (mat.Matrix, error)) (*mat.Dense, error) {
	Xd := mat.DenseCopyOf(X)
	r, c := Xd.Dims()
	out := mat.NewDense(r, width, nil)

	var (
		mu       sync.Mutex
		firstErr error
	)
	parallel.ParallelizeWithThreshold(r, predictThreshold, func(start, end int) {
		if start == end {
			return
		}
		rows := Xd.Slice(start, end, 0, c)
		acc := out.Slice(start, end, 0, width).(*mat.Dense)
		for t := 0; t < nTrees; t++ {
			pred, err := predict(t, rows)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			acc.Add(acc, pred)
		}
		acc.Scale(1/float64(nTrees), acc)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func fitTrees(ctx context.Context, n int, fit func(ctx context.Context, i int) error) error {
	if err := parallel.ForEach(ctx, n, fit); err != nil {
		return errors.Wrap(err, "fit random forest")
	}
	return nil
}

func meanImportances(perTree [][]float64, p int) []float64 {
	out := make([]float64, p)
	if len(perTree) == 0 {
		return out
	}
	for _, imp := range perTree {
		for j, v := range imp {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(perTree))
	}
	return out
}
