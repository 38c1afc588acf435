// Package tree は CART 方式の決定木（分類・回帰）を提供します。
//
// 木は Node の配列として保持するので gob でそのまま保存できます。
// RandomForest からはブートストラップ標本を FitSample で渡して使います。
package tree

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

const epsilon = 1e-12

// Node は木の一節点。葉では Left と Right が -1 になる。
//
// Value は分類ならクラス確率、回帰なら [平均値]。
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     []float64
	NSamples  int
	Impurity  float64
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Params は決定木のハイパーパラメータ
type Params struct {
	// Criterion は分割基準。分類は "gini" / "entropy"、回帰は "squared_error"
	Criterion string
	// MaxDepth は木の最大深さ。0 なら制限なし
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures は各分割で試す特徴量の数。0 なら全特徴量
	MaxFeatures         int
	MinImpurityDecrease float64
	// RandomState は特徴量サンプリングの乱数シード
	RandomState int64
}

// Option は決定木の設定を変更する関数
type Option func(*Params)

// WithCriterion は分割基準を設定する
func WithCriterion(c string) Option { return func(p *Params) { p.Criterion = c } }

// WithMaxDepth は最大深さを設定する
func WithMaxDepth(d int) Option { return func(p *Params) { p.MaxDepth = d } }

// WithMinSamplesSplit は分割に必要な最小サンプル数を設定する
func WithMinSamplesSplit(n int) Option { return func(p *Params) { p.MinSamplesSplit = n } }

// WithMinSamplesLeaf は葉に必要な最小サンプル数を設定する
func WithMinSamplesLeaf(n int) Option { return func(p *Params) { p.MinSamplesLeaf = n } }

// WithMaxFeatures は各分割で試す特徴量の数を設定する
func WithMaxFeatures(k int) Option { return func(p *Params) { p.MaxFeatures = k } }

// WithMinImpurityDecrease は分割を受け入れる最小の不純度減少量を設定する
func WithMinImpurityDecrease(v float64) Option {
	return func(p *Params) { p.MinImpurityDecrease = v }
}

// WithRandomState は乱数シードを設定する
func WithRandomState(seed int64) Option { return func(p *Params) { p.RandomState = seed } }

func defaultParams(criterion string) Params {
	return Params{
		Criterion:       criterion,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

func (p *Params) validate(criteria []string) error {
	found := false
	for _, c := range criteria {
		if p.Criterion == c {
			found = true
			break
		}
	}
	if !found {
		return errors.NewUnsupportedOptionError("criterion", p.Criterion, criteria)
	}
	if p.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be >= 0", p.MaxDepth)
	}
	if p.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", p.MinSamplesSplit)
	}
	if p.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", p.MinSamplesLeaf)
	}
	if p.MaxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be >= 0", p.MaxFeatures)
	}
	return nil
}

func (p *Params) getParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             p.Criterion,
		"max_depth":             p.MaxDepth,
		"min_samples_split":     p.MinSamplesSplit,
		"min_samples_leaf":      p.MinSamplesLeaf,
		"max_features":          p.MaxFeatures,
		"min_impurity_decrease": p.MinImpurityDecrease,
		"random_state":          p.RandomState,
	}
}

func (p *Params) setParams(params map[string]interface{}) error {
	for key, value := range params {
		var ok bool
		switch key {
		case "criterion":
			p.Criterion, ok = value.(string)
		case "max_depth":
			p.MaxDepth, ok = value.(int)
		case "min_samples_split":
			p.MinSamplesSplit, ok = value.(int)
		case "min_samples_leaf":
			p.MinSamplesLeaf, ok = value.(int)
		case "max_features":
			p.MaxFeatures, ok = value.(int)
		case "min_impurity_decrease":
			p.MinImpurityDecrease, ok = value.(float64)
		case "random_state":
			var seed int
			if seed, ok = value.(int); ok {
				p.RandomState = int64(seed)
			} else {
				p.RandomState, ok = value.(int64)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
		if !ok {
			return errors.NewValidationError(key, "wrong type", value)
		}
	}
	return nil
}

// accumulator は一つのノード内で左右の子の統計量を逐次更新する
type accumulator interface {
	// init は idx をノードとして統計量を計算し、左側を空にする
	init(idx []int)
	// reset は左側を空に戻す
	reset()
	// move はサンプル i を右から左へ移す
	move(i int)
	impurity() float64
	children() (left, right float64)
	value() []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

type builder struct {
	params     Params
	cols       [][]float64
	acc        accumulator
	rnd        *rand.Rand
	nodes      []Node
	importance []float64
	nTotal     float64
}

func newBuilder(params Params, X mat.Matrix, acc accumulator, nTotal int) *builder {
	_, c := X.Dims()
	cols := make([][]float64, c)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
	}
	return &builder{
		params:     params,
		cols:       cols,
		acc:        acc,
		rnd:        rand.New(rand.NewSource(params.RandomState)),
		importance: make([]float64, c),
		nTotal:     float64(nTotal),
	}
}

func (b *builder) build(idx []int, depth int) int {
	b.acc.init(idx)
	imp := b.acc.impurity()
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Feature:  -1,
		Left:     -1,
		Right:    -1,
		Value:    b.acc.value(),
		NSamples: len(idx),
		Impurity: imp,
	})

	n := len(idx)
	p := b.params
	if (p.MaxDepth > 0 && depth >= p.MaxDepth) || n < p.MinSamplesSplit || n < 2*p.MinSamplesLeaf || imp <= epsilon {
		return id
	}

	s, ok := b.bestSplit(idx, imp)
	if !ok {
		return id
	}
	weighted := float64(n) / b.nTotal * s.gain
	if weighted+epsilon < p.MinImpurityDecrease {
		return id
	}
	b.importance[s.feature] += weighted

	left := b.build(s.left, depth+1)
	right := b.build(s.right, depth+1)
	node := &b.nodes[id]
	node.Feature = s.feature
	node.Threshold = s.threshold
	node.Left = left
	node.Right = right
	return id
}

// candidateFeatures は特徴量を試す順序と、試す数の上限を返す
func (b *builder) candidateFeatures() ([]int, int) {
	p := len(b.cols)
	k := b.params.MaxFeatures
	if k <= 0 || k >= p {
		all := make([]int, p)
		for j := range all {
			all[j] = j
		}
		return all, p
	}
	return b.rnd.Perm(p), k
}

// bestSplit は不純度の減少が最大になる (特徴量, 閾値) を探す。
// 減少量が 0 の分割も有効な候補として扱う。
// ノード内で定数の特徴量は MaxFeatures の数に含めず、次の特徴量を試す。
func (b *builder) bestSplit(idx []int, parent float64) (split, bool) {
	n := len(idx)
	minLeaf := b.params.MinSamplesLeaf
	best := split{feature: -1, gain: math.Inf(-1)}
	bestPos := 0
	var bestOrder []int

	sorted := make([]int, n)
	order, limit := b.candidateFeatures()
	visited := 0
	for _, f := range order {
		if visited >= limit {
			break
		}
		col := b.cols[f]
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return col[sorted[a]] < col[sorted[c]] })
		if col[sorted[0]] == col[sorted[n-1]] {
			continue
		}
		visited++

		b.acc.reset()
		for s := 0; s < n-1; s++ {
			b.acc.move(sorted[s])
			lo, hi := col[sorted[s]], col[sorted[s+1]]
			if lo == hi {
				continue
			}
			nL := s + 1
			if nL < minLeaf || n-nL < minLeaf {
				continue
			}
			l, r := b.acc.children()
			gain := parent - (float64(nL)*l+float64(n-nL)*r)/float64(n)
			if gain > best.gain {
				thr := lo + (hi-lo)/2
				if thr >= hi {
					thr = lo
				}
				best = split{feature: f, threshold: thr, gain: gain}
				bestPos = nL
				bestOrder = append(bestOrder[:0], sorted...)
			}
		}
	}
	if best.feature < 0 {
		return best, false
	}
	best.left = append([]int(nil), bestOrder[:bestPos]...)
	best.right = append([]int(nil), bestOrder[bestPos:]...)
	return best, true
}

// checkInput は X と y の形と値を検証し、y を一次元にして返す
func checkInput(op string, X, y mat.Matrix) ([]float64, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yr, yc := y.Dims()
	if yr != r {
		return nil, errors.NewDimensionError(op, r, yr, 0)
	}
	if yc != 1 {
		return nil, errors.NewDimensionError(op, 1, yc, 1)
	}
	if err := errors.CheckMatrix(op, X, r, c); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix(op, y, yr, 1); err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, y), nil
}

func checkSample(op string, idx []int, n int) error {
	if len(idx) == 0 {
		return errors.NewModelError(op, "empty sample", errors.ErrEmptyData)
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return errors.NewValidationError("sample index", "out of range", i)
		}
	}
	return nil
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// apply は x が落ちる葉を返す
func apply(nodes []Node, x []float64) *Node {
	node := &nodes[0]
	for !node.IsLeaf() {
		if x[node.Feature] <= node.Threshold {
			node = &nodes[node.Left]
		} else {
			node = &nodes[node.Right]
		}
	}
	return node
}

func predictRows(op string, nodes []Node, nFeatures int, X mat.Matrix, width int, fill func(leaf *Node, out []float64)) (*mat.Dense, error) {
	r, c := X.Dims()
	if c != nFeatures {
		return nil, errors.NewDimensionError(op, nFeatures, c, 1)
	}
	out := mat.NewDense(r, width, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		fill(apply(nodes, row), out.RawRowView(i))
	}
	return out, nil
}

func depthOf(nodes []Node, id int) int {
	n := nodes[id]
	if n.IsLeaf() {
		return 0
	}
	l, r := depthOf(nodes, n.Left), depthOf(nodes, n.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}

func countLeaves(nodes []Node) int {
	count := 0
	for i := range nodes {
		if nodes[i].IsLeaf() {
			count++
		}
	}
	return count
}

func normalize(importance []float64) []float64 {
	out := append([]float64(nil), importance...)
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total <= 0 {
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
