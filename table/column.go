package table

import (
	"math"
	"strconv"

	"github.com/YuminosukeSato/dataauto/stats"
)

// Kind は列の型です。
type Kind int

const (
	// Numeric は float64 で保持され、NaN が欠損を表す
	Numeric Kind = iota
	// Text は文字列と欠損マスクで保持される
	Text
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Column は名前付きの一列です。Kind に応じて Nums か Strs/Null のどちらかを使います。
type Column struct {
	Name string
	Kind Kind
	Nums []float64
	Strs []string
	Null []bool
}

// NewNumeric creates a numeric column. NaN marks a missing value.
func NewNumeric(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Numeric, Nums: values}
}

// NewText creates a text column. null may be nil when nothing is missing.
func NewText(name string, values []string, null []bool) *Column {
	if null == nil {
		null = make([]bool, len(values))
	}
	return &Column{Name: name, Kind: Text, Strs: values, Null: null}
}

// Len returns the number of rows.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Nums)
	}
	return len(c.Strs)
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Nums[i])
	}
	return c.Null[i]
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// NonMissing returns the numeric values without NaN, in row order.
// It returns nil for text columns.
func (c *Column) NonMissing() []float64 {
	if c.Kind != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.Nums))
	for _, v := range c.Nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// NonMissingStrings returns the text values that are present, in row order.
func (c *Column) NonMissingStrings() []string {
	if c.Kind != Text {
		return nil
	}
	out := make([]string, 0, len(c.Strs))
	for i, v := range c.Strs {
		if !c.Null[i] {
			out = append(out, v)
		}
	}
	return out
}

// Format renders row i as a string; missing cells render as "".
func (c *Column) Format(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	if c.Kind == Numeric {
		return strconv.FormatFloat(c.Nums[i], 'g', -1, 64)
	}
	return c.Strs[i]
}

// SetFloat stores v in row i of a numeric column.
func (c *Column) SetFloat(i int, v float64) {
	c.Nums[i] = v
}

// SetString stores s in row i of a text column and clears its missing flag.
func (c *Column) SetString(i int, s string) {
	c.Strs[i] = s
	c.Null[i] = false
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		out.Nums = append([]float64(nil), c.Nums...)
		return out
	}
	out.Strs = append([]string(nil), c.Strs...)
	out.Null = append([]bool(nil), c.Null...)
	return out
}

func (c *Column) filter(keep []bool, kept int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		out.Nums = make([]float64, 0, kept)
		for i, k := range keep {
			if k {
				out.Nums = append(out.Nums, c.Nums[i])
			}
		}
		return out
	}
	out.Strs = make([]string, 0, kept)
	out.Null = make([]bool, 0, kept)
	for i, k := range keep {
		if k {
			out.Strs = append(out.Strs, c.Strs[i])
			out.Null = append(out.Null, c.Null[i])
		}
	}
	return out
}

func (c *Column) take(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		out.Nums = make([]float64, len(idx))
		for j, i := range idx {
			out.Nums[j] = c.Nums[i]
		}
		return out
	}
	out.Strs = make([]string, len(idx))
	out.Null = make([]bool, len(idx))
	for j, i := range idx {
		out.Strs[j] = c.Strs[i]
		out.Null[j] = c.Null[i]
	}
	return out
}

// Summary は Describe が返す一列分の要約です。
// 数値列は Mean〜Max、テキスト列は Unique/Top/Freq を使います。
type Summary struct {
	Name  string
	Kind  Kind
	Count int

	Mean, Std, Min, Q25, Q50, Q75, Max float64

	Unique int
	Top    string
	Freq   int
}

// Summarize computes the describe() row for this column.
// Std is the sample standard deviation, as pandas reports it.
func (c *Column) Summarize() Summary {
	s := Summary{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		vals := c.NonMissing()
		s.Count = len(vals)
		s.Mean = stats.Mean(vals)
		s.Std = stats.SampleStd(vals)
		s.Min, s.Max = stats.MinMax(vals)
		q := stats.Quantiles(vals, 0.25, 0.5, 0.75)
		s.Q25, s.Q50, s.Q75 = q[0], q[1], q[2]
		return s
	}
	vals := c.NonMissingStrings()
	s.Count = len(vals)
	distinct := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		distinct[v] = struct{}{}
	}
	s.Unique = len(distinct)
	s.Top, s.Freq = stats.ModeString(vals)
	return s
}
