// Package table は名前付き列の順序付き集合（データテーブル）を提供します。
//
// 数値列は float64 と NaN、テキスト列は文字列と欠損マスクで保持します。
// 行の順序は常に保存され、Filter は元の順序のまま行を残した新しいテーブルを返します。
package table

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/stats"
)

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	cols  []*Column
	index map[string]int
}

// New builds a table. Columns of different lengths or duplicate names are rejected.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if err := t.add(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is New for tests and literals; it panics on error.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(c *Column) error {
	if _, dup := t.index[c.Name]; dup {
		return errors.NewValueError("table.New", "duplicate column name '"+c.Name+"'")
	}
	if len(t.cols) > 0 && c.Len() != t.NRows() {
		return errors.NewDimensionError("table.New", t.NRows(), c.Len(), 0)
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// NRows returns the number of rows.
func (t *Table) NRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NCols returns the number of columns.
func (t *Table) NCols() int {
	return len(t.cols)
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column, or ColumnNotFoundError.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError("table.Column", name, t.Names())
	}
	return t.cols[i], nil
}

// Lookup is Column with the caller's operation name in the error.
func (t *Table) Lookup(op, name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError(op, name, t.Names())
	}
	return t.cols[i], nil
}

// Numeric returns the named column if it exists and is numeric.
func (t *Table) Numeric(op, name string) (*Column, error) {
	c, err := t.Lookup(op, name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Numeric {
		return nil, errors.NewTypeMismatchError(op, name, Numeric.String(), c.Kind.String())
	}
	return c, nil
}

// Columns returns the columns in order. The slice is a copy; the columns are shared.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.cols...)
}

// NumericNames returns the names of numeric columns in order.
func (t *Table) NumericNames() []string {
	return t.namesOf(Numeric)
}

// TextNames returns the names of text columns in order.
func (t *Table) TextNames() []string {
	return t.namesOf(Text)
}

func (t *Table) namesOf(k Kind) []string {
	var names []string
	for _, c := range t.cols {
		if c.Kind == k {
			names = append(names, c.Name)
		}
	}
	return names
}

// Set replaces the column with the same name, or appends it.
func (t *Table) Set(c *Column) error {
	if len(t.cols) > 0 && c.Len() != t.NRows() {
		return errors.NewDimensionError("table.Set", t.NRows(), c.Len(), 0)
	}
	if i, ok := t.index[c.Name]; ok {
		t.cols[i] = c
		return nil
	}
	return t.add(c)
}

// Filter returns a new table holding the rows where keep is true, in original order.
func (t *Table) Filter(keep []bool) (*Table, error) {
	if len(keep) != t.NRows() {
		return nil, errors.NewDimensionError("table.Filter", t.NRows(), len(keep), 0)
	}
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.filter(keep, kept))
	}
	return out, nil
}

// Take returns a new table with rows idx in the given order.
func (t *Table) Take(idx []int) *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.take(idx))
	}
	return out
}

// Drop returns a copy of the table without the named columns.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, errors.NewColumnNotFoundError("table.Drop", n, t.Names())
		}
		drop[n] = true
	}
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		if drop[c.Name] {
			continue
		}
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.Clone())
	}
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for i, c := range t.cols {
		out.index[c.Name] = i
		out.cols = append(out.cols, c.Clone())
	}
	return out
}

// Head returns the first n rows (all rows when n exceeds the length).
func (t *Table) Head(n int) *Table {
	if n > t.NRows() {
		n = t.NRows()
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Take(idx)
}

// Record returns row i as strings; missing cells are "".
func (t *Table) Record(i int) []string {
	rec := make([]string, len(t.cols))
	for j, c := range t.cols {
		rec[j] = c.Format(i)
	}
	return rec
}

// Records returns every row as strings, without the header.
func (t *Table) Records() [][]string {
	out := make([][]string, t.NRows())
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}

// Describe summarizes every column.
func (t *Table) Describe() []Summary {
	out := make([]Summary, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Summarize()
	}
	return out
}

// Matrix packs the named numeric columns into a rows × len(names) matrix.
// Missing values stay NaN.
func (t *Table) Matrix(op string, names []string) (*mat.Dense, error) {
	if t.NRows() == 0 || len(names) == 0 {
		return nil, errors.NewValueError(op, "no data to convert to a matrix")
	}
	m := mat.NewDense(t.NRows(), len(names), nil)
	for j, name := range names {
		c, err := t.Numeric(op, name)
		if err != nil {
			return nil, err
		}
		m.SetCol(j, c.Nums)
	}
	return m, nil
}

// Correlation returns the Pearson correlation matrix of the named numeric
// columns, using the rows where both columns are present.
// An empty names slice selects every numeric column.
func (t *Table) Correlation(names []string) (*mat.SymDense, []string, error) {
	const op = "table.Correlation"
	if len(names) == 0 {
		names = t.NumericNames()
	}
	cols := make([]*Column, len(names))
	for i, n := range names {
		c, err := t.Numeric(op, n)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = c
	}

	corr := mat.NewSymDense(len(names), nil)
	for i := range cols {
		for j := i; j < len(cols); j++ {
			if i == j {
				corr.SetSym(i, j, 1)
				continue
			}
			x, y := pairwiseComplete(cols[i].Nums, cols[j].Nums)
			corr.SetSym(i, j, stats.Correlation(x, y))
		}
	}
	return corr, names, nil
}

func pairwiseComplete(a, b []float64) ([]float64, []float64) {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}
