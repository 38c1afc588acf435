package table

import (
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// MissingTokens are the cell values read as missing.
var MissingTokens = []string{"", "NA", "NaN", "nan", "null", "NULL", "<nil>"}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(MissingTokens),
	}
}

// ReadCSV は CSV を gota で読み込み、列型を推論してテーブルにします。
func ReadCSV(r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "parse csv")
	}
	return FromDataFrame(df)
}

// FromRecords は先頭行をヘッダとする文字列レコードからテーブルを作ります。
// Excel や SQL の結果など、型情報のないソースで使います。
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.NewValueError("table.FromRecords", "no header row")
	}
	if len(records) == 1 {
		cols := make([]*Column, len(records[0]))
		for i, name := range records[0] {
			cols[i] = NewText(name, []string{}, []bool{})
		}
		return New(cols...)
	}
	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "parse records")
	}
	return FromDataFrame(df)
}

// FromDataFrame converts a gota DataFrame. Int and float series become numeric
// columns; string and bool series become text columns.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	names := df.Names()
	types := df.Types()
	cols := make([]*Column, len(names))
	for i, name := range names {
		s := df.Col(name)
		switch types[i] {
		case series.Int, series.Float:
			cols[i] = NewNumeric(name, s.Float())
		default:
			values, null := s.Records(), s.IsNaN()
			for j := range values {
				if null[j] {
					values[j] = ""
				}
			}
			cols[i] = NewText(name, values, null)
		}
	}
	return New(cols...)
}
