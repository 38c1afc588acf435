package dataio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

// LoadJSON reads line-delimited JSON: one object per line.
// Column order follows the first appearance of each key; null and absent keys are missing.
func LoadJSON(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("read json", path, err)
	}
	defer f.Close()

	t, err := readJSONLines(f)
	if err != nil {
		return nil, errors.NewIOError("read json", path, err)
	}
	return t, nil
}

func readJSONLines(r io.Reader) (*table.Table, error) {
	var (
		header []string
		pos    = map[string]int{}
		rows   []map[string]jsonCell
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		keys, values, err := decodeObject(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		row := make(map[string]jsonCell, len(keys))
		for i, k := range keys {
			if _, seen := pos[k]; !seen {
				pos[k] = len(header)
				header = append(header, k)
			}
			row[k] = values[i]
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "no JSON objects found")
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, row := range rows {
		rec := make([]string, len(header))
		for i, k := range header {
			rec[i] = row[k].value
		}
		records = append(records, rec)
	}
	t, err := table.FromRecords(records)
	if err != nil {
		return nil, err
	}

	// 型推定では "" や "NA" も欠損になるので、テキスト列では JSON の null と欠けたキーだけを欠損に戻す
	for _, c := range t.Columns() {
		if c.Kind != table.Text {
			continue
		}
		for i, row := range rows {
			if cell, ok := row[c.Name]; ok && !cell.null && c.Null[i] {
				c.Null[i] = false
				c.Strs[i] = cell.value
			}
		}
	}
	return t, nil
}

// jsonCell は一つの値の文字列表現と、それが JSON の null だったかどうか
type jsonCell struct {
	value string
	null  bool
}

// decodeObject は一行分の JSON オブジェクトをキー順を保ったまま文字列化します。
// null は空文字列で null フラグ付き、入れ子の値は JSON テキストのまま返します。
func decodeObject(raw []byte) ([]string, []jsonCell, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected a JSON object")
	}

	var (
		keys   []string
		values []jsonCell
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		cell, err := rawToCell(v)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, cell)
	}
	return keys, values, nil
}

func rawToCell(v json.RawMessage) (jsonCell, error) {
	trimmed := bytes.TrimSpace(v)
	switch {
	case len(trimmed) == 0 || string(trimmed) == "null":
		return jsonCell{null: true}, nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return jsonCell{}, err
		}
		return jsonCell{value: s}, nil
	default:
		return jsonCell{value: string(trimmed)}, nil
	}
}

// SaveJSON writes one JSON object per row, keys in column order, missing as null.
func SaveJSON(t *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("write json", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeJSONLines(w, t); err != nil {
		return errors.NewIOError("write json", path, err)
	}
	if err := w.Flush(); err != nil {
		return errors.NewIOError("write json", path, err)
	}
	return nil
}

func writeJSONLines(w io.Writer, t *table.Table) error {
	cols := t.Columns()
	keys := make([]string, len(cols))
	for j, c := range cols {
		k, err := json.Marshal(c.Name)
		if err != nil {
			return err
		}
		keys[j] = string(k)
	}

	var sb strings.Builder
	for i := 0; i < t.NRows(); i++ {
		sb.Reset()
		sb.WriteByte('{')
		for j, c := range cols {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(keys[j])
			sb.WriteByte(':')
			sb.WriteString(jsonValue(c, i))
		}
		sb.WriteString("}\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func jsonValue(c *table.Column, i int) string {
	if c.IsMissing(i) {
		return "null"
	}
	if c.Kind == table.Numeric {
		v := c.Nums[i]
		if math.IsInf(v, 0) {
			return "null"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	b, _ := json.Marshal(c.Strs[i])
	return string(b)
}
