package dataio

import (
	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

// DefaultSheet は保存時の既定シート名です。
const DefaultSheet = "Sheet1"

// LoadExcel reads one sheet of an .xlsx workbook. An empty sheet name selects the first sheet.
// The first row is the header.
func LoadExcel(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewIOError("read excel", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewIOError("read excel", path, errors.ErrEmptyData)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewIOError("read excel", path+"#"+sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.NewIOError("read excel", path+"#"+sheet, errors.ErrEmptyData)
	}

	// GetRows は末尾の空セルを省略するのでヘッダ幅に揃える
	width := len(rows[0])
	for i, r := range rows {
		if len(r) < width {
			rows[i] = append(r, make([]string, width-len(r))...)
		} else if len(r) > width {
			rows[i] = r[:width]
		}
	}

	t, err := table.FromRecords(rows)
	if err != nil {
		return nil, errors.NewIOError("read excel", path+"#"+sheet, err)
	}
	return t, nil
}

// SaveExcel writes the table to a new workbook with a single named sheet.
func SaveExcel(t *table.Table, path, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return errors.NewIOError("write excel", path, err)
		}
	}

	header := make([]interface{}, t.NCols())
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.NewIOError("write excel", path, err)
	}

	cols := t.Columns()
	for i := 0; i < t.NRows(); i++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			switch {
			case c.IsMissing(i):
				row[j] = nil
			case c.Kind == table.Numeric:
				row[j] = c.Nums[i]
			default:
				row[j] = c.Strs[i]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewIOError("write excel", path, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.NewIOError("write excel", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewIOError("write excel", path, err)
	}
	return nil
}
