package dataio

import (
	"encoding/csv"
	"os"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

// LoadCSV reads a CSV file with a header row. Column types are detected from the values.
func LoadCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError("read csv", path, err)
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, errors.NewIOError("read csv", path, err)
	}
	return t, nil
}

// SaveCSV writes the table with a header row and no index column.
// Missing cells are written as empty fields.
func SaveCSV(t *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("write csv", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Names()); err != nil {
		return errors.NewIOError("write csv", path, err)
	}
	if err := w.WriteAll(t.Records()); err != nil {
		return errors.NewIOError("write csv", path, err)
	}
	return nil
}
