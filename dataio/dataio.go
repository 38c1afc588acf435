package dataio

import (
	"context"
	"os"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/table"
)

// LoadOptions selects how Load reads its source.
type LoadOptions struct {
	Format Format
	// Sheet is the Excel sheet; empty means the first sheet.
	Sheet string
	// SQL is used when Format is SQL; the path argument is ignored then.
	SQL SQLConfig
}

// SaveOptions selects how Save writes its destination.
type SaveOptions struct {
	Format Format
	Sheet  string
	SQL    SQLConfig
}

// ValidatePath reports an IOError unless path names an existing regular file.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewIOError("open", path, err)
	}
	if !info.Mode().IsRegular() {
		return errors.NewIOError("open", path, errors.New("not a regular file"))
	}
	return nil
}

// Load reads a table from path (or from the database for SQL).
func Load(ctx context.Context, path string, opts LoadOptions) (*table.Table, error) {
	logger := log.GetLoggerWithName("dataio")

	var (
		t   *table.Table
		err error
	)
	switch opts.Format {
	case CSV:
		t, err = LoadCSV(path)
	case JSON:
		t, err = LoadJSON(path)
	case Excel:
		t, err = LoadExcel(path, opts.Sheet)
	case SQL:
		t, err = LoadSQL(ctx, opts.SQL)
		path = opts.SQL.Describe()
	default:
		return nil, errors.NewUnsupportedOptionError(errors.OptionFormat, opts.Format.String(), []string{"csv", "json", "excel", "sql"})
	}
	if err != nil {
		return nil, err
	}

	logger.Info("data loaded",
		log.PathKey, path,
		log.FormatKey, opts.Format.String(),
		log.RowsKey, t.NRows(),
		log.ColumnsKey, t.NCols(),
	)
	return t, nil
}

// Save writes t to path (or to the database for SQL).
func Save(ctx context.Context, t *table.Table, path string, opts SaveOptions) error {
	var err error
	switch opts.Format {
	case CSV:
		err = SaveCSV(t, path)
	case JSON:
		err = SaveJSON(t, path)
	case Excel:
		err = SaveExcel(t, path, opts.Sheet)
	case SQL:
		err = SaveSQL(ctx, t, opts.SQL)
		path = opts.SQL.Describe()
	default:
		return errors.NewUnsupportedOptionError(errors.OptionFormat, opts.Format.String(), []string{"csv", "json", "excel", "sql"})
	}
	if err != nil {
		return err
	}

	log.GetLoggerWithName("dataio").Info("data saved",
		log.PathKey, path,
		log.FormatKey, opts.Format.String(),
		log.RowsKey, t.NRows(),
	)
	return nil
}
