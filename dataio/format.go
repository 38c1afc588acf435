// Package dataio はテーブルをファイルやデータベースとの間で読み書きします。
//
// 対応形式は CSV、行区切り JSON、Excel、SQL（PostgreSQL / MySQL / SQLite）です。
// すべての失敗は errors.IOError（ErrIOFailure）として返されます。
package dataio

import (
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// Format はファイル形式です。
type Format int

const (
	CSV Format = iota
	JSON
	Excel
	SQL
)

var formatNames = map[Format]string{
	CSV:   "csv",
	JSON:  "json",
	Excel: "excel",
	SQL:   "sql",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseFormat は --format の値を Format に変換します。
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "json", "jsonl", "ndjson":
		return JSON, nil
	case "excel", "xlsx":
		return Excel, nil
	case "sql":
		return SQL, nil
	}
	return CSV, errors.NewUnsupportedOptionError(errors.OptionFormat, s, []string{"csv", "json", "excel", "sql"})
}

// FormatFromPath guesses the format from the file extension; unknown extensions read as CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return JSON
	case ".xlsx", ".xlsm", ".xls":
		return Excel
	default:
		return CSV
	}
}

// DBType は SQL バックエンドの種類です。
type DBType int

const (
	Postgres DBType = iota
	MySQL
	SQLite
)

func (d DBType) String() string {
	switch d {
	case Postgres:
		return "postgresql"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// driverName は database/sql に登録されたドライバ名です。
func (d DBType) driverName() string {
	switch d {
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// ParseDBType は --db-type の値を DBType に変換します。
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgresql", "postgres":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Postgres, errors.NewUnsupportedOptionError(errors.OptionDBType, s, []string{"postgresql", "mysql", "sqlite"})
}
