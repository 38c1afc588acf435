package dataio

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

// DefaultTable は SaveSQL が置き換えるテーブル名の既定値です。
const DefaultTable = "data_table"

// SQLConfig describes a database connection. For SQLite, DBName is the file path.
type SQLConfig struct {
	DBType   DBType
	Host     string
	Port     int
	DBName   string
	User     string
	Password string

	// Query is used by LoadSQL.
	Query string
	// Table is the destination of SaveSQL; empty means DefaultTable.
	Table string
}

// DSN builds the driver-specific data source name.
func (c SQLConfig) DSN() string {
	switch c.DBType {
	case SQLite:
		return c.DBName
	case MySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.portOrDefault()))
		mc.DBName = c.DBName
		mc.ParseTime = true
		return mc.FormatDSN()
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.portOrDefault())),
			Path:   "/" + c.DBName,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		return u.String()
	}
}

// Describe returns a connection description without credentials, used in errors.
func (c SQLConfig) Describe() string {
	if c.DBType == SQLite {
		return "sqlite:" + c.DBName
	}
	return fmt.Sprintf("%s://%s:%d/%s", c.DBType, c.Host, c.portOrDefault(), c.DBName)
}

func (c SQLConfig) portOrDefault() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.DBType == MySQL {
		return 3306
	}
	return 5432
}

// Open opens and pings the database.
func Open(ctx context.Context, c SQLConfig) (*sql.DB, error) {
	db, err := sql.Open(c.DBType.driverName(), c.DSN())
	if err != nil {
		return nil, errors.NewIOError("connect", c.Describe(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewIOError("connect", c.Describe(), err)
	}
	return db, nil
}

// LoadSQL runs c.Query and returns the result set as a table.
func LoadSQL(ctx context.Context, c SQLConfig) (*table.Table, error) {
	if strings.TrimSpace(c.Query) == "" {
		return nil, errors.NewValidationError("query", "a SQL query is required", c.Query)
	}
	db, err := Open(ctx, c)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	t, err := QueryTable(ctx, db, c.Query)
	if err != nil {
		return nil, errors.NewIOError("query", c.Describe(), err)
	}
	return t, nil
}

// QueryTable runs query on db. Column types are detected from the returned values;
// NULL is missing.
func QueryTable(ctx context.Context, db *sql.DB, query string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := [][]string{names}
	dest := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make([]string, len(names))
		for i, v := range dest {
			rec[i] = sqlValueString(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table.FromRecords(records)
}

func sqlValueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// SaveSQL replaces c.Table (default "data_table") with the contents of t.
func SaveSQL(ctx context.Context, t *table.Table, c SQLConfig) error {
	db, err := Open(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	name := c.Table
	if name == "" {
		name = DefaultTable
	}
	if err := WriteTable(ctx, db, c.DBType, name, t); err != nil {
		return errors.NewIOError("write table "+name, c.Describe(), err)
	}
	return nil
}

// WriteTable drops name if it exists, recreates it from t's column kinds and
// inserts every row inside one transaction.
func WriteTable(ctx context.Context, db *sql.DB, dbType DBType, name string, t *table.Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	quoted := quoteIdent(dbType, name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(dbType, quoted, t)); err != nil {
		return err
	}

	insert := insertSQL(dbType, quoted, t)
	cols := t.Columns()
	args := make([]any, len(cols))
	for i := 0; i < t.NRows(); i++ {
		for j, c := range cols {
			args[j] = sqlArg(c, i)
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return errors.Wrapf(err, "insert row %d", i)
		}
	}
	return tx.Commit()
}

func createTableSQL(dbType DBType, quoted string, t *table.Table) string {
	defs := make([]string, 0, t.NCols())
	for _, c := range t.Columns() {
		typ := "TEXT"
		if c.Kind == table.Numeric {
			typ = "DOUBLE PRECISION"
			if dbType == SQLite {
				typ = "REAL"
			}
		}
		defs = append(defs, quoteIdent(dbType, c.Name)+" "+typ)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoted, strings.Join(defs, ", "))
}

func insertSQL(dbType DBType, quoted string, t *table.Table) string {
	names := make([]string, t.NCols())
	marks := make([]string, t.NCols())
	for j, n := range t.Names() {
		names[j] = quoteIdent(dbType, n)
		if dbType == Postgres {
			marks[j] = "$" + strconv.Itoa(j+1)
		} else {
			marks[j] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoted, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func sqlArg(c *table.Column, i int) any {
	if c.IsMissing(i) {
		return nil
	}
	if c.Kind == table.Numeric {
		if math.IsInf(c.Nums[i], 0) {
			return nil
		}
		return c.Nums[i]
	}
	return c.Strs[i]
}

func quoteIdent(dbType DBType, name string) string {
	if dbType == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
