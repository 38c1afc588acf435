package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/dataauto/dataio"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/table"
)

const previewRows = 5

// sqlFlags は SQL 接続用のフラグ
type sqlFlags struct {
	dbType, host, dbname, user, password, query, table string
	port                                               int
}

func (f *sqlFlags) register(fs *pflag.FlagSet, withQuery bool) {
	fs.StringVar(&f.dbType, "db-type", "", "database type: postgresql, mysql, sqlite")
	fs.StringVar(&f.host, "host", "", "database host")
	fs.IntVar(&f.port, "port", 0, "database port")
	fs.StringVar(&f.dbname, "dbname", "", "database name (file path for sqlite)")
	fs.StringVar(&f.user, "user", "", "database user")
	fs.StringVar(&f.password, "password", "", "database password")
	if withQuery {
		fs.StringVar(&f.query, "query", "", "SQL query to execute")
	} else {
		fs.StringVar(&f.table, "table", dataio.DefaultTable, "destination table")
	}
}

// sqlConfig は設定ファイルの値をフラグで上書きした接続設定を返す
func (a *app) sqlConfig(fs *pflag.FlagSet, f *sqlFlags) (dataio.SQLConfig, error) {
	base := *a.cfg
	if fs.Changed("db-type") {
		base.DBType = f.dbType
	}
	c, err := base.SQLConfig()
	if err != nil {
		return c, err
	}
	if fs.Changed("host") {
		c.Host = f.host
	}
	if fs.Changed("port") {
		c.Port = f.port
	}
	if fs.Changed("dbname") {
		c.DBName = f.dbname
	}
	if fs.Changed("user") {
		c.User = f.user
	}
	if fs.Changed("password") {
		c.Password = f.password
	}
	c.Query = f.query
	c.Table = f.table
	return c, nil
}

// formatFor は --format が空ならファイルの拡張子から形式を決める
func formatFor(flag, path string) (dataio.Format, error) {
	if flag == "" {
		return dataio.FormatFromPath(path), nil
	}
	return dataio.ParseFormat(flag)
}

// readTable はファイルを拡張子に応じた形式で読む
func (a *app) readTable(ctx context.Context, path string) (*table.Table, error) {
	if err := dataio.ValidatePath(path); err != nil {
		return nil, err
	}
	return dataio.Load(ctx, path, dataio.LoadOptions{
		Format: dataio.FormatFromPath(path),
		Sheet:  a.cfg.ExcelSheet,
	})
}

// writeTable はファイルを拡張子に応じた形式で書く
func (a *app) writeTable(ctx context.Context, t *table.Table, path string) error {
	return dataio.Save(ctx, t, path, dataio.SaveOptions{
		Format: dataio.FormatFromPath(path),
		Sheet:  a.cfg.ExcelSheet,
	})
}

func (a *app) preview(t *table.Table) {
	head := t.Head(previewRows)
	tw := tablewriter.NewWriter(a.stdout)
	tw.SetHeader(head.Names())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(head.Records())
	tw.Render()
}

func (a *app) loadCmd() *cobra.Command {
	var (
		format string
		sheet  string
		sql    sqlFlags
	)
	cmd := &cobra.Command{
		Use:   "load [path]",
		Short: "Load data from a file or SQL database and preview it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stageLoad, func() error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				f, err := formatFor(format, path)
				if err != nil {
					return err
				}
				opts := dataio.LoadOptions{Format: f, Sheet: a.cfg.ExcelSheet}
				if cmd.Flags().Changed("sheet") {
					opts.Sheet = sheet
				}
				if f == dataio.SQL {
					if opts.SQL, err = a.sqlConfig(cmd.Flags(), &sql); err != nil {
						return err
					}
					if opts.SQL.Query == "" {
						return errors.NewValueError("load", "--query is required for the sql format")
					}
					path = opts.SQL.Describe()
				} else {
					if path == "" {
						return errors.NewValueError("load", "a file path is required")
					}
					if err := dataio.ValidatePath(path); err != nil {
						return err
					}
				}

				t, err := dataio.Load(cmd.Context(), path, opts)
				if err != nil {
					return err
				}
				a.success("Data loaded from %s. Shape: (%d, %d)", path, t.NRows(), t.NCols())
				a.preview(t)
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&format, "format", "", "input format: csv, json, excel, sql (default: from extension)")
	fs.StringVar(&sheet, "sheet", "", "sheet name for Excel files (default: first sheet)")
	sql.register(fs, true)
	return cmd
}

func (a *app) saveCmd() *cobra.Command {
	var (
		format      string
		inputFormat string
		sheet       string
		sql         sqlFlags
	)
	cmd := &cobra.Command{
		Use:   "save <input> <output>",
		Short: "Convert data to another file format or write it to a SQL table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return stage(stageSave, func() error {
				in, out := args[0], args[1]
				inFmt, err := formatFor(inputFormat, in)
				if err != nil {
					return err
				}
				if inFmt == dataio.SQL {
					return errors.NewUnsupportedOptionError("input format", inputFormat, []string{"csv", "json", "excel"})
				}
				if err := dataio.ValidatePath(in); err != nil {
					return err
				}
				t, err := dataio.Load(cmd.Context(), in, dataio.LoadOptions{Format: inFmt, Sheet: a.cfg.ExcelSheet})
				if err != nil {
					return err
				}

				outFmt, err := formatFor(format, out)
				if err != nil {
					return err
				}
				opts := dataio.SaveOptions{Format: outFmt, Sheet: a.cfg.ExcelSheet}
				if cmd.Flags().Changed("sheet") {
					opts.Sheet = sheet
				}
				if outFmt == dataio.SQL {
					if opts.SQL, err = a.sqlConfig(cmd.Flags(), &sql); err != nil {
						return err
					}
				}
				if err := dataio.Save(cmd.Context(), t, out, opts); err != nil {
					return err
				}
				a.success("Data saved successfully to %s in %s format.", out, strings.ToUpper(outFmt.String()))
				return nil
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&format, "format", "", "output format: csv, json, excel, sql (default: from extension)")
	fs.StringVar(&inputFormat, "input-format", "csv", "input format: csv, json, excel")
	fs.StringVar(&sheet, "sheet", "", "sheet name for Excel output")
	sql.register(fs, false)
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "DataAuto, version %s\n", Version)
		},
	}
}
