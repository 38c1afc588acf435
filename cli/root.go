// Package cli は dataauto のコマンドラインを cobra で組み立てます。
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/dataauto/config"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
	"github.com/YuminosukeSato/dataauto/pkg/log"
	"github.com/YuminosukeSato/dataauto/scheduler"
)

// Version は version コマンドが表示するバージョン
var Version = "0.1.0"

// 各ステージのエラーメッセージの接頭辞
const (
	stageLoad      = "Error loading data"
	stageSave      = "Error saving data"
	stageClean     = "Error cleaning data"
	stageOutlier   = "Error removing outliers"
	stageScale     = "Error scaling data"
	stagePlot      = "Error generating plots"
	stageTrain     = "Error training model"
	stageReport    = "Error generating report"
	stageSchedule  = "Error scheduling command"
	stageDashboard = "Error running dashboard"
	stageConfig    = "Error loading configuration"
)

type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer

	// runner は schedule が発火したときに使う。nil なら ExecRunner
	runner scheduler.Runner
}

// NewRootCommand は全サブコマンドを持つルートコマンドを作ります。
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	return newApp(stdout, stderr).root()
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:               "dataauto",
		Short:             "DataAuto: Automate your data analysis tasks with ease.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ~/.dataauto/config.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		a.loadCmd(),
		a.saveCmd(),
		a.cleanCmd(),
		a.removeOutlierCmd(),
		a.scaleCmd(),
		a.plotCmd(),
		a.trainCmd(),
		a.reportCmd(),
		a.scheduleCmd(),
		a.dashboardCmd(),
		a.versionCmd(),
	)
	return root
}

// setup は設定を読み込み、フラグで上書きしてからロガーを初期化する
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return errors.Wrap(err, stageConfig)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := log.Setup(cfg.LogLevel, cfg.LogFormat, a.stderr); err != nil {
		return errors.Wrap(err, stageConfig)
	}
	a.cfg = cfg
	return nil
}

// stage は fn を panic から保護し、失敗したら接頭辞を付けて返す
func stage(prefix string, fn func() error) error {
	if err := errors.SafeExecute(prefix, fn); err != nil {
		return errors.Wrap(err, prefix)
	}
	return nil
}

func (a *app) println(format string, args ...any) {
	fmt.Fprintf(a.stdout, format+"\n", args...)
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintln(a.stdout, color.GreenString(format, args...))
}

// Run は args を実行して終了コードを返します。失敗時は stderr に一行だけ書きます。
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, newApp(stdout, stderr), args)
}

func run(ctx context.Context, a *app, args []string) int {
	root := a.root()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		msg := strings.ReplaceAll(err.Error(), "\n", " ")
		fmt.Fprintln(a.stderr, color.RedString("Error: %s", msg))
		return 1
	}
	return 0
}

// Execute は os.Args で CLI を実行し、SIGINT / SIGTERM で ctx を取り消します。
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
