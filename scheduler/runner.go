package scheduler

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// Runner は発火したトリガーのコマンドを実行します。
type Runner interface {
	Run(ctx context.Context, cmd Command, path string, args []string) error
}

// RunnerFunc は関数を Runner として使うためのアダプタ
type RunnerFunc func(ctx context.Context, cmd Command, path string, args []string) error

func (f RunnerFunc) Run(ctx context.Context, cmd Command, path string, args []string) error {
	return f(ctx, cmd, path, args)
}

// ExecRunner は dataauto の実行ファイルを子プロセスとして起動します。
// 引数は "<command> <path> [args...]" です。
type ExecRunner struct {
	// Executable が空なら os.Executable() を使う
	Executable string
	// Env が nil なら親プロセスの環境を引き継ぐ
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) Run(ctx context.Context, cmd Command, path string, args []string) error {
	exe := r.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return errors.Wrap(err, "locate executable")
		}
	}

	argv := append([]string{cmd.String(), path}, args...)
	c := exec.CommandContext(ctx, exe, argv...)
	c.Env = r.Env
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	if err := c.Run(); err != nil {
		return errors.Wrapf(err, "run %s %s", cmd, path)
	}
	return nil
}

// exitCode は子プロセスの終了コードを返す。起動に失敗した場合は -1
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
