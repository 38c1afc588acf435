package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// Command はスケジュールで再実行できる CLI のサブコマンドです。
type Command int

const (
	Load Command = iota
	Save
	Clean
	RemoveOutlier
	Scale
	Plot
	Train
	Report
)

var commandNames = []string{"load", "save", "clean", "remove-outlier", "scale", "plot", "train", "report"}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// ParseCommand はサブコマンド名を Command に変換します。
func ParseCommand(s string) (Command, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for i, name := range commandNames {
		if norm == name {
			return Command(i), nil
		}
	}
	return Load, errors.NewUnsupportedOptionError(errors.OptionCommand, s, commandNames)
}

// ParseTime は 24 時間表記の "HH:MM" を時と分に分解します。
func ParseTime(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' || !isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return 0, 0, errors.NewMalformedScheduleError(s, "not in HH:MM form")
	}
	hour, err = strconv.Atoi(s[:2])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.NewMalformedScheduleError(s, fmt.Sprintf("invalid hour %q", s[:2]))
	}
	minute, err = strconv.Atoi(s[3:])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.NewMalformedScheduleError(s, fmt.Sprintf("invalid minute %q", s[3:]))
	}
	return hour, minute, nil
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}
