// Package config はファイル・環境変数・既定値から dataauto の設定を読み込みます。
//
// 優先順位は CLI フラグ > 環境変数（DATAAUTO_*）> 設定ファイル > 既定値です。
// フラグの適用は cli パッケージが行います。
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/dataauto/dataio"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

// EnvPrefix は環境変数の接頭辞
const EnvPrefix = "DATAAUTO"

// Config は dataauto 全体の設定です。
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// 学習
	RandomState int64   `mapstructure:"random_state" yaml:"random_state"`
	TestSize    float64 `mapstructure:"test_size" yaml:"test_size"`
	NEstimators int     `mapstructure:"n_estimators" yaml:"n_estimators"`

	ScheduleStopTimeout time.Duration `mapstructure:"schedule_stop_timeout" yaml:"schedule_stop_timeout"`
	DashboardAddr       string        `mapstructure:"dashboard_addr" yaml:"dashboard_addr"`

	// データベース
	DBType     string `mapstructure:"db_type" yaml:"db_type"`
	DBHost     string `mapstructure:"db_host" yaml:"db_host"`
	DBPort     int    `mapstructure:"db_port" yaml:"db_port"`
	DBName     string `mapstructure:"db_name" yaml:"db_name"`
	DBUser     string `mapstructure:"db_user" yaml:"db_user"`
	DBPassword string `mapstructure:"db_password" yaml:"db_password"`

	ExcelSheet string `mapstructure:"excel_sheet" yaml:"excel_sheet"`
}

var defaults = map[string]any{
	"log_level":             "warn",
	"log_format":            "console",
	"output_dir":            ".",
	"random_state":          42,
	"test_size":             0.2,
	"n_estimators":          100,
	"schedule_stop_timeout": "10s",
	"dashboard_addr":        ":8501",
	"db_type":               "postgresql",
	"db_host":               "localhost",
	"db_port":               0,
	"db_name":               "",
	"db_user":               "",
	"db_password":           "",
	"excel_sheet":           "",
}

// DefaultPath は ~/.dataauto/config.yaml を返します。
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home dir")
	}
	return filepath.Join(home, ".dataauto", "config.yaml"), nil
}

// LoadEnvFile は .env 形式のファイルを環境変数に読み込みます。
// ファイルがなければ何もしません。既存の環境変数は上書きしません。
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.NewIOError("read env file", path, err)
	}
	return nil
}

// Load は設定を読み込みます。cfgFile が空なら DefaultPath を探し、
// なければ既定値と環境変数だけを使います。明示されたファイルが読めない場合はエラーです。
func Load(cfgFile string) (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewIOError("read config", cfgFile, err)
		}
	} else if path, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.NewIOError("read config", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate は値の範囲を確認します。
func (c *Config) Validate() error {
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValidationError("test_size", "must be in (0, 1)", c.TestSize)
	}
	if c.NEstimators <= 0 {
		return errors.NewValidationError("n_estimators", "must be positive", c.NEstimators)
	}
	if c.ScheduleStopTimeout <= 0 {
		return errors.NewValidationError("schedule_stop_timeout", "must be positive", c.ScheduleStopTimeout)
	}
	return nil
}

// SQLConfig はデータベース設定を dataio の接続設定に変換します。
func (c *Config) SQLConfig() (dataio.SQLConfig, error) {
	dbType, err := dataio.ParseDBType(c.DBType)
	if err != nil {
		return dataio.SQLConfig{}, err
	}
	return dataio.SQLConfig{
		DBType:   dbType,
		Host:     c.DBHost,
		Port:     c.DBPort,
		DBName:   c.DBName,
		User:     c.DBUser,
		Password: c.DBPassword,
	}, nil
}

// Save は設定を YAML で path に書きます。path が空なら DefaultPath です。
func Save(c *Config, path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError("write config", path, err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return errors.NewIOError("write config", path, err)
	}
	return nil
}
