package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/dataauto/dataio"
	"github.com/YuminosukeSato/dataauto/pkg/errors"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "console", c.LogFormat)
	assert.Equal(t, int64(42), c.RandomState)
	assert.InDelta(t, 0.2, c.TestSize, 1e-12)
	assert.Equal(t, 100, c.NEstimators)
	assert.Equal(t, 10*time.Second, c.ScheduleStopTimeout)
	assert.Equal(t, ":8501", c.DashboardAddr)
}

func TestLoadFileAndEnv(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
test_size: 0.3
n_estimators: 25
schedule_stop_timeout: 250ms
db_type: sqlite
db_name: data.db
`), 0o644))

	t.Setenv("DATAAUTO_N_ESTIMATORS", "10")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.InDelta(t, 0.3, c.TestSize, 1e-12)
	assert.Equal(t, 10, c.NEstimators, "env overrides file")
	assert.Equal(t, 250*time.Millisecond, c.ScheduleStopTimeout)

	sc, err := c.SQLConfig()
	require.NoError(t, err)
	assert.Equal(t, dataio.SQLite, sc.DBType)
	assert.Equal(t, "data.db", sc.DBName)
}

func TestLoadDefaultPath(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".dataauto")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output_dir: plots\n"), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "plots", c.OutputDir)
}

func TestLoadErrors(t *testing.T) {
	isolateHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, errors.ErrIOFailure))

	t.Setenv("DATAAUTO_TEST_SIZE", "1.5")
	_, err = Load("")
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestSaveRoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c, err := Load("")
	require.NoError(t, err)
	c.LogFormat = "json"
	c.DBPort = 3307
	c.ScheduleStopTimeout = 5 * time.Second
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSaveDefaultPath(t *testing.T) {
	home := isolateHome(t)
	c := &Config{LogLevel: "warn", TestSize: 0.2, NEstimators: 5, ScheduleStopTimeout: time.Second}
	require.NoError(t, Save(c, ""))
	_, err := os.Stat(filepath.Join(home, ".dataauto", "config.yaml"))
	assert.NoError(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("DATAAUTO_DB_USER", "placeholder")
	require.NoError(t, os.Unsetenv("DATAAUTO_DB_USER"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATAAUTO_DB_USER=alice\n"), 0o600))
	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "alice", os.Getenv("DATAAUTO_DB_USER"))

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}

func TestSQLConfigBadType(t *testing.T) {
	c := &Config{DBType: "oracle"}
	_, err := c.SQLConfig()
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}
