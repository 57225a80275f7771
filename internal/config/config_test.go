package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

// load runs a bare app with the global flags and returns what Load built.
func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	for _, key := range []string{"ES_PATH_CONF", "RUNAS_CONFIG_DIR", "RUNAS_CONFIG", "RUNAS_URL", "RUNAS_LOG_FILE", "RUNAS_VERBOSE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	var (
		cfg     *Config
		loadErr error
	)
	app := &cli.App{
		Name:  "runas",
		Flags: Flags(),
		Action: func(c *cli.Context) error {
			cfg, loadErr = Load(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"runas"}, args...)))
	return cfg, loadErr
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, DefaultConfigDir, c.ConfigDir)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 5, c.HealthRetries)
	assert.Equal(t, time.Second, c.RetryInterval)
	assert.Equal(t, 14, c.PasswordLength)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSources_IsDefaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"config_dir":     "/json/dir",
		"url":            "https://json:9200",
		"health_retries": 2,
		"retry_interval": "250ms",
		"verbose":        true,
	})

	cfg, err := load(t, "-c", path, "--url", "https://flag:9201", "--health-retries", "7")
	require.NoError(t, err)

	want := defaults()
	want.ConfigDir = "/json/dir"
	want.URL = "https://flag:9201"
	want.HealthRetries = 7
	want.RetryInterval = 250 * time.Millisecond
	want.Verbose = true
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_JSONZeroValueOverrides(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"health_retries": 0, "request_timeout": 5000000000})

	cfg, err := load(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.HealthRetries)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoad_MissingJSONFile_IsConfigError(t *testing.T) {
	_, err := load(t, "-c", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, common.ExitConfig, common.ExitCodeOf(err))
}

func TestLoad_BadJSON_IsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"retry_interval": "soon"}`), 0o600))

	_, err := load(t, "-c", path)
	require.Error(t, err)
	assert.Equal(t, common.ExitConfig, common.ExitCodeOf(err))
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad url", args: []string{"--url", "not a url"}},
		{name: "negative retries", args: []string{"--health-retries", "-1"}},
		{name: "short password", args: []string{"--password-length", "4"}},
		{name: "zero timeout", args: []string{"--request-timeout", "0s"}},
		{name: "missing ca file", args: []string{"--ca-cert", "/nonexistent/ca.pem"}},
		{name: "empty config dir", args: []string{"--config-dir", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, common.ExitUsage, common.ExitCodeOf(err))
		})
	}
}

func TestPaths(t *testing.T) {
	c := defaults()
	c.ConfigDir = "/cfg"

	assert.Equal(t, "/cfg/elasticsearch.yml", c.SettingsPath())
	assert.Equal(t, "/cfg/runas.db", c.JournalFile())

	c.SettingsFile = "other.yml"
	c.JournalPath = "/var/lib/runas/journal.db"
	assert.Equal(t, "/cfg/other.yml", c.SettingsPath())
	assert.Equal(t, "/var/lib/runas/journal.db", c.JournalFile())
}
