package config

import (
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/urfave/cli/v2"
)

const (
	DefaultConfigDir      = "/etc/elasticsearch"
	DefaultSettingsFile   = "elasticsearch.yml"
	DefaultJournalFile    = "runas.db"
	DefaultRequestTimeout = 30 * time.Second
	DefaultRetryInterval  = time.Second
)

// Config holds runtime settings.
type Config struct {
	ConfigDir      string        `validate:"required"`
	SettingsFile   string
	URL            string        `validate:"omitempty,url"`
	CACert         string        `validate:"omitempty,file"`
	Insecure       bool
	RequestTimeout time.Duration `validate:"gt=0"`
	HealthRetries  int           `validate:"gte=0,lte=1000"`
	RetryInterval  time.Duration `validate:"gte=0"`
	PasswordLength int           `validate:"gte=8,lte=256"`
	JournalPath    string
	LogFile        string
	Verbose        bool
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ConfigDir = DefaultConfigDir
	c.RequestTimeout = DefaultRequestTimeout
	c.HealthRetries = common.DefaultHealthRetries
	c.RetryInterval = DefaultRetryInterval
	c.PasswordLength = common.DefaultPasswordLength
}

// SettingsPath is the node settings file, relative paths resolved against
// the config dir.
func (c *Config) SettingsPath() string {
	return c.resolve(c.SettingsFile, DefaultSettingsFile)
}

// JournalFile is the run journal database path.
func (c *Config) JournalFile() string {
	return c.resolve(c.JournalPath, DefaultJournalFile)
}

func (c *Config) resolve(path, def string) string {
	if path == "" {
		path = def
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ConfigDir, path)
}

// Load builds a Config from defaults, then the JSON file named by the config
// flag, then the flags set on c. Later sources take precedence.
func Load(c *cli.Context) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := c.String(FlagConfig); path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, common.ConfigError("Failed to load configuration file", err)
		}
	}
	applyFlags(cfg, c)

	if err := cfg.Validate(); err != nil {
		return nil, common.NewError(common.ExitUsage, "Invalid configuration", err)
	}
	return cfg, nil
}
