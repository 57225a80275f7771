package config

import (
	"github.com/urfave/cli/v2"
)

const (
	FlagConfig         = "config"
	FlagConfigDir      = "config-dir"
	FlagSettings       = "settings"
	FlagURL            = "url"
	FlagCACert         = "ca-cert"
	FlagInsecure       = "insecure"
	FlagRequestTimeout = "request-timeout"
	FlagHealthRetries  = "health-retries"
	FlagRetryInterval  = "retry-interval"
	FlagPasswordLength = "password-length"
	FlagJournal        = "journal"
	FlagLogFile        = "log-file"
	FlagVerbose        = "verbose"
)

// Flags returns the global flags read by Load. Defaults are not set on the
// flags so that unset flags never override the JSON file.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:    FlagConfig,
			Aliases: []string{"c"},
			Usage:   "JSON configuration file",
			EnvVars: []string{"RUNAS_CONFIG"},
		},
		&cli.PathFlag{
			Name:    FlagConfigDir,
			Aliases: []string{"d"},
			Usage:   "node configuration directory holding the file realm files (default: " + DefaultConfigDir + ")",
			EnvVars: []string{"RUNAS_CONFIG_DIR", "ES_PATH_CONF"},
		},
		&cli.PathFlag{
			Name:  FlagSettings,
			Usage: "node settings file, relative to the config dir (default: " + DefaultSettingsFile + ")",
		},
		&cli.StringFlag{
			Name:    FlagURL,
			Usage:   "base URL of the cluster (default: derived from node settings)",
			EnvVars: []string{"RUNAS_URL"},
		},
		&cli.PathFlag{
			Name:  FlagCACert,
			Usage: "PEM bundle of CAs trusted for the cluster certificate",
		},
		&cli.BoolFlag{
			Name:    FlagInsecure,
			Aliases: []string{"k"},
			Usage:   "skip TLS certificate verification",
		},
		&cli.DurationFlag{
			Name:  FlagRequestTimeout,
			Usage: "timeout of a single cluster request",
		},
		&cli.IntFlag{
			Name:  FlagHealthRetries,
			Usage: "how many times a rejected health check is retried while the realm reloads",
		},
		&cli.DurationFlag{
			Name:  FlagRetryInterval,
			Usage: "wait between health check retries",
		},
		&cli.IntFlag{
			Name:  FlagPasswordLength,
			Usage: "length of the temporary password",
		},
		&cli.PathFlag{
			Name:  FlagJournal,
			Usage: "run journal database, relative to the config dir (default: " + DefaultJournalFile + ")",
		},
		&cli.PathFlag{
			Name:    FlagLogFile,
			Usage:   "also write JSON logs to this file, rotated",
			EnvVars: []string{"RUNAS_LOG_FILE"},
		},
		&cli.BoolFlag{
			Name:    FlagVerbose,
			Aliases: []string{"v"},
			Usage:   "verbose output (includes debug)",
			EnvVars: []string{"RUNAS_VERBOSE"},
		},
	}
}

// applyFlags copies the flags that were set on c into cfg.
func applyFlags(cfg *Config, c *cli.Context) {
	if c.IsSet(FlagConfigDir) {
		cfg.ConfigDir = c.Path(FlagConfigDir)
	}
	if c.IsSet(FlagSettings) {
		cfg.SettingsFile = c.Path(FlagSettings)
	}
	if c.IsSet(FlagURL) {
		cfg.URL = c.String(FlagURL)
	}
	if c.IsSet(FlagCACert) {
		cfg.CACert = c.Path(FlagCACert)
	}
	if c.IsSet(FlagInsecure) {
		cfg.Insecure = c.Bool(FlagInsecure)
	}
	if c.IsSet(FlagRequestTimeout) {
		cfg.RequestTimeout = c.Duration(FlagRequestTimeout)
	}
	if c.IsSet(FlagHealthRetries) {
		cfg.HealthRetries = c.Int(FlagHealthRetries)
	}
	if c.IsSet(FlagRetryInterval) {
		cfg.RetryInterval = c.Duration(FlagRetryInterval)
	}
	if c.IsSet(FlagPasswordLength) {
		cfg.PasswordLength = c.Int(FlagPasswordLength)
	}
	if c.IsSet(FlagJournal) {
		cfg.JournalPath = c.Path(FlagJournal)
	}
	if c.IsSet(FlagLogFile) {
		cfg.LogFile = c.Path(FlagLogFile)
	}
	if c.IsSet(FlagVerbose) {
		cfg.Verbose = c.Bool(FlagVerbose)
	}
}
