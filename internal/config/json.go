package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/runas/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	ConfigDir      *string         `json:"config_dir"`
	SettingsFile   *string         `json:"settings_file"`
	URL            *string         `json:"url"`
	CACert         *string         `json:"ca_cert"`
	Insecure       *bool           `json:"insecure"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	HealthRetries  *int            `json:"health_retries"`
	RetryInterval  *timex.Duration `json:"retry_interval"`
	PasswordLength *int            `json:"password_length"`
	JournalPath    *string         `json:"journal_path"`
	LogFile        *string         `json:"log_file"`
	Verbose        *bool           `json:"verbose"`
}

// parseJSON overlays cfg with the keys present in the file at path.
func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	setIf(&cfg.ConfigDir, jc.ConfigDir)
	setIf(&cfg.SettingsFile, jc.SettingsFile)
	setIf(&cfg.URL, jc.URL)
	setIf(&cfg.CACert, jc.CACert)
	setIf(&cfg.Insecure, jc.Insecure)
	setIf(&cfg.HealthRetries, jc.HealthRetries)
	setIf(&cfg.PasswordLength, jc.PasswordLength)
	setIf(&cfg.JournalPath, jc.JournalPath)
	setIf(&cfg.LogFile, jc.LogFile)
	setIf(&cfg.Verbose, jc.Verbose)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryInterval != nil {
		cfg.RetryInterval = jc.RetryInterval.Duration
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
