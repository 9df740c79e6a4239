// Package config provides configuration management for aurseek. It handles
// loading, validating and saving the YAML config file and supplies defaults
// for every setting so that a missing file is not an error.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/aurseek/pkg/aur"
	"github.com/glorpus-work/aurseek/pkg/errors"
	"github.com/glorpus-work/aurseek/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings" json:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Remote settings
	AURURL      string        `yaml:"aur_url" json:"aur_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout" json:"http_timeout"`

	// Search settings
	DefaultMode string `yaml:"default_mode" json:"default_mode"` // package, makedepends, user

	// State settings
	HistoryPath string `yaml:"history_path,omitempty" json:"history_path,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format" json:"output_format"` // text, json, yaml
	ColorOutput  bool   `yaml:"color_output" json:"color_output"`
	LogLevel     string `yaml:"log_level" json:"log_level"` // debug, info, warn, error
}

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	historyPath, err := fsutil.GetHistoryPath()
	if err != nil {
		// Fallback to temp directory if we can't determine the data dir
		historyPath = filepath.Join(os.TempDir(), fsutil.AppName, fsutil.HistoryFileName)
	}

	return &Config{
		Settings: Settings{
			AURURL:       aur.DefaultBaseURL,
			HTTPTimeout:  DefaultHTTPTimeout,
			DefaultMode:  aur.ModePackage.String(),
			HistoryPath:  historyPath,
			OutputFormat: "text",
			ColorOutput:  true,
			LogLevel:     "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	// Start from defaults so that keys absent from the file keep their default,
	// including booleans such as color_output.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return config, nil
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureDir(filepath.Dir(absPath)); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileChmod, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	return validateSettings(c.Settings)
}

func validateSettings(s Settings) error {
	if s.AURURL == "" {
		return errors.ErrAURURLEmpty
	}
	parsed, err := url.Parse(s.AURURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errors.ErrAURURLInvalid
	}
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if _, err := aur.ParseQueryMode(s.DefaultMode); err != nil {
		return errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	validFormats := map[string]bool{"text": true, "json": true, "yaml": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	path, err := fsutil.GetConfigPath()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return path, nil
}

// QueryMode returns the configured default search mode.
func (c *Config) QueryMode() aur.QueryMode {
	mode, err := aur.ParseQueryMode(c.Settings.DefaultMode)
	if err != nil {
		return aur.ModePackage
	}
	return mode
}

// GetHistoryPath returns the path to the history database.
func (c *Config) GetHistoryPath() string {
	return c.Settings.HistoryPath
}

// applyDefaults fills in empty values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.AURURL == "" {
		c.Settings.AURURL = defaults.Settings.AURURL
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.DefaultMode == "" {
		c.Settings.DefaultMode = defaults.Settings.DefaultMode
	}
	if c.Settings.HistoryPath == "" {
		c.Settings.HistoryPath = defaults.Settings.HistoryPath
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
