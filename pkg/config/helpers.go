package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/aurseek/pkg/errors"
)

// SetValue sets a configuration value by key
// Supported keys:
//   - aur_url: string - Base URL of the AUR instance
//   - http_timeout: duration - Timeout of a single request (e.g. 10s)
//   - default_mode: string - package, makedepends or user
//   - history_path: string - Path to the history database
//   - output_format: string - text, json or yaml
//   - color_output: bool - Whether to use colored output
//   - log_level: string - Logging level (debug, info, warn, error)
//
// The resulting configuration is validated; on error it is left unchanged.
func (c *Config) SetValue(key, value string) error {
	updated := *c
	s := &updated.Settings

	switch key {
	case "aur_url":
		s.AURURL = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		s.HTTPTimeout = d
	case "default_mode":
		s.DefaultMode = value
	case "history_path":
		s.HistoryPath = value
	case "output_format":
		s.OutputFormat = value
	case "color_output":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		s.ColorOutput = boolVal
	case "log_level":
		s.LogLevel = value
	default:
		return errors.Wrapf(errors.ErrUnknownConfigKey, "%s", key)
	}

	if err := updated.Validate(); err != nil {
		return err
	}
	*c = updated
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	value, ok := c.ToMap()[key]
	if !ok {
		return "", errors.Wrapf(errors.ErrUnknownConfigKey, "%s", key)
	}
	return value, nil
}

// ToMap returns the settings keyed by their YAML names.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "history_path,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := settingsValue.Field(i)
		var strValue string

		switch v := fieldValue.Interface().(type) {
		case time.Duration:
			strValue = v.String()
		case bool:
			strValue = strconv.FormatBool(v)
		case string:
			strValue = v
		default:
			strValue = fmt.Sprintf("%v", v)
		}

		result[yamlKey] = strValue
	}

	return result
}
