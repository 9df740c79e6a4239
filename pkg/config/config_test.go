package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/aurseek/pkg/aur"
	"github.com/glorpus-work/aurseek/pkg/errors"
	"github.com/glorpus-work/aurseek/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, aur.DefaultBaseURL, cfg.Settings.AURURL)
	assert.Equal(t, "package", cfg.Settings.DefaultMode)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.True(t, cfg.Settings.ColorOutput)
	assert.True(t, strings.HasSuffix(cfg.Settings.HistoryPath, fsutil.HistoryFileName))
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	// Create a temporary config file
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  aur_url: http://127.0.0.1:8080
  http_timeout: 5s
  default_mode: user
  log_level: debug
  output_format: json`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	// Test loading the config
	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify loaded values
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Settings.AURURL)
	assert.Equal(t, 5*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, aur.ModeUser, cfg.QueryMode())
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "json", cfg.Settings.OutputFormat)

	// Keys absent from the file keep their defaults
	assert.True(t, cfg.Settings.ColorOutput)
	assert.NotEmpty(t, cfg.GetHistoryPath())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)

	_, err = LoadConfigFromReader(strings.NewReader("settings: [not, a, map"))
	assert.ErrorIs(t, err, errors.ErrConfigParse)

	_, err = LoadConfigFromReader(strings.NewReader("settings:\n  output_format: xml\n"))
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
}

func TestSaveConfig(t *testing.T) {
	// Create a test config
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.DefaultMode = "makedepends"
	cfg.Settings.ColorOutput = false
	cfg.Settings.HTTPTimeout = 12 * time.Second

	// Save to a temporary file in a directory that does not exist yet
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "test-config.yaml")

	err := cfg.SaveConfig(configPath)
	require.NoError(t, err)

	// Verify the file exists and has content
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.NoFileExists(t, configPath+".tmp")
	assert.DirExists(t, filepath.Join(tempDir, "nested"))

	// Load it back and verify
	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, loadedCfg)

	assert.Equal(t, "debug", loadedCfg.Settings.LogLevel)
	assert.Equal(t, aur.ModeMakeDepends, loadedCfg.QueryMode())
	assert.False(t, loadedCfg.Settings.ColorOutput)
	assert.Equal(t, 12*time.Second, loadedCfg.Settings.HTTPTimeout)
}

func TestSaveConfigDirectoryError(t *testing.T) {
	// A regular file where the config directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), fsutil.FileModeDefault))

	err := DefaultConfig().SaveConfig(filepath.Join(blocker, "config.yaml"))
	assert.ErrorIs(t, err, errors.ErrConfigDirectory)
}

func TestValidateConfig(t *testing.T) {
	valid := DefaultConfig().Settings

	tests := []struct {
		name    string
		modify  func(s *Settings)
		wantErr error
	}{
		{
			name:   "valid config",
			modify: func(*Settings) {},
		},
		{
			name:    "empty aur url",
			modify:  func(s *Settings) { s.AURURL = "" },
			wantErr: errors.ErrAURURLEmpty,
		},
		{
			name:    "aur url without scheme",
			modify:  func(s *Settings) { s.AURURL = "aur.archlinux.org" },
			wantErr: errors.ErrAURURLInvalid,
		},
		{
			name:    "negative timeout",
			modify:  func(s *Settings) { s.HTTPTimeout = -time.Second },
			wantErr: errors.ErrHTTPTimeoutNegative,
		},
		{
			name:    "invalid output format",
			modify:  func(s *Settings) { s.OutputFormat = "xml" },
			wantErr: errors.ErrConfigValidation,
		},
		{
			name:    "invalid log level",
			modify:  func(s *Settings) { s.LogLevel = "loud" },
			wantErr: errors.ErrConfigValidation,
		},
		{
			name:    "invalid default mode",
			modify:  func(s *Settings) { s.DefaultMode = "votes" },
			wantErr: errors.ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := valid
			tt.modify(&settings)
			err := (&Config{Settings: settings}).Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSetAndGetValue(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetValue("aur_url", "https://aur.example.org"))
	require.NoError(t, cfg.SetValue("http_timeout", "10s"))
	require.NoError(t, cfg.SetValue("color_output", "false"))
	require.NoError(t, cfg.SetValue("default_mode", "user"))

	value, err := cfg.GetValue("aur_url")
	require.NoError(t, err)
	assert.Equal(t, "https://aur.example.org", value)

	value, err = cfg.GetValue("http_timeout")
	require.NoError(t, err)
	assert.Equal(t, "10s", value)

	value, err = cfg.GetValue("color_output")
	require.NoError(t, err)
	assert.Equal(t, "false", value)

	_, err = cfg.GetValue("repositories")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
}

func TestSetValueRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()

	assert.ErrorIs(t, cfg.SetValue("mirror", "x"), errors.ErrUnknownConfigKey)
	assert.Error(t, cfg.SetValue("http_timeout", "soon"))
	assert.Error(t, cfg.SetValue("color_output", "maybe"))
	assert.Error(t, cfg.SetValue("output_format", "xml"))

	// Failed updates leave the config untouched
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestToMap(t *testing.T) {
	m := DefaultConfig().ToMap()

	for _, key := range []string{"aur_url", "http_timeout", "default_mode", "history_path", "output_format", "color_output", "log_level"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "30s", m["http_timeout"])
	assert.Equal(t, "true", m["color_output"])
}
