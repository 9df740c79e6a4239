package cli

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/aurseek/internal/logger"
	"github.com/glorpus-work/aurseek/pkg/aur"
	"github.com/glorpus-work/aurseek/pkg/config"
	"github.com/glorpus-work/aurseek/pkg/history"
	"github.com/glorpus-work/aurseek/pkg/session"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig loads the configuration file and applies the global flags on top.
// It also initializes the logger from the resulting settings.
func loadConfig() (*config.Config, error) {
	path := getConfigPath()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI flags if provided
	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = strings.ToLower(*OutputFormat)
	}
	if NoColor != nil && *NoColor {
		cfg.Settings.ColorOutput = false
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.FormatText)
	logger.Debugf("loaded configuration from %s", path)
	return cfg, nil
}

// openSession builds the lookup client and history store described by cfg and
// wires them into a new session. The caller owns the session and must close it.
func openSession(cfg *config.Config) (*session.Session, *history.SQLiteStore, error) {
	client, err := aur.NewHTTPClient(cfg.Settings.AURURL, cfg.Settings.HTTPTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AUR client: %w", err)
	}
	client.SetUserAgent(UserAgent())

	store, err := history.Open(cfg.GetHistoryPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}

	sess := session.New(client, store,
		session.WithDefaultMode(cfg.QueryMode()),
		session.WithLogger(logger.With(logger.Fields{"aur_url": cfg.Settings.AURURL})),
	)
	logger.Debug("session opened", logger.Fields{
		"session": sess.ID(),
		"history": store.Path(),
	})
	return sess, store, nil
}
