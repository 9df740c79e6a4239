package errors

import "fmt"

// Error taxonomy for lookups and history persistence.
var (
	// ErrTransport covers network failures: timeouts, DNS, refused connections
	// and non-2xx responses without a parseable body.
	ErrTransport = fmt.Errorf("transport error")
	// ErrApplication is returned when the AUR answered but reported an error.
	ErrApplication = fmt.Errorf("aur error")
	// ErrPersistence is returned when the local history store fails.
	ErrPersistence = fmt.Errorf("persistence error")
)

// Config errors.
var (
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to replace config file")
	ErrConfigFileChmod   = fmt.Errorf("failed to set config file permissions")

	ErrHTTPTimeoutNegative = fmt.Errorf("http_timeout cannot be negative")
	ErrAURURLEmpty         = fmt.Errorf("aur_url cannot be empty")
	ErrAURURLInvalid       = fmt.Errorf("aur_url is not a valid http(s) URL")
	ErrUnknownConfigKey    = fmt.Errorf("unknown configuration key")
)

// ErrInvalidOutputFormatWithDetails reports an unsupported output format.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: output format %q (must be text, json or yaml)", ErrConfigValidation, format)
}

// ErrInvalidLogLevelWithDetails reports an unsupported log level.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: log level %q (must be debug, info, warn or error)", ErrConfigValidation, level)
}

// ErrInvalidQueryModeWithDetails reports an unknown search mode.
func ErrInvalidQueryModeWithDetails(mode string) error {
	return fmt.Errorf("invalid search mode %q (must be package, makedepends or user)", mode)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WithKind marks err as belonging to kind so that errors.Is matches both.
func WithKind(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
