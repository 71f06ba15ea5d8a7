package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrAPIBaseURLRequired indicates a write run was requested without a content API endpoint.
var ErrAPIBaseURLRequired = errors.New("blogimport config: api base url is required")

// ErrAPIDatasetRequired indicates an endpoint was configured without naming a dataset.
var ErrAPIDatasetRequired = errors.New("blogimport config: api dataset is required")
var ErrAPIBaseURLInvalid = errors.New("blogimport config: api base url is invalid")
var ErrAPIDatasetInvalid = errors.New("blogimport config: api dataset is invalid")
var ErrAPIRetriesInvalid = errors.New("blogimport config: api retry attempts must be zero or positive")
var ErrAPIRetryDelayInvalid = errors.New("blogimport config: api retry delay must be zero or positive")
var ErrAPITimeoutInvalid = errors.New("blogimport config: api timeout must be zero or positive")
var ErrImporterConcurrencyInvalid = errors.New("blogimport config: importer concurrency must be zero or positive")
var ErrWatchDebounceInvalid = errors.New("blogimport config: watch debounce must be zero or positive")
var ErrLoggingProviderUnknown = errors.New("blogimport config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blogimport config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blogimport config: logging format is invalid")

// Config aggregates the runtime settings for an importer process. Fields
// intentionally use simple types so values can come from flags, environment
// variables, or host applications without adapters.
type Config struct {
	API      APIConfig
	Importer ImporterConfig
	Watch    WatchConfig
	Logging  LoggingConfig
}

// APIConfig captures the connection settings for the hosted content API.
type APIConfig struct {
	BaseURL    string
	Dataset    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// ImporterConfig captures per-run defaults applied when a command leaves the
// matching option unset.
type ImporterConfig struct {
	DocumentType string
	Concurrency  int
}

// WatchConfig captures behaviour for the change-triggered import loop.
type WatchConfig struct {
	Debounce time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a local import run.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelay: time.Second,
		},
		Importer: ImporterConfig{
			DocumentType: "post",
			Concurrency:  4,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks. An empty API section is
// allowed so dry runs and validate-only runs work offline; write runs check
// the section separately via RequireAPI.
func (cfg Config) Validate() error {
	base := strings.TrimSpace(cfg.API.BaseURL)
	if base != "" {
		if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s", ErrAPIBaseURLInvalid, base)
		}
		if strings.TrimSpace(cfg.API.Dataset) == "" {
			return ErrAPIDatasetRequired
		}
	}
	if dataset := strings.TrimSpace(cfg.API.Dataset); dataset != "" && strings.ContainsAny(dataset, " \t/") {
		return fmt.Errorf("%w: %s", ErrAPIDatasetInvalid, dataset)
	}
	if cfg.API.MaxRetries < 0 {
		return ErrAPIRetriesInvalid
	}
	if cfg.API.RetryDelay < 0 {
		return ErrAPIRetryDelayInvalid
	}
	if cfg.API.Timeout < 0 {
		return ErrAPITimeoutInvalid
	}
	if cfg.Importer.Concurrency < 0 {
		return ErrImporterConcurrencyInvalid
	}
	if cfg.Watch.Debounce < 0 {
		return ErrWatchDebounceInvalid
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// RequireAPI confirms the connection settings a write run depends on are
// present.
func (cfg Config) RequireAPI() error {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return ErrAPIBaseURLRequired
	}
	if strings.TrimSpace(cfg.API.Dataset) == "" {
		return ErrAPIDatasetRequired
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
