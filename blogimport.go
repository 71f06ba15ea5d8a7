package blogimport

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-blogimport/internal/commands/importercmd"
	"github.com/goliatone/go-blogimport/internal/contentapi"
	"github.com/goliatone/go-blogimport/internal/importer"
	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/internal/logging/console"
	"github.com/goliatone/go-blogimport/internal/logging/gologger"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

// ImporterService exports the import service contract for consumers of the
// blogimport package.
type ImporterService = interfaces.ImporterService

// ContentBackend exports the backend contract so hosts can supply their own
// transport.
type ContentBackend = interfaces.ContentBackend

// LoggerProvider exports the logging provider contract.
type LoggerProvider = interfaces.LoggerProvider

// ImportOptions exports the per-run import options.
type ImportOptions = interfaces.ImportOptions

// ImportSummary exports the aggregate run outcome.
type ImportSummary = interfaces.ImportSummary

// FileOutcome exports the per-file outcome record.
type FileOutcome = interfaces.FileOutcome

// HandlerSet exports the wired command handlers.
type HandlerSet = importercmd.HandlerSet

// Module represents the top level importer runtime façade.
type Module struct {
	cfg      Config
	logs     interfaces.LoggerProvider
	backend  interfaces.ContentBackend
	importer interfaces.ImporterService
	handlers *importercmd.HandlerSet
}

// Option overrides a collaborator the module would otherwise build from its
// configuration.
type Option func(*Module)

// WithLoggerProvider supplies an external logger provider instead of the one
// described by cfg.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.logs = provider
		}
	}
}

// WithBackend supplies an external content backend instead of the HTTP client
// built from cfg.API. Tests use this to run against in-memory backends.
func WithBackend(backend interfaces.ContentBackend) Option {
	return func(m *Module) {
		if backend != nil {
			m.backend = backend
		}
	}
}

// New constructs an importer module using the provided configuration and
// optional overrides. The backend is only built when cfg.API.BaseURL is set;
// without it the module still serves simulate and validate-only runs.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.logs == nil {
		logs, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.logs = logs
	}

	if m.backend == nil && strings.TrimSpace(cfg.API.BaseURL) != "" {
		backend, err := newBackend(cfg.API, m.logs)
		if err != nil {
			return nil, err
		}
		m.backend = backend
	}

	m.importer = importer.New(importer.Config{
		Backend: m.backend,
		Logs:    m.logs,
	})

	handlers, err := importercmd.RegisterImporterCommands(nil, m.importer, m.logs)
	if err != nil {
		return nil, err
	}
	m.handlers = handlers

	return m, nil
}

// Config returns the validated configuration the module was built from.
func (m *Module) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.cfg
}

// Importer returns the configured import service.
func (m *Module) Importer() interfaces.ImporterService {
	if m == nil {
		return nil
	}
	return m.importer
}

// Backend returns the content backend, or nil when the module runs offline.
func (m *Module) Backend() interfaces.ContentBackend {
	if m == nil {
		return nil
	}
	return m.backend
}

// Handlers returns the wired command handlers.
func (m *Module) Handlers() *importercmd.HandlerSet {
	if m == nil {
		return nil
	}
	return m.handlers
}

// Logs returns the logger provider used by every module component.
func (m *Module) Logs() interfaces.LoggerProvider {
	if m == nil {
		return nil
	}
	return m.logs
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{}
		if strings.TrimSpace(cfg.Level) != "" {
			level, ok := console.ParseLevel(cfg.Level)
			if !ok {
				return nil, ErrLoggingLevelInvalid
			}
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, ErrLoggingProviderUnknown
	}
}

func newBackend(cfg APIConfig, logs interfaces.LoggerProvider) (interfaces.ContentBackend, error) {
	opts := []contentapi.Option{
		contentapi.WithLogger(logging.ContentAPILogger(logs)),
		contentapi.WithRetrySchedule(cfg.MaxRetries, cfg.RetryDelay),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, contentapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	return contentapi.NewClient(contentapi.Config{
		BaseURL: cfg.BaseURL,
		Dataset: cfg.Dataset,
		Token:   cfg.Token,
	}, opts...)
}
