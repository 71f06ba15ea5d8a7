package importercmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blogimport/internal/commands"
	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the importer command handlers produced by RegisterImporterCommands.
type HandlerSet struct {
	ImportDirectory *ImportDirectoryHandler
	ImportFile      *ImportFileHandler
	Watch           *WatchDirectoryHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	importDirectoryOpts []commands.HandlerOption[ImportDirectoryCommand]
	importFileOpts      []commands.HandlerOption[ImportFileCommand]
	watchOpts           []commands.HandlerOption[WatchDirectoryCommand]
}

// WithImportDirectoryOptions forwards options to the ImportDirectoryHandler constructor.
func WithImportDirectoryOptions(opts ...commands.HandlerOption[ImportDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.importDirectoryOpts = append(cfg.importDirectoryOpts, opts...)
	}
}

// WithImportFileOptions forwards options to the ImportFileHandler constructor.
func WithImportFileOptions(opts ...commands.HandlerOption[ImportFileCommand]) Option {
	return func(cfg *options) {
		cfg.importFileOpts = append(cfg.importFileOpts, opts...)
	}
}

// WithWatchOptions forwards options to the WatchDirectoryHandler constructor.
func WithWatchOptions(opts ...commands.HandlerOption[WatchDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.watchOpts = append(cfg.watchOpts, opts...)
	}
}

// RegisterImporterCommands builds importer command handlers and registers
// them with the provided registry. A HandlerSet containing the constructed
// handlers is returned so callers can wire additional integrations
// (dispatcher, cron) as needed.
func RegisterImporterCommands(reg CommandRegistry, service interfaces.ImporterService, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("importer command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "importer")
	watchLogger := logging.WatchLogger(provider)

	importHandler := NewImportDirectoryHandler(service, logger, cfg.importDirectoryOpts...)
	fileHandler := NewImportFileHandler(service, logger, cfg.importFileOpts...)
	watchHandler := NewWatchDirectoryHandler(service, watchLogger, cfg.watchOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(importHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(fileHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(watchHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		ImportDirectory: importHandler,
		ImportFile:      fileHandler,
		Watch:           watchHandler,
	}, nil
}

// RegisterImportCron wires the provided import handler into a cron registrar
// using the supplied command configuration and message payload. The handler
// is executed with a background context.
func RegisterImportCron(reg CronRegistrar, handler *ImportDirectoryHandler, cfg command.HandlerConfig, msg ImportDirectoryCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
