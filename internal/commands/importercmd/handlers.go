package importercmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blogimport/internal/commands"
	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/internal/watch"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

const (
	importDirectoryOperation = "importer.import_directory"
	importFileOperation      = "importer.import_file"
	watchDirectoryOperation  = "importer.watch_directory"
)

var (
	_ command.Commander[ImportDirectoryCommand] = (*ImportDirectoryHandler)(nil)
	_ command.Commander[ImportFileCommand]      = (*ImportFileHandler)(nil)
	_ command.Commander[WatchDirectoryCommand]  = (*WatchDirectoryHandler)(nil)
)

// ImportDirectoryHandler orchestrates directory imports via the shared
// command handler foundation.
type ImportDirectoryHandler struct {
	inner *commands.Handler[ImportDirectoryCommand]
}

// NewImportDirectoryHandler creates a handler bound to the supplied importer service.
func NewImportDirectoryHandler(service interfaces.ImporterService, logger interfaces.Logger, opts ...commands.HandlerOption[ImportDirectoryCommand]) *ImportDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportDirectoryCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary, err := service.ImportDirectory(ctx, msg.Directory, msg.ImportOptions())
		if err != nil {
			return err
		}
		if summary != nil {
			logging.WithFields(baseLogger, map[string]any{
				"succeeded_count": summary.Succeeded,
				"skipped_count":   summary.Skipped,
				"failed_count":    summary.Failed,
				"warning_count":   len(summary.Warnings),
				"write":           msg.Write,
			}).Info("importer.command.import_directory.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportDirectoryCommand]{
		commands.WithLogger[ImportDirectoryCommand](baseLogger),
		commands.WithOperation[ImportDirectoryCommand](importDirectoryOperation),
		commands.WithMessageFields(func(msg ImportDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.DocumentType != "" {
				fields["document_type"] = msg.DocumentType
			}
			if msg.Write {
				fields["write"] = true
			}
			if msg.Drafts {
				fields["drafts"] = true
			}
			if msg.ValidateOnly {
				fields["validate_only"] = true
			}
			if msg.Slug != "" {
				fields["slug"] = msg.Slug
			}
			if msg.Concurrency > 0 {
				fields["concurrency"] = msg.Concurrency
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportDirectoryCommand].
func (h *ImportDirectoryHandler) Execute(ctx context.Context, msg ImportDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportFileHandler imports a single Markdown post via the shared command
// handler foundation.
type ImportFileHandler struct {
	inner *commands.Handler[ImportFileCommand]
}

// NewImportFileHandler creates a handler bound to the supplied importer service.
func NewImportFileHandler(service interfaces.ImporterService, logger interfaces.Logger, opts ...commands.HandlerOption[ImportFileCommand]) *ImportFileHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportFileCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		outcome, err := service.ImportFile(ctx, msg.Path, msg.ImportOptions())
		if err != nil {
			return err
		}
		if outcome == nil {
			return nil
		}
		if outcome.Err != nil {
			return outcome.Err
		}
		fields := map[string]any{
			"status": string(outcome.Status),
		}
		if outcome.Slug != "" {
			fields["slug"] = outcome.Slug
		}
		if outcome.DocumentID != "" {
			fields["document_id"] = outcome.DocumentID
		}
		logging.WithFields(baseLogger, fields).Info("importer.command.import_file.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportFileCommand]{
		commands.WithLogger[ImportFileCommand](baseLogger),
		commands.WithOperation[ImportFileCommand](importFileOperation),
		commands.WithMessageFields(func(msg ImportFileCommand) map[string]any {
			fields := map[string]any{
				"path": msg.Path,
			}
			if msg.DocumentType != "" {
				fields["document_type"] = msg.DocumentType
			}
			if msg.Write {
				fields["write"] = true
			}
			if msg.Drafts {
				fields["drafts"] = true
			}
			if msg.ValidateOnly {
				fields["validate_only"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportFileCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportFileHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportFileCommand].
func (h *ImportFileHandler) Execute(ctx context.Context, msg ImportFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WatchDirectoryHandler runs the blocking watch loop via the shared command
// handler foundation. The default command timeout is disabled because the
// loop runs until the execution context is cancelled.
type WatchDirectoryHandler struct {
	inner *commands.Handler[WatchDirectoryCommand]
}

// NewWatchDirectoryHandler creates a handler bound to the supplied importer service.
func NewWatchDirectoryHandler(service interfaces.ImporterService, logger interfaces.Logger, opts ...commands.HandlerOption[WatchDirectoryCommand]) *WatchDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg WatchDirectoryCommand) error {
		watcher, err := watch.New(watch.Config{
			Importer: service,
			Dir:      msg.Directory,
			Debounce: msg.Debounce,
			Options:  msg.ImportOptions(),
			Logger:   baseLogger,
		})
		if err != nil {
			return err
		}
		return watcher.Run(ctx)
	}

	handlerOpts := []commands.HandlerOption[WatchDirectoryCommand]{
		commands.WithTimeout[WatchDirectoryCommand](0),
		commands.WithLogger[WatchDirectoryCommand](baseLogger),
		commands.WithOperation[WatchDirectoryCommand](watchDirectoryOperation),
		commands.WithMessageFields(func(msg WatchDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.Debounce > 0 {
				fields["debounce_ms"] = msg.Debounce.Milliseconds()
			}
			if msg.Write {
				fields["write"] = true
			}
			if msg.Drafts {
				fields["drafts"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[WatchDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &WatchDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[WatchDirectoryCommand].
func (h *WatchDirectoryHandler) Execute(ctx context.Context, msg WatchDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
