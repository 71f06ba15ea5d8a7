package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

const (
	rootModule       = "blogimport"
	importerModule   = "blogimport.importer"
	markdownModule   = "blogimport.markdown"
	assetsModule     = "blogimport.assets"
	authorsModule    = "blogimport.authors"
	contentAPIModule = "blogimport.contentapi"
	watchModule      = "blogimport.watch"
)

const (
	fieldImportPath   = "path"
	fieldImportSlug   = "slug"
	fieldImportAction = "action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ImporterLogger returns the logger namespace reserved for the import driver.
func ImporterLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, importerModule)
}

// MarkdownLogger returns the logger namespace reserved for parsing and
// conversion.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// AssetsLogger returns the logger namespace reserved for image uploads.
func AssetsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, assetsModule)
}

// AuthorsLogger returns the logger namespace reserved for author resolution.
func AuthorsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, authorsModule)
}

// ContentAPILogger returns the logger namespace reserved for the backend client.
func ContentAPILogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentAPIModule)
}

// WatchLogger returns the logger namespace reserved for filesystem watching.
func WatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watchModule)
}

// WithImportContext enriches the provided logger with common import fields
// such as source path, slug, and the action being performed. Empty values
// are ignored.
func WithImportContext(logger interfaces.Logger, path, slug, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldImportPath] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldImportSlug] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldImportAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
