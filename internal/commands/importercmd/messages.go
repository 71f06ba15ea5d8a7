package importercmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

const (
	importDirectoryMessageType = "blogimport.import_directory"
	importFileMessageType      = "blogimport.import_file"
	watchDirectoryMessageType  = "blogimport.watch_directory"
)

// ImportDirectoryCommand triggers an import run over every Markdown post
// under the provided Directory. The command mirrors ImporterService
// ImportDirectory semantics, with fields mapping directly onto
// interfaces.ImportOptions.
type ImportDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load Markdown posts from.
	Directory string `json:"directory"`
	// DocumentType overrides the document type recorded on upserted documents.
	DocumentType string `json:"document_type,omitempty"`
	// Write enables real network writes. When false the run simulates and logs intended effects only.
	Write bool `json:"write,omitempty"`
	// Drafts prefixes document ids so the CMS treats imported posts as unpublished.
	Drafts bool `json:"drafts,omitempty"`
	// ValidateOnly runs the full pipeline without writes and fails the run when any file fails.
	ValidateOnly bool `json:"validate_only,omitempty"`
	// Slug restricts the run to the single post producing this normalized slug.
	Slug string `json:"slug,omitempty"`
	// Concurrency bounds the per-post image upload fan-out. Zero selects the importer default.
	Concurrency int `json:"concurrency,omitempty"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blogimport.import_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.Slug, validation.By(normalizedSlugRule("blogimport.import_directory.slug_invalid"))),
		validation.Field(&cmd.Concurrency, validation.Min(0)),
	)
}

// ImportOptions maps the command fields onto the importer's option set.
func (cmd ImportDirectoryCommand) ImportOptions() interfaces.ImportOptions {
	return interfaces.ImportOptions{
		DocumentType: cmd.DocumentType,
		Write:        cmd.Write,
		Drafts:       cmd.Drafts,
		ValidateOnly: cmd.ValidateOnly,
		SlugFilter:   cmd.Slug,
		Concurrency:  cmd.Concurrency,
	}
}

// ImportFileCommand imports a single Markdown post identified by Path.
type ImportFileCommand struct {
	// Path selects the Markdown file (relative or absolute) to import.
	Path string `json:"path"`
	// DocumentType overrides the document type recorded on the upserted document.
	DocumentType string `json:"document_type,omitempty"`
	// Write enables real network writes. When false the run simulates and logs intended effects only.
	Write bool `json:"write,omitempty"`
	// Drafts prefixes the document id so the CMS treats the imported post as unpublished.
	Drafts bool `json:"drafts,omitempty"`
	// ValidateOnly runs the full pipeline without writes.
	ValidateOnly bool `json:"validate_only,omitempty"`
	// Concurrency bounds the image upload fan-out. Zero selects the importer default.
	Concurrency int `json:"concurrency,omitempty"`
}

// Type implements command.Message.
func (ImportFileCommand) Type() string { return importFileMessageType }

// Validate ensures path input is present before handlers execute.
func (cmd ImportFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blogimport.import_file.path_required", "path is required")
			}
			return nil
		})),
		validation.Field(&cmd.Concurrency, validation.Min(0)),
	)
}

// ImportOptions maps the command fields onto the importer's option set.
func (cmd ImportFileCommand) ImportOptions() interfaces.ImportOptions {
	return interfaces.ImportOptions{
		DocumentType: cmd.DocumentType,
		Write:        cmd.Write,
		Drafts:       cmd.Drafts,
		ValidateOnly: cmd.ValidateOnly,
		Concurrency:  cmd.Concurrency,
	}
}

// WatchDirectoryCommand keeps a posts directory under observation and
// re-imports Markdown files as they change. The loop runs until the
// execution context is cancelled.
type WatchDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to watch for Markdown changes.
	Directory string `json:"directory"`
	// Debounce delays imports after a filesystem event so editor write bursts
	// coalesce into one run. Zero selects the watcher default.
	Debounce time.Duration `json:"debounce,omitempty"`
	// DocumentType overrides the document type recorded on upserted documents.
	DocumentType string `json:"document_type,omitempty"`
	// Write enables real network writes. When false each change triggers a simulated run.
	Write bool `json:"write,omitempty"`
	// Drafts prefixes document ids so the CMS treats imported posts as unpublished.
	Drafts bool `json:"drafts,omitempty"`
	// Concurrency bounds the per-post image upload fan-out. Zero selects the importer default.
	Concurrency int `json:"concurrency,omitempty"`
}

// Type implements command.Message.
func (WatchDirectoryCommand) Type() string { return watchDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd WatchDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blogimport.watch_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.Concurrency, validation.Min(0)),
	)
}

// ImportOptions maps the command fields onto the importer's option set
// applied to every change-triggered run.
func (cmd WatchDirectoryCommand) ImportOptions() interfaces.ImportOptions {
	return interfaces.ImportOptions{
		DocumentType: cmd.DocumentType,
		Write:        cmd.Write,
		Drafts:       cmd.Drafts,
		Concurrency:  cmd.Concurrency,
	}
}

func normalizedSlugRule(code string) validation.RuleFunc {
	return func(value any) error {
		v := strings.TrimSpace(value.(string))
		if v == "" {
			return nil
		}
		if !slug.IsValid(v) {
			return validation.NewError(code, "slug filter must be in normalized form")
		}
		return nil
	}
}
