package importer

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blogimport/internal/assets"
	"github.com/goliatone/go-blogimport/internal/authors"
	"github.com/goliatone/go-blogimport/internal/contentapi"
	"github.com/goliatone/go-blogimport/internal/markdown"
)

const (
	codeValidation       = "VALIDATION_ERROR"
	codeFileNotFound     = "FILE_NOT_FOUND"
	codeReadError        = "READ_ERROR"
	codeInvalidImageType = "INVALID_IMAGE_TYPE"
	codeAuthorNotFound   = "AUTHOR_NOT_FOUND"
	codeTransientNetwork = "TRANSIENT_NETWORK"
	codeFatalWrite       = "FATAL_WRITE"
	codeImportFailed     = "IMPORT_FAILED"
)

var (
	// ErrBackendRequired reports a write run constructed without a content
	// backend.
	ErrBackendRequired = errors.New("importer: content backend is required")

	// ErrMainImageNotFound reports a cover image path that does not exist
	// on disk.
	ErrMainImageNotFound = errors.New("importer: main image not found")

	// ErrSlugEmpty reports a file whose slug normalised to nothing.
	ErrSlugEmpty = errors.New("importer: slug is empty")

	// ErrValidationRunFailed marks a validate-only run that saw at least
	// one failing file.
	ErrValidationRunFailed = errors.New("importer: validation found failing files")
)

// wrapFileError classifies a per-file failure into the command error
// taxonomy. Errors already carrying a category pass through untouched.
func wrapFileError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}

	switch {
	case errors.Is(err, markdown.ErrFrontMatterInvalid), errors.Is(err, ErrSlugEmpty):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "post metadata invalid").
			WithTextCode(codeValidation)
	case errors.Is(err, assets.ErrUnsupportedType):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "unsupported image type").
			WithTextCode(codeInvalidImageType)
	case errors.Is(err, ErrMainImageNotFound), errors.Is(err, assets.ErrFileNotFound):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "image file missing").
			WithTextCode(codeFileNotFound)
	case errors.Is(err, assets.ErrReadFailed):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "image file unreadable").
			WithTextCode(codeReadError)
	case errors.Is(err, authors.ErrAuthorNotFound):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "author resolution failed").
			WithTextCode(codeAuthorNotFound)
	case errors.Is(err, contentapi.ErrTransient):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "backend unavailable").
			WithTextCode(codeTransientNetwork)
	case errors.Is(err, contentapi.ErrFatalWrite):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "backend rejected write").
			WithTextCode(codeFatalWrite)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "import failed").
			WithTextCode(codeImportFailed)
	}
}
