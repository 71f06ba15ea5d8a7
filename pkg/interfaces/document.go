package interfaces

import (
	"context"

	"github.com/goliatone/go-blogimport/richtext"
)

// FrontMatter captures the parsed metadata block of a Markdown post.
// PublishedAt stays a raw string until validation confirms it parses; the
// assembler normalises it to RFC 3339 on the way out.
type FrontMatter struct {
	Title        string
	Slug         string
	Author       string
	AuthorID     string
	MainImage    string
	MainImageAlt string
	PublishedAt  string
	Excerpt      string
	Categories   []string
	Custom       map[string]any
	Raw          map[string]any
}

// Document is the final importable unit pushed to the content backend.
// Identity is deterministic: re-importing an unchanged file reproduces the
// same ID and body so upserts never create duplicates.
type Document struct {
	ID          string              `json:"_id"`
	Type        string              `json:"_type"`
	Title       string              `json:"title"`
	Slug        richtext.Slug       `json:"slug"`
	Author      *richtext.Reference `json:"author,omitempty"`
	MainImage   *richtext.Block     `json:"mainImage,omitempty"`
	Body        []richtext.Block    `json:"body"`
	PublishedAt string              `json:"publishedAt,omitempty"`
	Excerpt     string              `json:"excerpt,omitempty"`
	Categories  []string            `json:"categories,omitempty"`
}

// ImportOptions bundle per-run behaviour switches.
type ImportOptions struct {
	// DocumentType overrides the document type recorded on created records.
	DocumentType string
	// Write enables real network writes. When false the run simulates and
	// logs intended effects only.
	Write bool
	// Drafts prefixes document ids with "drafts." so the CMS treats them as
	// unpublished.
	Drafts bool
	// ValidateOnly runs the full pipeline without any write, reporting every
	// file's outcome.
	ValidateOnly bool
	// SlugFilter restricts the run to the single file producing this slug.
	SlugFilter string
	// Concurrency bounds the per-file image upload fan-out.
	Concurrency int
}

// FileStatus labels the terminal state of one source file.
type FileStatus string

const (
	// FileSucceeded means the document was upserted, simulated, or validated.
	FileSucceeded FileStatus = "succeeded"
	// FileSkipped means the file was filtered out before any work happened.
	FileSkipped FileStatus = "skipped"
	// FileFailed means an error stopped this file; the run continued.
	FileFailed FileStatus = "failed"
)

// FileOutcome records what happened to a single source file.
type FileOutcome struct {
	Path       string
	Slug       string
	DocumentID string
	Status     FileStatus
	Err        error
	Warnings   []string
}

// ImportSummary aggregates a whole run.
type ImportSummary struct {
	Succeeded int
	Skipped   int
	Failed    int
	Outcomes  []FileOutcome
	Warnings  []string
}

// ImporterService drives Markdown imports. Implementations process files
// sequentially and keep slug-collision detection deterministic.
type ImporterService interface {
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportSummary, error)
	ImportFile(ctx context.Context, path string, opts ImportOptions) (*FileOutcome, error)
}
