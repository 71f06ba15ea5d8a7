package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-slug"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blogimport/internal/assets"
	"github.com/goliatone/go-blogimport/internal/authors"
	"github.com/goliatone/go-blogimport/internal/identity"
	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/internal/markdown"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
	"github.com/goliatone/go-blogimport/richtext"
)

const (
	defaultDocumentType = "post"
	defaultConcurrency  = 4
)

// Config encapsulates the collaborators an import run needs.
type Config struct {
	Backend interfaces.ContentBackend
	Logs    interfaces.LoggerProvider
}

// Importer drives Markdown-to-document imports. Run state (asset cache,
// author cache, slug collision map) is created fresh per call so the
// importer can run any number of times within one process.
type Importer struct {
	backend    interfaces.ContentBackend
	logger     interfaces.Logger
	assetsLog  interfaces.Logger
	authorsLog interfaces.Logger
	converter  *markdown.Converter
}

var _ interfaces.ImporterService = (*Importer)(nil)

// New builds an Importer. A nil backend is fine for simulate and
// validate-only runs; write runs fail with ErrBackendRequired.
func New(cfg Config) *Importer {
	return &Importer{
		backend:    cfg.Backend,
		logger:     logging.ImporterLogger(cfg.Logs),
		assetsLog:  logging.AssetsLogger(cfg.Logs),
		authorsLog: logging.AuthorsLogger(cfg.Logs),
		converter: markdown.NewConverter(
			markdown.WithConverterLogger(logging.MarkdownLogger(cfg.Logs)),
		),
	}
}

// ImportDirectory discovers Markdown files under dir and imports them
// sequentially. A failing file is recorded and the run moves on; only
// discovery errors, context cancellation, and the validate-only failure
// signal abort the run itself.
func (i *Importer) ImportDirectory(ctx context.Context, dir string, opts interfaces.ImportOptions) (*interfaces.ImportSummary, error) {
	opts = withDefaults(opts)
	if err := i.guard(opts); err != nil {
		return nil, err
	}

	loader := markdown.NewLoader(markdown.LoaderConfig{Dir: dir})
	files, err := loader.Discover(ctx)
	if err != nil {
		return nil, err
	}

	run := i.newRun(opts)
	summary := &interfaces.ImportSummary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		record(summary, i.processFile(ctx, run, file, opts))
	}

	i.logger.Info("import finished",
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	if opts.ValidateOnly && summary.Failed > 0 {
		return summary, ErrValidationRunFailed
	}
	return summary, nil
}

// ImportFile runs the pipeline for a single source file.
func (i *Importer) ImportFile(ctx context.Context, path string, opts interfaces.ImportOptions) (*interfaces.FileOutcome, error) {
	opts = withDefaults(opts)
	if err := i.guard(opts); err != nil {
		return nil, err
	}

	loader := markdown.NewLoader(markdown.LoaderConfig{Dir: filepath.Dir(path)})
	file, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	outcome := i.processFile(ctx, i.newRun(opts), file, opts)
	return &outcome, nil
}

func (i *Importer) guard(opts interfaces.ImportOptions) error {
	if i.backend == nil && opts.Write && !opts.ValidateOnly {
		return ErrBackendRequired
	}
	return nil
}

// runState carries the caches shared across one run's files. The uploader
// owns the asset cache and in-flight coalescing, the resolver owns the
// author cache, and slugSeen feeds collision warnings.
type runState struct {
	uploader *assets.Uploader
	resolver *authors.Resolver
	slugSeen map[string]string
}

func (i *Importer) newRun(opts interfaces.ImportOptions) *runState {
	simulate := !opts.Write || opts.ValidateOnly
	return &runState{
		uploader: assets.NewUploader(i.backend,
			assets.WithLogger(i.assetsLog),
			assets.WithSimulate(simulate),
		),
		resolver: authors.NewResolver(i.backend,
			authors.WithLogger(i.authorsLog),
			authors.WithSimulate(simulate),
		),
		slugSeen: map[string]string{},
	}
}

func (i *Importer) processFile(ctx context.Context, run *runState, file markdown.SourceFile, opts interfaces.ImportOptions) interfaces.FileOutcome {
	outcome := interfaces.FileOutcome{Path: file.Path, Status: interfaces.FileFailed}
	flog := logging.WithImportContext(i.logger, file.Rel, "", "")
	flog.Info("file import start")

	fm, body, err := markdown.ParseFrontMatter(file.Data)
	if err != nil {
		return failOutcome(flog, outcome, err)
	}
	if err := markdown.ValidateFrontMatter(fm); err != nil {
		return failOutcome(flog, outcome, err)
	}

	slugValue, err := resolveSlug(fm)
	if err != nil {
		return failOutcome(flog, outcome, err)
	}
	outcome.Slug = slugValue

	if opts.SlugFilter != "" && slugValue != opts.SlugFilter {
		outcome.Status = interfaces.FileSkipped
		flog.Info("skipped by slug filter", "slug", slugValue)
		return outcome
	}

	if prev, seen := run.slugSeen[slugValue]; seen && prev != file.Path {
		warning := fmt.Sprintf("slug %q from %s overwrites %s", slugValue, file.Path, prev)
		outcome.Warnings = append(outcome.Warnings, warning)
		flog.Warn("slug collision", "slug", slugValue, "previous", prev)
	}
	run.slugSeen[slugValue] = file.Path

	docID := identity.DocumentID(opts.DocumentType, slugValue, opts.Drafts)
	outcome.DocumentID = docID
	keys := richtext.NewKeys(docID)

	baseDir := filepath.Dir(file.Path)
	coverPath := resolvePath(baseDir, fm.MainImage)
	if _, statErr := os.Stat(coverPath); statErr != nil {
		return failOutcome(flog, outcome, fmt.Errorf("%w: %s", ErrMainImageNotFound, coverPath))
	}

	cleanBody, inline := markdown.ExtractImages(string(body))
	blocks, err := i.converter.Convert([]byte(cleanBody), keys)
	if err != nil {
		return failOutcome(flog, outcome, err)
	}

	cover, images, err := i.resolveImages(ctx, run, coverPath, baseDir, inline, opts.Concurrency)
	if err != nil {
		return failOutcome(flog, outcome, err)
	}

	bodyBlocks := richtext.Splice(blocks, images, keys)

	authorID, err := run.resolver.Ensure(ctx, fm.AuthorID, fm.Author)
	if err != nil {
		return failOutcome(flog, outcome, err)
	}

	doc := assembleDocument(documentParts{
		fm:       fm,
		id:       docID,
		docType:  opts.DocumentType,
		slug:     slugValue,
		authorID: authorID,
		cover:    cover,
		body:     bodyBlocks,
	})

	switch {
	case opts.ValidateOnly:
		flog.Info("validated " + docID)
	case !opts.Write:
		flog.Info("[dry] would upsert " + docID)
	default:
		if err := i.backend.UpsertDocument(ctx, doc); err != nil {
			return failOutcome(flog, outcome, err)
		}
		flog.Info("upserted " + docID)
	}

	outcome.Status = interfaces.FileSucceeded
	return outcome
}

// resolveImages uploads the cover and every inline image through the
// run-scoped uploader. Uploads run concurrently; the returned map keys
// image blocks by placeholder token, so block order stays tied to source
// position regardless of upload completion order.
func (i *Importer) resolveImages(ctx context.Context, run *runState, coverPath, baseDir string, inline []markdown.InlineImage, concurrency int) (interfaces.Asset, map[string]richtext.Block, error) {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	var cover interfaces.Asset
	group.Go(func() error {
		asset, err := run.uploader.Resolve(gctx, coverPath)
		if err != nil {
			return fmt.Errorf("main image %s: %w", coverPath, err)
		}
		cover = asset
		return nil
	})

	resolved := make([]interfaces.Asset, len(inline))
	for idx, image := range inline {
		group.Go(func() error {
			asset, err := run.uploader.Resolve(gctx, resolvePath(baseDir, image.Path))
			if err != nil {
				return fmt.Errorf("inline image %s: %w", image.Path, err)
			}
			resolved[idx] = asset
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return interfaces.Asset{}, nil, err
	}

	images := make(map[string]richtext.Block, len(inline))
	for idx, image := range inline {
		images[image.Token] = richtext.NewImageBlock(resolved[idx].ID, image.Alt, image.Caption)
	}
	return cover, images, nil
}

func failOutcome(flog interfaces.Logger, outcome interfaces.FileOutcome, err error) interfaces.FileOutcome {
	outcome.Err = wrapFileError(err)
	outcome.Status = interfaces.FileFailed
	flog.Error("file import failed", "error", outcome.Err)
	return outcome
}

func record(summary *interfaces.ImportSummary, outcome interfaces.FileOutcome) {
	summary.Outcomes = append(summary.Outcomes, outcome)
	summary.Warnings = append(summary.Warnings, outcome.Warnings...)
	switch outcome.Status {
	case interfaces.FileSucceeded:
		summary.Succeeded++
	case interfaces.FileSkipped:
		summary.Skipped++
	default:
		summary.Failed++
	}
}

func withDefaults(opts interfaces.ImportOptions) interfaces.ImportOptions {
	if strings.TrimSpace(opts.DocumentType) == "" {
		opts.DocumentType = defaultDocumentType
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return opts
}

// resolveSlug prefers an explicit frontmatter slug, falling back to the
// slugified title. Explicit values already matching the slug rules pass
// through unchanged so re-imports keep their published URLs.
func resolveSlug(fm interfaces.FrontMatter) (string, error) {
	if explicit := strings.TrimSpace(fm.Slug); explicit != "" {
		if slug.IsValid(explicit) {
			return explicit, nil
		}
		return normalizeSlug(explicit)
	}
	return normalizeSlug(fm.Title)
}

func normalizeSlug(value string) (string, error) {
	normalized, err := slug.Normalize(value)
	if err != nil || strings.TrimSpace(normalized) == "" {
		return "", fmt.Errorf("%w: %q", ErrSlugEmpty, value)
	}
	return normalized, nil
}

// resolvePath anchors a possibly relative image reference at the source
// file's directory and returns it absolute.
func resolvePath(baseDir, ref string) string {
	path := strings.TrimSpace(ref)
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
