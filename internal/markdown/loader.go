package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSourceFiles aborts a run that resolves zero Markdown inputs. A run
// with nothing to import points at a misconfigured content directory.
var ErrNoSourceFiles = errors.New("markdown: no source files found")

// LoaderConfig configures how Markdown files are discovered within a base
// directory.
type LoaderConfig struct {
	// Dir is the root directory where posts live.
	Dir string
	// Pattern limits discovered files to those matching the supplied glob
	// (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// SourceFile is one discovered Markdown document.
type SourceFile struct {
	// Path locates the file on disk for error messages and for resolving
	// sibling image paths.
	Path string
	// Rel is the slash-separated path relative to the scan root.
	Rel string
	// Data holds the raw file contents.
	Data []byte
}

// Loader discovers Markdown sources on the local filesystem.
type Loader struct {
	fsys      fs.FS
	dir       string
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader rooted at cfg.Dir.
func NewLoader(cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	dir := filepath.Clean(cfg.Dir)
	return &Loader{
		fsys:      os.DirFS(dir),
		dir:       dir,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// Discover walks the configured directory and returns matching files in
// deterministic path order. Zero matches is an error.
func (l *Loader) Discover(ctx context.Context) ([]SourceFile, error) {
	var files []SourceFile

	walkErr := fs.WalkDir(l.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !l.recursive && path != "." {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		match, matchErr := filepath.Match(l.pattern, filepath.Base(path))
		if matchErr != nil {
			return fmt.Errorf("markdown loader pattern %q: %w", l.pattern, matchErr)
		}
		if !match {
			return nil
		}
		data, readErr := fs.ReadFile(l.fsys, path)
		if readErr != nil {
			return fmt.Errorf("markdown loader read %s: %w", path, readErr)
		}
		files = append(files, SourceFile{
			Path: filepath.Join(l.dir, filepath.FromSlash(path)),
			Rel:  path,
			Data: data,
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Rel < files[j].Rel
	})

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s (pattern %q)", ErrNoSourceFiles, l.dir, l.pattern)
	}
	return files, nil
}

// Load reads a single Markdown file by path, used for targeted reimports.
func (l *Loader) Load(ctx context.Context, path string) (SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return SourceFile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("markdown loader read %s: %w", path, err)
	}
	rel, err := filepath.Rel(l.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return SourceFile{Path: path, Rel: filepath.ToSlash(rel), Data: data}, nil
}
