package importercmd

import (
	"testing"
	"time"
)

func TestImportDirectoryCommandValidateRequiresDirectory(t *testing.T) {
	cmd := ImportDirectoryCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when directory missing")
	}

	cmd.Directory = "posts"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when directory provided: %v", err)
	}
}

func TestImportDirectoryCommandValidateSlugFilter(t *testing.T) {
	cmd := ImportDirectoryCommand{
		Directory: "posts",
		Slug:      "Hello World",
	}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error for non-normalized slug filter")
	}

	cmd.Slug = "hello-world"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error with normalized slug: %v", err)
	}

	cmd.Slug = ""
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error with empty slug filter: %v", err)
	}
}

func TestImportDirectoryCommandValidateConcurrency(t *testing.T) {
	cmd := ImportDirectoryCommand{
		Directory:   "posts",
		Concurrency: -1,
	}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error for negative concurrency")
	}

	cmd.Concurrency = 4
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error with positive concurrency: %v", err)
	}
}

func TestImportFileCommandValidateRequiresPath(t *testing.T) {
	cmd := ImportFileCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when path missing")
	}

	cmd.Path = "posts/hello.md"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when path provided: %v", err)
	}
}

func TestWatchDirectoryCommandValidateRequiresDirectory(t *testing.T) {
	cmd := WatchDirectoryCommand{}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected error when directory missing")
	}

	cmd.Directory = "posts"
	if err := cmd.Validate(); err != nil {
		t.Fatalf("unexpected error when directory provided: %v", err)
	}
}

func TestImportDirectoryCommandImportOptions(t *testing.T) {
	cmd := ImportDirectoryCommand{
		Directory:    "posts",
		DocumentType: "article",
		Write:        true,
		Drafts:       true,
		ValidateOnly: true,
		Slug:         "hello-world",
		Concurrency:  8,
	}

	opts := cmd.ImportOptions()
	if opts.DocumentType != "article" {
		t.Fatalf("expected document type mapped, got %q", opts.DocumentType)
	}
	if !opts.Write || !opts.Drafts || !opts.ValidateOnly {
		t.Fatalf("expected behaviour switches mapped, got %+v", opts)
	}
	if opts.SlugFilter != "hello-world" {
		t.Fatalf("expected slug filter mapped, got %q", opts.SlugFilter)
	}
	if opts.Concurrency != 8 {
		t.Fatalf("expected concurrency mapped, got %d", opts.Concurrency)
	}
}

func TestWatchDirectoryCommandImportOptions(t *testing.T) {
	cmd := WatchDirectoryCommand{
		Directory:    "posts",
		Debounce:     250 * time.Millisecond,
		DocumentType: "article",
		Write:        true,
		Concurrency:  2,
	}

	opts := cmd.ImportOptions()
	if opts.DocumentType != "article" {
		t.Fatalf("expected document type mapped, got %q", opts.DocumentType)
	}
	if !opts.Write {
		t.Fatal("expected write switch mapped")
	}
	if opts.ValidateOnly {
		t.Fatal("watch runs never map validate-only")
	}
	if opts.Concurrency != 2 {
		t.Fatalf("expected concurrency mapped, got %d", opts.Concurrency)
	}
}
