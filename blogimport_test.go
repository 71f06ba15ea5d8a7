package blogimport_test

import (
	"context"
	"errors"
	"testing"

	blogimport "github.com/goliatone/go-blogimport"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

type stubBackend struct{}

func (stubBackend) UploadAsset(context.Context, interfaces.AssetUpload) (interfaces.Asset, error) {
	return interfaces.Asset{ID: "image-1"}, nil
}

func (stubBackend) UpsertDocument(context.Context, interfaces.Document) error { return nil }

func (stubBackend) GetAuthor(context.Context, string) (*interfaces.Author, error) {
	return nil, nil
}

func (stubBackend) FindAuthorByName(context.Context, string) (*interfaces.Author, error) {
	return nil, nil
}

func (stubBackend) CreateAuthorIfMissing(context.Context, interfaces.Author) error { return nil }

func TestNewBuildsOfflineModule(t *testing.T) {
	module, err := blogimport.New(blogimport.DefaultConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if module.Importer() == nil {
		t.Fatal("expected importer service to be wired")
	}
	if module.Backend() != nil {
		t.Fatal("expected no backend without an API base URL")
	}
	if module.Handlers() == nil {
		t.Fatal("expected command handlers to be wired")
	}
	if module.Logs() == nil {
		t.Fatal("expected a logger provider")
	}
}

func TestNewBuildsBackendFromConfig(t *testing.T) {
	cfg := blogimport.DefaultConfig()
	cfg.API.BaseURL = "https://cms.example.com"
	cfg.API.Dataset = "production"
	cfg.API.Token = "secret"

	module, err := blogimport.New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if module.Backend() == nil {
		t.Fatal("expected backend client for configured API")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := blogimport.DefaultConfig()
	cfg.API.BaseURL = "https://cms.example.com"
	// Dataset missing.

	if _, err := blogimport.New(cfg); !errors.Is(err, blogimport.ErrAPIDatasetRequired) {
		t.Fatalf("expected ErrAPIDatasetRequired, got %v", err)
	}
}

func TestNewHonoursBackendOverride(t *testing.T) {
	backend := stubBackend{}

	module, err := blogimport.New(blogimport.DefaultConfig(), blogimport.WithBackend(backend))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if module.Backend() == nil {
		t.Fatal("expected override backend to be kept")
	}
}

func TestNewRejectsUnknownLoggingProvider(t *testing.T) {
	cfg := blogimport.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if _, err := blogimport.New(cfg); !errors.Is(err, blogimport.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestNewBuildsGoLoggerProvider(t *testing.T) {
	cfg := blogimport.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	module, err := blogimport.New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if module.Logs() == nil {
		t.Fatal("expected go-logger backed provider")
	}
}
