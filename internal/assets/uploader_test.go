package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

func TestResolveUploadsOncePerPath(t *testing.T) {
	path := writeImage(t, "cat.png")
	backend := &stubBackend{}
	uploader := NewUploader(backend)

	first, err := uploader.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	second, err := uploader.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if backend.uploadCount() != 1 {
		t.Fatalf("expected 1 upload, got %d", backend.uploadCount())
	}
	if first.ID != second.ID || first.ID == "" {
		t.Fatalf("cached result diverged: %q vs %q", first.ID, second.ID)
	}
	if first.Checksum == "" || first.SourcePath != path {
		t.Fatalf("asset bookkeeping missing: %+v", first)
	}

	upload := backend.uploads[0]
	if upload.FileName != "cat.png" || upload.MediaType != "image/png" || len(upload.Data) == 0 {
		t.Fatalf("unexpected upload payload: %+v", upload)
	}
}

func TestResolveCoalescesConcurrentRequests(t *testing.T) {
	path := writeImage(t, "shared.jpg")
	backend := &stubBackend{delay: 25 * time.Millisecond}
	uploader := NewUploader(backend)

	const callers = 8
	results := make([]interfaces.Asset, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uploader.Resolve(context.Background(), path)
		}(i)
	}
	wg.Wait()

	if backend.uploadCount() != 1 {
		t.Fatalf("expected exactly 1 upload for concurrent callers, got %d", backend.uploadCount())
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i].ID != results[0].ID {
			t.Fatalf("caller %d got different asset: %q vs %q", i, results[i].ID, results[0].ID)
		}
	}
}

func TestResolveRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	uploader := NewUploader(&stubBackend{})

	_, err := uploader.Resolve(context.Background(), path)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error should name the path: %v", err)
	}
}

func TestResolveMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.png")
	uploader := NewUploader(&stubBackend{})

	_, err := uploader.Resolve(context.Background(), path)
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error should name the path: %v", err)
	}
}

func TestResolveSimulateSkipsBackend(t *testing.T) {
	path := writeImage(t, "sunrise.webp")
	logger := &captureLogger{}
	uploader := NewUploader(nil, WithSimulate(true), WithLogger(logger))

	asset, err := uploader.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if asset.ID != "image-sunrise" {
		t.Fatalf("expected stable simulated id, got %q", asset.ID)
	}

	again, err := uploader.Resolve(context.Background(), path)
	if err != nil || again.ID != asset.ID {
		t.Fatalf("simulated id unstable: %q vs %q (%v)", asset.ID, again.ID, err)
	}

	want := "[dry] would upload " + filepath.Clean(path)
	if !logger.contains(want) {
		t.Fatalf("expected dry-run log %q in %v", want, logger.lines)
	}
}

func TestResolveSimulateStillChecksDisk(t *testing.T) {
	uploader := NewUploader(nil, WithSimulate(true))

	_, err := uploader.Resolve(context.Background(), filepath.Join(t.TempDir(), "ghost.png"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound in simulate mode, got %v", err)
	}
}

func TestSimulatedIDIgnoresDirectory(t *testing.T) {
	a := SimulatedID("/content/posts/img/My Cover.png")
	b := SimulatedID("/elsewhere/My Cover.png")
	if a != b {
		t.Fatalf("simulated id should depend on file name only: %q vs %q", a, b)
	}
	if a != "image-my-cover" {
		t.Fatalf("unexpected simulated id %q", a)
	}
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

type stubBackend struct {
	mu      sync.Mutex
	uploads []interfaces.AssetUpload
	delay   time.Duration
	err     error
}

func (s *stubBackend) UploadAsset(_ context.Context, upload interfaces.AssetUpload) (interfaces.Asset, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, upload)
	count := len(s.uploads)
	s.mu.Unlock()
	if s.err != nil {
		return interfaces.Asset{}, s.err
	}
	return interfaces.Asset{ID: fmt.Sprintf("image-remote-%d", count)}, nil
}

func (s *stubBackend) UpsertDocument(context.Context, interfaces.Document) error { return nil }
func (s *stubBackend) GetAuthor(context.Context, string) (*interfaces.Author, error) {
	return nil, nil
}
func (s *stubBackend) FindAuthorByName(context.Context, string) (*interfaces.Author, error) {
	return nil, nil
}
func (s *stubBackend) CreateAuthorIfMissing(context.Context, interfaces.Author) error { return nil }

func (s *stubBackend) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) record(msg string) {
	c.mu.Lock()
	c.lines = append(c.lines, msg)
	c.mu.Unlock()
}

func (c *captureLogger) contains(want string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		if line == want {
			return true
		}
	}
	return false
}

func (c *captureLogger) Trace(msg string, _ ...any) { c.record(msg) }
func (c *captureLogger) Debug(msg string, _ ...any) { c.record(msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.record(msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.record(msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.record(msg) }
func (c *captureLogger) Fatal(msg string, _ ...any) { c.record(msg) }

func (c *captureLogger) WithContext(context.Context) interfaces.Logger { return c }
