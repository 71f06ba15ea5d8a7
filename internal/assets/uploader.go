package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-slug"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

// Upload failure modes, annotated with the offending path.
var (
	// ErrUnsupportedType rejects files outside the image allow-list.
	ErrUnsupportedType = errors.New("assets: unsupported image type")
	// ErrFileNotFound marks a path that does not resolve to a file.
	ErrFileNotFound = errors.New("assets: file not found")
	// ErrReadFailed marks an image that exists but cannot be read.
	ErrReadFailed = errors.New("assets: read failed")
)

// allowedMediaTypes maps accepted file extensions to their media type.
var allowedMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".avif": "image/avif",
}

// Uploader resolves local image paths to backend assets. Every path is
// uploaded at most once per uploader: concurrent requests for the same
// path coalesce onto a single upload, and settled results are served from
// an in-memory cache without further I/O. The cache is run state; the
// driver owns the uploader and builds a fresh one per run.
type Uploader struct {
	backend  interfaces.ContentBackend
	logger   interfaces.Logger
	simulate bool

	mu     sync.Mutex
	cache  map[string]interfaces.Asset
	flight singleflight.Group
}

// Option customises uploader construction.
type Option func(*Uploader)

// WithLogger routes upload logging to the supplied logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(u *Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// WithSimulate switches the uploader to dry-run mode: files are still
// checked on disk but nothing reaches the backend, and asset ids derive
// from the file name so repeated references resolve consistently.
func WithSimulate(simulate bool) Option {
	return func(u *Uploader) {
		u.simulate = simulate
	}
}

// NewUploader builds an uploader writing through the given backend. The
// backend may be nil in simulate mode.
func NewUploader(backend interfaces.ContentBackend, opts ...Option) *Uploader {
	uploader := &Uploader{
		backend: backend,
		logger:  logging.NoOp(),
		cache:   map[string]interfaces.Asset{},
	}
	for _, opt := range opts {
		opt(uploader)
	}
	return uploader
}

// Resolve returns the asset for the image at absPath, uploading it on
// first use.
func (u *Uploader) Resolve(ctx context.Context, absPath string) (interfaces.Asset, error) {
	path := filepath.Clean(absPath)

	u.mu.Lock()
	if asset, ok := u.cache[path]; ok {
		u.mu.Unlock()
		return asset, nil
	}
	u.mu.Unlock()

	result, err, _ := u.flight.Do(path, func() (any, error) {
		asset, uploadErr := u.upload(ctx, path)
		if uploadErr != nil {
			return interfaces.Asset{}, uploadErr
		}
		u.mu.Lock()
		u.cache[path] = asset
		u.mu.Unlock()
		return asset, nil
	})
	if err != nil {
		return interfaces.Asset{}, err
	}
	return result.(interfaces.Asset), nil
}

func (u *Uploader) upload(ctx context.Context, path string) (interfaces.Asset, error) {
	mediaType, ok := allowedMediaTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return interfaces.Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedType, path)
	}

	if u.simulate {
		if _, err := os.Stat(path); err != nil {
			return interfaces.Asset{}, readFailure(path, err)
		}
		u.logger.Info("[dry] would upload " + path)
		return interfaces.Asset{ID: SimulatedID(path), SourcePath: path}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return interfaces.Asset{}, readFailure(path, err)
	}

	sum := sha256.Sum256(data)
	u.logger.Debug("assets.upload.start", "path", path, "media_type", mediaType, "bytes", len(data))

	asset, err := u.backend.UploadAsset(ctx, interfaces.AssetUpload{
		FileName:  filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
	})
	if err != nil {
		return interfaces.Asset{}, fmt.Errorf("assets: upload %s: %w", path, err)
	}

	asset.SourcePath = path
	asset.Checksum = hex.EncodeToString(sum[:])
	u.logger.Info("assets.upload.success", "path", path, "asset_id", asset.ID)
	return asset, nil
}

// SimulatedID derives the stable dry-run identifier for a path from its
// file name.
func SimulatedID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	normalized, err := slug.Normalize(stem)
	if err != nil || normalized == "" {
		normalized = strings.ToLower(stem)
	}
	return "image-" + normalized
}

func readFailure(path string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return fmt.Errorf("%w: %s: %v", ErrReadFailed, path, err)
}
