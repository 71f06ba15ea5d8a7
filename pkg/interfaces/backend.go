package interfaces

import "context"

// Asset identifies a binary uploaded to the content backend. SourcePath and
// Checksum are populated by the uploader for local bookkeeping and never
// leave the process.
type Asset struct {
	ID         string
	SourcePath string
	Checksum   string
}

// AssetUpload carries the bytes and metadata for a single image upload.
type AssetUpload struct {
	FileName  string
	MediaType string
	Data      []byte
}

// Author is the minimal author projection the importer reads and writes.
type Author struct {
	ID   string `json:"_id"`
	Type string `json:"_type"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ContentBackend is the remote CMS surface the importer talks to: asset
// uploads returning an id, idempotent document upserts, and the read
// queries author resolution depends on. Implementations must treat lookups
// that find nothing as (nil, nil) rather than an error so callers can
// distinguish absence from transport failure.
type ContentBackend interface {
	UploadAsset(ctx context.Context, upload AssetUpload) (Asset, error)
	UpsertDocument(ctx context.Context, doc Document) error
	GetAuthor(ctx context.Context, id string) (*Author, error)
	FindAuthorByName(ctx context.Context, name string) (*Author, error)
	CreateAuthorIfMissing(ctx context.Context, author Author) error
}
