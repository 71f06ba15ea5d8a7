package contentapi

import (
	"errors"
	"net/url"
	"testing"
)

func TestRoutesBuildEndpoints(t *testing.T) {
	routes := NewRoutes("https://cms.example.com", "production")

	upsert, err := routes.DocUpsert()
	if err != nil {
		t.Fatalf("DocUpsert: %v", err)
	}
	if upsert != "https://cms.example.com/v1/data/upsert/production" {
		t.Errorf("upsert url = %q", upsert)
	}

	doc, err := routes.DocGet("post-hello-world")
	if err != nil {
		t.Fatalf("DocGet: %v", err)
	}
	if doc != "https://cms.example.com/v1/data/doc/production/post-hello-world" {
		t.Errorf("doc url = %q", doc)
	}
}

func TestRoutesAssetUploadCarriesFilenameHint(t *testing.T) {
	routes := NewRoutes("https://cms.example.com", "staging")

	built, err := routes.AssetUpload("cover image.png")
	if err != nil {
		t.Fatalf("AssetUpload: %v", err)
	}
	parsed, err := url.Parse(built)
	if err != nil {
		t.Fatalf("parse %q: %v", built, err)
	}
	if parsed.Path != "/v1/assets/images/staging" {
		t.Errorf("path = %q", parsed.Path)
	}
	if got := parsed.Query().Get("filename"); got != "cover image.png" {
		t.Errorf("filename hint = %q", got)
	}

	bare, err := routes.AssetUpload("")
	if err != nil {
		t.Fatalf("AssetUpload without filename: %v", err)
	}
	if parsed, err := url.Parse(bare); err != nil || parsed.Query().Has("filename") {
		t.Errorf("empty filename should not appear in %q", bare)
	}
}

func TestRoutesAuthorQueryFilters(t *testing.T) {
	routes := NewRoutes("https://cms.example.com", "production")

	built, err := routes.AuthorQuery("author", "Jane Doe")
	if err != nil {
		t.Fatalf("AuthorQuery: %v", err)
	}
	parsed, err := url.Parse(built)
	if err != nil {
		t.Fatalf("parse %q: %v", built, err)
	}
	if parsed.Path != "/v1/data/query/production" {
		t.Errorf("path = %q", parsed.Path)
	}
	if got := parsed.Query().Get("type"); got != "author" {
		t.Errorf("type filter = %q", got)
	}
	if got := parsed.Query().Get("name"); got != "Jane Doe" {
		t.Errorf("name filter = %q", got)
	}
}

func TestRoutesWithoutManagerFail(t *testing.T) {
	var routes Routes

	if _, err := routes.DocUpsert(); !errors.Is(err, ErrRouteNotFound) {
		t.Fatalf("err = %v, want ErrRouteNotFound", err)
	}
}
