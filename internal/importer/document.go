package importer

import (
	"github.com/goliatone/go-blogimport/internal/markdown"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
	"github.com/goliatone/go-blogimport/richtext"
)

// documentParts bundles everything processFile resolved for one source
// file before assembly.
type documentParts struct {
	fm       interfaces.FrontMatter
	id       string
	docType  string
	slug     string
	authorID string
	cover    interfaces.Asset
	body     []richtext.Block
}

// assembleDocument builds the importable document. PublishedAt is
// normalised to RFC 3339 here; validation already confirmed it parses.
// Author and MainImage stay nil when unresolved so the backend never sees
// half-built references.
func assembleDocument(parts documentParts) interfaces.Document {
	doc := interfaces.Document{
		ID:          parts.id,
		Type:        parts.docType,
		Title:       parts.fm.Title,
		Slug:        richtext.NewSlug(parts.slug),
		Body:        parts.body,
		PublishedAt: markdown.NormalizePublishedAt(parts.fm.PublishedAt),
		Excerpt:     parts.fm.Excerpt,
		Categories:  parts.fm.Categories,
	}

	if parts.authorID != "" {
		ref := richtext.NewReference(parts.authorID)
		doc.Author = &ref
	}
	if parts.cover.ID != "" {
		image := richtext.NewImageBlock(parts.cover.ID, parts.fm.MainImageAlt, "")
		doc.MainImage = &image
	}
	return doc
}
