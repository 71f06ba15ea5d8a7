package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

// ErrFrontMatterInvalid marks metadata that fails the import contract.
var ErrFrontMatterInvalid = errors.New("markdown: frontmatter invalid")

// publishedAtLayouts lists the accepted date notations, tried in order.
var publishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured frontmatter, the Markdown
// body without delimiters, and any error encountered. A file without a
// frontmatter block parses cleanly with empty metadata; validation decides
// whether that is acceptable.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// ValidateFrontMatter checks the import contract: a title, a cover image
// with alt text, at least one author spelling, and a parseable publish
// date. Every violation is reported in a single error so authors can fix
// the whole file in one pass.
func ValidateFrontMatter(fm interfaces.FrontMatter) error {
	err := validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Required),
		validation.Field(&fm.MainImage, validation.Required),
		validation.Field(&fm.MainImageAlt, validation.Required),
		validation.Field(&fm.Author, validation.By(requireAuthor(fm))),
		validation.Field(&fm.PublishedAt, validation.By(validPublishedAt)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFrontMatterInvalid, err.Error())
	}
	return nil
}

// NormalizePublishedAt renders any accepted date notation as RFC 3339.
// Blank input stays blank; the field is optional.
func NormalizePublishedAt(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if parsed, ok := parsePublishedAt(trimmed); ok {
		return parsed.Format(time.RFC3339)
	}
	return ""
}

func parsePublishedAt(raw string) (time.Time, bool) {
	for _, layout := range publishedAtLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func requireAuthor(fm interfaces.FrontMatter) validation.RuleFunc {
	return func(any) error {
		if strings.TrimSpace(fm.Author) == "" && strings.TrimSpace(fm.AuthorID) == "" {
			return validation.NewError("validation_author_required", "either author or authorId must be set")
		}
		return nil
	}
}

func validPublishedAt(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, ok := parsePublishedAt(strings.TrimSpace(raw)); !ok {
		return validation.NewError("validation_published_at", "not a recognised date")
	}
	return nil
}

type frontMatterEnvelope struct {
	Title        string         `yaml:"title"`
	Slug         string         `yaml:"slug"`
	Author       string         `yaml:"author"`
	AuthorID     string         `yaml:"authorId"`
	MainImage    string         `yaml:"mainImage"`
	MainImageAlt string         `yaml:"mainImageAlt"`
	PublishedAt  string         `yaml:"publishedAt"`
	Excerpt      string         `yaml:"excerpt"`
	Categories   []string       `yaml:"categories"`
	Custom       map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+9)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	if env.AuthorID != "" {
		raw["authorId"] = env.AuthorID
	}
	if env.MainImage != "" {
		raw["mainImage"] = env.MainImage
	}
	if env.MainImageAlt != "" {
		raw["mainImageAlt"] = env.MainImageAlt
	}
	if env.PublishedAt != "" {
		raw["publishedAt"] = env.PublishedAt
	}
	if env.Excerpt != "" {
		raw["excerpt"] = env.Excerpt
	}
	if len(env.Categories) > 0 {
		raw["categories"] = append([]string(nil), env.Categories...)
	}

	return interfaces.FrontMatter{
		Title:        env.Title,
		Slug:         env.Slug,
		Author:       env.Author,
		AuthorID:     env.AuthorID,
		MainImage:    env.MainImage,
		MainImageAlt: env.MainImageAlt,
		PublishedAt:  env.PublishedAt,
		Excerpt:      env.Excerpt,
		Categories:   append([]string(nil), env.Categories...),
		Custom:       cloneMap(env.Custom),
		Raw:          raw,
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
