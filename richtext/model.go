package richtext

import "strings"

// Block type tags understood by the content backend. Anything else is
// treated as opaque and passed through untouched.
const (
	TypeBlock     = "block"
	TypeSpan      = "span"
	TypeImage     = "image"
	TypeCode      = "code"
	TypeDivider   = "divider"
	TypeLink      = "link"
	TypeReference = "reference"
	TypeSlug      = "slug"
)

// Decorator marks carried on spans. Link marks reference a MarkDef key
// instead of one of these names.
const (
	MarkStrong = "strong"
	MarkEm     = "em"
	MarkCode   = "code"
	MarkStrike = "strike-through"
)

// Text block styles.
const (
	StyleNormal     = "normal"
	StyleBlockquote = "blockquote"
)

// List item kinds.
const (
	ListBullet = "bullet"
	ListNumber = "number"
)

// Block is a unit of rich text. Text blocks carry a style plus an ordered
// span sequence; image blocks carry an asset reference with alt text and an
// optional caption; code blocks carry the literal source. Every block needs
// a key unique within its document before it reaches the backend, which
// reconciles arrays by key.
type Block struct {
	Key      string    `json:"_key,omitempty"`
	Type     string    `json:"_type"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`

	Asset   *Reference `json:"asset,omitempty"`
	Alt     string     `json:"alt,omitempty"`
	Caption string     `json:"caption,omitempty"`

	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Span is a run of text sharing one set of inline marks.
type Span struct {
	Key   string   `json:"_key,omitempty"`
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef describes link metadata owned by its containing block and
// referenced from spans by key.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// Reference points at another document or asset by id.
type Reference struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

// Slug is the backend's slug field shape.
type Slug struct {
	Type    string `json:"_type"`
	Current string `json:"current"`
}

// NewSpan builds a span with the supplied marks.
func NewSpan(text string, marks ...string) Span {
	return Span{Type: TypeSpan, Text: text, Marks: marks}
}

// NewTextBlock builds a styled text block from spans.
func NewTextBlock(style string, spans ...Span) Block {
	return Block{Type: TypeBlock, Style: style, Children: spans}
}

// NewImageBlock builds a standalone image block referencing an uploaded
// asset.
func NewImageBlock(assetID, alt, caption string) Block {
	ref := NewReference(assetID)
	return Block{Type: TypeImage, Asset: &ref, Alt: alt, Caption: caption}
}

// NewReference builds a reference to the given id.
func NewReference(ref string) Reference {
	return Reference{Type: TypeReference, Ref: ref}
}

// NewSlug wraps a slug value in the backend's field shape.
func NewSlug(current string) Slug {
	return Slug{Type: TypeSlug, Current: current}
}

// IsText reports whether the block is a styled text block.
func (b Block) IsText() bool {
	return b.Type == TypeBlock
}

// PlainText joins the block's span texts in order. For non-text blocks it
// returns the empty string.
func (b Block) PlainText() string {
	if len(b.Children) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, child := range b.Children {
		sb.WriteString(child.Text)
	}
	return sb.String()
}

// isEmptyText reports whether a text block has no content worth keeping:
// no spans, or only spans with empty text.
func (b Block) isEmptyText() bool {
	if !b.IsText() {
		return false
	}
	for _, child := range b.Children {
		if child.Text != "" {
			return false
		}
	}
	return true
}
