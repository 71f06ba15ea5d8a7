package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
	"github.com/goliatone/go-blogimport/richtext"
)

// Converter turns Markdown into the block representation the content
// backend stores. A single instance is safe for reuse across documents;
// the goldmark engine is stateless once built.
type Converter struct {
	engine goldmark.Markdown
	logger interfaces.Logger
}

// ConverterOption customises converter construction.
type ConverterOption func(*converterOptions)

type converterOptions struct {
	extensions []string
	logger     interfaces.Logger
}

// WithConverterLogger routes conversion warnings to the supplied logger.
func WithConverterLogger(logger interfaces.Logger) ConverterOption {
	return func(o *converterOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExtensions selects goldmark extensions by name. Unknown names are
// ignored; an empty selection keeps the GFM defaults.
func WithExtensions(names ...string) ConverterOption {
	return func(o *converterOptions) {
		o.extensions = append(o.extensions, names...)
	}
}

// NewConverter builds a converter with GFM, autolinking, and task lists
// enabled by default.
func NewConverter(opts ...ConverterOption) *Converter {
	options := converterOptions{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&options)
	}
	return &Converter{
		engine: newGoldmarkEngine(options.extensions),
		logger: options.logger,
	}
}

// newGoldmarkEngine builds a goldmark.Markdown for AST access only; the
// importer never renders HTML.
func newGoldmarkEngine(names []string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(collectExtensions(names)...),
	)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}

		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}

// Convert parses source and renders every top-level node as a block. Link
// mark definition keys are minted from the supplied sequence; block and
// span keys are left empty for the caller to assign once image splicing
// settles final positions. Nodes the block schema cannot express are
// skipped with a warning.
func (c *Converter) Convert(source []byte, keys *richtext.Keys) ([]richtext.Block, error) {
	doc := c.engine.Parser().Parse(text.NewReader(source))

	var blocks []richtext.Block
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		blocks = append(blocks, c.convertBlock(node, source, keys, "", "", 0)...)
	}
	return blocks, nil
}

func (c *Converter) convertBlock(node ast.Node, source []byte, keys *richtext.Keys, style, listItem string, level int) []richtext.Block {
	switch n := node.(type) {
	case *ast.Heading:
		block := richtext.NewTextBlock(fmt.Sprintf("h%d", n.Level))
		block.ListItem = listItem
		block.Level = level
		c.appendInline(&block, n, source, keys, nil)
		return []richtext.Block{block}
	case *ast.Paragraph:
		return c.textBlock(n, source, keys, style, listItem, level)
	case *ast.TextBlock:
		return c.textBlock(n, source, keys, style, listItem, level)
	case *ast.Blockquote:
		var blocks []richtext.Block
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			blocks = append(blocks, c.convertBlock(child, source, keys, richtext.StyleBlockquote, listItem, level)...)
		}
		return blocks
	case *ast.FencedCodeBlock:
		return []richtext.Block{{
			Type:     richtext.TypeCode,
			Language: string(n.Language(source)),
			Code:     linesText(n, source),
		}}
	case *ast.CodeBlock:
		return []richtext.Block{{
			Type: richtext.TypeCode,
			Code: linesText(n, source),
		}}
	case *ast.List:
		item := richtext.ListBullet
		if n.IsOrdered() {
			item = richtext.ListNumber
		}
		var blocks []richtext.Block
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			blocks = append(blocks, c.convertBlock(child, source, keys, style, item, level+1)...)
		}
		return blocks
	case *ast.ListItem:
		var blocks []richtext.Block
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			blocks = append(blocks, c.convertBlock(child, source, keys, style, listItem, level)...)
		}
		return blocks
	case *ast.ThematicBreak:
		return []richtext.Block{{Type: richtext.TypeDivider}}
	case *ast.HTMLBlock:
		c.logger.Warn("markdown.convert.skip_html_block")
		return nil
	default:
		c.logger.Warn("markdown.convert.skip_node", "kind", node.Kind().String())
		return nil
	}
}

func (c *Converter) textBlock(node ast.Node, source []byte, keys *richtext.Keys, style, listItem string, level int) []richtext.Block {
	if style == "" {
		style = richtext.StyleNormal
	}
	block := richtext.NewTextBlock(style)
	block.ListItem = listItem
	block.Level = level
	c.appendInline(&block, node, source, keys, nil)
	if len(block.Children) == 0 {
		return nil
	}
	return []richtext.Block{block}
}

// appendInline walks a container's inline children, accumulating marks as
// nesting deepens. Text runs sharing the same mark set coalesce into one
// span so embedded tokens stay contiguous.
func (c *Converter) appendInline(block *richtext.Block, node ast.Node, source []byte, keys *richtext.Keys, marks []string) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			appendSpan(block, string(n.Segment.Value(source)), marks)
			if n.HardLineBreak() {
				appendSpan(block, "\n", marks)
			} else if n.SoftLineBreak() {
				appendSpan(block, " ", marks)
			}
		case *ast.String:
			appendSpan(block, string(n.Value), marks)
		case *ast.Emphasis:
			mark := richtext.MarkEm
			if n.Level == 2 {
				mark = richtext.MarkStrong
			}
			c.appendInline(block, n, source, keys, withMark(marks, mark))
		case *east.Strikethrough:
			c.appendInline(block, n, source, keys, withMark(marks, richtext.MarkStrike))
		case *ast.CodeSpan:
			appendSpan(block, nodeText(n, source), withMark(marks, richtext.MarkCode))
		case *ast.Link:
			def := richtext.MarkDef{Key: keys.Next(), Type: richtext.TypeLink, Href: string(n.Destination)}
			block.MarkDefs = append(block.MarkDefs, def)
			c.appendInline(block, n, source, keys, withMark(marks, def.Key))
		case *ast.AutoLink:
			href := string(n.URL(source))
			if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(href, "mailto:") {
				href = "mailto:" + href
			}
			def := richtext.MarkDef{Key: keys.Next(), Type: richtext.TypeLink, Href: href}
			block.MarkDefs = append(block.MarkDefs, def)
			appendSpan(block, string(n.Label(source)), withMark(marks, def.Key))
		case *east.TaskCheckBox:
			if n.IsChecked {
				appendSpan(block, "[x] ", marks)
			} else {
				appendSpan(block, "[ ] ", marks)
			}
		case *ast.Image:
			c.logger.Warn("markdown.convert.skip_inline_image", "destination", string(n.Destination))
		case *ast.RawHTML:
			c.logger.Warn("markdown.convert.skip_raw_html")
		default:
			if child.Type() == ast.TypeInline {
				c.appendInline(block, child, source, keys, marks)
			} else {
				c.logger.Warn("markdown.convert.skip_node", "kind", child.Kind().String())
			}
		}
	}
}

func appendSpan(block *richtext.Block, text string, marks []string) {
	if text == "" {
		return
	}
	if n := len(block.Children); n > 0 && marksEqual(block.Children[n-1].Marks, marks) {
		block.Children[n-1].Text += text
		return
	}
	block.Children = append(block.Children, richtext.NewSpan(text, marks...))
}

func withMark(marks []string, mark string) []string {
	out := make([]string, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, mark)
}

func marksEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func nodeText(node ast.Node, source []byte) string {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(source))
		case *ast.String:
			sb.Write(n.Value)
		default:
			sb.WriteString(nodeText(child, source))
		}
	}
	return sb.String()
}

func linesText(node interface{ Lines() *text.Segments }, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}
