package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-blogimport/richtext"
)

func TestConvertHeadingAndParagraph(t *testing.T) {
	source := []byte("# Title\n\nHello **world** and *stressed*.")

	blocks := mustConvert(t, source)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Style != "h1" || blocks[0].PlainText() != "Title" {
		t.Fatalf("unexpected heading block: %+v", blocks[0])
	}

	para := blocks[1]
	if para.Style != richtext.StyleNormal {
		t.Fatalf("expected normal style, got %q", para.Style)
	}
	wantTexts := []string{"Hello ", "world", " and ", "stressed", "."}
	if got := spanTexts(para); strings.Join(got, "|") != strings.Join(wantTexts, "|") {
		t.Fatalf("unexpected spans: %v", got)
	}
	if !spanHasMark(para.Children[1], richtext.MarkStrong) {
		t.Fatalf("expected strong mark on %q", para.Children[1].Text)
	}
	if !spanHasMark(para.Children[3], richtext.MarkEm) {
		t.Fatalf("expected em mark on %q", para.Children[3].Text)
	}
	if len(para.Children[0].Marks) != 0 {
		t.Fatalf("unmarked span carries marks: %v", para.Children[0].Marks)
	}
}

func TestConvertLink(t *testing.T) {
	source := []byte("Read the [docs](https://example.com/docs \"Docs\") today.")

	blocks := mustConvert(t, source)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	block := blocks[0]
	if len(block.MarkDefs) != 1 {
		t.Fatalf("expected 1 mark definition, got %d", len(block.MarkDefs))
	}
	def := block.MarkDefs[0]
	if def.Type != richtext.TypeLink || def.Href != "https://example.com/docs" || def.Key == "" {
		t.Fatalf("unexpected mark definition: %+v", def)
	}

	var linked *richtext.Span
	for i := range block.Children {
		if spanHasMark(block.Children[i], def.Key) {
			linked = &block.Children[i]
		}
	}
	if linked == nil || linked.Text != "docs" {
		t.Fatalf("expected span %q referencing %q, got %+v", "docs", def.Key, block.Children)
	}
}

func TestConvertInlineCode(t *testing.T) {
	blocks := mustConvert(t, []byte("Run `go env` first."))

	block := blocks[0]
	found := false
	for _, span := range block.Children {
		if span.Text == "go env" {
			found = true
			if !spanHasMark(span, richtext.MarkCode) {
				t.Fatalf("expected code mark, got %v", span.Marks)
			}
		}
	}
	if !found {
		t.Fatalf("code span missing: %+v", block.Children)
	}
}

func TestConvertStrikethrough(t *testing.T) {
	blocks := mustConvert(t, []byte("this is ~~gone~~ now"))

	block := blocks[0]
	found := false
	for _, span := range block.Children {
		if span.Text == "gone" {
			found = true
			if !spanHasMark(span, richtext.MarkStrike) {
				t.Fatalf("expected strike-through mark, got %v", span.Marks)
			}
		}
	}
	if !found {
		t.Fatalf("strikethrough span missing: %+v", block.Children)
	}
}

func TestConvertCodeFence(t *testing.T) {
	source := []byte("```go\nfmt.Println(\"hi\")\nreturn nil\n```")

	blocks := mustConvert(t, source)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	block := blocks[0]
	if block.Type != richtext.TypeCode || block.Language != "go" {
		t.Fatalf("unexpected code block: %+v", block)
	}
	if block.Code != "fmt.Println(\"hi\")\nreturn nil" {
		t.Fatalf("unexpected code payload: %q", block.Code)
	}
}

func TestConvertLists(t *testing.T) {
	source := []byte("- first\n- second\n  - nested\n\n1. one\n2. two")

	blocks := mustConvert(t, source)

	if len(blocks) != 5 {
		t.Fatalf("expected 5 list item blocks, got %d: %+v", len(blocks), blocks)
	}
	for i, want := range []struct {
		text string
		item string
		lvl  int
	}{
		{"first", richtext.ListBullet, 1},
		{"second", richtext.ListBullet, 1},
		{"nested", richtext.ListBullet, 2},
		{"one", richtext.ListNumber, 1},
		{"two", richtext.ListNumber, 1},
	} {
		block := blocks[i]
		if block.PlainText() != want.text || block.ListItem != want.item || block.Level != want.lvl {
			t.Fatalf("item %d: expected %+v, got text=%q item=%q level=%d", i, want, block.PlainText(), block.ListItem, block.Level)
		}
	}
}

func TestConvertBlockquote(t *testing.T) {
	blocks := mustConvert(t, []byte("> quoted wisdom"))

	if len(blocks) != 1 || blocks[0].Style != richtext.StyleBlockquote {
		t.Fatalf("expected blockquote block, got %+v", blocks)
	}
	if blocks[0].PlainText() != "quoted wisdom" {
		t.Fatalf("unexpected quote text %q", blocks[0].PlainText())
	}
}

func TestConvertThematicBreak(t *testing.T) {
	blocks := mustConvert(t, []byte("above\n\n---\n\nbelow"))

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[1].Type != richtext.TypeDivider {
		t.Fatalf("expected divider block, got %+v", blocks[1])
	}
}

func TestConvertLineBreaks(t *testing.T) {
	blocks := mustConvert(t, []byte("soft\nwrap"))

	if got := blocks[0].PlainText(); got != "soft wrap" {
		t.Fatalf("expected soft break as space, got %q", got)
	}

	blocks = mustConvert(t, []byte("hard  \nbreak"))
	if got := blocks[0].PlainText(); got != "hard\nbreak" {
		t.Fatalf("expected hard break as newline, got %q", got)
	}
}

func TestConvertTokenPipeline(t *testing.T) {
	body := `See **this** ![cat](./img/cat.png "A cat") now.`

	rewritten, images := extractImages(body, testNonce)
	if len(images) != 1 {
		t.Fatalf("expected 1 extracted image, got %d", len(images))
	}

	keys := richtext.NewKeys("post-scenario")
	blocks := mustConvertWith(t, []byte(rewritten), keys)

	imageBlocks := map[string]richtext.Block{
		images[0].Token: richtext.NewImageBlock("image-cat", images[0].Alt, images[0].Caption),
	}
	final := richtext.Splice(blocks, imageBlocks, keys)

	if len(final) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(final), final)
	}

	first := final[0]
	if first.PlainText() != "See this" {
		t.Fatalf("unexpected leading text %q", first.PlainText())
	}
	last := first.Children[len(first.Children)-1]
	if last.Text != "this" || !spanHasMark(last, richtext.MarkStrong) {
		t.Fatalf("bold styling lost across split: %+v", first.Children)
	}

	img := final[1]
	if img.Type != richtext.TypeImage || img.Alt != "cat" || img.Caption != "A cat" {
		t.Fatalf("unexpected image block: %+v", img)
	}
	if img.Asset == nil || img.Asset.Ref != "image-cat" {
		t.Fatalf("unexpected asset reference: %+v", img.Asset)
	}

	if final[2].PlainText() != "now." {
		t.Fatalf("unexpected trailing text %q", final[2].PlainText())
	}
}

func mustConvert(t *testing.T, source []byte) []richtext.Block {
	t.Helper()
	return mustConvertWith(t, source, richtext.NewKeys("test-doc"))
}

func mustConvertWith(t *testing.T, source []byte, keys *richtext.Keys) []richtext.Block {
	t.Helper()
	converter := NewConverter()
	blocks, err := converter.Convert(source, keys)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	return blocks
}

func spanTexts(block richtext.Block) []string {
	out := make([]string, 0, len(block.Children))
	for _, span := range block.Children {
		out = append(out, span.Text)
	}
	return out
}

func spanHasMark(span richtext.Span, mark string) bool {
	for _, m := range span.Marks {
		if m == mark {
			return true
		}
	}
	return false
}
