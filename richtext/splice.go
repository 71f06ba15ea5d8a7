package richtext

import "strings"

// Splice replaces placeholder tokens inside blocks with standalone image
// blocks. A block whose whole text is a single token becomes the mapped
// image block; a block with tokens embedded mid-text is split around each
// occurrence, preserving span marks and mark definitions on every
// surviving fragment. Divider blocks are filtered out because the
// destination schema has no equivalent. The returned sequence keeps all
// content in source order and carries a unique key on every block and
// span.
func Splice(blocks []Block, images map[string]Block, keys *Keys) []Block {
	out := make([]Block, 0, len(blocks)+len(images))
	for _, block := range blocks {
		if block.Type == TypeDivider {
			continue
		}
		if block.isEmptyText() {
			continue
		}
		if !block.IsText() {
			out = append(out, block)
			continue
		}
		out = append(out, spliceBlock(block, images, keys)...)
	}
	return EnsureKeys(out, keys)
}

func spliceBlock(block Block, images map[string]Block, keys *Keys) []Block {
	joined := block.PlainText()
	if _, pos := leftmostToken(joined, images); pos < 0 {
		return []Block{block}
	}
	if img, ok := images[strings.TrimSpace(joined)]; ok {
		img.Key = keys.Next()
		return []Block{img}
	}
	return splitBlock(mergeTokenSpans(block, images), images, keys)
}

// splitBlock walks spans left to right, emitting content accumulated
// before each token, then the mapped image block in its place, then the
// remainder into a fresh block under construction. Fragments keep their
// span's marks; every sub-block inherits the original block's style, list
// placement, and full mark definition list.
func splitBlock(block Block, images map[string]Block, keys *Keys) []Block {
	var out []Block
	current := blockShell(block)

	flush := func() {
		if len(current.Children) > 0 {
			out = append(out, current)
		}
		current = blockShell(block)
	}

	for _, span := range block.Children {
		text := span.Text
		for {
			token, pos := leftmostToken(text, images)
			if pos < 0 {
				break
			}
			if before := text[:pos]; before != "" {
				current.Children = append(current.Children, spanFragment(span, before))
			}
			flush()
			img := images[token]
			img.Key = keys.Next()
			out = append(out, img)
			text = text[pos+len(token):]
		}
		if text != "" {
			current.Children = append(current.Children, spanFragment(span, text))
		}
	}
	flush()
	return out
}

// mergeTokenSpans collapses adjacent spans whenever a token straddles a
// span boundary, keeping the first affected span's marks. Extraction puts
// tokens on isolated paragraphs, so a straddled token only appears when
// the converter re-segments text; the token has no single styling run of
// its own to preserve.
func mergeTokenSpans(block Block, images map[string]Block) Block {
	for {
		joined := block.PlainText()
		offsets := make([]int, len(block.Children)+1)
		for i, child := range block.Children {
			offsets[i+1] = offsets[i] + len(child.Text)
		}

		merged := false
		searchFrom := 0
		for {
			token, rel := leftmostToken(joined[searchFrom:], images)
			if rel < 0 {
				break
			}
			start := searchFrom + rel
			end := start + len(token)
			first, last := spanRange(offsets, start, end)
			if first == last {
				searchFrom = end
				continue
			}
			block.Children = mergeSpans(block.Children, first, last)
			merged = true
			break
		}
		if !merged {
			return block
		}
	}
}

// leftmostToken finds the earliest occurrence of any known token in text.
func leftmostToken(text string, images map[string]Block) (string, int) {
	found, at := "", -1
	for token := range images {
		pos := strings.Index(text, token)
		if pos < 0 {
			continue
		}
		if at < 0 || pos < at {
			found, at = token, pos
		}
	}
	return found, at
}

// spanRange returns the indexes of the first and last spans overlapping
// [start, end) given cumulative span offsets.
func spanRange(offsets []int, start, end int) (int, int) {
	first, last := -1, -1
	for i := 0; i < len(offsets)-1; i++ {
		spanStart, spanEnd := offsets[i], offsets[i+1]
		if spanStart == spanEnd {
			continue
		}
		if spanStart < end && spanEnd > start {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last
}

func mergeSpans(spans []Span, first, last int) []Span {
	var sb strings.Builder
	for i := first; i <= last; i++ {
		sb.WriteString(spans[i].Text)
	}
	merged := spans[first]
	merged.Text = sb.String()

	out := append([]Span{}, spans[:first]...)
	out = append(out, merged)
	return append(out, spans[last+1:]...)
}

// blockShell clones the block without children so split pieces inherit
// style, list placement, and mark definitions.
func blockShell(block Block) Block {
	shell := block
	shell.Key = ""
	shell.Children = nil
	shell.MarkDefs = append([]MarkDef(nil), block.MarkDefs...)
	return shell
}

// spanFragment copies a span with new text, keeping marks and dropping the
// key so EnsureKeys assigns a fresh one.
func spanFragment(span Span, text string) Span {
	fragment := span
	fragment.Key = ""
	fragment.Text = text
	fragment.Marks = append([]string(nil), span.Marks...)
	return fragment
}
