package markdown

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// InlineImage records one extracted inline image and the token standing in
// for it inside the rewritten body.
type InlineImage struct {
	Token   string
	Alt     string
	Path    string
	Caption string
}

// imagePattern matches Markdown inline images with an optional quoted
// caption. Two destination forms are recognised: a bare path free of
// whitespace and parentheses, and an angle-bracketed path that may contain
// spaces. Anything else is left alone as literal text.
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(\s*(?:<([^<>]*)>|([^()\s]+?))(?:\s+"([^"]*)"|\s+'([^']*)')?\s*\)`)

var fenceMarker = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")

// ExtractImages rewrites local inline images as placeholder tokens and
// reports them in source order. Each token sits on a paragraph of its own
// so the converter usually emits it as an isolated block; the splitter
// still handles tokens that end up embedded mid-paragraph. Remote images
// and anything inside fenced code stay untouched. Token numbering restarts
// per document while the nonce is minted per call, so tokens never collide
// with literal text from another run.
func ExtractImages(body string) (string, []InlineImage) {
	return extractImages(body, runNonce())
}

func extractImages(body, nonce string) (string, []InlineImage) {
	var images []InlineImage
	var out strings.Builder
	out.Grow(len(body))

	for _, segment := range splitFences(body) {
		if segment.fenced {
			out.WriteString(segment.text)
			continue
		}
		rewritten := imagePattern.ReplaceAllStringFunc(segment.text, func(match string) string {
			groups := imagePattern.FindStringSubmatch(match)
			path := groups[2]
			if path == "" {
				path = groups[3]
			}
			if isRemote(path) {
				return match
			}
			caption := groups[4]
			if caption == "" {
				caption = groups[5]
			}
			token := fmt.Sprintf("[[[IMAGE_%d_%s]]]", len(images), nonce)
			images = append(images, InlineImage{
				Token:   token,
				Alt:     groups[1],
				Path:    strings.TrimSpace(path),
				Caption: caption,
			})
			return "\n\n" + token + "\n\n"
		})
		out.WriteString(rewritten)
	}

	return out.String(), images
}

func isRemote(path string) bool {
	lowered := strings.ToLower(strings.TrimSpace(path))
	return strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://")
}

// runNonce returns eight hex characters scoped to one extraction run.
func runNonce() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("%08x", uint32(time.Now().UnixNano()))
	}
	return hex.EncodeToString(buf[:])
}

type bodySegment struct {
	text   string
	fenced bool
}

// splitFences partitions the body into plain and fenced-code segments so
// extraction never rewrites example Markdown inside code blocks. Indented
// code blocks are not masked; the converter treats any stray token there
// as literal text.
func splitFences(body string) []bodySegment {
	var segments []bodySegment
	var current strings.Builder
	fence := ""
	fenced := false

	flush := func() {
		if current.Len() == 0 {
			return
		}
		segments = append(segments, bodySegment{text: current.String(), fenced: fenced})
		current.Reset()
	}

	rest := body
	for len(rest) > 0 {
		line := rest
		if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
			line = rest[:idx+1]
			rest = rest[idx+1:]
		} else {
			rest = ""
		}

		marker := fenceMarker.FindStringSubmatch(line)
		switch {
		case !fenced && marker != nil:
			flush()
			fenced = true
			fence = marker[1]
			current.WriteString(line)
		case fenced && marker != nil && closesFence(marker[1], fence, line):
			current.WriteString(line)
			flush()
			fenced = false
			fence = ""
		default:
			current.WriteString(line)
		}
	}
	flush()
	return segments
}

func closesFence(marker, open, line string) bool {
	if marker == "" || open == "" || marker[0] != open[0] || len(marker) < len(open) {
		return false
	}
	trailer := strings.TrimLeft(line, " ")[len(marker):]
	return strings.TrimSpace(trailer) == ""
}
