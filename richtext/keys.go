package richtext

import (
	"strings"

	"github.com/goliatone/go-blogimport/internal/identity"
)

// Keys hands out deterministic child keys for a single document. Seeding
// with the document id makes re-imports of unchanged input reproduce the
// exact same keys, so the backend records no phantom diffs.
type Keys struct {
	seed string
	next int
}

// NewKeys returns a key sequence scoped to the given seed, typically the
// document id.
func NewKeys(seed string) *Keys {
	return &Keys{seed: strings.TrimSpace(seed)}
}

// Next returns the next key in the sequence.
func (k *Keys) Next() string {
	key := identity.ChildKey(k.seed, k.next)
	k.next++
	return key
}

// EnsureKeys assigns a key to every block and span missing one and
// regenerates duplicates so keys stay unique within the document. Mark
// definition keys are filled when empty but never rewritten, because spans
// reference them by value; splitting a block legitimately copies the same
// definitions into sibling blocks.
func EnsureKeys(blocks []Block, keys *Keys) []Block {
	seen := map[string]struct{}{}

	claim := func(current string) string {
		candidate := current
		for {
			if candidate == "" {
				candidate = keys.Next()
			}
			if _, dup := seen[candidate]; !dup {
				seen[candidate] = struct{}{}
				return candidate
			}
			candidate = ""
		}
	}

	for i := range blocks {
		blocks[i].Key = claim(blocks[i].Key)
		for j := range blocks[i].Children {
			blocks[i].Children[j].Key = claim(blocks[i].Children[j].Key)
		}
		for j := range blocks[i].MarkDefs {
			if blocks[i].MarkDefs[j].Key == "" {
				blocks[i].MarkDefs[j].Key = keys.Next()
			}
		}
	}
	return blocks
}
