package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentID builds the identifier a document is stored under. Published
// documents live at "<type>-<slug>"; drafts carry the conventional
// "drafts." prefix so both variants of the same post can coexist.
func DocumentID(docType, slug string, draft bool) string {
	id := strings.TrimSpace(docType) + "-" + strings.TrimSpace(slug)
	if draft {
		return "drafts." + id
	}
	return id
}

// AuthorID derives the identifier for an author record created from a
// display name, keyed on the normalized slug.
func AuthorID(slug string) string {
	return "author-" + strings.TrimSpace(slug)
}

// ChildKey returns the nth deterministic child key for a document seed.
// Keys are short hex strings shaped like the ones hosted editors mint.
func ChildKey(seed string, n int) string {
	uid := UUID("blogimport:key:" + strings.TrimSpace(seed) + ":" + strconv.Itoa(n))
	return strings.ReplaceAll(uid.String(), "-", "")[:12]
}
