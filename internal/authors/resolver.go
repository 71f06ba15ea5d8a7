package authors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-blogimport/internal/identity"
	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

// ErrAuthorNotFound marks an explicit author id that does not exist in
// the backend.
var ErrAuthorNotFound = errors.New("authors: author not found")

const authorType = "author"

// Resolver turns frontmatter author fields into the reference id documents
// point at, creating author records on demand. Resolved lookups are cached
// per resolver so a run importing many posts by one author asks the
// backend once.
type Resolver struct {
	backend  interfaces.ContentBackend
	logger   interfaces.Logger
	simulate bool

	mu       sync.Mutex
	byName   map[string]string
	verified map[string]struct{}
}

// Option customises resolver construction.
type Option func(*Resolver)

// WithLogger routes resolver logging to the supplied logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSimulate switches the resolver to dry-run mode: existence checks and
// creation are skipped, the deterministic id is returned directly, and the
// intended action is logged.
func WithSimulate(simulate bool) Option {
	return func(r *Resolver) {
		r.simulate = simulate
	}
}

// NewResolver builds a resolver backed by the given content backend. The
// backend may be nil in simulate mode.
func NewResolver(backend interfaces.ContentBackend, opts ...Option) *Resolver {
	resolver := &Resolver{
		backend:  backend,
		logger:   logging.NoOp(),
		byName:   map[string]string{},
		verified: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Ensure resolves an explicit id or a display name to a reference id.
// Explicit ids must already exist; names are matched exactly, case
// sensitively, and created with a deterministic id when absent.
func (r *Resolver) Ensure(ctx context.Context, authorID, name string) (string, error) {
	if id := strings.TrimSpace(authorID); id != "" {
		return r.verify(ctx, id)
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return r.ensureByName(ctx, trimmed)
	}
	return "", errors.New("authors: neither author id nor name provided")
}

func (r *Resolver) verify(ctx context.Context, id string) (string, error) {
	if r.simulate {
		r.logger.Debug("authors.verify.skipped", "author_id", id)
		return id, nil
	}

	r.mu.Lock()
	_, ok := r.verified[id]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	author, err := r.backend.GetAuthor(ctx, id)
	if err != nil {
		return "", fmt.Errorf("authors: fetch %s: %w", id, err)
	}
	if author == nil {
		return "", fmt.Errorf("%w: %s", ErrAuthorNotFound, id)
	}

	r.mu.Lock()
	r.verified[id] = struct{}{}
	r.mu.Unlock()
	return id, nil
}

func (r *Resolver) ensureByName(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	if id, ok := r.byName[name]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	normalized, err := slug.Normalize(name)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("authors: slugify %q: %v", name, err)
	}
	id := identity.AuthorID(normalized)

	if r.simulate {
		r.logger.Info("[dry] would ensure author "+name, "author_id", id)
		r.remember(name, id)
		return id, nil
	}

	existing, err := r.backend.FindAuthorByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("authors: find %q: %w", name, err)
	}
	if existing != nil {
		r.remember(name, existing.ID)
		return existing.ID, nil
	}

	author := interfaces.Author{ID: id, Type: authorType, Name: name, Slug: normalized}
	if err := r.backend.CreateAuthorIfMissing(ctx, author); err != nil {
		return "", fmt.Errorf("authors: create %q: %w", name, err)
	}
	r.logger.Info("authors.create.success", "name", name, "author_id", id)
	r.remember(name, id)
	return id, nil
}

func (r *Resolver) remember(name, id string) {
	r.mu.Lock()
	r.byName[name] = id
	r.mu.Unlock()
}
