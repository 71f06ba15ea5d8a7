package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-blogimport/internal/logging"
	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the attempt budget for transient failures.
	MaxRetries = 3

	// RetryDelay is the initial backoff between attempts; it doubles after
	// every transient failure.
	RetryDelay = time.Second
)

const (
	contentTypeJSON = "application/json"

	documentTypeAuthor = "author"
)

var (
	// ErrTransient marks failures worth retrying: 5xx responses and
	// network-level interruptions.
	ErrTransient = errors.New("contentapi: transient backend failure")

	// ErrFatalWrite marks responses the backend rejected outright; retrying
	// the same payload cannot succeed.
	ErrFatalWrite = errors.New("contentapi: backend rejected request")

	// ErrNotFound marks a 404 on a read endpoint.
	ErrNotFound = errors.New("contentapi: not found")
)

// Config carries the connection settings for the hosted content API.
type Config struct {
	BaseURL string
	Dataset string
	Token   string
}

// Client talks JSON over HTTP to the content backend. It implements
// interfaces.ContentBackend. Read lookups that find nothing return
// (nil, nil); transport failures surface as ErrTransient or ErrFatalWrite.
type Client struct {
	http    *http.Client
	routes  *Routes
	token   string
	logger  interfaces.Logger
	retries int
	delay   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger for request and retry diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetrySchedule overrides the attempt budget and the initial backoff.
func WithRetrySchedule(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retries = attempts
		}
		if delay > 0 {
			c.delay = delay
		}
	}
}

// NewClient builds a backend client for cfg. BaseURL and Dataset are
// required; Token may be empty against unauthenticated test servers.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("contentapi: base URL is required")
	}
	if strings.TrimSpace(cfg.Dataset) == "" {
		return nil, fmt.Errorf("contentapi: dataset is required")
	}

	client := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		routes:  NewRoutes(cfg.BaseURL, cfg.Dataset),
		token:   cfg.Token,
		logger:  logging.NoOp(),
		retries: MaxRetries,
		delay:   RetryDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// UploadAsset posts raw image bytes and returns the asset id the backend
// assigned.
func (c *Client) UploadAsset(ctx context.Context, upload interfaces.AssetUpload) (interfaces.Asset, error) {
	endpoint, err := c.routes.AssetUpload(upload.FileName)
	if err != nil {
		return interfaces.Asset{}, err
	}

	var decoded struct {
		Document struct {
			ID string `json:"_id"`
		} `json:"document"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, upload.MediaType, upload.Data, &decoded); err != nil {
		return interfaces.Asset{}, err
	}
	if decoded.Document.ID == "" {
		return interfaces.Asset{}, fmt.Errorf("%w: upload response missing document id", ErrFatalWrite)
	}
	return interfaces.Asset{ID: decoded.Document.ID}, nil
}

// UpsertDocument replaces the document with the given id, creating it when
// absent.
func (c *Client) UpsertDocument(ctx context.Context, doc interfaces.Document) error {
	endpoint, err := c.routes.DocUpsert()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(mutationEnvelope{
		Mutations: []mutation{{CreateOrReplace: doc}},
	})
	if err != nil {
		return fmt.Errorf("contentapi: encode document %s: %w", doc.ID, err)
	}
	return c.do(ctx, http.MethodPost, endpoint, contentTypeJSON, payload, nil)
}

// GetAuthor fetches an author document by id. A missing document is
// (nil, nil), not an error.
func (c *Client) GetAuthor(ctx context.Context, id string) (*interfaces.Author, error) {
	endpoint, err := c.routes.DocGet(id)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Documents []interfaces.Author `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &decoded); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(decoded.Documents) == 0 {
		return nil, nil
	}
	author := decoded.Documents[0]
	return &author, nil
}

// FindAuthorByName queries author documents and returns the first exact
// name match, or (nil, nil) when none exists.
func (c *Client) FindAuthorByName(ctx context.Context, name string) (*interfaces.Author, error) {
	endpoint, err := c.routes.AuthorQuery(documentTypeAuthor, name)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Result []interfaces.Author `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &decoded); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	for _, author := range decoded.Result {
		if author.Name == name {
			found := author
			return &found, nil
		}
	}
	return nil, nil
}

// CreateAuthorIfMissing writes the author document only when no document
// with its id exists yet.
func (c *Client) CreateAuthorIfMissing(ctx context.Context, author interfaces.Author) error {
	endpoint, err := c.routes.DocUpsert()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(mutationEnvelope{
		Mutations: []mutation{{CreateIfNotExists: author}},
	})
	if err != nil {
		return fmt.Errorf("contentapi: encode author %s: %w", author.ID, err)
	}
	return c.do(ctx, http.MethodPost, endpoint, contentTypeJSON, payload, nil)
}

// mutationEnvelope is the write payload shape the backend expects: a batch
// of mutations applied in order.
type mutationEnvelope struct {
	Mutations []mutation `json:"mutations"`
}

type mutation struct {
	CreateOrReplace   any `json:"createOrReplace,omitempty"`
	CreateIfNotExists any `json:"createIfNotExists,omitempty"`
}

// do issues the request, retrying transient failures with doubling backoff.
// The body reader is rebuilt from payload on every attempt.
func (c *Client) do(ctx context.Context, method, endpoint, contentType string, payload []byte, out any) error {
	var lastErr error
	delay := c.delay
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			c.logger.Debug("contentapi.retry",
				"method", method,
				"url", endpoint,
				"attempt", attempt,
			)
		}

		err := c.attempt(ctx, method, endpoint, contentType, payload, out)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTransient) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, endpoint, contentType string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("contentapi: build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		// Caller cancellation is not retried even when the transport
		// reports it as a timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isTransient(err) {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return fmt.Errorf("contentapi: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: read response: %v", ErrTransient, err)
	}

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrFatalWrite, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s %s returned %d", ErrTransient, method, endpoint, resp.StatusCode)
	default:
		return fmt.Errorf("%w: %s %s returned %d: %s",
			ErrFatalWrite, method, endpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}
}

// isTransient classifies transport errors worth another attempt: DNS
// not-found, timeouts, connection reset/refused, and mid-request EOF.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsNotFound || dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}
