package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-blogimport/pkg/interfaces"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL: server.URL,
		Dataset: "production",
		Token:   "test-token",
	}, WithRetrySchedule(3, time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestClientRequiresBaseURLAndDataset(t *testing.T) {
	if _, err := NewClient(Config{Dataset: "production"}); err == nil {
		t.Error("expected error for missing base URL")
	}
	if _, err := NewClient(Config{BaseURL: "https://cms.example.com"}); err == nil {
		t.Error("expected error for missing dataset")
	}
}

func TestClientUploadAssetRetriesTransient(t *testing.T) {
	var attempts int32
	router := chi.NewRouter()
	router.Post("/v1/assets/images/{dataset}", func(w http.ResponseWriter, req *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		if got := req.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		if got := req.Header.Get("Content-Type"); got != "image/png" {
			t.Errorf("content type = %q", got)
		}
		if got := chi.URLParam(req, "dataset"); got != "production" {
			t.Errorf("dataset = %q", got)
		}
		if got := req.URL.Query().Get("filename"); got != "cover.png" {
			t.Errorf("filename hint = %q", got)
		}
		body, _ := io.ReadAll(req.Body)
		if !bytes.Equal(body, []byte("png-bytes")) {
			t.Errorf("body on final attempt = %q", body)
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		fmt.Fprint(w, `{"document":{"_id":"image-remote-1"}}`)
	})
	client := newTestClient(t, router)

	asset, err := client.UploadAsset(context.Background(), interfaces.AssetUpload{
		FileName:  "cover.png",
		MediaType: "image/png",
		Data:      []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("UploadAsset: %v", err)
	}
	if asset.ID != "image-remote-1" {
		t.Errorf("asset id = %q, want image-remote-1", asset.ID)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestClientGivesUpAfterRetryBudget(t *testing.T) {
	var attempts int32
	router := chi.NewRouter()
	router.Post("/v1/assets/images/{dataset}", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "still down", http.StatusServiceUnavailable)
	})
	client := newTestClient(t, router)

	_, err := client.UploadAsset(context.Background(), interfaces.AssetUpload{
		FileName:  "cover.png",
		MediaType: "image/png",
		Data:      []byte("png-bytes"),
	})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestClientDoesNotRetryRejectedWrites(t *testing.T) {
	var attempts int32
	router := chi.NewRouter()
	router.Post("/v1/data/upsert/{dataset}", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "malformed mutation", http.StatusBadRequest)
	})
	client := newTestClient(t, router)

	err := client.UpsertDocument(context.Background(), interfaces.Document{ID: "post-hello", Type: "post"})
	if !errors.Is(err, ErrFatalWrite) {
		t.Fatalf("err = %v, want ErrFatalWrite", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestClientDoesNotRetryAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int32
	router := chi.NewRouter()
	router.Post("/v1/data/upsert/{dataset}", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		cancel()
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	client := newTestClient(t, router)

	err := client.UpsertDocument(ctx, interfaces.Document{ID: "post-hello", Type: "post"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestClientUpsertDocumentSendsCreateOrReplace(t *testing.T) {
	var captured []byte
	router := chi.NewRouter()
	router.Post("/v1/data/upsert/{dataset}", func(w http.ResponseWriter, req *http.Request) {
		captured, _ = io.ReadAll(req.Body)
		w.Header().Set("Content-Type", contentTypeJSON)
		fmt.Fprint(w, `{"results":[{"id":"post-hello"}]}`)
	})
	client := newTestClient(t, router)

	doc := interfaces.Document{ID: "post-hello", Type: "post", Title: "Hello"}
	if err := client.UpsertDocument(context.Background(), doc); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	var envelope struct {
		Mutations []map[string]json.RawMessage `json:"mutations"`
	}
	if err := json.Unmarshal(captured, &envelope); err != nil {
		t.Fatalf("decode payload %s: %v", captured, err)
	}
	if len(envelope.Mutations) != 1 {
		t.Fatalf("mutations = %d, want 1", len(envelope.Mutations))
	}
	raw, ok := envelope.Mutations[0]["createOrReplace"]
	if !ok {
		t.Fatalf("payload missing createOrReplace: %s", captured)
	}
	var sent struct {
		ID    string `json:"_id"`
		Type  string `json:"_type"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &sent); err != nil {
		t.Fatalf("decode mutation: %v", err)
	}
	if sent.ID != "post-hello" || sent.Type != "post" || sent.Title != "Hello" {
		t.Errorf("sent document = %+v", sent)
	}
}

func TestClientCreateAuthorIfMissingSendsGuardedMutation(t *testing.T) {
	var captured []byte
	router := chi.NewRouter()
	router.Post("/v1/data/upsert/{dataset}", func(w http.ResponseWriter, req *http.Request) {
		captured, _ = io.ReadAll(req.Body)
		w.Header().Set("Content-Type", contentTypeJSON)
		fmt.Fprint(w, `{"results":[]}`)
	})
	client := newTestClient(t, router)

	author := interfaces.Author{ID: "author-jane-doe", Type: "author", Name: "Jane Doe", Slug: "jane-doe"}
	if err := client.CreateAuthorIfMissing(context.Background(), author); err != nil {
		t.Fatalf("CreateAuthorIfMissing: %v", err)
	}

	var envelope struct {
		Mutations []map[string]interfaces.Author `json:"mutations"`
	}
	if err := json.Unmarshal(captured, &envelope); err != nil {
		t.Fatalf("decode payload %s: %v", captured, err)
	}
	if len(envelope.Mutations) != 1 {
		t.Fatalf("mutations = %d, want 1", len(envelope.Mutations))
	}
	sent, ok := envelope.Mutations[0]["createIfNotExists"]
	if !ok {
		t.Fatalf("payload missing createIfNotExists: %s", captured)
	}
	if sent != author {
		t.Errorf("sent author = %+v, want %+v", sent, author)
	}
}

func TestClientGetAuthor(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/v1/data/doc/{dataset}/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "author-jane-doe" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		fmt.Fprint(w, `{"documents":[{"_id":"author-jane-doe","_type":"author","name":"Jane Doe","slug":"jane-doe"}]}`)
	})
	client := newTestClient(t, router)

	author, err := client.GetAuthor(context.Background(), "author-jane-doe")
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if author == nil || author.Name != "Jane Doe" || author.Slug != "jane-doe" {
		t.Errorf("author = %+v", author)
	}

	missing, err := client.GetAuthor(context.Background(), "author-ghost")
	if err != nil {
		t.Fatalf("GetAuthor missing id: %v", err)
	}
	if missing != nil {
		t.Errorf("missing author = %+v, want nil", missing)
	}
}

func TestClientFindAuthorByNameMatchesExactly(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/v1/data/query/{dataset}", func(w http.ResponseWriter, req *http.Request) {
		if got := req.URL.Query().Get("type"); got != "author" {
			t.Errorf("type filter = %q", got)
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		fmt.Fprint(w, `{"result":[
			{"_id":"author-jane-doering","_type":"author","name":"Jane Doering","slug":"jane-doering"},
			{"_id":"author-jane-doe","_type":"author","name":"Jane Doe","slug":"jane-doe"}
		]}`)
	})
	client := newTestClient(t, router)

	author, err := client.FindAuthorByName(context.Background(), "Jane Doe")
	if err != nil {
		t.Fatalf("FindAuthorByName: %v", err)
	}
	if author == nil || author.ID != "author-jane-doe" {
		t.Errorf("author = %+v, want author-jane-doe", author)
	}

	missing, err := client.FindAuthorByName(context.Background(), "John Smith")
	if err != nil {
		t.Fatalf("FindAuthorByName missing: %v", err)
	}
	if missing != nil {
		t.Errorf("missing author = %+v, want nil", missing)
	}
}
