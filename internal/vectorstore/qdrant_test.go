package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docchat/backend/internal/model/document"
)

func newTestStorage(t *testing.T, handler http.HandlerFunc) *Storage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStorage(Config{URL: srv.URL, Collection: "docs", APIKey: "secret"})
}

func TestSearchMapsPayloadToPassages(t *testing.T) {
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/docs/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("api-key"); got != "secret" {
			t.Errorf("missing api-key header, got %q", got)
		}

		var req struct {
			Vector      []float64 `json:"vector"`
			Limit       int       `json:"limit"`
			WithPayload bool      `json:"with_payload"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Limit != 3 || !req.WithPayload || len(req.Vector) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"score": 0.91,
					"payload": map[string]any{
						"text":       "chunk one",
						"source_url": "https://example.com/one",
						"title":      "Page One",
					},
				},
				{
					"score":   0.42,
					"payload": map[string]any{"text": "chunk two"},
				},
			},
		})
	})

	passages, err := store.Search(context.Background(), []float64{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("Search err: %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	want := document.Passage{Text: "chunk one", Score: 0.91, SourceURL: "https://example.com/one", Title: "Page One"}
	if passages[0] != want {
		t.Fatalf("unexpected first passage: %+v", passages[0])
	}
	if passages[1].SourceURL != "" {
		t.Fatalf("expected empty source url, got %q", passages[1].SourceURL)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	if _, err := store.Search(context.Background(), []float64{1}, 3); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestCount(t *testing.T) {
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/docs/points/count" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Exact bool `json:"exact"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Exact {
			t.Error("expected exact count request")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": 793}})
	})

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count err: %v", err)
	}
	if count != 793 {
		t.Fatalf("expected 793, got %d", count)
	}
}

func TestUpsertBuildsPoints(t *testing.T) {
	var captured struct {
		Points []struct {
			ID      uint64         `json:"id"`
			Vector  []float64      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	store := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	chunks := []document.Chunk{
		{DocumentID: "abc", Index: 0, Text: "first", SourceURL: "https://example.com", Title: "T"},
		{DocumentID: "abc", Index: 1, Text: "second", SourceURL: "https://example.com", Title: "T"},
	}
	vectors := [][]float64{{0.1}, {0.2}}

	if err := store.Upsert(context.Background(), chunks, vectors); err != nil {
		t.Fatalf("Upsert err: %v", err)
	}
	if len(captured.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(captured.Points))
	}
	if captured.Points[0].ID == captured.Points[1].ID {
		t.Fatal("expected distinct point ids for distinct chunk indexes")
	}
	if got := captured.Points[0].Payload["text"]; got != "first" {
		t.Fatalf("unexpected payload text: %v", got)
	}
	if got := captured.Points[0].Payload["source_url"]; got != "https://example.com" {
		t.Fatalf("unexpected payload source_url: %v", got)
	}
}

func TestUpsertLengthMismatch(t *testing.T) {
	store := NewStorage(Config{URL: "http://localhost:0", Collection: "docs"})
	err := store.Upsert(context.Background(), []document.Chunk{{DocumentID: "a"}}, nil)
	if err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestPointIDDeterministic(t *testing.T) {
	c := document.Chunk{DocumentID: "abc", Index: 3}
	if pointID(c) != pointID(c) {
		t.Fatal("pointID must be stable for the same chunk")
	}
	other := document.Chunk{DocumentID: "abc", Index: 4}
	if pointID(c) == pointID(other) {
		t.Fatal("pointID must differ across chunk indexes")
	}
}

func TestEnsureCollectionInvalidDimension(t *testing.T) {
	store := NewStorage(Config{URL: "http://localhost:0", Collection: "docs"})
	if err := store.EnsureCollection(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}
