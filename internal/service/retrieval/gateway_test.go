package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/docchat/backend/internal/model/document"
)

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float64, error) {
	return f.vector, f.err
}

type fakeIndex struct {
	passages []document.Passage
	searchE  error
	count    int
	countE   error
}

func (f *fakeIndex) Search(_ context.Context, _ []float64, limit int) ([]document.Passage, error) {
	if f.searchE != nil {
		return nil, f.searchE
	}
	if len(f.passages) > limit {
		return f.passages[:limit], nil
	}
	return f.passages, nil
}

func (f *fakeIndex) Count(context.Context) (int, error) {
	return f.count, f.countE
}

func newGateway(e Embedder, i Index) *Gateway {
	return NewGateway(e, i, zap.NewNop().Sugar())
}

func TestSearchReturnsRankedPassages(t *testing.T) {
	index := &fakeIndex{passages: []document.Passage{
		{Text: "first", Score: 0.9},
		{Text: "second", Score: 0.7},
	}}
	g := newGateway(&fakeEmbedder{vector: []float64{0.1, 0.2}}, index)

	passages := g.Search(context.Background(), "checkout", 3)
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages[0].Text != "first" {
		t.Fatalf("expected descending order, got %q first", passages[0].Text)
	}
}

func TestSearchEmbeddingFailureYieldsEmpty(t *testing.T) {
	g := newGateway(&fakeEmbedder{err: errors.New("embeddings down")},
		&fakeIndex{passages: []document.Passage{{Text: "x", Score: 1}}})

	if passages := g.Search(context.Background(), "anything", 3); len(passages) != 0 {
		t.Fatalf("expected no passages on embedding failure, got %d", len(passages))
	}
}

func TestSearchIndexFailureYieldsEmpty(t *testing.T) {
	g := newGateway(&fakeEmbedder{vector: []float64{1}},
		&fakeIndex{searchE: errors.New("index down")})

	if passages := g.Search(context.Background(), "anything", 3); len(passages) != 0 {
		t.Fatalf("expected no passages on index failure, got %d", len(passages))
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	index := &fakeIndex{passages: []document.Passage{
		{Score: 0.9}, {Score: 0.8}, {Score: 0.7}, {Score: 0.6},
	}}
	g := newGateway(&fakeEmbedder{vector: []float64{1}}, index)

	if passages := g.Search(context.Background(), "q", 2); len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages := g.Search(context.Background(), "q", 0); passages != nil {
		t.Fatalf("expected nil for k=0, got %v", passages)
	}
}

func TestReady(t *testing.T) {
	g := newGateway(&fakeEmbedder{vector: []float64{1}}, &fakeIndex{count: 42})
	if err := g.Ready(context.Background()); err != nil {
		t.Fatalf("Ready err: %v", err)
	}

	broken := newGateway(&fakeEmbedder{vector: []float64{1}},
		&fakeIndex{countE: errors.New("unreachable")})
	if err := broken.Ready(context.Background()); err == nil {
		t.Fatal("expected Ready to fail when the index is unreachable")
	}
}

func TestInfo(t *testing.T) {
	g := newGateway(&fakeEmbedder{}, &fakeIndex{count: 793})
	info := g.Info(context.Background())
	if !info.Initialized || info.DocumentCount != 793 {
		t.Fatalf("unexpected info: %+v", info)
	}

	broken := newGateway(&fakeEmbedder{}, &fakeIndex{countE: errors.New("boom")})
	if info := broken.Info(context.Background()); info.Initialized {
		t.Fatalf("expected uninitialized info on failure, got %+v", info)
	}
}
