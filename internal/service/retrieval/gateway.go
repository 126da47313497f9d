package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docchat/backend/internal/model/document"
)

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Index performs similarity search over the document index.
type Index interface {
	Search(ctx context.Context, vector []float64, limit int) ([]document.Passage, error)
	Count(ctx context.Context) (int, error)
}

// Gateway wraps the embedding and index backends behind a single search
// contract. Once constructed it never surfaces backend errors to callers:
// a failed search degrades to an empty result.
type Gateway struct {
	embedder Embedder
	index    Index
	logger   *zap.SugaredLogger
}

func NewGateway(embedder Embedder, index Index, logger *zap.SugaredLogger) *Gateway {
	return &Gateway{embedder: embedder, index: index, logger: logger}
}

// Ready probes the index. Called once at startup; a failure here is fatal
// because the service must not answer questions without its corpus.
func (g *Gateway) Ready(ctx context.Context) error {
	count, err := g.index.Count(ctx)
	if err != nil {
		return fmt.Errorf("index not reachable: %w", err)
	}
	g.logger.Infow("document index ready", "documents", count)
	return nil
}

// Search returns up to k passages ordered by descending relevance. Backend
// failures and no-match conditions both yield an empty slice.
func (g *Gateway) Search(ctx context.Context, queryText string, k int) []document.Passage {
	if k <= 0 || queryText == "" {
		return nil
	}

	vector, err := g.embedder.Embed(ctx, queryText)
	if err != nil {
		g.logger.Warnw("embedding failed, returning no passages", "error", err)
		return nil
	}

	passages, err := g.index.Search(ctx, vector, k)
	if err != nil {
		g.logger.Warnw("index search failed, returning no passages", "error", err)
		return nil
	}
	return passages
}

// Info reports document count for health introspection. Initialized is false
// when the index cannot currently be reached.
func (g *Gateway) Info(ctx context.Context) document.IndexInfo {
	count, err := g.index.Count(ctx)
	if err != nil {
		g.logger.Warnw("index count failed", "error", err)
		return document.IndexInfo{Initialized: false}
	}
	return document.IndexInfo{DocumentCount: count, Initialized: true}
}
