// Command indexer loads a scraped-corpus JSON file, chunks each page, embeds
// the chunks and upserts them into the Qdrant collection the API serves from.
package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/docchat/backend/internal/chunker"
	"github.com/docchat/backend/internal/config"
	"github.com/docchat/backend/internal/embedding"
	"github.com/docchat/backend/internal/logging"
	"github.com/docchat/backend/internal/model/document"
	"github.com/docchat/backend/internal/vectorstore"
)

type scrapedPage struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func main() {
	input := flag.String("input", "data/processed/scraped_data.json", "path to the scraped corpus JSON")
	sentences := flag.Int("sentences", 5, "sentences per chunk")
	overlap := flag.Int("overlap", 1, "overlapping sentences between chunks")
	reset := flag.Bool("reset", false, "drop the collection before indexing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := zapLogger.Sugar()

	data, err := os.ReadFile(*input)
	if err != nil {
		logger.Fatalw("failed to read corpus file", "path", *input, "error", err)
	}

	var pages []scrapedPage
	if err := json.Unmarshal(data, &pages); err != nil {
		logger.Fatalw("failed to parse corpus file", "path", *input, "error", err)
	}
	if len(pages) == 0 {
		logger.Fatalw("corpus file contains no pages", "path", *input)
	}

	embedder, err := embedding.NewClient(embedding.Config{
		BaseURL: cfg.Retrieval.EmbeddingBaseURL,
		APIKey:  cfg.Retrieval.EmbeddingAPIKey,
		Model:   cfg.Retrieval.EmbeddingModel,
		Timeout: time.Duration(cfg.Retrieval.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Fatalw("failed to initialize embeddings client", "error", err)
	}

	store := vectorstore.NewStorage(vectorstore.Config{
		URL:        cfg.Retrieval.QdrantURL,
		APIKey:     cfg.Retrieval.QdrantAPIKey,
		Collection: cfg.Retrieval.QdrantCollection,
		Timeout:    time.Duration(cfg.Retrieval.TimeoutSecs) * time.Second,
	})

	ctx := context.Background()
	split := chunker.NewSentenceChunker(*sentences, *overlap)

	var chunks []document.Chunk
	for _, page := range pages {
		doc := document.Document{
			ID:      hashString(page.URL),
			URL:     page.URL,
			Title:   page.Title,
			Content: page.Content,
		}
		chunks = append(chunks, split.Chunk(doc)...)
	}
	logger.Infow("corpus chunked", "pages", len(pages), "chunks", len(chunks))

	if *reset {
		if err := store.Clear(ctx); err != nil {
			logger.Warnw("failed to drop collection", "error", err)
		}
	}

	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			logger.Fatalw("embedding failed", "chunk", i, "error", err)
		}
		vectors[i] = vec
		if (i+1)%50 == 0 {
			logger.Infow("embedding progress", "done", i+1, "total", len(chunks))
		}
	}

	if err := store.EnsureCollection(ctx, len(vectors[0])); err != nil {
		logger.Fatalw("failed to ensure collection", "error", err)
	}

	// Upsert in batches so a large corpus doesn't build one giant request.
	const batchSize = 64
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := store.Upsert(ctx, chunks[start:end], vectors[start:end]); err != nil {
			logger.Fatalw("upsert failed", "batch_start", start, "error", err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		logger.Warnw("failed to read final count", "error", err)
	}
	logger.Infow("indexing complete", "chunks_indexed", len(chunks), "collection_points", count)
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
