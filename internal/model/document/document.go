package document

// Passage is a retrieved excerpt with its similarity score and source metadata.
// Scores are backend-defined but monotonic: higher means more relevant.
type Passage struct {
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	SourceURL string  `json:"source_url,omitempty"`
	Title     string  `json:"title,omitempty"`
}

// IndexInfo reports the state of the underlying document index.
type IndexInfo struct {
	DocumentCount int  `json:"document_count"`
	Initialized   bool `json:"initialized"`
}

// Document is one scraped page fed to the indexer.
type Document struct {
	ID      string
	URL     string
	Title   string
	Content string
}

// Chunk is an indexable slice of a document.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
	SourceURL  string
	Title      string
}
