package chunker

import (
	"regexp"
	"strings"

	"github.com/docchat/backend/internal/model/document"
)

// SentenceChunker splits documents into sentence-based chunks with overlap so
// neighbouring chunks share context at their boundaries.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

func (c *SentenceChunker) Chunk(doc document.Document) []document.Chunk {
	sentences := c.splitter.FindAllString(doc.Content, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(doc.Content)
		if trimmed == "" {
			return nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []document.Chunk
	idx := 0
	for i := 0; i < len(sentences); {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, document.Chunk{
			DocumentID: doc.ID,
			Index:      idx,
			Text:       strings.Join(sentences[i:end], " "),
			SourceURL:  doc.URL,
			Title:      doc.Title,
		})
		idx++
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks
}
