package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docchat/backend/internal/model/chat"
	"github.com/docchat/backend/internal/model/document"
	"github.com/docchat/backend/internal/service/intent"
)

var ErrEmptyMessage = errors.New("message is required")

// Fixed response texts. Backend failures must never leak raw errors to the
// widget, so both degraded paths answer with hand-authored copy.
const (
	contactResponse = "It sounds like you'd like to get in touch with our team. " +
		"You can reach us through the contact page on our website, or book a demo " +
		"and someone will follow up with you shortly. Is there anything about the " +
		"platform I can answer in the meantime?"

	apologyResponse = "I'm sorry, I'm having trouble answering that right now. " +
		"Please try again in a moment, or ask about another aspect of the platform."
)

// Generator produces an answer for message given the windowed history.
type Generator interface {
	Generate(ctx context.Context, message string, history []chat.Turn) (string, error)
}

// Retriever returns ranked passages for a query. Implementations never
// error; degraded backends yield an empty slice.
type Retriever interface {
	Search(ctx context.Context, queryText string, k int) []document.Passage
}

// Orchestrator owns conversation memory and assembles one Result per
// incoming message: intent gate, generation (or the contact shortcut),
// confidence scoring and source attribution, then the history update.
type Orchestrator struct {
	store      Store
	generator  Generator
	retriever  Retriever
	logger     *zap.SugaredLogger
	window     int
	sourceTopK int
}

// NewOrchestrator wires the orchestrator. generator may be nil when model
// credentials are absent; every answer then takes the apology path while
// retrieval-backed confidence and sources keep working.
func NewOrchestrator(store Store, generator Generator, retriever Retriever, logger *zap.SugaredLogger, window, sourceTopK int) *Orchestrator {
	if window <= 0 {
		window = 6
	}
	if sourceTopK <= 0 {
		sourceTopK = 3
	}
	return &Orchestrator{
		store:      store,
		generator:  generator,
		retriever:  retriever,
		logger:     logger,
		window:     window,
		sourceTopK: sourceTopK,
	}
}

// Chat processes one user message. The returned error only flags caller
// misuse (empty message); backend failures degrade inside and still produce
// a well-formed Result.
func (o *Orchestrator) Chat(ctx context.Context, message, conversationID string) (chat.Result, error) {
	if strings.TrimSpace(message) == "" {
		return chat.Result{}, ErrEmptyMessage
	}

	// Unknown ids mint a fresh conversation rather than erroring: the widget
	// may hold an id from before a restart.
	id := strings.TrimSpace(conversationID)
	if id == "" || !o.store.Exists(id) {
		id = uuid.NewString()
		o.store.Create(id)
	}

	history := o.store.History(id)
	window := lastTurns(history, o.window)

	contactIntent := intent.IsContactIntent(message)

	var responseText string
	if contactIntent {
		// Contact requests get a consistent, instant reply; no generation.
		responseText = contactResponse
	} else {
		responseText = o.generate(ctx, message, window)
	}

	// Retrieval runs on every branch so the contact shortcut still returns
	// the uniform sources/confidence shape. This is decoupled from whatever
	// context the generator saw.
	passages := o.retriever.Search(ctx, message, o.sourceTopK)

	result := chat.Result{
		Response:        responseText,
		ConversationID:  id,
		Sources:         collectSources(passages, o.sourceTopK),
		ConfidenceScore: meanScore(passages),
		ShowContact:     contactIntent,
	}

	o.store.AppendExchange(id,
		chat.Turn{Role: chat.RoleUser, Content: message},
		chat.Turn{Role: chat.RoleAssistant, Content: responseText},
	)

	return result, nil
}

// History exposes the full retained transcript for a conversation.
func (o *Orchestrator) History(conversationID string) ([]chat.Turn, bool) {
	if !o.store.Exists(conversationID) {
		return nil, false
	}
	return o.store.History(conversationID), true
}

func (o *Orchestrator) generate(ctx context.Context, message string, window []chat.Turn) string {
	if o.generator == nil {
		o.logger.Warnw("no generator configured, using fallback response")
		return apologyResponse
	}
	answer, err := o.generator.Generate(ctx, message, window)
	if err != nil {
		o.logger.Errorw("generation failed, using fallback response", "error", err)
		return apologyResponse
	}
	return answer
}

func lastTurns(turns []chat.Turn, n int) []chat.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// meanScore averages passage similarity, clamped to [0,1]. A heuristic
// relevance proxy, not a calibrated probability; zero when nothing matched.
func meanScore(passages []document.Passage) float64 {
	if len(passages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range passages {
		sum += p.Score
	}
	mean := sum / float64(len(passages))
	if mean < 0 {
		return 0
	}
	if mean > 1 {
		return 1
	}
	return mean
}

// collectSources keeps first-seen unique URLs, at most limit of them.
func collectSources(passages []document.Passage, limit int) []string {
	sources := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, p := range passages {
		if p.SourceURL == "" {
			continue
		}
		if _, ok := seen[p.SourceURL]; ok {
			continue
		}
		seen[p.SourceURL] = struct{}{}
		sources = append(sources, p.SourceURL)
		if len(sources) == limit {
			break
		}
	}
	return sources
}
