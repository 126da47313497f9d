package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/docchat/backend/internal/config"
	"github.com/docchat/backend/internal/model/chat"
	"github.com/docchat/backend/internal/model/document"
)

const systemInstruction = "You are the documentation assistant for this product. " +
	"Answer ONLY using the provided context about the indexed documentation. " +
	"Be concise and practical. If the context does not cover the question, say " +
	"you don't have that information rather than guessing. Never invent facts, " +
	"pricing, or policies."

// Retriever supplies the context passages the model answers from.
type Retriever interface {
	Search(ctx context.Context, queryText string, k int) []document.Passage
}

// Service generates grounded answers. It runs its own retrieval to build the
// prompt context; callers who need citations retrieve separately.
type Service struct {
	chain       compose.Runnable[map[string]any, *schema.Message]
	retriever   Retriever
	contextTopK int
	logger      *zap.SugaredLogger
}

// NewService creates the generation service backed by the configured model.
func NewService(ctx context.Context, cfg config.AIConfig, retriever Retriever, logger *zap.SugaredLogger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	topK := cfg.ContextTopK
	if topK <= 0 {
		topK = 5
	}

	return &Service{
		chain:       runnable,
		retriever:   retriever,
		contextTopK: topK,
		logger:      logger,
	}, nil
}

// Generate answers message using the windowed history and freshly retrieved
// context. Errors propagate; the orchestrator owns the degraded path.
func (s *Service) Generate(ctx context.Context, message string, history []chat.Turn) (string, error) {
	passages := s.retriever.Search(ctx, message, s.contextTopK)

	input := map[string]any{
		"system":  buildSystemPrompt(passages),
		"history": buildHistoryMessages(history),
		"query":   message,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	s.logger.Debugw("generated response", "context_passages", len(passages), "length", len(response.Content))
	return response.Content, nil
}

// buildSystemPrompt renders the fixed instruction plus the retrieved context
// blocks the model is allowed to answer from.
func buildSystemPrompt(passages []document.Passage) string {
	var builder strings.Builder
	builder.WriteString(systemInstruction)
	builder.WriteString("\n\nContext:\n")
	if len(passages) == 0 {
		builder.WriteString("(no relevant documentation was retrieved for this question)")
		return builder.String()
	}
	for i, p := range passages {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		title := p.Title
		if title == "" {
			title = "Documentation"
		}
		builder.WriteString("Title: ")
		builder.WriteString(title)
		if p.SourceURL != "" {
			builder.WriteString("\nURL: ")
			builder.WriteString(p.SourceURL)
		}
		builder.WriteString("\nContent: ")
		builder.WriteString(p.Text)
	}
	return builder.String()
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}
	history := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(t.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(t.Content, nil))
		}
	}
	return history
}
