package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/docchat/backend/internal/service/chat"
	"github.com/docchat/backend/pkg/utils"
)

// Handler exposes the conversation orchestrator over HTTP.
type Handler struct {
	orchestrator *chatservice.Orchestrator
}

func New(orchestrator *chatservice.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/conversations/{conversationID}", h.handleTranscript)
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orchestrator.Chat(r.Context(), payload.Message, payload.ConversationID)
	if err != nil {
		if errors.Is(err, chatservice.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, "message is required")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	turns, ok := h.orchestrator.History(conversationID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"turns":           turns,
	})
}
