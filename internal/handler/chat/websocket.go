package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chatservice "github.com/docchat/backend/internal/service/chat"
)

// WebSocketHandler serves chat over a persistent connection so the widget can
// keep one socket open per visit. Frames carry whole responses; there is no
// token streaming.
type WebSocketHandler struct {
	orchestrator *chatservice.Orchestrator
	logger       *zap.SugaredLogger
	upgrader     websocket.Upgrader
}

func NewWebSocketHandler(orchestrator *chatservice.Orchestrator, logger *zap.SugaredLogger) *WebSocketHandler {
	return &WebSocketHandler{
		orchestrator: orchestrator,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleWebSocket)
}

type wsInbound struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type wsError struct {
	Error string `json:"error"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnw("websocket read failed", "error", err)
			}
			return
		}

		result, err := h.orchestrator.Chat(r.Context(), inbound.Message, inbound.ConversationID)
		if err != nil {
			if werr := conn.WriteJSON(wsError{Error: "message is required"}); werr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(result); err != nil {
			h.logger.Warnw("websocket write failed", "error", err)
			return
		}
	}
}
