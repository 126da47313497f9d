package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chathandler "github.com/docchat/backend/internal/handler/chat"
	"github.com/docchat/backend/internal/handler/health"
	middlewarePkg "github.com/docchat/backend/internal/middleware"
	chatservice "github.com/docchat/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(orchestrator *chatservice.Orchestrator, index health.IndexReader, allowedOrigins []string, logger *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	chatHandler := chathandler.New(orchestrator)
	wsHandler := chathandler.NewWebSocketHandler(orchestrator, logger)
	healthHandler := health.New(index)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
		healthHandler.RegisterRoutes(api)
	})

	return r
}
