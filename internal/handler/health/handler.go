package health

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docchat/backend/internal/model/document"
	"github.com/docchat/backend/pkg/utils"
)

const apiVersion = "1.0.0"

// IndexReader is the read-only slice of the retrieval gateway this handler
// needs: introspection and raw search, no chat semantics.
type IndexReader interface {
	Info(ctx context.Context) document.IndexInfo
	Search(ctx context.Context, queryText string, k int) []document.Passage
}

type Handler struct {
	index IndexReader
}

func New(index IndexReader) *Handler {
	return &Handler{index: index}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/index", h.handleIndexInfo)
	r.Get("/search", h.handleSearch)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := h.index.Info(r.Context())

	status := "healthy"
	if !info.Initialized {
		status = "degraded"
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"version":   apiVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"index":     info,
	})
}

func (h *Handler) handleIndexInfo(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.index.Info(r.Context()))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		utils.RespondError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results := h.index.Search(r.Context(), query, limit)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"query":         query,
		"results_count": len(results),
		"results":       results,
	})
}
