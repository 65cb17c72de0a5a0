package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"showcal/internal/search"
)

// SearchHandler serves GET /api/search.
type SearchHandler struct {
	index  *search.Index
	logger *slog.Logger
}

func NewSearchHandler(index *search.Index, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{index: index, logger: logger}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be 1-100")
			return
		}
		limit = n
	}

	results, err := h.index.Search(q, limit)
	if err != nil {
		h.logger.Error("search", "q", q, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
