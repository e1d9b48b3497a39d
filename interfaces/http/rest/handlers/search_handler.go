package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"worldloom-backend/internal/service/search"
	appErrors "worldloom-backend/pkg/errors"
)

// SearchHandler handles global search and recent-search history
type SearchHandler struct {
	base
	searcher *search.Searcher
	history  *search.History
}

// NewSearchHandler creates a search handler
func NewSearchHandler(searcher *search.Searcher, history *search.History, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		base:     base{errors: errorHandler, logger: logger},
		searcher: searcher,
		history:  history,
	}
}

// Search handles GET /search?q=term. Successful searches are recorded in
// the user's recent-search history.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	query := r.URL.Query().Get("q")

	results, err := h.searcher.Search(r.Context(), uid, query)
	if err != nil {
		if errors.Is(err, search.ErrStale) {
			// a newer search owns the response now
			respondJSON(w, http.StatusOK, map[string]interface{}{"results": []search.Result{}, "stale": true})
			return
		}
		h.errors.Handle(w, r, err)
		return
	}

	if _, err := h.history.Record(r.Context(), uid, query); err != nil {
		h.logger.Warn("failed to record search history",
			zap.String("query", query),
			zap.Error(err),
		)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Recent handles GET /search/recent
func (h *SearchHandler) Recent(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	terms, err := h.history.List(r.Context(), uid)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"recent": terms})
}

// ClearRecent handles DELETE /search/recent
func (h *SearchHandler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.history.Clear(r.Context(), uid); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
