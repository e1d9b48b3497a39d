package search

import (
	"context"
	"strings"

	"worldloom-backend/internal/repository"
	appErrors "worldloom-backend/pkg/errors"
)

// DefaultHistorySize is the number of recent search terms kept per user
const DefaultHistorySize = 10

// History persists a user's recent search terms, most recent first,
// de-duplicated and capped.
type History struct {
	store repository.RecentSearchStore
	size  int
}

// NewHistory creates a recent-search history with the given cap. A
// non-positive cap falls back to DefaultHistorySize.
func NewHistory(store repository.RecentSearchStore, size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{store: store, size: size}
}

// Record notes a successful search term. Re-recording an existing term
// moves it to the front instead of duplicating it; the oldest term falls
// off once the cap is reached. Blank terms are ignored.
func (h *History) Record(ctx context.Context, userID, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return h.List(ctx, userID)
	}

	terms, err := h.store.LoadRecentSearches(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load recent searches")
	}

	updated := make([]string, 0, h.size)
	updated = append(updated, term)
	for _, existing := range terms {
		if strings.EqualFold(existing, term) {
			continue
		}
		updated = append(updated, existing)
		if len(updated) == h.size {
			break
		}
	}

	if err := h.store.SaveRecentSearches(ctx, userID, updated); err != nil {
		return nil, appErrors.Wrap(err, "failed to save recent searches")
	}
	return updated, nil
}

// List returns the user's recent search terms, most recent first
func (h *History) List(ctx context.Context, userID string) ([]string, error) {
	terms, err := h.store.LoadRecentSearches(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load recent searches")
	}
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

// Clear removes the user's entire search history
func (h *History) Clear(ctx context.Context, userID string) error {
	if err := h.store.SaveRecentSearches(ctx, userID, []string{}); err != nil {
		return appErrors.Wrap(err, "failed to clear recent searches")
	}
	return nil
}
