// Package browse filters and sorts a project's element collection for the
// library view.
package browse

import (
	"context"
	"sort"
	"strings"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/service/element"
	appErrors "worldloom-backend/pkg/errors"
)

// SortKey selects the ordering of a browse result
type SortKey string

const (
	SortName       SortKey = "name"       // alphabetical ascending
	SortUpdated    SortKey = "updated"    // most recently updated first
	SortCreated    SortKey = "created"    // most recently created first
	SortCompletion SortKey = "completion" // most complete first
)

// Filter narrows a browse result. A zero Filter matches everything.
type Filter struct {
	// Category restricts the result to one category. Empty or
	// domain.CategoryAll matches every category.
	Category string
	// Query is matched case-insensitively against name, description and
	// tags. Empty matches everything.
	Query string
}

// Service assembles filtered, sorted element listings
type Service struct {
	elements *element.Service
}

// NewService creates a browse service
func NewService(elements *element.Service) *Service {
	return &Service{elements: elements}
}

// Browse lists a project's elements narrowed by the filter and ordered by
// the sort key. An empty sort key defaults to alphabetical order. Ties are
// broken by element ID so repeated calls return a stable order.
func (s *Service) Browse(ctx context.Context, userID, projectID string, filter Filter, key SortKey) ([]*element.ElementWithCompletion, error) {
	if key == "" {
		key = SortName
	}
	if !validSortKey(key) {
		return nil, appErrors.NewValidationError("unknown sort key: " + string(key))
	}
	if filter.Category != "" && filter.Category != domain.CategoryAll && !domain.Category(filter.Category).IsValid() {
		return nil, appErrors.NewValidationError("unknown category: " + filter.Category)
	}

	elements, err := s.elements.List(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	filtered := Apply(elements, filter)
	Sort(filtered, key)
	return filtered, nil
}

// Apply returns the elements matching the filter, preserving input order
func Apply(elements []*element.ElementWithCompletion, filter Filter) []*element.ElementWithCompletion {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]*element.ElementWithCompletion, 0, len(elements))
	for _, el := range elements {
		if !matchesCategory(el, filter.Category) {
			continue
		}
		if query != "" && !matchesQuery(el, query) {
			continue
		}
		result = append(result, el)
	}
	return result
}

// Sort orders the elements in place by the sort key, ties broken by ID
func Sort(elements []*element.ElementWithCompletion, key SortKey) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		switch key {
		case SortUpdated:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		case SortCreated:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case SortCompletion:
			if a.Completion != b.Completion {
				return a.Completion > b.Completion
			}
		default: // SortName
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
		}
		return a.ID < b.ID
	})
}

func validSortKey(key SortKey) bool {
	switch key {
	case SortName, SortUpdated, SortCreated, SortCompletion:
		return true
	}
	return false
}

func matchesCategory(el *element.ElementWithCompletion, category string) bool {
	if category == "" || category == domain.CategoryAll {
		return true
	}
	return el.Category == domain.Category(category)
}

func matchesQuery(el *element.ElementWithCompletion, query string) bool {
	if strings.Contains(strings.ToLower(el.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(el.Description), query) {
		return true
	}
	for _, tag := range el.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
