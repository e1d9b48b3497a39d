// Package search implements global search across a user's projects and
// elements, with sequence-guarded dispatch and recent-search history.
package search

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/repository"
	appErrors "worldloom-backend/pkg/errors"
)

// ResultKind tags a search hit as a project or an element
type ResultKind string

const (
	KindProject ResultKind = "project"
	KindElement ResultKind = "element"
)

// Result is a single typed search hit
type Result struct {
	Kind        ResultKind      `json:"kind"`
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    domain.Category `json:"category,omitempty"`
}

// Service matches queries against project and element names, descriptions
// and tags
type Service struct {
	projects repository.ProjectRepository
	elements repository.ElementRepository
	logger   *zap.Logger
}

// NewService creates a search service
func NewService(projects repository.ProjectRepository, elements repository.ElementRepository, logger *zap.Logger) *Service {
	return &Service{projects: projects, elements: elements, logger: logger}
}

// Search returns every project and element of the user matching the query,
// projects first, each group ordered by name. Matching is a
// case-insensitive substring check over name, description and tags.
func (s *Service) Search(ctx context.Context, userID, query string) ([]Result, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, appErrors.NewValidationError("search query cannot be empty")
	}

	projects, err := s.projects.FindProjectsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list projects")
	}

	results := make([]Result, 0)
	for _, project := range projects {
		if containsFold(project.Name, query) || containsFold(project.Description, query) {
			results = append(results, Result{
				Kind:        KindProject,
				ID:          project.ID,
				ProjectID:   project.ID,
				Name:        project.Name,
				Description: project.Description,
			})
		}
	}
	sortByName(results)

	elementHits := make([]Result, 0)
	for _, project := range projects {
		elements, err := s.elements.FindElementsByProject(ctx, userID, project.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, "failed to list elements")
		}
		for _, element := range elements {
			if matchesElement(element, query) {
				elementHits = append(elementHits, Result{
					Kind:        KindElement,
					ID:          element.ID,
					ProjectID:   element.ProjectID,
					Name:        element.Name,
					Description: element.Description,
					Category:    element.Category,
				})
			}
		}
	}
	sortByName(elementHits)

	return append(results, elementHits...), nil
}

func matchesElement(element *domain.Element, query string) bool {
	if containsFold(element.Name, query) || containsFold(element.Description, query) {
		return true
	}
	for _, tag := range element.Tags {
		if containsFold(tag, query) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

func sortByName(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := strings.ToLower(results[i].Name), strings.ToLower(results[j].Name)
		if a != b {
			return a < b
		}
		return results[i].ID < results[j].ID
	})
}

// ErrStale reports that a search was superseded by a later dispatch
// before it completed. Callers drop the result and keep the latest one.
var ErrStale = appErrors.NewConflictError("search superseded by a newer query")

// Searcher serializes search dispatches with a monotonically increasing
// sequence so a slow early search can never overwrite the result of a
// later one.
type Searcher struct {
	service *Service
	latest  atomic.Uint64
}

// NewSearcher creates a sequence-guarded searcher
func NewSearcher(service *Service) *Searcher {
	return &Searcher{service: service}
}

// NextSequence claims the next dispatch sequence number
func (s *Searcher) NextSequence() uint64 {
	return s.latest.Add(1)
}

// Search dispatches a query under a fresh sequence number
func (s *Searcher) Search(ctx context.Context, userID, query string) ([]Result, error) {
	return s.SearchWithSequence(ctx, userID, query, s.NextSequence())
}

// SearchWithSequence runs a query under a previously claimed sequence
// number. If a later sequence was claimed before this search finished the
// result is discarded and ErrStale is returned.
func (s *Searcher) SearchWithSequence(ctx context.Context, userID, query string, sequence uint64) ([]Result, error) {
	results, err := s.service.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	if sequence != s.latest.Load() {
		return nil, ErrStale
	}
	return results, nil
}
