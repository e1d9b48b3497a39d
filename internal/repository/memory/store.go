// Package memory provides an in-memory implementation of the repository
// interfaces, used by unit tests and local development mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/repository"
)

// Store is a mutex-guarded in-memory implementation of every repository
// interface. All returned entities are copies so callers cannot mutate the
// store through shared pointers.
type Store struct {
	mu sync.RWMutex

	projects      map[string]*domain.Project      // projectID -> project
	elements      map[string]*domain.Element      // elementID -> element
	relationships map[string]*domain.Relationship // relationshipID -> relationship
	templates     map[string]domain.Template      // projectID/category -> template
	recent        map[string][]string             // userID -> recent search terms

	// forcedErrors lets tests simulate store failures per operation name
	forcedErrors map[string]error
}

// Compile-time interface checks
var (
	_ repository.ProjectRepository      = (*Store)(nil)
	_ repository.ElementRepository      = (*Store)(nil)
	_ repository.RelationshipRepository = (*Store)(nil)
	_ repository.TemplateRepository     = (*Store)(nil)
	_ repository.RecentSearchStore      = (*Store)(nil)
)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		projects:      make(map[string]*domain.Project),
		elements:      make(map[string]*domain.Element),
		relationships: make(map[string]*domain.Relationship),
		templates:     make(map[string]domain.Template),
		recent:        make(map[string][]string),
		forcedErrors:  make(map[string]error),
	}
}

// SetError forces the named operation to fail with the given error.
// Passing a nil error clears the override.
func (s *Store) SetError(operation string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.forcedErrors, operation)
		return
	}
	s.forcedErrors[operation] = err
}

func (s *Store) forced(operation string) error {
	return s.forcedErrors[operation]
}

// ownsProject reports whether the project exists and belongs to the user.
// The DynamoDB implementation scopes both into the partition key, so a
// lookup under another user's ID never sees the item; element and
// relationship methods mirror that here. Callers must hold the lock.
func (s *Store) ownsProject(userID, projectID string) bool {
	project, ok := s.projects[projectID]
	return ok && project.UserID == userID
}

// ---- ProjectRepository ----

func (s *Store) CreateProject(ctx context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("CreateProject"); err != nil {
		return err
	}
	if _, exists := s.projects[project.ID]; exists {
		return repository.NewConflict("project", project.ID, "already exists")
	}
	copied := *project
	s.projects[project.ID] = &copied
	return nil
}

func (s *Store) FindProjectByID(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("FindProjectByID"); err != nil {
		return nil, err
	}
	project, ok := s.projects[projectID]
	if !ok || project.UserID != userID {
		return nil, repository.NewNotFound("project", projectID)
	}
	copied := *project
	return &copied, nil
}

func (s *Store) FindProjectsByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("FindProjectsByUser"); err != nil {
		return nil, err
	}
	result := make([]*domain.Project, 0)
	for _, project := range s.projects {
		if project.UserID == userID {
			copied := *project
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("UpdateProject"); err != nil {
		return err
	}
	existing, ok := s.projects[project.ID]
	if !ok || existing.UserID != project.UserID {
		return repository.NewNotFound("project", project.ID)
	}
	copied := *project
	s.projects[project.ID] = &copied
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, userID, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("DeleteProject"); err != nil {
		return err
	}
	project, ok := s.projects[projectID]
	if !ok || project.UserID != userID {
		return repository.NewNotFound("project", projectID)
	}
	delete(s.projects, projectID)
	return nil
}

// ---- ElementRepository ----

func (s *Store) CreateElement(ctx context.Context, userID string, element *domain.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("CreateElement"); err != nil {
		return err
	}
	if _, exists := s.elements[element.ID]; exists {
		return repository.NewConflict("element", element.ID, "already exists")
	}
	s.elements[element.ID] = copyElement(element)
	return nil
}

func (s *Store) FindElementByID(ctx context.Context, userID, projectID, elementID string) (*domain.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("FindElementByID"); err != nil {
		return nil, err
	}
	element, ok := s.elements[elementID]
	if !ok || element.ProjectID != projectID || !s.ownsProject(userID, projectID) {
		return nil, repository.NewNotFound("element", elementID)
	}
	return copyElement(element), nil
}

func (s *Store) FindElementsByProject(ctx context.Context, userID, projectID string) ([]*domain.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("FindElementsByProject"); err != nil {
		return nil, err
	}
	result := make([]*domain.Element, 0)
	if !s.ownsProject(userID, projectID) {
		return result, nil
	}
	for _, element := range s.elements {
		if element.ProjectID == projectID {
			result = append(result, copyElement(element))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) UpdateElement(ctx context.Context, userID string, element *domain.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("UpdateElement"); err != nil {
		return err
	}
	existing, ok := s.elements[element.ID]
	if !ok || !s.ownsProject(userID, existing.ProjectID) {
		return repository.NewNotFound("element", element.ID)
	}
	s.elements[element.ID] = copyElement(element)
	return nil
}

func (s *Store) DeleteElement(ctx context.Context, userID, projectID, elementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("DeleteElement"); err != nil {
		return err
	}
	element, ok := s.elements[elementID]
	if !ok || element.ProjectID != projectID || !s.ownsProject(userID, projectID) {
		return repository.NewNotFound("element", elementID)
	}
	delete(s.elements, elementID)
	return nil
}

func (s *Store) CountElements(ctx context.Context, userID, projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("CountElements"); err != nil {
		return 0, err
	}
	if !s.ownsProject(userID, projectID) {
		return 0, nil
	}
	count := 0
	for _, element := range s.elements {
		if element.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

// ---- RelationshipRepository ----

func (s *Store) CreateRelationship(ctx context.Context, userID string, relationship *domain.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("CreateRelationship"); err != nil {
		return err
	}
	if _, exists := s.relationships[relationship.ID]; exists {
		return repository.NewConflict("relationship", relationship.ID, "already exists")
	}
	copied := *relationship
	s.relationships[relationship.ID] = &copied
	return nil
}

func (s *Store) FindRelationshipByID(ctx context.Context, userID, projectID, relationshipID string) (*domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("FindRelationshipByID"); err != nil {
		return nil, err
	}
	relationship, ok := s.relationships[relationshipID]
	if !ok || relationship.ProjectID != projectID || !s.ownsProject(userID, projectID) {
		return nil, repository.NewNotFound("relationship", relationshipID)
	}
	copied := *relationship
	return &copied, nil
}

func (s *Store) FindRelationshipsByProject(ctx context.Context, userID, projectID string) ([]*domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("FindRelationshipsByProject"); err != nil {
		return nil, err
	}
	result := make([]*domain.Relationship, 0)
	if !s.ownsProject(userID, projectID) {
		return result, nil
	}
	for _, relationship := range s.relationships {
		if relationship.ProjectID == projectID {
			copied := *relationship
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt) ||
			(result[i].CreatedAt.Equal(result[j].CreatedAt) && result[i].ID < result[j].ID)
	})
	return result, nil
}

func (s *Store) DeleteRelationship(ctx context.Context, userID, projectID, relationshipID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("DeleteRelationship"); err != nil {
		return err
	}
	relationship, ok := s.relationships[relationshipID]
	if !ok || relationship.ProjectID != projectID || !s.ownsProject(userID, projectID) {
		return repository.NewNotFound("relationship", relationshipID)
	}
	delete(s.relationships, relationshipID)
	return nil
}

func (s *Store) DeleteRelationshipsForElement(ctx context.Context, userID, projectID, elementID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("DeleteRelationshipsForElement"); err != nil {
		return 0, err
	}
	if !s.ownsProject(userID, projectID) {
		return 0, nil
	}
	removed := 0
	for id, relationship := range s.relationships {
		if relationship.ProjectID != projectID {
			continue
		}
		if relationship.SourceID == elementID || relationship.TargetID == elementID {
			delete(s.relationships, id)
			removed++
		}
	}
	return removed, nil
}

// ---- TemplateRepository ----

func (s *Store) SaveTemplate(ctx context.Context, userID, projectID string, template domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("SaveTemplate"); err != nil {
		return err
	}
	s.templates[projectID+"/"+template.Category.String()] = template
	return nil
}

func (s *Store) FindTemplate(ctx context.Context, userID, projectID string, category domain.Category) (domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("FindTemplate"); err != nil {
		return domain.Template{}, err
	}
	if template, ok := s.templates[projectID+"/"+category.String()]; ok {
		return template, nil
	}
	if template, ok := domain.DefaultTemplates()[category]; ok {
		return template, nil
	}
	return domain.Template{Category: category}, nil
}

// ---- RecentSearchStore ----

func (s *Store) SaveRecentSearches(ctx context.Context, userID string, terms []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forced("SaveRecentSearches"); err != nil {
		return err
	}
	s.recent[userID] = append([]string(nil), terms...)
	return nil
}

func (s *Store) LoadRecentSearches(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.forced("LoadRecentSearches"); err != nil {
		return nil, err
	}
	return append([]string(nil), s.recent[userID]...), nil
}

func copyElement(element *domain.Element) *domain.Element {
	copied := *element
	if element.Tags != nil {
		copied.Tags = append([]string(nil), element.Tags...)
	}
	if element.Answers != nil {
		copied.Answers = make(map[string]string, len(element.Answers))
		for k, v := range element.Answers {
			copied.Answers[k] = v
		}
	}
	return &copied
}
