// Package element implements element lifecycle and questionnaire answers.
package element

import (
	"context"

	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/domain/events"
	"worldloom-backend/internal/messaging"
	"worldloom-backend/internal/repository"
	appErrors "worldloom-backend/pkg/errors"
)

// Service coordinates element operations against the repositories
type Service struct {
	projects      repository.ProjectRepository
	elements      repository.ElementRepository
	relationships repository.RelationshipRepository
	templates     repository.TemplateRepository
	bus           messaging.EventBus
	logger        *zap.Logger
}

// NewService creates an element service
func NewService(
	projects repository.ProjectRepository,
	elements repository.ElementRepository,
	relationships repository.RelationshipRepository,
	templates repository.TemplateRepository,
	bus messaging.EventBus,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:      projects,
		elements:      elements,
		relationships: relationships,
		templates:     templates,
		bus:           bus,
		logger:        logger,
	}
}

// ElementWithCompletion pairs an element with its derived completion
// percentage for display.
type ElementWithCompletion struct {
	*domain.Element
	Completion float64 `json:"completion"`
}

// Create adds a new element to a project
func (s *Service) Create(ctx context.Context, userID, projectID string, category domain.Category, name, description string, tags []string) (*domain.Element, error) {
	if _, err := s.projects.FindProjectByID(ctx, userID, projectID); err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFoundError("project not found")
		}
		return nil, appErrors.Wrap(err, "failed to load project")
	}

	element, err := domain.NewElement(projectID, category, name, description, tags)
	if err != nil {
		return nil, err
	}

	if err := s.elements.CreateElement(ctx, userID, element); err != nil {
		return nil, appErrors.Wrap(err, "failed to create element")
	}

	if err := s.bus.Publish(ctx, events.NewElementCreated(element.ID, projectID, userID, element.Category.String(), element.Name)); err != nil {
		s.logger.Warn("failed to publish element created event",
			zap.String("elementID", element.ID),
			zap.Error(err),
		)
	}

	return element, nil
}

// Get loads an element with its completion percentage
func (s *Service) Get(ctx context.Context, userID, projectID, elementID string) (*ElementWithCompletion, error) {
	element, err := s.elements.FindElementByID(ctx, userID, projectID, elementID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFoundError("element not found")
		}
		return nil, appErrors.Wrap(err, "failed to load element")
	}

	template, err := s.templates.FindTemplate(ctx, userID, projectID, element.Category)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load template")
	}

	return &ElementWithCompletion{Element: element, Completion: element.Completion(template)}, nil
}

// List returns every element of a project with completion percentages
func (s *Service) List(ctx context.Context, userID, projectID string) ([]*ElementWithCompletion, error) {
	elements, err := s.elements.FindElementsByProject(ctx, userID, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list elements")
	}

	// Templates are per category; fetch each at most once
	templates := make(map[domain.Category]domain.Template)
	result := make([]*ElementWithCompletion, 0, len(elements))
	for _, element := range elements {
		template, ok := templates[element.Category]
		if !ok {
			template, err = s.templates.FindTemplate(ctx, userID, projectID, element.Category)
			if err != nil {
				return nil, appErrors.Wrap(err, "failed to load template")
			}
			templates[element.Category] = template
		}
		result = append(result, &ElementWithCompletion{Element: element, Completion: element.Completion(template)})
	}
	return result, nil
}

// Update changes an element's name, description and tags
func (s *Service) Update(ctx context.Context, userID, projectID, elementID, name, description string, tags []string) (*domain.Element, error) {
	element, err := s.elements.FindElementByID(ctx, userID, projectID, elementID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFoundError("element not found")
		}
		return nil, appErrors.Wrap(err, "failed to load element")
	}

	if err := element.Update(name, description, tags); err != nil {
		return nil, err
	}

	if err := s.elements.UpdateElement(ctx, userID, element); err != nil {
		return nil, appErrors.Wrap(err, "failed to update element")
	}

	if err := s.bus.Publish(ctx, events.NewElementUpdated(element.ID, projectID, userID)); err != nil {
		s.logger.Warn("failed to publish element updated event",
			zap.String("elementID", element.ID),
			zap.Error(err),
		)
	}

	return element, nil
}

// Answer records or clears a questionnaire answer on an element. The
// question must belong to the element's category template.
func (s *Service) Answer(ctx context.Context, userID, projectID, elementID, questionID, answer string) (*ElementWithCompletion, error) {
	element, err := s.elements.FindElementByID(ctx, userID, projectID, elementID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFoundError("element not found")
		}
		return nil, appErrors.Wrap(err, "failed to load element")
	}

	template, err := s.templates.FindTemplate(ctx, userID, projectID, element.Category)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to load template")
	}
	if !template.HasQuestion(questionID) {
		return nil, appErrors.NewValidationError("question does not belong to the element's template")
	}

	if err := element.SetAnswer(questionID, answer); err != nil {
		return nil, err
	}

	if err := s.elements.UpdateElement(ctx, userID, element); err != nil {
		return nil, appErrors.Wrap(err, "failed to save answer")
	}

	return &ElementWithCompletion{Element: element, Completion: element.Completion(template)}, nil
}

// Delete removes an element and cascades to every relationship that
// references it as source or target.
func (s *Service) Delete(ctx context.Context, userID, projectID, elementID string) error {
	element, err := s.elements.FindElementByID(ctx, userID, projectID, elementID)
	if err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFoundError("element not found")
		}
		return appErrors.Wrap(err, "failed to load element")
	}

	cascaded, err := s.relationships.DeleteRelationshipsForElement(ctx, userID, projectID, elementID)
	if err != nil {
		return appErrors.Wrap(err, "failed to delete element relationships")
	}

	if err := s.elements.DeleteElement(ctx, userID, projectID, elementID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFoundError("element not found")
		}
		return appErrors.Wrap(err, "failed to delete element")
	}

	s.logger.Info("element deleted",
		zap.String("elementID", elementID),
		zap.String("projectID", projectID),
		zap.Int("cascadedRelationships", cascaded),
	)

	if err := s.bus.Publish(ctx, events.NewElementDeleted(elementID, projectID, userID, cascaded)); err != nil {
		s.logger.Warn("failed to publish element deleted event",
			zap.String("elementID", element.ID),
			zap.Error(err),
		)
	}
	return nil
}
