// Package project implements project lifecycle operations.
package project

import (
	"context"

	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/domain/events"
	"worldloom-backend/internal/messaging"
	"worldloom-backend/internal/repository"
	appErrors "worldloom-backend/pkg/errors"
)

// Service coordinates project operations against the repositories
type Service struct {
	projects repository.ProjectRepository
	elements repository.ElementRepository
	bus      messaging.EventBus
	logger   *zap.Logger
}

// NewService creates a project service
func NewService(projects repository.ProjectRepository, elements repository.ElementRepository, bus messaging.EventBus, logger *zap.Logger) *Service {
	return &Service{projects: projects, elements: elements, bus: bus, logger: logger}
}

// Create creates a new project owned by the user
func (s *Service) Create(ctx context.Context, userID, name, description string) (*domain.Project, error) {
	project, err := domain.NewProject(userID, name, description)
	if err != nil {
		return nil, err
	}

	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, "failed to create project")
	}

	if err := s.bus.Publish(ctx, events.NewProjectCreated(project.ID, userID, project.Name)); err != nil {
		s.logger.Warn("failed to publish project created event",
			zap.String("projectID", project.ID),
			zap.Error(err),
		)
	}

	return project, nil
}

// Get loads a project by ID
func (s *Service) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := s.projects.FindProjectByID(ctx, userID, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFoundError("project not found")
		}
		return nil, appErrors.Wrap(err, "failed to load project")
	}
	return project, nil
}

// List returns every project owned by the user
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	projects, err := s.projects.FindProjectsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list projects")
	}
	return projects, nil
}

// Update renames a project
func (s *Service) Update(ctx context.Context, userID, projectID, name, description string) (*domain.Project, error) {
	project, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if err := project.Rename(name, description); err != nil {
		return nil, err
	}

	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, "failed to update project")
	}
	return project, nil
}

// Delete removes an empty project. Projects still holding elements are
// rejected so a single call can never silently destroy a world.
func (s *Service) Delete(ctx context.Context, userID, projectID string) error {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return err
	}

	count, err := s.elements.CountElements(ctx, userID, projectID)
	if err != nil {
		return appErrors.Wrap(err, "failed to count project elements")
	}
	if count > 0 {
		return appErrors.NewConflictError("project still contains elements; delete them first")
	}

	if err := s.projects.DeleteProject(ctx, userID, projectID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFoundError("project not found")
		}
		return appErrors.Wrap(err, "failed to delete project")
	}

	if err := s.bus.Publish(ctx, events.NewProjectDeleted(projectID, userID)); err != nil {
		s.logger.Warn("failed to publish project deleted event",
			zap.String("projectID", projectID),
			zap.Error(err),
		)
	}
	return nil
}
