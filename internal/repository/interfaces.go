// Package repository defines the data access interfaces for the Worldloom
// persistence layer. The domain and service layers depend only on these
// interfaces; DynamoDB and in-memory implementations live in subpackages.
package repository

import (
	"context"

	"worldloom-backend/internal/domain"
)

// ProjectRepository handles project persistence
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	FindProjectByID(ctx context.Context, userID, projectID string) (*domain.Project, error)
	FindProjectsByUser(ctx context.Context, userID string) ([]*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, userID, projectID string) error
}

// ElementRepository handles element persistence
type ElementRepository interface {
	CreateElement(ctx context.Context, userID string, element *domain.Element) error
	FindElementByID(ctx context.Context, userID, projectID, elementID string) (*domain.Element, error)
	FindElementsByProject(ctx context.Context, userID, projectID string) ([]*domain.Element, error)
	UpdateElement(ctx context.Context, userID string, element *domain.Element) error
	DeleteElement(ctx context.Context, userID, projectID, elementID string) error
	CountElements(ctx context.Context, userID, projectID string) (int, error)
}

// RelationshipRepository handles relationship persistence
type RelationshipRepository interface {
	CreateRelationship(ctx context.Context, userID string, relationship *domain.Relationship) error
	FindRelationshipByID(ctx context.Context, userID, projectID, relationshipID string) (*domain.Relationship, error)
	FindRelationshipsByProject(ctx context.Context, userID, projectID string) ([]*domain.Relationship, error)
	DeleteRelationship(ctx context.Context, userID, projectID, relationshipID string) error
	// DeleteRelationshipsForElement removes every relationship whose source
	// or target is the given element and returns how many were removed.
	DeleteRelationshipsForElement(ctx context.Context, userID, projectID, elementID string) (int, error)
}

// TemplateRepository handles per-project questionnaire templates
type TemplateRepository interface {
	SaveTemplate(ctx context.Context, userID, projectID string, template domain.Template) error
	// FindTemplate falls back to the built-in default when no custom
	// template has been saved for the category.
	FindTemplate(ctx context.Context, userID, projectID string, category domain.Category) (domain.Template, error)
}

// RecentSearchStore persists a user's recent search terms
type RecentSearchStore interface {
	SaveRecentSearches(ctx context.Context, userID string, terms []string) error
	LoadRecentSearches(ctx context.Context, userID string) ([]string, error)
}
