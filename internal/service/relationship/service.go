// Package relationship implements typed links between project elements:
// creation (optionally bidirectional), direction-tagged listing, grouping,
// and per-record deletion.
package relationship

import (
	"context"

	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/domain/events"
	"worldloom-backend/internal/messaging"
	"worldloom-backend/internal/repository"
	appErrors "worldloom-backend/pkg/errors"
)

// Service coordinates relationship operations against the repositories
type Service struct {
	elements      repository.ElementRepository
	relationships repository.RelationshipRepository
	bus           messaging.EventBus
	logger        *zap.Logger
}

// NewService creates a relationship service
func NewService(
	elements repository.ElementRepository,
	relationships repository.RelationshipRepository,
	bus messaging.EventBus,
	logger *zap.Logger,
) *Service {
	return &Service{
		elements:      elements,
		relationships: relationships,
		bus:           bus,
		logger:        logger,
	}
}

// CreateInput describes a relationship creation request
type CreateInput struct {
	ProjectID     string
	SourceID      string
	TargetID      string
	Type          domain.RelationshipType
	Description   string
	Bidirectional bool
}

// Create inserts a relationship record, plus its reverse-typed mirror when
// bidirectional creation is requested. Both records are returned; the
// mirror is nil for one-directional creation.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*domain.Relationship, *domain.Relationship, error) {
	if input.TargetID == "" {
		return nil, nil, appErrors.NewValidationError("a target element must be selected")
	}
	if input.SourceID == input.TargetID {
		return nil, nil, appErrors.NewValidationError("an element cannot have a relationship with itself")
	}

	source, err := s.elements.FindElementByID(ctx, userID, input.ProjectID, input.SourceID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, appErrors.NewNotFoundError("source element not found")
		}
		return nil, nil, appErrors.Wrap(err, "failed to load source element")
	}

	target, err := s.elements.FindElementByID(ctx, userID, input.ProjectID, input.TargetID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, appErrors.NewNotFoundError("target element not found")
		}
		return nil, nil, appErrors.Wrap(err, "failed to load target element")
	}

	var forward, reverse *domain.Relationship
	if input.Bidirectional {
		forward, reverse, err = domain.NewRelationshipPair(source, target, input.Type, input.Description)
	} else {
		forward, err = domain.NewRelationship(source, target, input.Type, input.Description)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.relationships.CreateRelationship(ctx, userID, forward); err != nil {
		return nil, nil, appErrors.Wrap(err, "failed to create relationship")
	}
	s.publishCreated(ctx, userID, forward)

	if reverse != nil {
		if err := s.relationships.CreateRelationship(ctx, userID, reverse); err != nil {
			// The forward record exists; surface the failure so the caller
			// knows the pair is incomplete.
			return forward, nil, appErrors.Wrap(err, "failed to create reverse relationship")
		}
		s.publishCreated(ctx, userID, reverse)
	}

	return forward, reverse, nil
}

// ListForElement returns every relationship touching the focal element,
// tagged with direction relative to it.
func (s *Service) ListForElement(ctx context.Context, userID, projectID, elementID string) ([]domain.ElementRelationship, error) {
	relationships, err := s.relationships.FindRelationshipsByProject(ctx, userID, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list relationships")
	}
	return domain.RelationshipsForElement(relationships, elementID), nil
}

// ListGrouped returns the project's relationships grouped by source
// element ID. Elements without outgoing relationships are absent.
func (s *Service) ListGrouped(ctx context.Context, userID, projectID string) (map[string][]*domain.Relationship, error) {
	relationships, err := s.relationships.FindRelationshipsByProject(ctx, userID, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list relationships")
	}
	return domain.GroupBySource(relationships), nil
}

// List returns the project's flat relationship collection
func (s *Service) List(ctx context.Context, userID, projectID string) ([]*domain.Relationship, error) {
	relationships, err := s.relationships.FindRelationshipsByProject(ctx, userID, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list relationships")
	}
	return relationships, nil
}

// Delete removes a single relationship record by ID. The paired reverse
// of a bidirectional creation is not touched; callers delete both sides
// when symmetry must be preserved.
func (s *Service) Delete(ctx context.Context, userID, projectID, relationshipID string) error {
	if err := s.relationships.DeleteRelationship(ctx, userID, projectID, relationshipID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFoundError("relationship not found")
		}
		return appErrors.Wrap(err, "failed to delete relationship")
	}

	if err := s.bus.Publish(ctx, events.NewRelationshipDeleted(relationshipID, projectID, userID)); err != nil {
		s.logger.Warn("failed to publish relationship deleted event",
			zap.String("relationshipID", relationshipID),
			zap.Error(err),
		)
	}
	return nil
}

func (s *Service) publishCreated(ctx context.Context, userID string, rel *domain.Relationship) {
	event := events.NewRelationshipCreated(rel.ID, rel.ProjectID, userID, rel.SourceID, rel.TargetID, rel.Type.String())
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish relationship created event",
			zap.String("relationshipID", rel.ID),
			zap.Error(err),
		)
	}
}
