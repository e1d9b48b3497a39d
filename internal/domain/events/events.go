// Package events defines the domain events emitted by store mutations.
package events

import (
	"time"

	"github.com/google/uuid"
)

// SourceBackend identifies this service as the event source
const SourceBackend = "worldloom.backend"

// Event type constants
const (
	EventTypeProjectCreated      = "ProjectCreated"
	EventTypeProjectDeleted      = "ProjectDeleted"
	EventTypeElementCreated      = "ElementCreated"
	EventTypeElementUpdated      = "ElementUpdated"
	EventTypeElementDeleted      = "ElementDeleted"
	EventTypeRelationshipCreated = "RelationshipCreated"
	EventTypeRelationshipDeleted = "RelationshipDeleted"
)

// DomainEvent is the contract every published event satisfies
type DomainEvent interface {
	GetEventID() string
	GetEventType() string
	GetAggregateID() string
	GetUserID() string
	GetTimestamp() time.Time
}

// BaseEvent carries the fields shared by all domain events
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id"`
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetUserID() string       { return e.UserID }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

func newBase(eventType, aggregateID, userID string) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		AggregateID: aggregateID,
		UserID:      userID,
		Timestamp:   time.Now(),
	}
}

// ProjectCreated is emitted when a project is created
type ProjectCreated struct {
	BaseEvent
	Name string `json:"name"`
}

// NewProjectCreated creates a ProjectCreated event
func NewProjectCreated(projectID, userID, name string) ProjectCreated {
	return ProjectCreated{BaseEvent: newBase(EventTypeProjectCreated, projectID, userID), Name: name}
}

// ProjectDeleted is emitted when a project is deleted
type ProjectDeleted struct {
	BaseEvent
}

// NewProjectDeleted creates a ProjectDeleted event
func NewProjectDeleted(projectID, userID string) ProjectDeleted {
	return ProjectDeleted{BaseEvent: newBase(EventTypeProjectDeleted, projectID, userID)}
}

// ElementCreated is emitted when an element is created
type ElementCreated struct {
	BaseEvent
	ProjectID string `json:"project_id"`
	Category  string `json:"category"`
	Name      string `json:"name"`
}

// NewElementCreated creates an ElementCreated event
func NewElementCreated(elementID, projectID, userID, category, name string) ElementCreated {
	return ElementCreated{
		BaseEvent: newBase(EventTypeElementCreated, elementID, userID),
		ProjectID: projectID,
		Category:  category,
		Name:      name,
	}
}

// ElementUpdated is emitted when an element is updated
type ElementUpdated struct {
	BaseEvent
	ProjectID string `json:"project_id"`
}

// NewElementUpdated creates an ElementUpdated event
func NewElementUpdated(elementID, projectID, userID string) ElementUpdated {
	return ElementUpdated{BaseEvent: newBase(EventTypeElementUpdated, elementID, userID), ProjectID: projectID}
}

// ElementDeleted is emitted when an element is deleted. CascadedRelationships
// counts the relationship records removed alongside the element.
type ElementDeleted struct {
	BaseEvent
	ProjectID             string `json:"project_id"`
	CascadedRelationships int    `json:"cascaded_relationships"`
}

// NewElementDeleted creates an ElementDeleted event
func NewElementDeleted(elementID, projectID, userID string, cascaded int) ElementDeleted {
	return ElementDeleted{
		BaseEvent:             newBase(EventTypeElementDeleted, elementID, userID),
		ProjectID:             projectID,
		CascadedRelationships: cascaded,
	}
}

// RelationshipCreated is emitted for each relationship record inserted;
// bidirectional creation emits one per direction.
type RelationshipCreated struct {
	BaseEvent
	ProjectID string `json:"project_id"`
	SourceID  string `json:"source_id"`
	TargetID  string `json:"target_id"`
	Type      string `json:"type"`
}

// NewRelationshipCreated creates a RelationshipCreated event
func NewRelationshipCreated(relationshipID, projectID, userID, sourceID, targetID, relType string) RelationshipCreated {
	return RelationshipCreated{
		BaseEvent: newBase(EventTypeRelationshipCreated, relationshipID, userID),
		ProjectID: projectID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      relType,
	}
}

// RelationshipDeleted is emitted when a relationship record is removed
type RelationshipDeleted struct {
	BaseEvent
	ProjectID string `json:"project_id"`
}

// NewRelationshipDeleted creates a RelationshipDeleted event
func NewRelationshipDeleted(relationshipID, projectID, userID string) RelationshipDeleted {
	return RelationshipDeleted{BaseEvent: newBase(EventTypeRelationshipDeleted, relationshipID, userID), ProjectID: projectID}
}
