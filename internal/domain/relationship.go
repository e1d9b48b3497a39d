package domain

import (
	"time"

	"github.com/google/uuid"

	appErrors "worldloom-backend/pkg/errors"
)

// RelationshipType is a free-form link type. The suggested types below
// carry a reverse type for bidirectional creation; unknown types are
// treated as symmetric.
type RelationshipType string

const (
	RelationParentOf   RelationshipType = "parent_of"
	RelationChildOf    RelationshipType = "child_of"
	RelationOwns       RelationshipType = "owns"
	RelationOwnedBy    RelationshipType = "owned_by"
	RelationRules      RelationshipType = "rules"
	RelationRuledBy    RelationshipType = "ruled_by"
	RelationMemberOf   RelationshipType = "member_of"
	RelationHasMember  RelationshipType = "has_member"
	RelationLocatedIn  RelationshipType = "located_in"
	RelationContains   RelationshipType = "contains"
	RelationCreatedRel RelationshipType = "created"
	RelationCreatedBy  RelationshipType = "created_by"
	RelationAllyOf     RelationshipType = "ally_of"
	RelationEnemyOf    RelationshipType = "enemy_of"
	RelationRelatedTo  RelationshipType = "related_to"
)

// reverseTypes maps each suggested type to its semantic reverse
var reverseTypes = map[RelationshipType]RelationshipType{
	RelationParentOf:   RelationChildOf,
	RelationChildOf:    RelationParentOf,
	RelationOwns:       RelationOwnedBy,
	RelationOwnedBy:    RelationOwns,
	RelationRules:      RelationRuledBy,
	RelationRuledBy:    RelationRules,
	RelationMemberOf:   RelationHasMember,
	RelationHasMember:  RelationMemberOf,
	RelationLocatedIn:  RelationContains,
	RelationContains:   RelationLocatedIn,
	RelationCreatedRel: RelationCreatedBy,
	RelationCreatedBy:  RelationCreatedRel,
	// symmetric types reverse to themselves
	RelationAllyOf:    RelationAllyOf,
	RelationEnemyOf:   RelationEnemyOf,
	RelationRelatedTo: RelationRelatedTo,
}

// Reverse returns the semantic reverse of the type. Types without a
// configured reverse are treated as symmetric.
func (t RelationshipType) Reverse() RelationshipType {
	if rev, ok := reverseTypes[t]; ok {
		return rev
	}
	return t
}

// String returns the string representation of the relationship type
func (t RelationshipType) String() string {
	return string(t)
}

// SuggestedTypes lists the built-in relationship types offered to clients
func SuggestedTypes() []RelationshipType {
	return []RelationshipType{
		RelationParentOf, RelationChildOf,
		RelationOwns, RelationOwnedBy,
		RelationRules, RelationRuledBy,
		RelationMemberOf, RelationHasMember,
		RelationLocatedIn, RelationContains,
		RelationCreatedRel, RelationCreatedBy,
		RelationAllyOf, RelationEnemyOf, RelationRelatedTo,
	}
}

// EndpointSnapshot denormalizes an endpoint's name and category at
// creation time so lists can render without loading both elements.
type EndpointSnapshot struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Relationship is a directed, typed link between two elements of a project
type Relationship struct {
	ID          string           `json:"id"`
	ProjectID   string           `json:"project_id"`
	SourceID    string           `json:"source_id"`
	TargetID    string           `json:"target_id"`
	Type        RelationshipType `json:"type"`
	Description string           `json:"description,omitempty"`
	Source      EndpointSnapshot `json:"source_snapshot"`
	Target      EndpointSnapshot `json:"target_snapshot"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewRelationship creates a directed relationship between two distinct
// elements. The source and target are snapshotted for display.
func NewRelationship(source, target *Element, relType RelationshipType, description string) (*Relationship, error) {
	if source == nil || target == nil {
		return nil, appErrors.NewValidationError("both source and target elements are required")
	}
	if source.ID == target.ID {
		return nil, appErrors.NewValidationError("an element cannot have a relationship with itself")
	}
	if source.ProjectID != target.ProjectID {
		return nil, appErrors.NewValidationError("relationships cannot cross projects")
	}
	if relType == "" {
		return nil, appErrors.NewValidationError("relationship type cannot be empty")
	}

	return &Relationship{
		ID:          uuid.New().String(),
		ProjectID:   source.ProjectID,
		SourceID:    source.ID,
		TargetID:    target.ID,
		Type:        relType,
		Description: description,
		Source:      EndpointSnapshot{Name: source.Name, Category: source.Category},
		Target:      EndpointSnapshot{Name: target.Name, Category: target.Category},
		CreatedAt:   time.Now(),
	}, nil
}

// NewRelationshipPair creates a relationship and its reverse-typed mirror
// as two independent records. The mirror's description is annotated so a
// reader can tell it was generated from the forward direction.
func NewRelationshipPair(source, target *Element, relType RelationshipType, description string) (*Relationship, *Relationship, error) {
	forward, err := NewRelationship(source, target, relType, description)
	if err != nil {
		return nil, nil, err
	}

	reverseDescription := ""
	if description != "" {
		reverseDescription = "(reverse) " + description
	}

	reverse, err := NewRelationship(target, source, relType.Reverse(), reverseDescription)
	if err != nil {
		return nil, nil, err
	}

	return forward, reverse, nil
}

// Direction tags a relationship relative to a focal element
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// ElementRelationship is a relationship tagged with its direction relative
// to a focal element. Incoming relationships display a reversal prefix on
// the type so clients can indicate the link points at the focal element.
type ElementRelationship struct {
	Relationship
	Direction   Direction `json:"direction"`
	DisplayType string    `json:"display_type"`
}

// RelationshipsForElement returns every relationship touching the focal
// element, tagged with direction. Order follows the input collection.
func RelationshipsForElement(relationships []*Relationship, focalID string) []ElementRelationship {
	result := make([]ElementRelationship, 0)
	for _, rel := range relationships {
		switch focalID {
		case rel.SourceID:
			result = append(result, ElementRelationship{
				Relationship: *rel,
				Direction:    DirectionOutgoing,
				DisplayType:  rel.Type.String(),
			})
		case rel.TargetID:
			result = append(result, ElementRelationship{
				Relationship: *rel,
				Direction:    DirectionIncoming,
				DisplayType:  "is " + rel.Type.String() + " of",
			})
		}
	}
	return result
}

// GroupBySource groups relationships by source element ID. Elements with
// no outgoing relationships do not appear in the map.
func GroupBySource(relationships []*Relationship) map[string][]*Relationship {
	groups := make(map[string][]*Relationship)
	for _, rel := range relationships {
		groups[rel.SourceID] = append(groups[rel.SourceID], rel)
	}
	return groups
}
