package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "worldloom-backend/pkg/errors"
)

func mustElement(t *testing.T, projectID string, category Category, name string) *Element {
	t.Helper()
	element, err := NewElement(projectID, category, name, "", nil)
	require.NoError(t, err)
	return element
}

func TestNewRelationship(t *testing.T) {
	source := mustElement(t, "project-1", CategoryCharacter, "Aldric")
	target := mustElement(t, "project-1", CategoryCharacter, "Zara")

	t.Run("SuccessfulCreation", func(t *testing.T) {
		rel, err := NewRelationship(source, target, RelationParentOf, "father and daughter")
		require.NoError(t, err)

		assert.NotEmpty(t, rel.ID)
		assert.Equal(t, source.ID, rel.SourceID)
		assert.Equal(t, target.ID, rel.TargetID)
		assert.Equal(t, RelationParentOf, rel.Type)
		assert.Equal(t, "Aldric", rel.Source.Name)
		assert.Equal(t, CategoryCharacter, rel.Target.Category)
	})

	t.Run("SelfRelationshipRejected", func(t *testing.T) {
		_, err := NewRelationship(source, source, RelationAllyOf, "")
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("MissingTarget", func(t *testing.T) {
		_, err := NewRelationship(source, nil, RelationAllyOf, "")
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("CrossProjectRejected", func(t *testing.T) {
		other := mustElement(t, "project-2", CategoryLocation, "Ironhold")
		_, err := NewRelationship(source, other, RelationLocatedIn, "")
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("EmptyType", func(t *testing.T) {
		_, err := NewRelationship(source, target, "", "")
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestNewRelationshipPair(t *testing.T) {
	source := mustElement(t, "project-1", CategoryCharacter, "Aldric")
	target := mustElement(t, "project-1", CategoryCharacter, "Zara")

	t.Run("ReverseTypeUsed", func(t *testing.T) {
		forward, reverse, err := NewRelationshipPair(source, target, RelationParentOf, "father and daughter")
		require.NoError(t, err)

		assert.Equal(t, RelationParentOf, forward.Type)
		assert.Equal(t, source.ID, forward.SourceID)
		assert.Equal(t, target.ID, forward.TargetID)

		assert.Equal(t, RelationChildOf, reverse.Type)
		assert.Equal(t, target.ID, reverse.SourceID)
		assert.Equal(t, source.ID, reverse.TargetID)

		assert.NotEqual(t, forward.ID, reverse.ID, "two independent records")
		assert.Equal(t, "(reverse) father and daughter", reverse.Description)
	})

	t.Run("SymmetricTypeMirrorsItself", func(t *testing.T) {
		forward, reverse, err := NewRelationshipPair(source, target, RelationAllyOf, "")
		require.NoError(t, err)
		assert.Equal(t, RelationAllyOf, forward.Type)
		assert.Equal(t, RelationAllyOf, reverse.Type)
		assert.Empty(t, reverse.Description)
	})

	t.Run("UnknownTypeTreatedAsSymmetric", func(t *testing.T) {
		forward, reverse, err := NewRelationshipPair(source, target, "sworn_rival_of", "")
		require.NoError(t, err)
		assert.Equal(t, forward.Type, reverse.Type)
	})

	t.Run("SelfPairRejected", func(t *testing.T) {
		_, _, err := NewRelationshipPair(source, source, RelationParentOf, "")
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestReverseTypeTable(t *testing.T) {
	assert.Equal(t, RelationChildOf, RelationParentOf.Reverse())
	assert.Equal(t, RelationParentOf, RelationChildOf.Reverse())
	assert.Equal(t, RelationContains, RelationLocatedIn.Reverse())
	assert.Equal(t, RelationEnemyOf, RelationEnemyOf.Reverse())

	// Every suggested type must reverse to another suggested type
	suggested := make(map[RelationshipType]bool)
	for _, relType := range SuggestedTypes() {
		suggested[relType] = true
	}
	for _, relType := range SuggestedTypes() {
		assert.True(t, suggested[relType.Reverse()], relType.String())
	}
}

func TestRelationshipsForElement(t *testing.T) {
	aldric := mustElement(t, "project-1", CategoryCharacter, "Aldric")
	zara := mustElement(t, "project-1", CategoryCharacter, "Zara")
	ironhold := mustElement(t, "project-1", CategoryLocation, "Ironhold")

	r1, err := NewRelationship(aldric, zara, RelationParentOf, "")
	require.NoError(t, err)
	r2, err := NewRelationship(zara, ironhold, RelationLocatedIn, "")
	require.NoError(t, err)
	r3, err := NewRelationship(aldric, ironhold, RelationRules, "")
	require.NoError(t, err)

	all := []*Relationship{r1, r2, r3}

	t.Run("DirectionTagging", func(t *testing.T) {
		result := RelationshipsForElement(all, zara.ID)
		require.Len(t, result, 2)

		assert.Equal(t, DirectionIncoming, result[0].Direction)
		assert.Equal(t, r1.ID, result[0].Relationship.ID)
		assert.Equal(t, "is parent_of of", result[0].DisplayType)

		assert.Equal(t, DirectionOutgoing, result[1].Direction)
		assert.Equal(t, r2.ID, result[1].Relationship.ID)
		assert.Equal(t, "located_in", result[1].DisplayType)
	})

	t.Run("UnrelatedElementEmpty", func(t *testing.T) {
		stranger := mustElement(t, "project-1", CategoryCreature, "Wyrm")
		assert.Empty(t, RelationshipsForElement(all, stranger.ID))
	})
}

func TestGroupBySource(t *testing.T) {
	aldric := mustElement(t, "project-1", CategoryCharacter, "Aldric")
	zara := mustElement(t, "project-1", CategoryCharacter, "Zara")
	ironhold := mustElement(t, "project-1", CategoryLocation, "Ironhold")

	r1, err := NewRelationship(aldric, zara, RelationParentOf, "")
	require.NoError(t, err)
	r2, err := NewRelationship(aldric, ironhold, RelationRules, "")
	require.NoError(t, err)
	r3, err := NewRelationship(zara, ironhold, RelationLocatedIn, "")
	require.NoError(t, err)

	groups := GroupBySource([]*Relationship{r1, r2, r3})

	require.Len(t, groups, 2)
	assert.Len(t, groups[aldric.ID], 2)
	assert.Len(t, groups[zara.ID], 1)

	// Ironhold has no outgoing relationships: absent, not an empty group
	_, ok := groups[ironhold.ID]
	assert.False(t, ok)
}
