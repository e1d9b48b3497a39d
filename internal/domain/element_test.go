package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "worldloom-backend/pkg/errors"
)

func TestNewElement(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		element, err := NewElement("project-1", CategoryCharacter, "  Zara  ", "A wandering knight", []string{"knight", "exile"})
		require.NoError(t, err)

		assert.NotEmpty(t, element.ID)
		assert.Equal(t, "project-1", element.ProjectID)
		assert.Equal(t, CategoryCharacter, element.Category)
		assert.Equal(t, "Zara", element.Name, "name should be trimmed")
		assert.Equal(t, []string{"knight", "exile"}, element.Tags)
		assert.False(t, element.CreatedAt.IsZero())
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewElement("project-1", CategoryCharacter, "   ", "", nil)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("InvalidCategory", func(t *testing.T) {
		_, err := NewElement("project-1", Category("starship"), "Zara", "", nil)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("MissingProject", func(t *testing.T) {
		_, err := NewElement("", CategoryLocation, "Ironhold", "", nil)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("DuplicateTagsCollapsed", func(t *testing.T) {
		element, err := NewElement("project-1", CategoryLocation, "Ironhold", "", []string{"fortress", "Fortress", " ", "north"})
		require.NoError(t, err)
		assert.Equal(t, []string{"fortress", "north"}, element.Tags)
	})
}

func TestElementAnswers(t *testing.T) {
	element, err := NewElement("project-1", CategoryCharacter, "Zara", "", nil)
	require.NoError(t, err)

	t.Run("SetAndClear", func(t *testing.T) {
		require.NoError(t, element.SetAnswer("char-appearance", "Tall, scarred"))
		assert.Equal(t, "Tall, scarred", element.Answers["char-appearance"])

		require.NoError(t, element.SetAnswer("char-appearance", "  "))
		_, ok := element.Answers["char-appearance"]
		assert.False(t, ok, "blank answer should clear the entry")
	})

	t.Run("EmptyQuestionID", func(t *testing.T) {
		err := element.SetAnswer("", "something")
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestElementCompletion(t *testing.T) {
	template := Template{
		Category: CategoryCharacter,
		Questions: []Question{
			{ID: "q1", Text: "Q1", Required: true},
			{ID: "q2", Text: "Q2", Required: true},
			{ID: "q3", Text: "Q3", Required: false},
		},
	}

	element, err := NewElement("project-1", CategoryCharacter, "Zara", "", nil)
	require.NoError(t, err)

	t.Run("NoAnswers", func(t *testing.T) {
		assert.InDelta(t, 0.0, element.Completion(template), 0.001)
	})

	t.Run("RequiredOnlyCounted", func(t *testing.T) {
		require.NoError(t, element.SetAnswer("q1", "answered"))
		require.NoError(t, element.SetAnswer("q3", "optional answered"))
		// 1 of 2 required answered; the optional answer does not count
		assert.InDelta(t, 50.0, element.Completion(template), 0.001)
	})

	t.Run("AllRequiredAnswered", func(t *testing.T) {
		require.NoError(t, element.SetAnswer("q2", "answered"))
		assert.InDelta(t, 100.0, element.Completion(template), 0.001)
	})

	t.Run("NoRequiredQuestionsFallsBackToTotal", func(t *testing.T) {
		optional := Template{
			Category: CategoryConcept,
			Questions: []Question{
				{ID: "a", Text: "A"},
				{ID: "b", Text: "B"},
			},
		}
		e, err := NewElement("project-1", CategoryConcept, "Magic", "", nil)
		require.NoError(t, err)
		require.NoError(t, e.SetAnswer("a", "done"))
		assert.InDelta(t, 50.0, e.Completion(optional), 0.001)
	})

	t.Run("EmptyTemplate", func(t *testing.T) {
		assert.InDelta(t, 0.0, element.Completion(Template{Category: CategoryCustom}), 0.001)
	})
}

func TestCategoryIsValid(t *testing.T) {
	for _, category := range AllCategories() {
		assert.True(t, category.IsValid(), category.String())
	}
	assert.False(t, Category("starship").IsValid())
	assert.False(t, Category(CategoryAll).IsValid(), "the wildcard is not a storable category")
}
