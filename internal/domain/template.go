package domain

// Question is a single prompt inside a category template
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

// Template is the reusable questionnaire associated with a category
type Template struct {
	Category  Category   `json:"category"`
	Questions []Question `json:"questions"`
}

// RequiredCount returns how many questions in the template are required
func (t Template) RequiredCount() int {
	count := 0
	for _, q := range t.Questions {
		if q.Required {
			count++
		}
	}
	return count
}

// HasQuestion reports whether the template contains the given question ID
func (t Template) HasQuestion(questionID string) bool {
	for _, q := range t.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

// DefaultTemplates returns the built-in questionnaire for each category.
// Projects start from these; custom templates replace them per project.
func DefaultTemplates() map[Category]Template {
	return map[Category]Template{
		CategoryCharacter: {
			Category: CategoryCharacter,
			Questions: []Question{
				{ID: "char-appearance", Text: "What do they look like?", Required: true},
				{ID: "char-motivation", Text: "What drives them?", Required: true},
				{ID: "char-backstory", Text: "Where do they come from?", Required: false},
				{ID: "char-voice", Text: "How do they speak?", Required: false},
			},
		},
		CategoryLocation: {
			Category: CategoryLocation,
			Questions: []Question{
				{ID: "loc-geography", Text: "What is the terrain and climate?", Required: true},
				{ID: "loc-inhabitants", Text: "Who lives here?", Required: false},
				{ID: "loc-history", Text: "What happened here?", Required: false},
			},
		},
		CategoryItem: {
			Category: CategoryItem,
			Questions: []Question{
				{ID: "item-purpose", Text: "What is it for?", Required: true},
				{ID: "item-origin", Text: "Who made it, and when?", Required: false},
			},
		},
		CategoryEvent: {
			Category: CategoryEvent,
			Questions: []Question{
				{ID: "event-summary", Text: "What happened?", Required: true},
				{ID: "event-consequences", Text: "What changed because of it?", Required: false},
			},
		},
		CategoryOrganization: {
			Category: CategoryOrganization,
			Questions: []Question{
				{ID: "org-goal", Text: "What does the organization want?", Required: true},
				{ID: "org-structure", Text: "How is it organized?", Required: false},
			},
		},
		CategoryConcept: {
			Category: CategoryConcept,
			Questions: []Question{
				{ID: "concept-definition", Text: "What is it?", Required: true},
			},
		},
		CategoryCreature: {
			Category: CategoryCreature,
			Questions: []Question{
				{ID: "creature-appearance", Text: "What does it look like?", Required: true},
				{ID: "creature-habitat", Text: "Where does it live?", Required: false},
			},
		},
		CategoryCustom: {
			Category:  CategoryCustom,
			Questions: []Question{},
		},
	}
}
