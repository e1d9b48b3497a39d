package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "worldloom-backend/pkg/errors"
)

// Element is a categorized worldbuilding entity inside a project
type Element struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	Category    Category          `json:"category"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Answers     map[string]string `json:"answers,omitempty"` // question ID -> answer text
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewElement creates an element with validated name and category
func NewElement(projectID string, category Category, name, description string, tags []string) (*Element, error) {
	if projectID == "" {
		return nil, appErrors.NewValidationError("projectID cannot be empty")
	}
	if !category.IsValid() {
		return nil, appErrors.NewValidationError("invalid category: " + category.String())
	}
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.NewValidationError("element name cannot be empty")
	}

	now := time.Now()
	return &Element{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Category:    category,
		Name:        strings.TrimSpace(name),
		Description: description,
		Tags:        normalizeTags(tags),
		Answers:     make(map[string]string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update changes the element's name, description and tags
func (e *Element) Update(name, description string, tags []string) error {
	if strings.TrimSpace(name) == "" {
		return appErrors.NewValidationError("element name cannot be empty")
	}
	e.Name = strings.TrimSpace(name)
	e.Description = description
	e.Tags = normalizeTags(tags)
	e.UpdatedAt = time.Now()
	return nil
}

// SetAnswer records an answer for a template question. An empty answer
// clears the entry rather than storing a blank string.
func (e *Element) SetAnswer(questionID, answer string) error {
	if questionID == "" {
		return appErrors.NewValidationError("questionID cannot be empty")
	}
	if e.Answers == nil {
		e.Answers = make(map[string]string)
	}
	if strings.TrimSpace(answer) == "" {
		delete(e.Answers, questionID)
	} else {
		e.Answers[questionID] = answer
	}
	e.UpdatedAt = time.Now()
	return nil
}

// Completion returns the element's questionnaire completion percentage for
// the given template. When the template has required questions the ratio is
// answered-required over total-required; otherwise answered over total.
func (e *Element) Completion(template Template) float64 {
	total := len(template.Questions)
	if total == 0 {
		return 0
	}

	required := template.RequiredCount()
	if required > 0 {
		answered := 0
		for _, q := range template.Questions {
			if !q.Required {
				continue
			}
			if _, ok := e.Answers[q.ID]; ok {
				answered++
			}
		}
		return float64(answered) / float64(required) * 100
	}

	answered := 0
	for _, q := range template.Questions {
		if _, ok := e.Answers[q.ID]; ok {
			answered++
		}
	}
	return float64(answered) / float64(total) * 100
}

// HasTag reports whether the element carries the given tag (case-insensitive)
func (e *Element) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// normalizeTags trims whitespace and drops empty or duplicate tags while
// preserving first-seen order and original casing.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
