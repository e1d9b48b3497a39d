// Package domain holds the core entities of the worldbuilding model:
// projects, their elements, question templates, and the typed
// relationships linking elements together.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "worldloom-backend/pkg/errors"
)

// Project is the top-level container a user builds a world inside
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject creates a project owned by the given user
func NewProject(userID, name, description string) (*Project, error) {
	if userID == "" {
		return nil, appErrors.NewValidationError("userID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.NewValidationError("project name cannot be empty")
	}

	now := time.Now()
	return &Project{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rename updates the project name and description
func (p *Project) Rename(name, description string) error {
	if strings.TrimSpace(name) == "" {
		return appErrors.NewValidationError("project name cannot be empty")
	}
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.UpdatedAt = time.Now()
	return nil
}
