package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"worldloom-backend/internal/service/project"
	appErrors "worldloom-backend/pkg/errors"
)

// ProjectHandler handles project CRUD endpoints
type ProjectHandler struct {
	base
	projects *project.Service
}

// NewProjectHandler creates a project handler
func NewProjectHandler(projects *project.Service, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		base:     base{errors: errorHandler, logger: logger},
		projects: projects,
	}
}

// ProjectRequest is the body for creating or updating a project
type ProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// Create handles POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req ProjectRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	created, err := h.projects.Create(r.Context(), uid, req.Name, req.Description)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	projects, err := h.projects.List(r.Context(), uid)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// Get handles GET /projects/{projectID}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	found, err := h.projects.Get(r.Context(), uid, chi.URLParam(r, "projectID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, found)
}

// Update handles PUT /projects/{projectID}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req ProjectRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	updated, err := h.projects.Update(r.Context(), uid, chi.URLParam(r, "projectID"), req.Name, req.Description)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /projects/{projectID}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.projects.Delete(r.Context(), uid, chi.URLParam(r, "projectID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
