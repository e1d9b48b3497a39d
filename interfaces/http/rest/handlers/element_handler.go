package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/service/browse"
	"worldloom-backend/internal/service/element"
	appErrors "worldloom-backend/pkg/errors"
)

// ElementHandler handles element endpoints, including the filtered and
// sorted browse listing and questionnaire answers.
type ElementHandler struct {
	base
	elements *element.Service
	browser  *browse.Service
}

// NewElementHandler creates an element handler
func NewElementHandler(elements *element.Service, browser *browse.Service, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *ElementHandler {
	return &ElementHandler{
		base:     base{errors: errorHandler, logger: logger},
		elements: elements,
		browser:  browser,
	}
}

// CreateElementRequest is the body for creating an element
type CreateElementRequest struct {
	Category    string   `json:"category" validate:"required"`
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateElementRequest is the body for updating an element
type UpdateElementRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// AnswerRequest is the body for recording a questionnaire answer
type AnswerRequest struct {
	Answer string `json:"answer" validate:"max=10000"`
}

// Create handles POST /projects/{projectID}/elements
func (h *ElementHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req CreateElementRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	created, err := h.elements.Create(r.Context(), uid, chi.URLParam(r, "projectID"), domain.Category(req.Category), req.Name, req.Description, req.Tags)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /projects/{projectID}/elements with optional
// category, q and sort query parameters.
func (h *ElementHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	filter := browse.Filter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}
	sortKey := browse.SortKey(r.URL.Query().Get("sort"))

	elements, err := h.browser.Browse(r.Context(), uid, chi.URLParam(r, "projectID"), filter, sortKey)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"elements": elements})
}

// Get handles GET /projects/{projectID}/elements/{elementID}
func (h *ElementHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	found, err := h.elements.Get(r.Context(), uid, chi.URLParam(r, "projectID"), chi.URLParam(r, "elementID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, found)
}

// Update handles PUT /projects/{projectID}/elements/{elementID}
func (h *ElementHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req UpdateElementRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	updated, err := h.elements.Update(r.Context(), uid, chi.URLParam(r, "projectID"), chi.URLParam(r, "elementID"), req.Name, req.Description, req.Tags)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Answer handles PUT /projects/{projectID}/elements/{elementID}/answers/{questionID}
func (h *ElementHandler) Answer(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req AnswerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	answered, err := h.elements.Answer(r.Context(), uid,
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "elementID"),
		chi.URLParam(r, "questionID"),
		req.Answer,
	)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, answered)
}

// Delete handles DELETE /projects/{projectID}/elements/{elementID}
func (h *ElementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.elements.Delete(r.Context(), uid, chi.URLParam(r, "projectID"), chi.URLParam(r, "elementID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Categories handles GET /categories
func (h *ElementHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": domain.AllCategories()})
}
