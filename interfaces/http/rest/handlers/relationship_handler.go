package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/service/relationship"
	appErrors "worldloom-backend/pkg/errors"
)

// RelationshipHandler handles relationship endpoints
type RelationshipHandler struct {
	base
	relationships *relationship.Service
}

// NewRelationshipHandler creates a relationship handler
func NewRelationshipHandler(relationships *relationship.Service, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		base:          base{errors: errorHandler, logger: logger},
		relationships: relationships,
	}
}

// CreateRelationshipRequest is the body for creating a relationship
type CreateRelationshipRequest struct {
	SourceID      string `json:"source_id" validate:"required"`
	TargetID      string `json:"target_id" validate:"required"`
	Type          string `json:"type" validate:"required,max=100"`
	Description   string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Bidirectional bool   `json:"bidirectional,omitempty"`
}

// CreateRelationshipResponse returns the created record and, for
// bidirectional creation, its mirror
type CreateRelationshipResponse struct {
	Relationship *domain.Relationship `json:"relationship"`
	Reverse      *domain.Relationship `json:"reverse,omitempty"`
}

// Create handles POST /projects/{projectID}/relationships
func (h *RelationshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req CreateRelationshipRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	forward, reverse, err := h.relationships.Create(r.Context(), uid, relationship.CreateInput{
		ProjectID:     chi.URLParam(r, "projectID"),
		SourceID:      req.SourceID,
		TargetID:      req.TargetID,
		Type:          domain.RelationshipType(req.Type),
		Description:   req.Description,
		Bidirectional: req.Bidirectional,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, CreateRelationshipResponse{Relationship: forward, Reverse: reverse})
}

// List handles GET /projects/{projectID}/relationships. With
// ?group=source the flat list is replaced by a source-keyed grouping.
func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	projectID := chi.URLParam(r, "projectID")

	if r.URL.Query().Get("group") == "source" {
		grouped, err := h.relationships.ListGrouped(r.Context(), uid, projectID)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"groups": grouped})
		return
	}

	listed, err := h.relationships.List(r.Context(), uid, projectID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"relationships": listed})
}

// ListForElement handles GET /projects/{projectID}/elements/{elementID}/relationships
func (h *RelationshipHandler) ListForElement(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	listed, err := h.relationships.ListForElement(r.Context(), uid, chi.URLParam(r, "projectID"), chi.URLParam(r, "elementID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"relationships": listed})
}

// Delete handles DELETE /projects/{projectID}/relationships/{relationshipID}
func (h *RelationshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.relationships.Delete(r.Context(), uid, chi.URLParam(r, "projectID"), chi.URLParam(r, "relationshipID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Types handles GET /relationship-types
func (h *RelationshipHandler) Types(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"types": domain.SuggestedTypes()})
}
