// Package handlers implements the REST endpoints for projects, elements,
// relationships, search, transfer and diagnostics.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"worldloom-backend/pkg/auth"
	appErrors "worldloom-backend/pkg/errors"
	"worldloom-backend/pkg/validation"
)

// respondJSON writes a JSON response body with the given status
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body) //nolint:errcheck
	}
}

// decodeAndValidate parses the request body into target and runs struct
// validation
func decodeAndValidate(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return appErrors.NewValidationError("invalid request body: " + err.Error())
	}
	if err := validation.ValidateStruct(target); err != nil {
		return appErrors.NewValidationError(err.Error())
	}
	return nil
}

// userID extracts the authenticated user from the request context
func userID(r *http.Request) (string, error) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return "", appErrors.NewUnauthorizedError("unauthorized")
	}
	return userCtx.UserID, nil
}

// base carries the dependencies every handler shares
type base struct {
	errors *appErrors.ErrorHandler
	logger *zap.Logger
}
