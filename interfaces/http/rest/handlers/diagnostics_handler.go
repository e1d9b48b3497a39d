package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"worldloom-backend/internal/service/diagnostics"
	appErrors "worldloom-backend/pkg/errors"
)

// DiagnosticsHandler exposes the backend probe sequence
type DiagnosticsHandler struct {
	base
	diagnostics *diagnostics.Service
}

// NewDiagnosticsHandler creates a diagnostics handler. The service may be
// nil when no Supabase project is configured.
func NewDiagnosticsHandler(diagnosticsSvc *diagnostics.Service, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		base:        base{errors: errorHandler, logger: logger},
		diagnostics: diagnosticsSvc,
	}
}

// Run handles POST /diagnostics/run
func (h *DiagnosticsHandler) Run(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if h.diagnostics == nil {
		h.errors.Handle(w, r, appErrors.NewConflictError("diagnostics are not configured"))
		return
	}

	report := h.diagnostics.Run(r.Context())
	respondJSON(w, http.StatusOK, report)
}
