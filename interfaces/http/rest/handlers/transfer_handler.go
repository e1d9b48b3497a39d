package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"worldloom-backend/internal/service/transfer"
	appErrors "worldloom-backend/pkg/errors"
)

// maxImportSize bounds import payloads at 25MB
const maxImportSize = 25 << 20

// TransferHandler handles JSON export and import endpoints
type TransferHandler struct {
	base
	transfer *transfer.Service
}

// NewTransferHandler creates a transfer handler
func NewTransferHandler(transferSvc *transfer.Service, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		base:     base{errors: errorHandler, logger: logger},
		transfer: transferSvc,
	}
}

// ExportProject handles GET /projects/{projectID}/export
func (h *TransferHandler) ExportProject(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	data, err := h.transfer.ExportProject(r.Context(), uid, chi.URLParam(r, "projectID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeArchive(w, data)
}

// ExportAll handles GET /export
func (h *TransferHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	data, err := h.transfer.ExportAll(r.Context(), uid)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	writeArchive(w, data)
}

// Import handles POST /import
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("failed to read import body"))
		return
	}

	result, err := h.transfer.Import(r.Context(), uid, data)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func writeArchive(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="worldloom-export.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}
