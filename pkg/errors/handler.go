package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON envelope returned for all failed requests
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler renders application errors as JSON responses
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle writes the error to the response, logging internal errors
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	// the request ID middleware echoes the ID on the response header
	requestID := w.Header().Get("X-Request-ID")

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError("An unexpected error occurred").WithCause(err)
	}

	status := appErr.HTTPStatusCode()
	if status >= 500 {
		h.logger.Error("request failed",
			zap.String("requestID", requestID),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("request rejected",
			zap.String("requestID", requestID),
			zap.String("path", r.URL.Path),
			zap.String("type", string(appErr.Type)),
			zap.String("message", appErr.Message),
		)
	}

	resp := ErrorResponse{
		Error:     appErr.Message,
		Type:      string(appErr.Type),
		RequestID: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		h.logger.Error("failed to encode error response", zap.Error(encErr))
	}
}
