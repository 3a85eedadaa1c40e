package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sandkasten-run/boxd/internal/session"
)

// Error codes returned in API responses.
const (
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
	ErrCodeSessionDestroying = "SESSION_DESTROYING"
	ErrCodePathEscape        = "PATH_ESCAPE"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeSnapshotNotFound  = "SNAPSHOT_NOT_FOUND"
	ErrCodeImportFailed      = "IMPORT_FAILED"
	ErrCodeFileTooLarge      = "FILE_TOO_LARGE"
	ErrCodeSpawnFailed       = "SPAWN_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
)

// APIError is a structured API error response.
type APIError struct {
	Code    string         `json:"error_code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// internalErrorMessage is the only thing a caller ever learns about an
// ErrInternal failure; the real error, which may embed on-disk workspace
// paths, is logged server-side only.
const internalErrorMessage = "internal error"

// writeAPIError maps the full session error taxonomy to an HTTP status and
// structured body, generalizing the teacher's error-mapping switch from four
// cases to the complete sentinel set.
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	var apiErr APIError
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		apiErr = APIError{Code: ErrCodeSessionNotFound, Message: err.Error()}
		status = http.StatusNotFound

	case errors.Is(err, session.ErrSnapshotNotFound):
		apiErr = APIError{Code: ErrCodeSnapshotNotFound, Message: err.Error()}
		status = http.StatusNotFound

	case errors.Is(err, session.ErrSessionDestroying):
		apiErr = APIError{Code: ErrCodeSessionDestroying, Message: err.Error()}
		status = http.StatusConflict

	case errors.Is(err, session.ErrPathEscape):
		apiErr = APIError{Code: ErrCodePathEscape, Message: err.Error()}
		status = http.StatusBadRequest

	case errors.Is(err, session.ErrInvalidArgument):
		apiErr = APIError{Code: ErrCodeInvalidRequest, Message: err.Error()}
		status = http.StatusBadRequest

	case errors.Is(err, session.ErrFileTooLarge):
		apiErr = APIError{Code: ErrCodeFileTooLarge, Message: err.Error()}
		status = http.StatusRequestEntityTooLarge

	case errors.Is(err, session.ErrImportFailed):
		apiErr = APIError{Code: ErrCodeImportFailed, Message: err.Error()}
		status = http.StatusBadRequest

	case errors.Is(err, session.ErrSpawnFailed):
		apiErr = APIError{Code: ErrCodeSpawnFailed, Message: err.Error()}
		status = http.StatusBadGateway

	default:
		s.logger.Error("internal error", "error", err)
		apiErr = APIError{Code: ErrCodeInternalError, Message: internalErrorMessage}
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, apiErr)
}

func writeValidationError(w http.ResponseWriter, message string, details map[string]any) {
	writeJSON(w, http.StatusBadRequest, APIError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Details: details,
	})
}

func writeUnauthorizedError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
