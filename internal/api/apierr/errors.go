package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/services/session"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodePersonNotFound   = "PERSON_NOT_FOUND"
	CodeAlreadyClockedIn = "ALREADY_CLOCKED_IN"
	CodeNotClockedIn     = "NOT_CLOCKED_IN"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPersonNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePersonNotFound, "Unknown student number"}}
	case errors.Is(err, model.ErrAlreadyClockedIn):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyClockedIn, "Already clocked in"}}
	case errors.Is(err, model.ErrNotClockedIn):
		return &httpError{http.StatusConflict, APIError{CodeNotClockedIn, "Not clocked in"}}

	// Session errors
	case errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, session.ErrExpired),
		errors.Is(err, session.ErrInvalidSignature):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
