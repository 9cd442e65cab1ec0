package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"

	// Transition taxonomy. AlreadyTerminal is recovered locally as a no-op
	// and never becomes an error; the rest are returned as values so bulk
	// call sites can continue past a failed item.
	ErrTransitionFailed  ErrorCode = "TRANSITION_FAILED"
	ErrPastOrTooSoon     ErrorCode = "PAST_OR_TOO_SOON"
	ErrSaveConflict      ErrorCode = "SAVE_CONFLICT"
	ErrDraftNotPersisted ErrorCode = "DRAFT_NOT_PERSISTED"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict, ErrSaveConflict, ErrTransitionFailed:
			return http.StatusConflict
		case ErrInvalidInput, ErrBadRequest, ErrPastOrTooSoon, ErrDraftNotPersisted:
			return http.StatusBadRequest
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// Code extracts the error code from an APIError, or empty for any other
// error type.
func Code(err error) ErrorCode {
	if apiErr, ok := err.(APIError); ok {
		return apiErr.Code
	}
	return ""
}
