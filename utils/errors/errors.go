package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput       = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized       = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = NewAPIError("FORBIDDEN", "Refresh token does not match any active session", http.StatusForbidden)
	ErrInvalidCredentials = NewAPIError("INVALID_CREDENTIALS", "The provided username or password is incorrect", http.StatusUnprocessableEntity)
	ErrNotFound           = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal           = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict           = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
)

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}

// PartialWriteError reports a multi-document operation that failed after one
// or more of its writes already committed. There is no rollback; Committed
// names the documents left holding the new state.
type PartialWriteError struct {
	Op        string
	Committed []string
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: write failed after committing [%s]: %v", e.Op, strings.Join(e.Committed, ", "), e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
