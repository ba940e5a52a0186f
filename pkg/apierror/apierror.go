package apierror

import (
	"encoding/json"
	"net/http"
)

// APIError is the error envelope returned to HTTP clients.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ToJSON serializes the error body. Falls back to a static payload if
// marshaling somehow fails.
func (e *APIError) ToJSON() []byte {
	b, err := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   e,
	})
	if err != nil {
		return []byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`)
	}
	return b
}

// BadRequest returns a 400 error.
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// Conflict returns a 409 error with a caller-supplied code so duplicate-ID
// and version conflicts stay distinguishable in the response body.
func Conflict(code, message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: code, Message: message}
}

// InternalError returns a 500 error.
func InternalError(message string) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}
}
